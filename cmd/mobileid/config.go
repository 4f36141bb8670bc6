package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/mobileid/portal/internal/config"
)

const defaultConfigFile = "mobileid.yaml"

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := root.cfgFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = defaultConfigFile
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}

			if err := config.Default().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
