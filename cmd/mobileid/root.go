package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfgFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "mobileid",
		Short: "Terminal client for the mobile ID info portal",
		Long: `mobileid renders the portal's views (issuance links, community posts,
fuel prices, traffic, weather, air quality, parking) from a running API
server, and helps operators mint admin tokens and write config files.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", os.Getenv("CONFIG_FILE"), "config file path")

	cmd.AddCommand(
		newViewCmd(),
		newTokenCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}
