package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mobileid/portal/internal/auth"
	"github.com/mobileid/portal/internal/config"
)

func newTokenCmd(root *rootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin token for /api/ops/status",
		Long:  "Signs an admin bearer token with the configured auth.signing_key (or JWT_SIGNING_KEY).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.cfgFile)
			if err != nil {
				return err
			}

			svc := auth.NewJWTService(auth.JWTConfig{
				SigningKey: cfg.Auth.SigningKey,
				Issuer:     cfg.Auth.Issuer,
				Audience:   cfg.Auth.Audience,
			})
			token, expiresAt, err := svc.GenerateAdminToken(subject, ttl)
			if err != nil {
				return fmt.Errorf("minting token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenExpiry, "token lifetime")
	return cmd
}
