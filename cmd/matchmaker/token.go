package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/matchmaker/internal/config"
	chiTransport "github.com/kailas-cloud/matchmaker/internal/transport/chi"
)

func newTokenCmd(root *rootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a subject (development)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.env)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret is empty, tokens are not checked")
			}
			if ttl == 0 {
				ttl = time.Duration(cfg.Auth.TokenTTL) * time.Hour
			}

			tok, err := chiTransport.SignToken(cfg.Auth.JWTSecret, cfg.Auth.Issuer, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "entity ID to put in the sub claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default auth.token_ttl_hours)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
