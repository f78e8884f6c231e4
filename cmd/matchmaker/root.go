package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/matchmaker/internal/config"
	"github.com/kailas-cloud/matchmaker/internal/version"
)

type rootOptions struct {
	env string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "matchmaker",
		Short:         "Candidate matching service",
		Long:          "matchmaker ranks peers for a subject with a trait heuristic and an LLM oracle.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(),
		"config environment (config/<env>.yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMatchCmd(opts),
		newSeedCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}
