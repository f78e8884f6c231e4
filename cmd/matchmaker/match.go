package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/matchmaker/internal/domain"
)

type matchResult struct {
	Success      bool   `json:"success"`
	MatchesFound int    `json:"matchesFound"`
	RunID        string `json:"runId,omitempty"`
	Error        string `json:"error,omitempty"`
}

func newMatchCmd(root *rootOptions) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Compute matches for one subject and print the outcome",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), root.env)
			if err != nil {
				return err
			}
			defer a.close()

			out, runErr := a.matching.Compute(cmd.Context(), subject)
			res := matchResult{Success: runErr == nil, MatchesFound: out.MatchesFound, RunID: out.RunID}
			if runErr != nil {
				res.Error = errorCode(runErr)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("write outcome: %w", err)
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "subject entity ID")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

// errorCode maps pipeline errors to the codes the HTTP API reports.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrNotFound):
		return "not-found"
	default:
		return "internal"
	}
}
