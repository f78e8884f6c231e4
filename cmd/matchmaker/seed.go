package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	entityuc "github.com/kailas-cloud/matchmaker/internal/usecase/entity"
)

// seedFile is the YAML layout accepted by the seed command.
type seedFile struct {
	Entities []seedEntity `yaml:"entities"`
}

type seedEntity struct {
	ID       string   `yaml:"id"`
	Username string   `yaml:"username"`
	Traits   []string `yaml:"traits"`
	FreeText string   `yaml:"free_text"`
}

func readSeedFile(path string) (seedFile, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return seedFile{}, fmt.Errorf("read seed file %s: %w", path, err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return seedFile{}, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return f, nil
}

func newSeedCmd(root *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load entity profiles from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := readSeedFile(file)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), root.env)
			if err != nil {
				return err
			}
			defer a.close()

			var failed int
			for _, e := range f.Entities {
				_, err := a.entities.Seed(cmd.Context(), e.ID, entityuc.UpsertInput{
					Username: e.Username,
					Traits:   e.Traits,
					FreeText: e.FreeText,
				})
				if err != nil {
					failed++
					a.logger.Warn("Seed entity failed", zap.String("entity_id", e.ID), zap.Error(err))
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d of %d entities\n", len(f.Entities)-failed, len(f.Entities))
			if failed > 0 {
				return fmt.Errorf("%d entities failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML file with an entities list")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
