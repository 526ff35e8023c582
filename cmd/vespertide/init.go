package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dev-five-git/vespertide/internal/config"
)

// newInitCommand scaffolds a fresh project: a vespertide.json with the
// default settings (if one doesn't already exist) plus empty modelsDir/
// migrationsDir directories.
func newInitCommand(fs afero.Fs, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a vespertide.json and the default models/migrations directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(fs, *configPath, cmd)
		},
	}
}

func runInit(fs afero.Fs, configPath string, cmd *cobra.Command) error {
	exists, err := afero.Exists(fs, configPath)
	if err != nil {
		return err
	}

	def := config.Default()
	if !exists {
		data, err := json.MarshalIndent(map[string]any{
			"modelsDir":        def.ModelsDir,
			"migrationsDir":    def.MigrationsDir,
			"tableNamingCase":  string(def.TableNamingCase),
			"columnNamingCase": string(def.ColumnNamingCase),
			"modelFormat":      def.ModelFormat,
		}, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
		if err := afero.WriteFile(fs, configPath, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
	}

	cfg, err := config.Load(fs, configPath)
	if err != nil {
		return err
	}
	for _, dir := range []string{cfg.ModelsDir, cfg.MigrationsDir} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ensured %s\n", dir)
	}
	return nil
}
