package main

import (
	"github.com/spf13/afero"

	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/config"
	"github.com/dev-five-git/vespertide/internal/schema"
	"github.com/dev-five-git/vespertide/internal/store"
)

// appContext bundles the loaded configuration and the two file stores
// every command but "init" and "export" needs.
type appContext struct {
	cfg        config.Config
	models     *store.ModelStore
	migrations *store.MigrationStore
}

func loadContext(fs afero.Fs, configPath string) (*appContext, error) {
	cfg, err := config.Load(fs, configPath)
	if err != nil {
		return nil, err
	}
	return &appContext{
		cfg:        cfg,
		models:     store.NewModelStore(fs, cfg.ModelsDir),
		migrations: store.NewMigrationStore(fs, cfg.MigrationsDir),
	}, nil
}

// target loads and normalizes the declared schema from the configured
// models directory.
func (c *appContext) target() (*schema.Schema, error) {
	return c.models.Load()
}

// history loads the full recorded migration sequence.
func (c *appContext) history() ([]action.MigrationPlan, error) {
	return c.migrations.Load()
}

func (c *appContext) validationOptions() schema.ValidationOptions {
	return schema.ValidationOptions{
		TableNamingCase:  c.cfg.TableNamingCase,
		ColumnNamingCase: c.cfg.ColumnNamingCase,
	}
}
