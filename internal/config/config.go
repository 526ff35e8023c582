// Package config loads vespertide.json, the single configuration document
// spec.md §6 describes, the way the teacher loads its own viper-backed
// settings: defaults registered up front and an optional file overlaying
// them. Load binds no environment variables; only SchemaBaseURL reads one.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/dev-five-git/vespertide/internal/casing"
	"github.com/dev-five-git/vespertide/internal/errs"
)

// EnvSchemaBaseURL is the environment variable spec.md §6 says overrides
// the $schema URL written into new JSON model templates.
const EnvSchemaBaseURL = "VESP_SCHEMA_BASE_URL"

// DefaultSchemaBaseURL is used when EnvSchemaBaseURL is unset.
const DefaultSchemaBaseURL = "https://vespertide.dev/schema"

// Config is the resolved, validated content of vespertide.json.
type Config struct {
	ModelsDir        string
	MigrationsDir    string
	TableNamingCase  casing.Case
	ColumnNamingCase casing.Case
	ModelFormat      string
}

// Default returns the configuration spec.md §6 describes when no file is
// present: modelsDir "models", migrationsDir "migrations", snake_case
// naming both ways, JSON model format.
func Default() Config {
	return Config{
		ModelsDir:        "models",
		MigrationsDir:    "migrations",
		TableNamingCase:  casing.Snake,
		ColumnNamingCase: casing.Snake,
		ModelFormat:      "json",
	}
}

// Load reads path (typically "vespertide.json") off fs through viper. A
// missing file is not an error: Load falls back to Default() silently,
// matching a freshly-`init`ed project that has not customized anything.
func Load(fs afero.Fs, path string) (Config, error) {
	def := Default()

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("modelsDir", def.ModelsDir)
	v.SetDefault("migrationsDir", def.MigrationsDir)
	v.SetDefault("tableNamingCase", string(def.TableNamingCase))
	v.SetDefault("columnNamingCase", string(def.ColumnNamingCase))
	v.SetDefault("modelFormat", def.ModelFormat)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return def, nil
		}
		return Config{}, &errs.ParseError{File: path, Reason: err.Error()}
	}

	cfg := Config{
		ModelsDir:        v.GetString("modelsDir"),
		MigrationsDir:    v.GetString("migrationsDir"),
		TableNamingCase:  casing.Case(v.GetString("tableNamingCase")),
		ColumnNamingCase: casing.Case(v.GetString("columnNamingCase")),
		ModelFormat:      v.GetString("modelFormat"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.TableNamingCase {
	case casing.Snake, casing.Camel, casing.Pascal, casing.Kebab:
	default:
		return &errs.ParseError{Reason: fmt.Sprintf("tableNamingCase %q is not one of snake|camel|pascal|kebab", c.TableNamingCase)}
	}
	switch c.ColumnNamingCase {
	case casing.Snake, casing.Camel, casing.Pascal, casing.Kebab:
	default:
		return &errs.ParseError{Reason: fmt.Sprintf("columnNamingCase %q is not one of snake|camel|pascal|kebab", c.ColumnNamingCase)}
	}
	if c.ModelFormat != "json" && c.ModelFormat != "yaml" {
		return &errs.ParseError{Reason: fmt.Sprintf("modelFormat %q is not json or yaml", c.ModelFormat)}
	}
	return nil
}

// SchemaBaseURL resolves the $schema URL to stamp into new templates,
// honoring EnvSchemaBaseURL when set.
func SchemaBaseURL() string {
	if v := os.Getenv(EnvSchemaBaseURL); v != "" {
		return v
	}
	return DefaultSchemaBaseURL
}
