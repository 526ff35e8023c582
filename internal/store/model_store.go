// Package store reads and writes the two on-disk document families
// Vespertide operates on: table model files under modelsDir and migration
// plan files under migrationsDir, both through an afero.Fs so tests never
// touch the real filesystem. Grounded on the teacher's
// internal/parser.ParseFile dispatch-by-extension idiom, generalized from
// "one TOML dump" to "one file per table, JSON or YAML".
package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/dev-five-git/vespertide/internal/config"
	"github.com/dev-five-git/vespertide/internal/errs"
	"github.com/dev-five-git/vespertide/internal/schema"
)

// ModelStore reads and writes table model files under a single directory.
type ModelStore struct {
	fs  afero.Fs
	dir string
}

// NewModelStore returns a store rooted at dir on fs.
func NewModelStore(fs afero.Fs, dir string) *ModelStore {
	return &ModelStore{fs: fs, dir: dir}
}

// modelFile is the on-disk shape of one table model: the table definition
// plus an optional $schema hint that editors use for autocompletion. The
// hint is accepted on read and ignored beyond that; Vespertide itself
// never dereferences it.
type modelFile struct {
	Schema string `json:"$schema,omitempty" yaml:"$schema,omitempty"`
	schema.TableDef
}

// Load reads every model file in the store's directory and returns the
// normalized target schema they describe. Per-file parse failures are
// collected rather than aborting on the first one, so a single typo
// doesn't hide every other problem in the same run.
func (s *ModelStore) Load() (*schema.Schema, error) {
	exists, err := afero.DirExists(s.fs, s.dir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return schema.New(), nil
	}

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, err
	}

	out := schema.New()
	var errList errs.List

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json":
			names = append(names, e.Name())
		case ".yaml", ".yml":
			errList = append(errList, &errs.ParseError{
				File:   filepath.Join(s.dir, e.Name()),
				Reason: "YAML model files can only be generated by \"new --format yaml\", not loaded yet",
			})
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(s.dir, name)
		table, err := s.loadFile(path)
		if err != nil {
			errList = append(errList, err)
			continue
		}

		normalized, err := schema.Normalize(table)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		schema.TrimSpaceNames(normalized)

		if existing := out.Table(normalized.Name); existing != nil {
			errList = append(errList, &errs.InvariantViolation{
				Entity: normalized.Name,
				Reason: fmt.Sprintf("table defined in more than one model file (also in a file already seen before %s)", name),
			})
			continue
		}
		out.Tables.Set(normalized.Name, normalized)

		if err := collectEnums(out, normalized); err != nil {
			errList = append(errList, err)
		}
	}

	if len(errList) > 0 {
		return nil, errList
	}
	return out, nil
}

func (s *ModelStore) loadFile(path string) (*schema.TableDef, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, err
	}

	var file modelFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &errs.ParseError{File: path, Reason: err.Error()}
	}
	table := file.TableDef
	return &table, nil
}

// collectEnums walks a table's columns and registers any named enum types
// it references into the schema's enum collection, the way schema.Schema
// models them: as schema-level objects shared by every column that uses
// them. A second column referencing the same enum name with a different
// value list is an inconsistent model, reported as InvariantViolation
// rather than silently picking one definition.
func collectEnums(s *schema.Schema, table *schema.TableDef) error {
	for _, col := range table.Columns {
		if !col.Type.IsEnum() {
			continue
		}
		def := &schema.EnumDef{Name: col.Type.EnumName, Values: col.Type.EnumValues, IntMapping: col.Type.EnumInts}
		if existing := s.Enum(def.Name); existing != nil {
			if !enumsEqual(existing, def) {
				return &errs.InvariantViolation{
					Entity: def.Name,
					Reason: fmt.Sprintf("enum %q is declared with conflicting values across model files", def.Name),
				}
			}
			continue
		}
		s.Enums.Set(def.Name, def.Clone())
	}
	return nil
}

func enumsEqual(a, b *schema.EnumDef) bool {
	if a.IsInteger() != b.IsInteger() {
		return false
	}
	if len(a.Values) != len(b.Values) {
		return false
	}
	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			return false
		}
	}
	if a.IsInteger() {
		for k, v := range a.IntMapping {
			if b.IntMapping[k] != v {
				return false
			}
		}
	}
	return true
}

// WriteTemplate creates a starter model file for a new table: a single
// integer primary key column named "id". format is
// "json" or "yaml"; any other value is an internal misuse of the store.
func (s *ModelStore) WriteTemplate(tableName, format string) (string, error) {
	table := schema.TableDef{
		Name: tableName,
		Columns: []*schema.ColumnDef{
			{Name: "id", Type: schema.Simple(schema.TypeInteger), PrimaryKey: true},
		},
	}

	var (
		data []byte
		err  error
		ext  string
	)
	switch format {
	case "yaml":
		ext = "yaml"
		data, err = yaml.Marshal(modelFile{TableDef: table})
	case "json", "":
		ext = "json"
		data, err = json.MarshalIndent(modelFile{Schema: config.SchemaBaseURL() + "/table.json", TableDef: table}, "", "  ")
	default:
		return "", &errs.ParseError{Reason: fmt.Sprintf("unsupported model format %q", format)}
	}
	if err != nil {
		return "", err
	}
	data = append(data, '\n')

	finalName := tableName + "." + ext
	if err := writeFileAtomic(s.fs, s.dir, finalName, data); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, finalName), nil
}
