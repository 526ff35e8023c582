package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/errs"
	"github.com/dev-five-git/vespertide/internal/log"
)

// MigrationStore reads and writes migration plan files under a single
// directory, named "{version}_{slug}.json" per spec.md §6.
type MigrationStore struct {
	fs  afero.Fs
	dir string
}

// NewMigrationStore returns a store rooted at dir on fs.
func NewMigrationStore(fs afero.Fs, dir string) *MigrationStore {
	return &MigrationStore{fs: fs, dir: dir}
}

// Load parses every migration file in the store's directory. The plan's
// own "version" field is authoritative, not the filename's version
// prefix, so a renamed file still replays in the right place; applier.Replay
// is responsible for ordering and for reporting gaps/duplicates.
func (s *MigrationStore) Load() ([]action.MigrationPlan, error) {
	exists, err := afero.DirExists(s.fs, s.dir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.ToLower(filepath.Ext(e.Name())) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var (
		plans   []action.MigrationPlan
		errList errs.List
	)
	for _, name := range names {
		path := filepath.Join(s.dir, name)
		data, err := afero.ReadFile(s.fs, path)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		var plan action.MigrationPlan
		if err := json.Unmarshal(data, &plan); err != nil {
			errList = append(errList, &errs.ParseError{File: path, Reason: err.Error()})
			continue
		}
		if prefix, ok := parseVersionPrefix(name); ok && prefix != plan.Version {
			log.WithFields(log.Fields{"file": name, "filename_version": prefix, "plan_version": plan.Version}).
				Warn("migration filename version disagrees with the plan's own version field; the plan's field wins")
		}
		plans = append(plans, plan)
	}

	if len(errList) > 0 {
		return nil, errList
	}
	return plans, nil
}

// NextFilename returns the filename a new migration plan with the given
// version and revision comment should be written under.
func NextFilename(version int64, comment string) string {
	return fmt.Sprintf("%04d_%s.json", version, slugify(comment))
}

// Write marshals plan as indented JSON and writes it atomically under the
// store's directory, returning the path written.
func (s *MigrationStore) Write(plan action.MigrationPlan) (string, error) {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", err
	}
	data = append(data, '\n')

	finalName := NextFilename(plan.Version, plan.Comment)
	if err := writeFileAtomic(s.fs, s.dir, finalName, data); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, finalName), nil
}

// NextVersion returns one past the highest version found among the
// store's existing migrations, or 1 if there are none.
func (s *MigrationStore) NextVersion() (int64, error) {
	plans, err := s.Load()
	if err != nil {
		return 0, err
	}
	var max int64
	for _, p := range plans {
		if p.Version > max {
			max = p.Version
		}
	}
	return max + 1, nil
}

// parseVersionPrefix extracts the leading numeric version from a migration
// filename, used only for diagnostics when a file's name and its internal
// version field disagree.
func parseVersionPrefix(name string) (int64, bool) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	idx := strings.IndexByte(base, '_')
	if idx <= 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(base[:idx], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
