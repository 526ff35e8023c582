package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// writeFileAtomic writes data to a uuid-suffixed temporary file in dir and
// renames it into place, so a reader never observes a half-written model
// or migration file.
func writeFileAtomic(fs afero.Fs, dir, finalName string, data []byte) error {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmpName := fmt.Sprintf(".%s.tmp-%s", finalName, uuid.NewString())
	tmpPath := filepath.Join(dir, tmpName)
	if err := afero.WriteFile(fs, tmpPath, data, os.FileMode(0o644)); err != nil {
		return err
	}
	return fs.Rename(tmpPath, filepath.Join(dir, finalName))
}
