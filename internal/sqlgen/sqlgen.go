// Package sqlgen turns a typed action.MigrationAction into backend-specific
// SQL. The dialect registry mirrors the teacher's internal/dialect package
// almost verbatim in shape: an interface pair plus init()-time registration
// per backend, so each backend package is free-standing and registers itself
// under its schema.Backend value.
package sqlgen

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/dev-five-git/vespertide/internal/action"
	"github.com/dev-five-git/vespertide/internal/schema"
)

// BuiltQuery is one backend-specific statement ready to execute, in the
// order the caller must run them. It is not a tagged value: it holds only
// Statement, the concrete SQL for the backend it was built for, and there
// is no abstracted form and no deferred Render step. A Raw action's
// per-backend text is picked inside each Generator's Lower.
type BuiltQuery struct {
	Statement string
}

// Generator lowers one action at a time into zero or more statements.
// current may be nil; a Generator that needs current_schema context (MySQL's
// enum fan-out, every SQLite structural rewrite) reports BackendUnsupported
// when it is missing, per spec.md §4.5.
type Generator interface {
	Lower(a action.MigrationAction, current *schema.Schema) ([]BuiltQuery, error)
	QuoteIdentifier(name string) string
	QuoteString(value string) string
}

// Dialect binds a Generator to the backend it emits for.
type Dialect interface {
	Backend() schema.Backend
	Generator() Generator
}

var (
	registryMu sync.RWMutex
	registry   = map[schema.Backend]func() Dialect{}
)

// RegisterDialect adds a dialect constructor to the registry. Called from
// each backend package's init().
func RegisterDialect(b schema.Backend, ctor func() Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[b] = ctor
}

// GetDialect looks up a registered dialect by backend name.
func GetDialect(b schema.Backend) (Dialect, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[b]
	if !ok {
		return nil, fmt.Errorf("sqlgen: backend %q has no registered dialect", b)
	}
	return ctor(), nil
}

// Lower is the package-level entry point spec.md §4.5 describes:
// lower(action, backend) -> [BuiltQuery], with current_schema threaded
// through for the backends that need it.
func Lower(a action.MigrationAction, backend schema.Backend, current *schema.Schema) ([]BuiltQuery, error) {
	d, err := GetDialect(backend)
	if err != nil {
		return nil, err
	}
	return d.Generator().Lower(a, current)
}

// RenderDefaultLiteral applies the per-backend default-value rewrite
// spec.md §4.5 calls for: NOW() becomes CURRENT_TIMESTAMP on SQLite, a
// string-enum default is resolved to its backing integer literal on an
// integer enum column, and every other literal passes through verbatim
// (MySQL accepts a bare quoted string default directly, so there is
// nothing to rewrite there).
func RenderDefaultLiteral(backend schema.Backend, colType schema.ColumnType, raw string) string {
	trimmed := strings.TrimSpace(raw)
	if colType.IsIntegerEnum() {
		if n, ok := colType.EnumInts[trimmed]; ok {
			return strconv.FormatInt(n, 10)
		}
		if unquoted, ok := unquoteLiteral(trimmed); ok {
			if n, ok := colType.EnumInts[unquoted]; ok {
				return strconv.FormatInt(n, 10)
			}
		}
	}
	if backend == schema.SQLite && strings.EqualFold(trimmed, "NOW()") {
		return "CURRENT_TIMESTAMP"
	}
	return raw
}

func unquoteLiteral(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1], true
	}
	return "", false
}
