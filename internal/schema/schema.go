// Package schema contains the single source of truth for a declared
// database shape: tables, columns, constraints, indexes, and enums. It is
// shared by the planner and the SQL emitter, and every value that crosses
// either boundary is assumed normalized (see Normalize).
package schema

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Backend identifies a SQL dialect Vespertide can emit for.
type Backend string

const (
	Postgres Backend = "postgres"
	MySQL    Backend = "mysql"
	SQLite   Backend = "sqlite"
)

// Schema is a set of normalized TableDefs keyed by table name, plus the
// enum types referenced by their columns. Both collections are ordered
// maps so callers get deterministic, insertion-independent iteration by
// always walking them through SortedTableNames/SortedEnumNames rather than
// relying on map ranging.
type Schema struct {
	Tables *orderedmap.OrderedMap[string, *TableDef]
	Enums  *orderedmap.OrderedMap[string, *EnumDef]
}

// New returns an empty Schema ready for mutation.
func New() *Schema {
	return &Schema{
		Tables: orderedmap.New[string, *TableDef](),
		Enums:  orderedmap.New[string, *EnumDef](),
	}
}

// Clone performs a deep copy so callers (notably the applier) can mutate
// the result without aliasing the original schema.
func (s *Schema) Clone() *Schema {
	out := New()
	for pair := s.Tables.Oldest(); pair != nil; pair = pair.Next() {
		out.Tables.Set(pair.Key, pair.Value.clone())
	}
	for pair := s.Enums.Oldest(); pair != nil; pair = pair.Next() {
		out.Enums.Set(pair.Key, pair.Value.clone())
	}
	return out
}

// SortedTableNames returns table names in lexicographic order, the
// iteration order every diff and topological sort is defined over.
func (s *Schema) SortedTableNames() []string {
	return sortedKeys(s.Tables)
}

// SortedEnumNames returns enum names in lexicographic order.
func (s *Schema) SortedEnumNames() []string {
	return sortedKeys(s.Enums)
}

func sortedKeys[V any](m *orderedmap.OrderedMap[string, V]) []string {
	names := make([]string, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	sort.Strings(names)
	return names
}

// Table looks up a table by name, or nil if absent.
func (s *Schema) Table(name string) *TableDef {
	t, _ := s.Tables.Get(name)
	return t
}

// Enum looks up an enum type by name, or nil if absent.
func (s *Schema) Enum(name string) *EnumDef {
	e, _ := s.Enums.Get(name)
	return e
}

// EnumDef is a schema-level named enum type. PostgreSQL creates/drops these
// as standalone objects; MySQL and SQLite inline them on the column, but
// the action vocabulary still treats them uniformly.
type EnumDef struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
	// IntMapping holds a name-to-integer mapping for an integer enum. Nil
	// for a plain string enum.
	IntMapping map[string]int64 `json:"int_mapping,omitempty"`
}

// Clone returns a deep copy, used by callers that must not alias an enum
// still owned by an action value.
func (e *EnumDef) Clone() *EnumDef {
	return e.clone()
}

func (e *EnumDef) clone() *EnumDef {
	if e == nil {
		return nil
	}
	out := &EnumDef{Name: e.Name, Values: append([]string(nil), e.Values...)}
	if e.IntMapping != nil {
		out.IntMapping = make(map[string]int64, len(e.IntMapping))
		for k, v := range e.IntMapping {
			out.IntMapping[k] = v
		}
	}
	return out
}

// IsInteger reports whether this is an integer enum (name -> int) rather
// than a plain ordered string enum.
func (e *EnumDef) IsInteger() bool {
	return e.IntMapping != nil
}

// TableDef is a table: an ordered column list plus table-level constraints
// and indexes. A table has zero or one primary key after normalization,
// always expressed as a table-level Constraint of kind PrimaryKey.
type TableDef struct {
	Name        string             `json:"name"`
	Columns     []*ColumnDef       `json:"columns"`
	Constraints []*TableConstraint `json:"constraints,omitempty"`
	Indexes     []*IndexDef        `json:"indexes,omitempty"`
}

func (t *TableDef) clone() *TableDef {
	if t == nil {
		return nil
	}
	out := &TableDef{Name: t.Name}
	for _, c := range t.Columns {
		out.Columns = append(out.Columns, c.clone())
	}
	for _, c := range t.Constraints {
		out.Constraints = append(out.Constraints, c.clone())
	}
	for _, i := range t.Indexes {
		out.Indexes = append(out.Indexes, i.clone())
	}
	return out
}

// Column looks up a column by name, or nil if absent.
func (t *TableDef) Column(name string) *ColumnDef {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Constraint looks up a table-level constraint by name, or nil if absent.
func (t *TableDef) Constraint(name string) *TableConstraint {
	for _, c := range t.Constraints {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Index looks up an index by name, or nil if absent.
func (t *TableDef) Index(name string) *IndexDef {
	for _, i := range t.Indexes {
		if i.Name == name {
			return i
		}
	}
	return nil
}

// PrimaryKey returns the table's primary-key constraint, or nil if it has
// none. After normalization there is at most one.
func (t *TableDef) PrimaryKey() *TableConstraint {
	for _, c := range t.Constraints {
		if c.Kind == ConstraintPrimaryKey {
			return c
		}
	}
	return nil
}

// ColumnNames returns the table's column names in declaration order.
func (t *TableDef) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
