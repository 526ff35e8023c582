package schema

// ConstraintKind is the closed tag of TableConstraint.
type ConstraintKind string

const (
	ConstraintPrimaryKey ConstraintKind = "primary_key"
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintUniqueIdx  ConstraintKind = "unique_index"
)

// ReferentialAction is the set of actions a foreign key can take on
// delete/update of the referenced row.
type ReferentialAction string

const (
	RefCascade    ReferentialAction = "cascade"
	RefRestrict   ReferentialAction = "restrict"
	RefSetNull    ReferentialAction = "set_null"
	RefSetDefault ReferentialAction = "set_default"
	RefNoAction   ReferentialAction = "no_action"
)

// TableConstraint is a table-level constraint: a tagged variant over
// primary key, unique, foreign key, check, and unique-index-request.
type TableConstraint struct {
	Name    string         `json:"name,omitempty"`
	Kind    ConstraintKind `json:"kind"`
	Columns []string       `json:"columns,omitempty"` // PK, unique, unique-index, FK-local-columns

	// Kind == ConstraintForeignKey
	ReferencedTable   string             `json:"referenced_table,omitempty"`
	ReferencedColumns []string           `json:"referenced_columns,omitempty"`
	OnDelete          ReferentialAction  `json:"on_delete,omitempty"`
	OnUpdate          ReferentialAction  `json:"on_update,omitempty"`

	// Kind == ConstraintCheck
	CheckExpression string `json:"check,omitempty"`
}

// Clone returns a deep copy, used by callers that must not alias a
// constraint still owned by an action value.
func (c *TableConstraint) Clone() *TableConstraint {
	return c.clone()
}

func (c *TableConstraint) clone() *TableConstraint {
	if c == nil {
		return nil
	}
	out := *c
	out.Columns = append([]string(nil), c.Columns...)
	out.ReferencedColumns = append([]string(nil), c.ReferencedColumns...)
	return &out
}

// Equal reports whether two constraints are structurally identical,
// irrespective of declaration order in the surrounding slice.
func (c *TableConstraint) Equal(other *TableConstraint) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.Name != other.Name || c.Kind != other.Kind {
		return false
	}
	if !stringsEqual(c.Columns, other.Columns) {
		return false
	}
	switch c.Kind {
	case ConstraintForeignKey:
		return c.ReferencedTable == other.ReferencedTable &&
			stringsEqual(c.ReferencedColumns, other.ReferencedColumns) &&
			c.OnDelete == other.OnDelete && c.OnUpdate == other.OnUpdate
	case ConstraintCheck:
		return c.CheckExpression == other.CheckExpression
	default:
		return true
	}
}

// IndexDef is a table index: name, ordered column list, uniqueness flag.
type IndexDef struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
}

// Clone returns a deep copy, used by callers that must not alias an index
// still owned by an action value.
func (i *IndexDef) Clone() *IndexDef {
	return i.clone()
}

func (i *IndexDef) clone() *IndexDef {
	if i == nil {
		return nil
	}
	out := *i
	out.Columns = append([]string(nil), i.Columns...)
	return &out
}

// Equal reports whether two indexes are structurally identical.
func (i *IndexDef) Equal(other *IndexDef) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.Name == other.Name && i.Unique == other.Unique && stringsEqual(i.Columns, other.Columns)
}
