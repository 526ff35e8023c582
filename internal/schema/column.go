package schema

import (
	"encoding/json"
	"sort"
)

// ColumnDef is a single column inside a table. PrimaryKey, Unique, Index,
// and ForeignKey are surface sugar: Normalize rewrites them into table-level
// constraints/indexes and clears these fields, so any ColumnDef that has
// survived normalization never carries them.
type ColumnDef struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Nullable bool       `json:"nullable,omitempty"`
	Default  *string    `json:"default,omitempty"`
	Comment  string     `json:"comment,omitempty"`

	// Inline constraint sugar, cleared by Normalize.
	PrimaryKey bool              `json:"primary_key,omitempty"`
	Unique     bool              `json:"unique,omitempty"`
	Index      bool              `json:"index,omitempty"`
	ForeignKey *InlineForeignKey `json:"foreign_key,omitempty"`
}

// InlineForeignKey is the surface-level shorthand for a single-column
// foreign key declared directly on a ColumnDef.
type InlineForeignKey struct {
	ReferencedTable  string            `json:"referenced_table"`
	ReferencedColumn string            `json:"referenced_column"`
	OnDelete         ReferentialAction `json:"on_delete,omitempty"`
	OnUpdate         ReferentialAction `json:"on_update,omitempty"`
}

// Clone returns a deep copy, used by callers (notably the applier) that
// must not let a stored ColumnDef alias one still owned by an action value.
func (c *ColumnDef) Clone() *ColumnDef {
	return c.clone()
}

func (c *ColumnDef) clone() *ColumnDef {
	if c == nil {
		return nil
	}
	out := *c
	if c.Default != nil {
		d := *c.Default
		out.Default = &d
	}
	if c.ForeignKey != nil {
		fk := *c.ForeignKey
		out.ForeignKey = &fk
	}
	out.Type = c.Type.clone()
	return &out
}

// HasInlineSugar reports whether any of the inline shortcuts are still
// present, i.e. the column has not been normalized.
func (c *ColumnDef) HasInlineSugar() bool {
	return c.PrimaryKey || c.Unique || c.Index || c.ForeignKey != nil
}

// SimpleType enumerates the fixed-width SQL primitive types with no
// parameters.
type SimpleType string

const (
	TypeInteger         SimpleType = "integer"
	TypeBigInt          SimpleType = "bigint"
	TypeSmallInt        SimpleType = "smallint"
	TypeReal            SimpleType = "real"
	TypeDouble          SimpleType = "double"
	TypeText            SimpleType = "text"
	TypeBoolean         SimpleType = "boolean"
	TypeUUID            SimpleType = "uuid"
	TypeJSON            SimpleType = "json"
	TypeJSONB           SimpleType = "jsonb"
	TypeBytea           SimpleType = "bytea"
	TypeDate            SimpleType = "date"
	TypeTime            SimpleType = "time"
	TypeTimestamp       SimpleType = "timestamp"
	TypeTimestampWithTZ SimpleType = "timestamptz"
	TypeInterval        SimpleType = "interval"
	TypeInet            SimpleType = "inet"
	TypeCIDR            SimpleType = "cidr"
	TypeMACAddr         SimpleType = "macaddr"
	TypeXML             SimpleType = "xml"
)

// TypeKind distinguishes the closed sum of ColumnType shapes.
type TypeKind string

const (
	KindSimple    TypeKind = "simple"
	KindChar      TypeKind = "char"
	KindVarchar   TypeKind = "varchar"
	KindNumeric   TypeKind = "numeric"
	KindEnum      TypeKind = "enum"
	KindCustom    TypeKind = "custom"
)

// ColumnType is the closed sum of simple primitives and complex parametric
// types described in spec.md §3.
type ColumnType struct {
	Kind TypeKind

	// Kind == KindSimple
	Simple SimpleType

	// Kind == KindChar | KindVarchar
	Length int

	// Kind == KindNumeric
	Precision, Scale int

	// Kind == KindEnum
	EnumName   string
	EnumValues []string         // string enum, ordered
	EnumInts   map[string]int64 // integer enum, nil for string enum

	// Kind == KindCustom
	Raw string
}

// columnTypeWire is the on-disk shape of a complex ColumnType. A simple
// type instead marshals as its bare name ("integer", "text", ...), so a
// model file never has to spell out {"kind":"simple","simple":"integer"}
// for the common case.
type columnTypeWire struct {
	Kind       TypeKind         `json:"kind"`
	Length     int              `json:"length,omitempty"`
	Precision  int              `json:"precision,omitempty"`
	Scale      int              `json:"scale,omitempty"`
	EnumName   string           `json:"enum_name,omitempty"`
	EnumValues []string         `json:"enum_values,omitempty"`
	EnumInts   map[string]int64 `json:"enum_ints,omitempty"`
	Raw        string           `json:"raw,omitempty"`
}

// MarshalJSON renders a simple type as a bare string and every other kind
// as a tagged object.
func (t ColumnType) MarshalJSON() ([]byte, error) {
	if t.Kind == KindSimple || t.Kind == "" {
		return json.Marshal(string(t.Simple))
	}
	return json.Marshal(columnTypeWire{
		Kind: t.Kind, Length: t.Length, Precision: t.Precision, Scale: t.Scale,
		EnumName: t.EnumName, EnumValues: t.EnumValues, EnumInts: t.EnumInts, Raw: t.Raw,
	})
}

// UnmarshalJSON accepts either a bare string (a simple type) or a tagged
// object (char/varchar/numeric/enum/custom).
func (t *ColumnType) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		*t = Simple(SimpleType(bare))
		return nil
	}
	var wire columnTypeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*t = ColumnType{
		Kind: wire.Kind, Length: wire.Length, Precision: wire.Precision, Scale: wire.Scale,
		EnumName: wire.EnumName, EnumValues: wire.EnumValues, EnumInts: wire.EnumInts, Raw: wire.Raw,
	}
	return nil
}

func (t ColumnType) clone() ColumnType {
	out := t
	out.EnumValues = append([]string(nil), t.EnumValues...)
	if t.EnumInts != nil {
		out.EnumInts = make(map[string]int64, len(t.EnumInts))
		for k, v := range t.EnumInts {
			out.EnumInts[k] = v
		}
	}
	return out
}

// IsEnum reports whether this type is a reference to a named enum.
func (t ColumnType) IsEnum() bool {
	return t.Kind == KindEnum
}

// IsIntegerEnum reports whether this is an integer enum type.
func (t ColumnType) IsIntegerEnum() bool {
	return t.Kind == KindEnum && t.EnumInts != nil
}

// Equal reports whether two ColumnTypes are structurally identical. Used by
// the differ to detect a ModifyColumnType edit.
func (t ColumnType) Equal(other ColumnType) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindSimple:
		return t.Simple == other.Simple
	case KindChar, KindVarchar:
		return t.Length == other.Length
	case KindNumeric:
		return t.Precision == other.Precision && t.Scale == other.Scale
	case KindEnum:
		if t.EnumName != other.EnumName {
			return false
		}
		return stringsEqual(t.EnumValues, other.EnumValues) && intMapEqual(t.EnumInts, other.EnumInts)
	case KindCustom:
		return t.Raw == other.Raw
	default:
		return false
	}
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func intMapEqual(a, b map[string]int64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// Simple is a constructor for the simple-type shape.
func Simple(t SimpleType) ColumnType { return ColumnType{Kind: KindSimple, Simple: t} }

// Char is a constructor for a fixed-length char(n) type.
func Char(n int) ColumnType { return ColumnType{Kind: KindChar, Length: n} }

// Varchar is a constructor for a varchar(n) type.
func Varchar(n int) ColumnType { return ColumnType{Kind: KindVarchar, Length: n} }

// Numeric is a constructor for a numeric(p,s) type.
func Numeric(precision, scale int) ColumnType {
	return ColumnType{Kind: KindNumeric, Precision: precision, Scale: scale}
}

// StringEnum is a constructor for a named string enum type.
func StringEnum(name string, values []string) ColumnType {
	return ColumnType{Kind: KindEnum, EnumName: name, EnumValues: append([]string(nil), values...)}
}

// IntEnum is a constructor for a named integer enum type. EnumValues lists
// the names ordered by integer value, then by name.
func IntEnum(name string, mapping map[string]int64) ColumnType {
	cp := make(map[string]int64, len(mapping))
	for k, v := range mapping {
		cp[k] = v
	}
	values := make([]string, 0, len(mapping))
	for k := range mapping {
		values = append(values, k)
	}
	sort.Slice(values, func(i, j int) bool {
		if cp[values[i]] != cp[values[j]] {
			return cp[values[i]] < cp[values[j]]
		}
		return values[i] < values[j]
	})
	return ColumnType{Kind: KindEnum, EnumName: name, EnumValues: values, EnumInts: cp}
}

// Custom is a constructor for an opaque raw type string.
func Custom(raw string) ColumnType { return ColumnType{Kind: KindCustom, Raw: raw} }
