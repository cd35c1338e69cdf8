package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Relation types.
const (
	RelationOne     = "one"
	RelationOneNoFK = "one-nofk"
	RelationMany    = "many"
)

// ErrUnknownFieldType is returned when a field's logical type has no FieldType.
var ErrUnknownFieldType = errors.New("unknown field type")

// FieldType maps a logical type to the SQL type used for a database.
type FieldType struct {
	Type         string `yaml:"type"`
	SQLType      string `yaml:"sqlType"`
	SQLTypeAlias string `yaml:"sqlTypeAlias,omitempty"`
	GoType       string `yaml:"goType,omitempty"`
}

// FieldTypes is keyed by logical type name.
type FieldTypes map[string]*FieldType

// Resolve returns the FieldType for a logical type.
func (ft FieldTypes) Resolve(name string) (*FieldType, error) {
	t, ok := ft[name]
	if !ok || t == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFieldType, name)
	}
	return t, nil
}

type Field struct {
	Name       string `yaml:"name"`
	ColumnName string `yaml:"column,omitempty"`
	Type       string `yaml:"type"`
	PrimaryKey bool   `yaml:"pk,omitempty"`
	NotNull    bool   `yaml:"notNull,omitempty"`
}

type KeyMap struct {
	FieldName     string `yaml:"field"`
	RelFieldName  string `yaml:"relField,omitempty"`
	ConstantValue string `yaml:"constant,omitempty"`
}

// RelatedField returns the field on the related entity, which defaults to FieldName.
func (k KeyMap) RelatedField() string {
	if k.RelFieldName == "" {
		return k.FieldName
	}
	return k.RelFieldName
}

type Relation struct {
	Type          string   `yaml:"type"`
	Title         string   `yaml:"title,omitempty"`
	RelEntityName string   `yaml:"entity"`
	KeyMaps       []KeyMap `yaml:"keys"`
	FkName        string   `yaml:"fkName,omitempty"`
	RelOptional   bool     `yaml:"optional,omitempty"`
}

// Name is the relation title followed by the related entity name.
func (r *Relation) Name() string {
	return r.Title + r.RelEntityName
}

// IsOne reports whether the relation is a "one" relation eligible for a foreign key.
func (r *Relation) IsOne() bool {
	return r.Type == RelationOne
}

type Index struct {
	Name   string   `yaml:"name"`
	Unique bool     `yaml:"unique,omitempty"`
	Fields []string `yaml:"fields"`
}

// FunctionIndex is an index over an expression. When the database cannot
// index expressions, the expression is materialized as VirtualColumn.
type FunctionIndex struct {
	Name          string `yaml:"name"`
	Unique        bool   `yaml:"unique,omitempty"`
	Expression    string `yaml:"expression"`
	VirtualColumn string `yaml:"virtualColumn,omitempty"`
	Type          string `yaml:"type,omitempty"`
}

type Entity struct {
	Name            string           `yaml:"name"`
	TableName       string           `yaml:"table,omitempty"`
	Fields          []*Field         `yaml:"fields"`
	PrimaryKeys     []string         `yaml:"pk,omitempty"`
	Relations       []*Relation      `yaml:"relations,omitempty"`
	Indexes         []*Index         `yaml:"indexes,omitempty"`
	FunctionIndexes []*FunctionIndex `yaml:"functionIndexes,omitempty"`
	View            bool             `yaml:"view,omitempty"`
}

// Field returns the field with the given name, or nil.
func (e *Entity) Field(name string) *Field {
	for _, f := range e.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// PrimaryKeyFields returns the primary key fields, taken from PrimaryKeys
// when set and from the fields flagged PrimaryKey otherwise.
func (e *Entity) PrimaryKeyFields() []*Field {
	var out []*Field
	if len(e.PrimaryKeys) > 0 {
		for _, name := range e.PrimaryKeys {
			if f := e.Field(name); f != nil {
				out = append(out, f)
			}
		}
		return out
	}
	for _, f := range e.Fields {
		if f.PrimaryKey {
			out = append(out, f)
		}
	}
	return out
}

// OneRelations returns the relations of type "one".
func (e *Entity) OneRelations() []*Relation {
	var out []*Relation
	for _, r := range e.Relations {
		if r.IsOne() {
			out = append(out, r)
		}
	}
	return out
}

// DBName converts a camelCase name into its upper-case, underscore
// separated column or table name: "orderItemSeqId" -> "ORDER_ITEM_SEQ_ID".
func DBName(name string) string {
	var sb strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
			sb.WriteByte('_')
		}
		sb.WriteRune(unicode.ToUpper(r))
	}
	return sb.String()
}

// Model is a complete, resolved data model.
type Model struct {
	FieldTypes FieldTypes
	Entities   []*Entity
}

// Entity returns the entity with the given name, or nil.
func (m *Model) Entity(name string) *Entity {
	for _, e := range m.Entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// EntityMap indexes the entities by name.
func (m *Model) EntityMap() map[string]*Entity {
	out := make(map[string]*Entity, len(m.Entities))
	for _, e := range m.Entities {
		out[e.Name] = e
	}
	return out
}

// normalize fills in derived names.
func (e *Entity) normalize() {
	if e.TableName == "" {
		e.TableName = DBName(e.Name)
	}
	for _, f := range e.Fields {
		if f.ColumnName == "" {
			f.ColumnName = DBName(f.Name)
		}
	}
}
