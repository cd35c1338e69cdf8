// Package ddl renders CREATE, ALTER and INDEX statements from model entities
// through a dialect's templates.
package ddl

import (
	"errors"
	"fmt"
	"strings"

	"db-reconcile/internal/dialect"
	"db-reconcile/internal/model"
)

// ErrUnsupported is returned when the dialect has no template for a statement.
var ErrUnsupported = errors.New("not supported by dialect")

// Builder renders DDL for one dialect and schema.
type Builder struct {
	dialect  *dialect.Dialect
	schema   string
	types    model.FieldTypes
	entities map[string]*model.Entity
}

// NewBuilder returns a builder resolving field types from types and related
// entities from entities.
func NewBuilder(d *dialect.Dialect, schemaName string, types model.FieldTypes, entities []*model.Entity) *Builder {
	byName := make(map[string]*model.Entity, len(entities))
	for _, e := range entities {
		byName[e.Name] = e
	}
	return &Builder{dialect: d, schema: schemaName, types: types, entities: byName}
}

// Dialect returns the dialect templates are taken from.
func (b *Builder) Dialect() *dialect.Dialect { return b.dialect }

// Related returns the entity a relation points to, or nil.
func (b *Builder) Related(rel *model.Relation) *model.Entity {
	return b.entities[rel.RelEntityName]
}

// TableName returns the schema qualified table name used in statements.
func (b *Builder) TableName(e *model.Entity) string {
	if b.schema == "" {
		return e.TableName
	}
	return b.schema + "." + e.TableName
}

// ClipName truncates a constraint or index name to the dialect's limit.
func (b *Builder) ClipName(name string) string {
	if clip := b.dialect.Clip(); len(name) > clip {
		return name[:clip]
	}
	return name
}

// FKConstraintName is the declared fkName, or the relation title followed by
// the related entity name, upper-cased and clipped.
func (b *Builder) FKConstraintName(rel *model.Relation) string {
	name := rel.FkName
	if name == "" {
		name = rel.Name()
	}
	return b.ClipName(strings.ToUpper(name))
}

// FKIndexName is the name of the index supporting a foreign key. It matches
// the constraint name, which is what dialects that index foreign keys
// implicitly use.
func (b *Builder) FKIndexName(rel *model.Relation) string {
	return b.FKConstraintName(rel)
}

// IndexName applies schema qualification where the dialect requires it.
func (b *Builder) IndexName(name string) string {
	if b.dialect.QualifyIndexNames && b.schema != "" {
		return b.schema + "." + name
	}
	return name
}

// VirtualColumnName is the generated column that stands in for a function
// index's expression.
func (b *Builder) VirtualColumnName(fi *model.FunctionIndex) string {
	if fi.VirtualColumn != "" {
		return strings.ToUpper(fi.VirtualColumn)
	}
	return b.ClipName(strings.ToUpper(fi.Name) + "_VC")
}

// ColumnType resolves the SQL type of a field.
func (b *Builder) ColumnType(e *model.Entity, f *model.Field) (string, error) {
	ft, err := b.types.Resolve(f.Type)
	if err != nil {
		return "", fmt.Errorf("field %s of entity %s: %w", f.Name, e.Name, err)
	}
	return ft.SQLType, nil
}

// CreateTable renders CREATE TABLE with every field, the primary key and,
// when inlineFKs is set, the foreign keys of the entity's "one" relations.
func (b *Builder) CreateTable(e *model.Entity, inlineFKs bool) (string, error) {
	pks := e.PrimaryKeyFields()
	isPK := make(map[string]bool, len(pks))
	for _, f := range pks {
		isPK[f.Name] = true
	}

	var parts []string
	for _, f := range e.Fields {
		sqlType, err := b.ColumnType(e, f)
		if err != nil {
			return "", err
		}
		def := f.ColumnName + " " + sqlType
		if isPK[f.Name] || f.NotNull {
			def += " NOT NULL"
		}
		parts = append(parts, def)
	}
	if len(pks) > 0 {
		cols := make([]string, len(pks))
		for i, f := range pks {
			cols[i] = f.ColumnName
		}
		parts = append(parts, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)",
			b.ClipName("PK_"+e.TableName), strings.Join(cols, ", ")))
	}
	if inlineFKs {
		for _, rel := range e.OneRelations() {
			related := b.Related(rel)
			if related == nil || related.View {
				continue
			}
			vars, err := b.foreignKeyVars(e, rel, related)
			if err != nil {
				return "", err
			}
			parts = append(parts, b.dialect.InlineForeignKey.Render(vars))
		}
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", b.TableName(e), strings.Join(parts, ", ")), nil
}

// AddColumn renders the primary ADD form and the legacy ADD COLUMN form.
func (b *Builder) AddColumn(e *model.Entity, f *model.Field) (primary, legacy string, err error) {
	sqlType, err := b.ColumnType(e, f)
	if err != nil {
		return "", "", err
	}
	vars := dialect.Vars{"table": b.TableName(e), "column": f.ColumnName, "type": sqlType}
	return b.dialect.AddColumn.Render(vars), b.dialect.AddColumnLegacy.Render(vars), nil
}

// ChangeColumnType renders an ALTER to the field's declared type.
func (b *Builder) ChangeColumnType(e *model.Entity, f *model.Field) (string, error) {
	if !b.dialect.SupportsChangeColumnType() {
		return "", fmt.Errorf("change column type: %w", ErrUnsupported)
	}
	sqlType, err := b.ColumnType(e, f)
	if err != nil {
		return "", err
	}
	return b.dialect.ChangeColumnType.Render(dialect.Vars{
		"table":  b.TableName(e),
		"column": f.ColumnName,
		"type":   sqlType,
	}), nil
}

// relationColumns returns the local and related column names of the key
// maps that join on a field; constant key maps are skipped.
func (b *Builder) relationColumns(e *model.Entity, rel *model.Relation, related *model.Entity) ([]string, []string, error) {
	var cols, refCols []string
	for _, km := range rel.KeyMaps {
		if km.ConstantValue != "" {
			continue
		}
		f := e.Field(km.FieldName)
		if f == nil {
			return nil, nil, fmt.Errorf("relation %s of entity %s: no field %s", rel.Name(), e.Name, km.FieldName)
		}
		cols = append(cols, f.ColumnName)
		if related != nil {
			rf := related.Field(km.RelatedField())
			if rf == nil {
				return nil, nil, fmt.Errorf("relation %s of entity %s: no field %s on %s", rel.Name(), e.Name, km.RelatedField(), related.Name)
			}
			refCols = append(refCols, rf.ColumnName)
		}
	}
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("relation %s of entity %s has no key fields", rel.Name(), e.Name)
	}
	return cols, refCols, nil
}

func (b *Builder) foreignKeyVars(e *model.Entity, rel *model.Relation, related *model.Entity) (dialect.Vars, error) {
	cols, refCols, err := b.relationColumns(e, rel, related)
	if err != nil {
		return nil, err
	}
	return dialect.Vars{
		"table":      b.TableName(e),
		"name":       b.FKConstraintName(rel),
		"columns":    strings.Join(cols, ", "),
		"reftable":   b.TableName(related),
		"refcolumns": strings.Join(refCols, ", "),
	}, nil
}

// AddForeignKey renders ALTER TABLE ... ADD CONSTRAINT ... FOREIGN KEY.
func (b *Builder) AddForeignKey(e *model.Entity, rel *model.Relation) (string, error) {
	if !b.dialect.AlterForeignKeys {
		return "", fmt.Errorf("add foreign key: %w", ErrUnsupported)
	}
	related := b.Related(rel)
	if related == nil {
		return "", fmt.Errorf("relation %s of entity %s: unknown entity %s", rel.Name(), e.Name, rel.RelEntityName)
	}
	vars, err := b.foreignKeyVars(e, rel, related)
	if err != nil {
		return "", err
	}
	return b.dialect.AddForeignKey.Render(vars), nil
}

// CreateIndex renders a declared index.
func (b *Builder) CreateIndex(e *model.Entity, idx *model.Index) (string, error) {
	cols := make([]string, 0, len(idx.Fields))
	for _, name := range idx.Fields {
		f := e.Field(name)
		if f == nil {
			return "", fmt.Errorf("index %s of entity %s: no field %s", idx.Name, e.Name, name)
		}
		cols = append(cols, f.ColumnName)
	}
	return b.renderIndex(e, strings.ToUpper(idx.Name), idx.Unique, cols), nil
}

// CreateFKIndex renders the index over a relation's key columns.
func (b *Builder) CreateFKIndex(e *model.Entity, rel *model.Relation) (string, error) {
	cols, _, err := b.relationColumns(e, rel, nil)
	if err != nil {
		return "", err
	}
	return b.renderIndex(e, b.FKIndexName(rel), false, cols), nil
}

func (b *Builder) renderIndex(e *model.Entity, name string, unique bool, cols []string) string {
	return b.dialect.CreateIndex.Render(dialect.Vars{
		"unique":  uniqueKeyword(unique),
		"index":   b.IndexName(name),
		"table":   b.TableName(e),
		"columns": strings.Join(cols, ", "),
	})
}

func uniqueKeyword(unique bool) string {
	if unique {
		return "UNIQUE "
	}
	return ""
}

// CreateFunctionIndex renders an index over the expression, or over the
// virtual column when the dialect cannot index expressions.
func (b *Builder) CreateFunctionIndex(e *model.Entity, fi *model.FunctionIndex) (string, error) {
	name := strings.ToUpper(fi.Name)
	if b.dialect.SupportsFunctionIndexes() {
		return b.dialect.FunctionIndex.Render(dialect.Vars{
			"unique":     uniqueKeyword(fi.Unique),
			"index":      b.IndexName(name),
			"table":      b.TableName(e),
			"expression": fi.Expression,
		}), nil
	}
	if !b.dialect.SupportsGeneratedColumns() {
		return "", fmt.Errorf("function index %s: %w", fi.Name, ErrUnsupported)
	}
	return b.renderIndex(e, name, fi.Unique, []string{b.VirtualColumnName(fi)}), nil
}

// GeneratedColumn renders the virtual column backing a function index.
func (b *Builder) GeneratedColumn(e *model.Entity, fi *model.FunctionIndex) (string, error) {
	if !b.dialect.SupportsGeneratedColumns() {
		return "", fmt.Errorf("virtual column for %s: %w", fi.Name, ErrUnsupported)
	}
	vars := dialect.Vars{
		"table":      b.TableName(e),
		"column":     b.VirtualColumnName(fi),
		"expression": fi.Expression,
	}
	if b.dialect.GeneratedColumn.Uses("type") {
		if fi.Type == "" {
			return "", fmt.Errorf("function index %s of entity %s needs a type for its virtual column", fi.Name, e.Name)
		}
		ft, err := b.types.Resolve(fi.Type)
		if err != nil {
			return "", fmt.Errorf("function index %s of entity %s: %w", fi.Name, e.Name, err)
		}
		vars["type"] = ft.SQLType
	}
	return b.dialect.GeneratedColumn.Render(vars), nil
}

// DropIndex renders the dialect's DROP INDEX shape. The reconciler never
// drops anything; this is for operators.
func (b *Builder) DropIndex(e *model.Entity, indexName string) string {
	name := strings.ToUpper(indexName)
	qualified := name
	if b.schema != "" {
		qualified = b.schema + "." + name
	}
	return b.dialect.DropIndex.Render(dialect.Vars{
		"table":  b.TableName(e),
		"index":  name,
		"qindex": qualified,
	})
}
