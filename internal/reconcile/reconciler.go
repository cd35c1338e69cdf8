// Package reconcile compares a declared data model with a live database and
// applies the additive changes that bring the database in line with it.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"db-reconcile/internal/ddl"
	"db-reconcile/internal/dialect"
	"db-reconcile/internal/model"
	"db-reconcile/internal/report"
	"db-reconcile/internal/schema"
	"db-reconcile/internal/typedesc"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Introspector reads the live schema. *schema.Introspector implements it.
type Introspector interface {
	Dialect() *dialect.Dialect
	Schema() string
	Qualify(name string) string
	ListTables(ctx context.Context, sink report.Sink) (schema.TableSet, error)
	ListColumns(ctx context.Context, tables schema.TableSet, sink report.Sink) (schema.Columns, error)
	ListForeignKeys(ctx context.Context, tables schema.TableSet, sink report.Sink) (schema.ForeignKeys, error)
	ListIndexes(ctx context.Context, tables schema.TableSet, includeUnique bool, sink report.Sink) (schema.Indexes, error)
}

// Reconciler runs CheckDB against one database.
type Reconciler struct {
	introspector Introspector
	exec         Executor
	types        model.FieldTypes
	actions      []IndexAction
	progress     ProgressFunc
	logger       *zap.Logger
}

// New returns a Reconciler reading through in and changing through exec.
func New(in Introspector, exec Executor, types model.FieldTypes, opts ...Option) *Reconciler {
	r := &Reconciler{
		introspector: in,
		exec:         exec,
		types:        types,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is what a CheckDB run produced besides its transcript.
type Result struct {
	// Created holds the names of the entities whose table was created.
	Created []string
	// Statements holds every statement that ran successfully, in order.
	Statements []string
	// Failures combines the errors of statements that failed.
	Failures error
}

// run is the state of a single CheckDB call.
type run struct {
	*Reconciler
	ctx     context.Context
	sink    report.Sink
	opts    Options
	dialect *dialect.Dialect
	builder *ddl.Builder
	claims  claims

	entities []*model.Entity
	tables   schema.TableSet
	columns  schema.Columns
	created  []*model.Entity
	// handled marks created tables whose foreign keys, FK indexes or
	// declared indexes were taken care of on creation.
	fksHandled     map[string]bool
	fkIdxHandled   map[string]bool
	indexesHandled map[string]bool

	result *Result
}

// CheckDB reconciles the live schema with entities. Problems with single
// objects are reported to sink and never stop the run; the returned error
// is a *FatalError when the schema cannot be read at all and a
// *ConfigurationError when the model or the index actions are inconsistent.
func (r *Reconciler) CheckDB(ctx context.Context, entities []*model.Entity, sink report.Sink, opts Options) (*Result, error) {
	if sink == nil {
		sink = &report.List{}
	}
	if err := validateRelations(entities); err != nil {
		return nil, err
	}
	cl, err := resolveClaims(r.actions, entities)
	if err != nil {
		return nil, err
	}

	d := r.introspector.Dialect()
	rn := &run{
		Reconciler:     r,
		ctx:            ctx,
		sink:           sink,
		opts:           opts,
		dialect:        d,
		builder:        ddl.NewBuilder(d, r.introspector.Schema(), r.types, entities),
		claims:         cl,
		fksHandled:     map[string]bool{},
		fkIdxHandled:   map[string]bool{},
		indexesHandled: map[string]bool{},
		result:         &Result{},
	}

	r.logger.Info("checking database schema",
		zap.String("dialect", d.Name),
		zap.String("schema", r.introspector.Schema()),
		zap.Int("entities", len(entities)),
	)

	rn.tables, err = r.introspector.ListTables(ctx, sink)
	if err != nil {
		return nil, &FatalError{Phase: "tables", Cause: err}
	}
	rn.columns, err = r.introspector.ListColumns(ctx, rn.tables, sink)
	if err != nil {
		return nil, &FatalError{Phase: "columns", Cause: err}
	}

	rn.entities = make([]*model.Entity, len(entities))
	copy(rn.entities, entities)
	sort.SliceStable(rn.entities, func(i, j int) bool {
		return rn.entities[i].Name < rn.entities[j].Name
	})

	rn.checkEntities()
	rn.createdFollowUp()
	if opts.CheckForeignKeys {
		rn.checkForeignKeys()
	}
	if opts.CheckFKIndexes {
		rn.checkFKIndexes()
	}
	if opts.CheckIndexes {
		rn.checkIndexes()
	}

	for _, e := range rn.created {
		rn.result.Created = append(rn.result.Created, e.Name)
	}
	r.logger.Info("database schema checked",
		zap.Int("created", len(rn.result.Created)),
		zap.Int("statements", len(rn.result.Statements)),
		zap.Int("failures", len(multierr.Errors(rn.result.Failures))),
	)
	return rn.result, nil
}

func validateRelations(entities []*model.Entity) error {
	for _, e := range entities {
		for _, rel := range e.Relations {
			switch rel.Type {
			case model.RelationOne, model.RelationOneNoFK, model.RelationMany:
			default:
				return &ConfigurationError{
					Entity: e.Name,
					Reason: fmt.Sprintf("relation %s has unknown type %q", rel.Name(), rel.Type),
				}
			}
		}
	}
	return nil
}

// ExecDDL lets index actions run statements through the run, so they are
// logged and recorded like any other.
func (r *run) ExecDDL(ctx context.Context, stmt string) (int64, error) {
	r.logger.Debug("executing DDL", zap.String("statement", stmt))
	n, err := r.exec.ExecDDL(ctx, stmt)
	if err != nil {
		return 0, err
	}
	r.result.Statements = append(r.result.Statements, stmt)
	return n, nil
}

// execute runs stmt and reports a failure as an error message.
func (r *run) execute(stmt, what string) bool {
	if _, err := r.ExecDDL(r.ctx, stmt); err != nil {
		r.fail(err, "Could not %s", what)
		return false
	}
	return true
}

func (r *run) fail(err error, format string, args ...any) {
	report.Addf(r.sink, report.Error, format+": %v", append(args, err)...)
	r.result.Failures = multierr.Append(r.result.Failures, err)
}

func (r *run) tableKey(e *model.Entity) string {
	return r.introspector.Qualify(e.TableName)
}

// checkEntities is the column phase: tables are matched to entities,
// columns to fields, and missing tables and columns are created.
func (r *run) checkEntities() {
	orphans := r.tables.Clone()
	total := len(r.entities)
	for i, e := range r.entities {
		key := r.tableKey(e)
		delete(orphans, key)
		if r.progress != nil {
			r.progress(i+1, total, e.Name)
		}
		if e.View {
			continue
		}
		if t, ok := r.tables[key]; ok {
			if t.IsView() {
				// Views, aliases and synonyms report no columns of their own.
				report.Addf(r.sink, report.Verbose, "Table [%s] of entity [%s] is a %s, columns not checked", key, e.Name, t.Type)
				continue
			}
			r.checkColumns(e, key)
			continue
		}
		report.Addf(r.sink, report.Warning, "Entity [%s] has no table in the database, expected [%s]", e.Name, key)
		if r.opts.AddMissing {
			r.createTable(e, key)
		}
	}
	for _, name := range orphans.Names() {
		report.Addf(r.sink, report.Info, "Table [%s] exists in the database but has no entity", name)
	}
}

// virtualColumns are the generated columns function indexes stand on, on
// dialects that index columns but not expressions.
func (r *run) virtualColumns(e *model.Entity) []string {
	if r.dialect.SupportsFunctionIndexes() || !r.dialect.SupportsGeneratedColumns() {
		return nil
	}
	var out []string
	for _, fi := range e.FunctionIndexes {
		out = append(out, r.builder.VirtualColumnName(fi))
	}
	return out
}

func (r *run) checkColumns(e *model.Entity, key string) {
	live := r.columns[key]
	declared := map[string]bool{}
	for _, f := range e.Fields {
		declared[strings.ToUpper(f.ColumnName)] = true
	}
	for _, vc := range r.virtualColumns(e) {
		declared[vc] = true
	}

	names := make([]string, 0, len(live))
	for name := range live {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !declared[name] {
			report.Addf(r.sink, report.Warning, "Column [%s] of table [%s] of entity [%s] exists in the database but has no field", name, key, e.Name)
		}
	}

	for _, f := range e.Fields {
		col := live[strings.ToUpper(f.ColumnName)]
		if col == nil {
			report.Addf(r.sink, report.Warning, "Entity [%s] has field [%s] but table [%s] has no column [%s]", e.Name, f.Name, key, f.ColumnName)
			if r.opts.AddMissing {
				r.addColumn(e, f, key)
			}
			continue
		}
		r.checkColumnType(e, f, col, key)
	}
}

// addColumn tries the dialect's ADD form first and the legacy ADD COLUMN
// form once after that.
func (r *run) addColumn(e *model.Entity, f *model.Field, key string) {
	primary, legacy, err := r.builder.AddColumn(e, f)
	if err != nil {
		r.fail(err, "Could not add column [%s] to table [%s]", f.ColumnName, key)
		return
	}
	if _, err := r.ExecDDL(r.ctx, primary); err == nil {
		report.Addf(r.sink, report.Important, "Added column [%s] to table [%s]", f.ColumnName, key)
		return
	}
	if _, err := r.ExecDDL(r.ctx, legacy); err != nil {
		r.fail(err, "Could not add column [%s] to table [%s]", f.ColumnName, key)
		return
	}
	report.Addf(r.sink, report.Important, "Added column [%s] to table [%s]", f.ColumnName, key)
}

func (r *run) checkColumnType(e *model.Entity, f *model.Field, col *schema.Column, key string) {
	ft, err := r.types.Resolve(f.Type)
	if err != nil {
		report.Addf(r.sink, report.Error, "Field [%s] of entity [%s]: %v", f.Name, e.Name, err)
		return
	}
	declared, warnings := typedesc.FromFieldType(ft, r.dialect.OracleLike)
	for _, w := range warnings {
		report.Addf(r.sink, report.Warning, "Field [%s] of entity [%s]: %s", f.Name, e.Name, w)
	}

	where := fmt.Sprintf("Column [%s] of table [%s] of entity [%s]", col.Name, key, e.Name)
	switch typedesc.DecideMismatch(col.TypeName, declared.Base, declared.Decimals, r.opts.Promote) {
	case typedesc.Promote:
		// The observed type is the wider one, so it is kept as is.
		report.Addf(r.sink, report.Verbose, "%s promoted from %s to %s", where, declared.Base, col.TypeName)
		return
	case typedesc.Warn:
		report.Addf(r.sink, report.Warning, "%s is of type [%s] in the database, but is declared as [%s]", where, col.TypeName, declared.Base)
		return
	}

	check := typedesc.SizeCheck{
		ObservedBase:     col.TypeName,
		ObservedSize:     col.Size,
		ObservedMaxBytes: col.MaxBytes,
		Declared:         declared,
		Widen:            r.opts.Widen,
		OracleLike:       r.dialect.OracleLike,
	}
	switch typedesc.DecideSizeChange(check) {
	case typedesc.Widen:
		if r.changeType(e, f, where) {
			report.Addf(r.sink, report.Important, "%s widened from %d to %d", where, col.Size, declared.Size)
		}
	case typedesc.Warn:
		report.Addf(r.sink, report.Warning, "%s has size [%d] in the database, but is declared with size [%d]", where, col.Size, declared.Size)
	}
	if typedesc.DecimalsMismatch(col.Decimals, declared) {
		report.Addf(r.sink, report.Warning, "%s has [%d] decimal digits in the database, but is declared with [%d]", where, col.Decimals, declared.Decimals)
	}
}

func (r *run) changeType(e *model.Entity, f *model.Field, where string) bool {
	stmt, err := r.builder.ChangeColumnType(e, f)
	if errors.Is(err, ddl.ErrUnsupported) {
		report.Addf(r.sink, report.Warning, "%s cannot be changed: dialect [%s] has no ALTER COLUMN TYPE", where, r.dialect.Name)
		return false
	}
	if err != nil {
		r.fail(err, "%s cannot be changed", where)
		return false
	}
	if _, err := r.ExecDDL(r.ctx, stmt); err != nil {
		r.fail(err, "%s could not be changed", where)
		return false
	}
	return true
}

// inlineForeignKeys reports whether CREATE TABLE carries the foreign keys,
// which is the only way on dialects that cannot add them later.
func (r *run) inlineForeignKeys() bool {
	return r.opts.UseInlineForeignKeys || (r.opts.CreateForeignKeysOnCreate && !r.dialect.AlterForeignKeys)
}

func (r *run) createTable(e *model.Entity, key string) {
	inline := r.inlineForeignKeys()
	stmt, err := r.builder.CreateTable(e, inline)
	if err != nil {
		r.fail(err, "Could not create table [%s] for entity [%s]", key, e.Name)
		return
	}
	if !r.execute(stmt, fmt.Sprintf("create table [%s] for entity [%s]", key, e.Name)) {
		return
	}
	report.Addf(r.sink, report.Important, "Created table [%s] for entity [%s]", key, e.Name)
	r.created = append(r.created, e)
	r.tables[key] = schema.Table{Name: key, Raw: e.TableName, Type: schema.TypeTable}
	if inline {
		r.fksHandled[e.Name] = true
	}
}

// createdFollowUp adds the foreign keys and indexes of the tables created
// in this run.
func (r *run) createdFollowUp() {
	for _, e := range r.created {
		fksCreated := r.fksHandled[e.Name]
		if r.opts.CreateForeignKeysOnCreate && !fksCreated && r.dialect.AlterForeignKeys {
			for _, rel := range r.foreignKeyRelations(e) {
				r.createForeignKey(e, rel)
			}
			r.fksHandled[e.Name] = true
			fksCreated = true
		}
		if r.opts.CreateFKIndexesOnCreate {
			if !(r.dialect.ForeignKeysIndexed && fksCreated) {
				for _, rel := range e.OneRelations() {
					r.createFKIndex(e, rel)
				}
			}
			r.fkIdxHandled[e.Name] = true
		}
		if r.opts.CreateIndexesOnCreate {
			for _, idx := range e.Indexes {
				r.createIndex(e, idx)
			}
			for _, fi := range e.FunctionIndexes {
				r.createFunctionIndex(e, fi)
			}
			r.indexesHandled[e.Name] = true
		}
	}
}

// checkedTables is the table set of the entities a later phase looks at.
func (r *run) checkedTables(skip map[string]bool) (schema.TableSet, []*model.Entity) {
	tables := schema.TableSet{}
	var entities []*model.Entity
	for _, e := range r.entities {
		if e.View || skip[e.Name] {
			continue
		}
		key := r.tableKey(e)
		t, ok := r.tables[key]
		if !ok || t.IsView() {
			continue
		}
		tables[key] = t
		entities = append(entities, e)
	}
	return tables, entities
}
