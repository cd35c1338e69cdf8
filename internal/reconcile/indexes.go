package reconcile

import (
	"errors"
	"strings"

	"db-reconcile/internal/ddl"
	"db-reconcile/internal/model"
	"db-reconcile/internal/report"
)

// checkIndexes looks for declared and function indexes by name. An index
// that exists under the declared name is never compared column by column.
func (r *run) checkIndexes() {
	tables, entities := r.checkedTables(r.indexesHandled)
	live, err := r.introspector.ListIndexes(r.ctx, tables, true, r.sink)
	if err != nil {
		return
	}
	for _, e := range entities {
		key := r.tableKey(e)
		indexes := live[key]
		for _, idx := range e.Indexes {
			if _, ok := indexes[strings.ToUpper(idx.Name)]; ok {
				continue
			}
			report.Addf(r.sink, report.Warning, "Missing index [%s] on table [%s] of entity [%s]", strings.ToUpper(idx.Name), key, e.Name)
			if r.opts.AddMissing {
				r.createIndex(e, idx)
			}
		}
		for _, fi := range e.FunctionIndexes {
			if _, ok := indexes[strings.ToUpper(fi.Name)]; ok {
				continue
			}
			report.Addf(r.sink, report.Warning, "Missing function index [%s] on table [%s] of entity [%s]", strings.ToUpper(fi.Name), key, e.Name)
			if r.opts.AddMissing {
				r.createFunctionIndex(e, fi)
			}
		}
	}
}

// runAction hands an index to the action that claimed it, if any.
func (r *run) runAction(e *model.Entity, name string, idx *model.Index, fi *model.FunctionIndex) bool {
	action := r.claims.lookup(e.Name, name)
	if action == nil {
		return false
	}
	key := r.tableKey(e)
	err := action.Run(r.ctx, ActionContext{
		Entity:        e,
		IndexName:     name,
		Index:         idx,
		FunctionIndex: fi,
		Dialect:       r.dialect,
		Builder:       r.builder,
		Executor:      r,
		Sink:          r.sink,
	})
	if err != nil {
		r.fail(err, "Action [%s] could not create index [%s] on table [%s]", action.Name(), strings.ToUpper(name), key)
		return true
	}
	report.Addf(r.sink, report.Important, "Action [%s] created index [%s] on table [%s]", action.Name(), strings.ToUpper(name), key)
	return true
}

func (r *run) createIndex(e *model.Entity, idx *model.Index) {
	if r.runAction(e, idx.Name, idx, nil) {
		return
	}
	name := strings.ToUpper(idx.Name)
	key := r.tableKey(e)
	stmt, err := r.builder.CreateIndex(e, idx)
	if err != nil {
		r.fail(err, "Could not create index [%s] on table [%s]", name, key)
		return
	}
	if r.execute(stmt, "create index ["+name+"] on table ["+key+"]") {
		report.Addf(r.sink, report.Important, "Created index [%s] on table [%s]", name, key)
	}
}

// createFunctionIndex indexes the expression directly where the dialect can,
// and otherwise adds the generated column first and indexes that.
func (r *run) createFunctionIndex(e *model.Entity, fi *model.FunctionIndex) {
	if r.runAction(e, fi.Name, nil, fi) {
		return
	}
	name := strings.ToUpper(fi.Name)
	key := r.tableKey(e)
	if !r.dialect.SupportsFunctionIndexes() && !r.dialect.SupportsGeneratedColumns() {
		report.Addf(r.sink, report.Warning, "Function index [%s] on table [%s] skipped: dialect [%s] supports neither expression indexes nor generated columns", name, key, r.dialect.Name)
		return
	}
	if !r.dialect.SupportsFunctionIndexes() {
		column := r.builder.VirtualColumnName(fi)
		if _, ok := r.columns[key][column]; !ok {
			stmt, err := r.builder.GeneratedColumn(e, fi)
			if err != nil {
				r.fail(err, "Could not add virtual column [%s] for function index [%s] on table [%s]", column, name, key)
				return
			}
			if !r.execute(stmt, "add virtual column ["+column+"] for function index ["+name+"] on table ["+key+"]") {
				return
			}
			report.Addf(r.sink, report.Important, "Added virtual column [%s] to table [%s]", column, key)
		}
	}
	stmt, err := r.builder.CreateFunctionIndex(e, fi)
	if errors.Is(err, ddl.ErrUnsupported) {
		report.Addf(r.sink, report.Warning, "Function index [%s] on table [%s] skipped: %v", name, key, err)
		return
	}
	if err != nil {
		r.fail(err, "Could not create function index [%s] on table [%s]", name, key)
		return
	}
	if r.execute(stmt, "create function index ["+name+"] on table ["+key+"]") {
		report.Addf(r.sink, report.Important, "Created function index [%s] on table [%s]", name, key)
	}
}
