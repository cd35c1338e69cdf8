package reconcile

import (
	"sort"
	"strings"

	"db-reconcile/internal/model"
	"db-reconcile/internal/report"
)

// foreignKeyRelations are the "one" relations whose target is a table known
// to the model.
func (r *run) foreignKeyRelations(e *model.Entity) []*model.Relation {
	var out []*model.Relation
	for _, rel := range e.OneRelations() {
		related := r.builder.Related(rel)
		if related == nil || related.View {
			continue
		}
		out = append(out, rel)
	}
	return out
}

func (r *run) createForeignKey(e *model.Entity, rel *model.Relation) {
	name := r.builder.FKConstraintName(rel)
	key := r.tableKey(e)
	stmt, err := r.builder.AddForeignKey(e, rel)
	if err != nil {
		r.fail(err, "Could not create foreign key [%s] on table [%s]", name, key)
		return
	}
	if r.execute(stmt, "create foreign key ["+name+"] on table ["+key+"]") {
		report.Addf(r.sink, report.Important, "Created foreign key [%s] on table [%s]", name, key)
	}
}

func (r *run) createFKIndex(e *model.Entity, rel *model.Relation) {
	name := r.builder.FKIndexName(rel)
	key := r.tableKey(e)
	stmt, err := r.builder.CreateFKIndex(e, rel)
	if err != nil {
		r.fail(err, "Could not create foreign key index [%s] on table [%s]", name, key)
		return
	}
	if r.execute(stmt, "create foreign key index ["+name+"] on table ["+key+"]") {
		report.Addf(r.sink, report.Important, "Created foreign key index [%s] on table [%s]", name, key)
	}
}

// checkForeignKeys compares constraints by name only. A live constraint
// whose columns differ from the relation's is still a match.
func (r *run) checkForeignKeys() {
	if !r.dialect.ForeignKeyNames || !r.dialect.AlterForeignKeys {
		report.Addf(r.sink, report.Warning, "Dialect [%s] cannot check foreign keys by name, skipping foreign key check", r.dialect.Name)
		return
	}
	tables, entities := r.checkedTables(r.fksHandled)
	live, err := r.introspector.ListForeignKeys(r.ctx, tables, r.sink)
	if err != nil {
		return
	}
	unknown := map[string]map[string]bool{}
	for key, fks := range live {
		if !tables.Has(key) {
			continue
		}
		unknown[key] = map[string]bool{}
		for name := range fks {
			unknown[key][name] = true
		}
	}

	for _, e := range entities {
		key := r.tableKey(e)
		for _, rel := range r.foreignKeyRelations(e) {
			name := r.builder.FKConstraintName(rel)
			if unknown[key][name] {
				delete(unknown[key], name)
				continue
			}
			report.Addf(r.sink, report.Warning, "Missing foreign key [%s] on table [%s] of entity [%s]", name, key, e.Name)
			if r.opts.AddMissing {
				r.createForeignKey(e, rel)
			}
		}
	}
	reportUnknown(r.sink, "foreign key", unknown)
}

// checkFKIndexes compares the indexes backing "one" relations by name. A
// table with no index at all gets every FK index.
func (r *run) checkFKIndexes() {
	tables, entities := r.checkedTables(r.fkIdxHandled)
	live, err := r.introspector.ListIndexes(r.ctx, tables, false, r.sink)
	if err != nil {
		return
	}
	unknown := map[string]map[string]bool{}
	for _, e := range entities {
		key := r.tableKey(e)
		indexes := live[key]
		known := r.declaredIndexNames(e)

		rels := e.OneRelations()
		if len(indexes) == 0 {
			for _, rel := range rels {
				r.createFKIndex(e, rel)
			}
			continue
		}
		for _, rel := range rels {
			name := r.builder.FKIndexName(rel)
			known[name] = true
			if _, ok := indexes[name]; ok {
				continue
			}
			report.Addf(r.sink, report.Warning, "Missing foreign key index [%s] on table [%s] of entity [%s]", name, key, e.Name)
			if r.opts.AddMissing {
				r.createFKIndex(e, rel)
			}
		}
		for name := range indexes {
			if known[name] {
				continue
			}
			if unknown[key] == nil {
				unknown[key] = map[string]bool{}
			}
			unknown[key][name] = true
		}
	}
	reportUnknown(r.sink, "index", unknown)
}

// declaredIndexNames returns the upper-cased names of an entity's declared
// and function indexes.
func (r *run) declaredIndexNames(e *model.Entity) map[string]bool {
	names := map[string]bool{}
	for _, idx := range e.Indexes {
		names[strings.ToUpper(idx.Name)] = true
	}
	for _, fi := range e.FunctionIndexes {
		names[strings.ToUpper(fi.Name)] = true
	}
	return names
}

// reportUnknown lists live objects without a model counterpart. They are
// never dropped.
func reportUnknown(sink report.Sink, kind string, unknown map[string]map[string]bool) {
	tables := make([]string, 0, len(unknown))
	for key := range unknown {
		tables = append(tables, key)
	}
	sort.Strings(tables)
	for _, key := range tables {
		names := make([]string, 0, len(unknown[key]))
		for name := range unknown[key] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			report.Addf(sink, report.Info, "Unknown %s [%s] on table [%s]", kind, name, key)
		}
	}
}
