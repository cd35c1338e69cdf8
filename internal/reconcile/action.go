package reconcile

import (
	"context"
	"fmt"
	"strings"

	"db-reconcile/internal/ddl"
	"db-reconcile/internal/dialect"
	"db-reconcile/internal/model"
	"db-reconcile/internal/report"
)

// IndexAction creates one index of an entity by its own means instead of
// the generic CREATE INDEX. ShouldRun must be free of side effects: it is
// called on every run and for every index while validating.
//
// An action that claims an index is solely responsible for it. If Run does
// not leave an index of that name behind, the index is reported missing
// and the action runs again next time.
type IndexAction interface {
	Name() string
	ShouldRun(e *model.Entity, indexName string) bool
	Run(ctx context.Context, ac ActionContext) error
}

// ActionContext is what an IndexAction gets to work with.
type ActionContext struct {
	Entity    *model.Entity
	IndexName string
	// Index is nil when the claimed index is a function index.
	Index         *model.Index
	FunctionIndex *model.FunctionIndex
	Dialect       *dialect.Dialect
	Builder       *ddl.Builder
	Executor      Executor
	Sink          report.Sink
}

// TemplateIndexAction creates one named index with a dialect specific
// statement, for indexes that need options the generic template lacks.
type TemplateIndexAction struct {
	ActionName string
	EntityName string
	Index      string
	Statement  dialect.Template
}

func (a *TemplateIndexAction) Name() string { return a.ActionName }

func (a *TemplateIndexAction) ShouldRun(e *model.Entity, indexName string) bool {
	return e.Name == a.EntityName && strings.EqualFold(indexName, a.Index)
}

// Run renders Statement with {table} and {index} bound.
func (a *TemplateIndexAction) Run(ctx context.Context, ac ActionContext) error {
	stmt := a.Statement.Render(dialect.Vars{
		"table": ac.Builder.TableName(ac.Entity),
		"index": ac.Builder.IndexName(strings.ToUpper(ac.IndexName)),
	})
	if _, err := ac.Executor.ExecDDL(ctx, stmt); err != nil {
		return fmt.Errorf("action %s: %w", a.ActionName, err)
	}
	return nil
}

// claims maps entity name to upper-case index name to the claiming action.
type claims map[string]map[string]IndexAction

func (c claims) lookup(entity, index string) IndexAction {
	return c[entity][strings.ToUpper(index)]
}

// resolveClaims asks every action about every index. At most one action may
// claim indexes of a given entity; a second one is a configuration error.
func resolveClaims(actions []IndexAction, entities []*model.Entity) (claims, error) {
	out := claims{}
	if len(actions) == 0 {
		return out, nil
	}
	for _, e := range entities {
		var names []string
		for _, idx := range e.Indexes {
			names = append(names, idx.Name)
		}
		for _, fi := range e.FunctionIndexes {
			names = append(names, fi.Name)
		}
		var claimant IndexAction
		var claimed string
		for _, name := range names {
			for _, a := range actions {
				if !a.ShouldRun(e, name) {
					continue
				}
				if claimant != nil && claimant.Name() != a.Name() {
					reason := fmt.Sprintf("index %s is claimed by both %s and %s", name, claimant.Name(), a.Name())
					if !strings.EqualFold(claimed, name) {
						reason = fmt.Sprintf("indexes %s and %s are claimed by both %s and %s", claimed, name, claimant.Name(), a.Name())
					}
					return nil, &ConfigurationError{Entity: e.Name, Reason: reason}
				}
				if claimant == nil {
					claimant, claimed = a, name
				}
				if out[e.Name] == nil {
					out[e.Name] = map[string]IndexAction{}
				}
				out[e.Name][strings.ToUpper(name)] = a
			}
		}
	}
	return out, nil
}
