package reconcile

import (
	"go.uber.org/zap"
)

// Options selects what a CheckDB run may change. The zero value only reports.
type Options struct {
	// AddMissing creates missing tables, columns, foreign keys and indexes.
	AddMissing bool
	// Promote changes a column back to its declared type when the live type
	// is a sanctioned promotion of it.
	Promote bool
	// Widen enlarges columns to their declared size. Columns are never narrowed.
	Widen bool

	CheckForeignKeys bool
	CheckFKIndexes   bool
	CheckIndexes     bool

	CreateForeignKeysOnCreate bool
	CreateFKIndexesOnCreate   bool
	CreateIndexesOnCreate     bool
	// UseInlineForeignKeys declares foreign keys inside CREATE TABLE.
	UseInlineForeignKeys bool
}

// DefaultOptions creates what is missing and checks every kind of object,
// without promoting or widening.
func DefaultOptions() Options {
	return Options{
		AddMissing:                true,
		CheckForeignKeys:          true,
		CheckFKIndexes:            true,
		CheckIndexes:              true,
		CreateForeignKeysOnCreate: true,
		CreateFKIndexesOnCreate:   true,
		CreateIndexesOnCreate:     true,
	}
}

// ProgressFunc is called before each entity of the column phase.
type ProgressFunc func(done, total int, entity string)

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger used for executed statements.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProgress sets a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Reconciler) { r.progress = fn }
}

// WithIndexActions registers alternative index actions.
func WithIndexActions(actions ...IndexAction) Option {
	return func(r *Reconciler) { r.actions = append(r.actions, actions...) }
}
