package dialect

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNotFound is returned when no registered dialect matches a connection.
var ErrNotFound = errors.New("dialect not found")

// Registry is an ordered list of dialects. Detection returns the first match,
// so dialects sharing a product must be registered most specific first.
type Registry struct {
	dialects []*Dialect
	logger   *zap.Logger
}

// NewRegistry returns a registry holding dialects in the given order.
func NewRegistry(logger *zap.Logger, dialects ...*Dialect) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{logger: logger}
	for _, d := range dialects {
		r.Register(d)
	}
	return r
}

// Default returns a registry of every built-in dialect in detection order.
func Default(logger *zap.Logger) *Registry {
	return NewRegistry(logger,
		Postgres72(),
		Postgres(),
		Cockroach(),
		MariaDB(),
		MySQL57(),
		MySQL(),
		MSSQL(),
		Sybase(),
		Oracle8(),
		Oracle(),
		DB2(),
		Derby(),
		HSQL(),
		H2(),
		Firebird(),
		Informix(),
		SQLite(),
	)
}

// Register appends d. Registering a name twice keeps the first registration.
func (r *Registry) Register(d *Dialect) {
	if r.Lookup(d.Name) != nil {
		return
	}
	r.dialects = append(r.dialects, d)
}

// Lookup returns the dialect registered under name, or nil.
func (r *Registry) Lookup(name string) *Dialect {
	for _, d := range r.dialects {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Dialects returns the registered dialects in detection order.
func (r *Registry) Dialects() []*Dialect {
	out := make([]*Dialect, len(r.dialects))
	copy(out, r.dialects)
	return out
}

// Detect returns the first registered dialect matching the probe.
func (r *Registry) Detect(p Probe) (*Dialect, error) {
	for _, d := range r.dialects {
		if d.Matches(p) {
			return d, nil
		}
	}
	r.logger.Warn("no dialect matches connection",
		zap.String("product", p.ProductName),
		zap.String("productVersion", p.ProductVersion),
		zap.String("driver", p.DriverName),
		zap.Int("major", p.Major),
		zap.Int("minor", p.Minor),
	)
	return nil, fmt.Errorf("%w: product %q version %q driver %q", ErrNotFound, p.ProductName, p.ProductVersion, p.DriverName)
}
