package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/alc6/kdb/config"
	"github.com/alc6/kdb/platforms"
)

// Binding ties a driver keyword to the factory and connector that serve it
type Binding struct {
	Name      string
	Factory   Factory
	Connector Connector
}

// KingbaseBindings binds the kdb and kingbase keywords to the Kingbase connection.
// The platform options, hooks included, apply to every connection built
// through these bindings.
func KingbaseBindings(opts ...platforms.Option) []Binding {
	connector := KdbConnector{}
	factory := KdbConnectionFactory(opts...)
	return []Binding{
		{Name: "kdb", Factory: factory, Connector: connector},
		{Name: "kingbase", Factory: factory, Connector: connector},
	}
}

// PostgresBindings binds the postgres and pgsql keywords to the generic connection.
func PostgresBindings(opts ...platforms.Option) []Binding {
	connector := KdbConnector{}
	factory := PostgresConnectionFactory(opts...)
	return []Binding{
		{Name: "postgres", Factory: factory, Connector: connector},
		{Name: "pgsql", Factory: factory, Connector: connector},
	}
}

// Resolver builds connections by driver keyword. It is immutable after construction.
type Resolver struct {
	logger   *slog.Logger
	bindings map[string]Binding
}

// NewResolver creates a resolver. A later binding with the same name replaces an earlier one.
func NewResolver(logger *slog.Logger, bindings ...Binding) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &Resolver{
		logger:   logger,
		bindings: make(map[string]Binding, len(bindings)),
	}
	for _, b := range bindings {
		r.bindings[strings.ToLower(b.Name)] = b
	}
	return r
}

// Resolve returns the binding for a driver keyword.
func (r *Resolver) Resolve(driverName string) (Binding, error) {
	b, ok := r.bindings[strings.ToLower(driverName)]
	if !ok {
		return Binding{}, &UnknownDriverError{Driver: driverName, Available: r.Drivers()}
	}
	return b, nil
}

// Connect opens the database for cfg and wraps it with the bound factory.
func (r *Resolver) Connect(ctx context.Context, cfg config.Connection) (*Connection, error) {
	cfg.ApplyDefaults()

	b, err := r.Resolve(cfg.Driver)
	if err != nil {
		return nil, err
	}

	connector := b.Connector
	if kc, ok := connector.(KdbConnector); ok && kc.Logger == nil {
		kc.Logger = r.logger
		connector = kc
	}

	db, err := connector.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect %s: %w", cfg.Name, err)
	}

	r.logger.Info("connected", "connection", cfg.Name, "driver", cfg.Driver)
	return b.Factory(db, cfg, r.logger.With("connection", cfg.Name)), nil
}

// Drivers returns the bound driver keywords, sorted.
func (r *Resolver) Drivers() []string {
	names := make([]string, 0, len(r.bindings))
	for name := range r.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownDriverError is returned when no binding exists for a driver keyword.
type UnknownDriverError struct {
	Driver    string
	Available []string
}

func (e *UnknownDriverError) Error() string {
	return fmt.Sprintf("unknown driver %q\nAvailable drivers: %v\nHint: check the driver of the connection in kdb.yaml", e.Driver, e.Available)
}
