package connector

import (
	"fmt"
	"sync"

	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
)

// Constructor builds a connector from its configuration.
type Constructor func(cfg Config, log *logger.Logger) Connector

// Registry manages the registration and retrieval of connector constructors.
type Registry struct {
	constructors map[dbcapabilities.DatabaseID]Constructor
	mu           sync.RWMutex
}

// NewRegistry creates a new connector registry.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[dbcapabilities.DatabaseID]Constructor),
	}
}

// Register registers a constructor for a connector type.
// If a constructor for the same type is already registered, it will be replaced.
func (r *Registry) Register(dbType dbcapabilities.DatabaseID, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.constructors[dbType] = ctor
}

// Get retrieves a registered constructor by connector type.
// Returns ErrConnectorNotFound if nothing is registered.
func (r *Registry) Get(dbType dbcapabilities.DatabaseID) (Constructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ctor, exists := r.constructors[dbType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrConnectorNotFound, dbType)
	}

	return ctor, nil
}

// GetByName retrieves a registered constructor by name or alias.
func (r *Registry) GetByName(name string) (Constructor, error) {
	dbType, ok := dbcapabilities.ParseID(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown connector type '%s'", ErrConnectorNotFound, name)
	}

	return r.Get(dbType)
}

// IsRegistered checks if a constructor is registered for the given type.
func (r *Registry) IsRegistered(dbType dbcapabilities.DatabaseID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.constructors[dbType]
	return exists
}

// ListRegistered returns the registered types in presentation order.
func (r *Registry) ListRegistered() []dbcapabilities.DatabaseID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]dbcapabilities.DatabaseID, 0, len(r.constructors))
	for _, id := range dbcapabilities.Supported {
		if _, ok := r.constructors[id]; ok {
			types = append(types, id)
		}
	}

	return types
}

// New builds a connector of the given type.
func (r *Registry) New(dbType dbcapabilities.DatabaseID, cfg Config, log *logger.Logger) (Connector, error) {
	ctor, err := r.Get(dbType)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return ctor(cfg, log), nil
}

// globalRegistry is the default registry backends register into from init.
var globalRegistry = NewRegistry()

// Register registers a constructor in the global registry.
func Register(dbType dbcapabilities.DatabaseID, ctor Constructor) {
	globalRegistry.Register(dbType, ctor)
}

// Default returns the global registry.
func Default() *Registry {
	return globalRegistry
}
