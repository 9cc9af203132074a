package database

import (
	"sync"

	"gorm.io/gorm"
)

// A registered connection is identified by its name and the store file it
// points at, so two managers sharing a name never share a different file.
type registryKey struct {
	name string
	path string
}

type registryEntry struct {
	db   *gorm.DB
	refs int
}

// Registry tracks open connections so a manager recreated for the same
// store picks up the existing handle instead of opening a second one.
// Each manager holding a handle counts as one owner; the handle is closed
// when the last owner releases it.
type Registry struct {
	mu    sync.Mutex
	conns map[registryKey]*registryEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[registryKey]*registryEntry)}
}

// connections is the process-wide registry used when Options.Registry is nil.
var connections = NewRegistry()

// Retrieve returns the connection registered for name and path, if any,
// without taking ownership of it.
func (r *Registry) Retrieve(name, path string) (*gorm.DB, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[registryKey{name, path}]
	if !ok {
		return nil, false
	}
	return e.db, true
}

// Acquire returns the registered connection and records one more owner.
func (r *Registry) Acquire(name, path string) (*gorm.DB, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[registryKey{name, path}]
	if !ok {
		return nil, false
	}
	e.refs++
	return e.db, true
}

// Register stores a freshly opened connection with a single owner.
func (r *Registry) Register(name, path string, db *gorm.DB) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[registryKey{name, path}] = &registryEntry{db: db, refs: 1}
}

// Holds reports whether db is still the connection registered for name and
// path. A handle that was evicted must not be used again.
func (r *Registry) Holds(name, path string, db *gorm.DB) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[registryKey{name, path}]
	return ok && e.db == db
}

// Release drops one owner of db. The connection is closed once nobody owns
// it. Releasing a handle that was already evicted is a no-op.
func (r *Registry) Release(name, path string, db *gorm.DB) error {
	k := registryKey{name, path}

	r.mu.Lock()
	e, ok := r.conns[k]
	if !ok || e.db != db {
		r.mu.Unlock()
		return nil
	}
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return nil
	}
	delete(r.conns, k)
	r.mu.Unlock()

	return closeHandle(db)
}

// Evict unregisters the connection and closes it regardless of owners.
// Remaining owners notice through Holds and reconnect.
func (r *Registry) Evict(name, path string) error {
	k := registryKey{name, path}

	r.mu.Lock()
	e, ok := r.conns[k]
	delete(r.conns, k)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return closeHandle(e.db)
}

func closeHandle(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
