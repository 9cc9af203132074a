package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultName is the connection name used when Options.Name is empty.
const DefaultName = "grocery_share"

// Opener opens a new handle to the store at path.
type Opener func(path string) (*gorm.DB, error)

type Options struct {
	// Name identifies the connection in the Registry.
	Name string
	Path string
	// BusyTimeout is how long SQLite waits on a locked database. Default: 5s
	BusyTimeout time.Duration
	// LogLevel controls gorm's SQL logging. Default: logger.Warn
	LogLevel logger.LogLevel
	// Opener overrides how handles are created.
	Opener Opener
	// Registry overrides the process-wide connection registry.
	Registry *Registry
}

// Result is what Execute reports about a mutating statement.
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// Manager owns the single handle to the store. The handle is opened lazily;
// concurrent callers that arrive while initialization is running wait for
// that attempt instead of starting their own.
type Manager struct {
	name     string
	path     string
	open     Opener
	registry *Registry

	group singleflight.Group
	mu    sync.RWMutex
	db    *gorm.DB
}

func NewManager(opts Options) *Manager {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.BusyTimeout == 0 {
		opts.BusyTimeout = 5 * time.Second
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}
	if opts.Opener == nil {
		opts.Opener = SQLiteOpener(opts.BusyTimeout, opts.LogLevel)
	}
	if opts.Registry == nil {
		opts.Registry = connections
	}
	return &Manager{
		name:     opts.Name,
		path:     opts.Path,
		open:     opts.Opener,
		registry: opts.Registry,
	}
}

// SQLiteOpener returns the default Opener. Foreign keys are enforced on
// every pooled connection through the DSN.
func SQLiteOpener(busyTimeout time.Duration, level logger.LogLevel) Opener {
	return func(path string) (*gorm.DB, error) {
		dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d", path, busyTimeout.Milliseconds())
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger: NewGormLogger(level),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)

		return db, nil
	}
}

// Ready reports whether initialization has completed successfully.
func (m *Manager) Ready() bool {
	return m.current() != nil
}

// Initialize opens (or reuses) the named connection and ensures the schema
// exists. It is safe to call repeatedly and concurrently. On failure the
// manager stays uninitialized and the next call starts over.
func (m *Manager) Initialize(ctx context.Context) error {
	_, err := m.DB(ctx)
	return err
}

// DB returns the ready handle, initializing the store first if needed.
func (m *Manager) DB(ctx context.Context) (*gorm.DB, error) {
	if db := m.current(); db != nil {
		return db.WithContext(ctx), nil
	}

	// The attempt is shared, so a single caller's cancellation must not abort it.
	ch := m.group.DoChan(m.name, func() (any, error) {
		return m.initialize(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*gorm.DB).WithContext(ctx), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// current returns the ready handle, or nil when the manager has to
// (re)initialize. A handle evicted from the registry by another manager is
// closed, so it is dropped here instead of being handed out.
func (m *Manager) current() *gorm.DB {
	m.mu.RLock()
	db := m.db
	m.mu.RUnlock()
	if db == nil || m.registry.Holds(m.name, m.path, db) {
		return db
	}

	m.mu.Lock()
	if m.db == db {
		m.db = nil
	}
	m.mu.Unlock()
	slog.Warn("connection was closed elsewhere, reconnecting", "name", m.name, "path", m.path)
	return nil
}

func (m *Manager) initialize(ctx context.Context) (*gorm.DB, error) {
	if db := m.current(); db != nil {
		return db, nil
	}

	db, err := m.connect(ctx)
	if err != nil {
		slog.Error("store initialization failed", "name", m.name, "step", "connect", "error", err)
		return nil, &InitError{Step: "connect", Err: err}
	}

	if err := ping(ctx, db); err != nil {
		m.discard()
		slog.Error("store initialization failed", "name", m.name, "step", "open", "error", err)
		return nil, &InitError{Step: "open", Err: err}
	}

	if err := ApplySchema(ctx, db); err != nil {
		m.discard()
		slog.Error("store initialization failed", "name", m.name, "step", "schema", "error", err)
		return nil, &InitError{Step: "schema", Err: err}
	}

	m.mu.Lock()
	m.db = db
	m.mu.Unlock()

	slog.Info("store ready", "name", m.name, "path", m.path)
	return db, nil
}

// connect reuses the connection registered for this name and path when it
// still answers, otherwise replaces it with a fresh one.
func (m *Manager) connect(ctx context.Context) (*gorm.DB, error) {
	if existing, ok := m.registry.Acquire(m.name, m.path); ok {
		err := ping(ctx, existing)
		if err == nil {
			slog.Debug("reusing existing connection", "name", m.name)
			return existing, nil
		}
		slog.Warn("existing connection unusable, recreating", "name", m.name, "error", err)
		if err := m.registry.Evict(m.name, m.path); err != nil {
			slog.Debug("closing stale connection", "name", m.name, "error", err)
		}
	}

	db, err := m.open(m.path)
	if err != nil {
		return nil, err
	}
	m.registry.Register(m.name, m.path, db)
	slog.Debug("created connection", "name", m.name, "path", m.path)
	return db, nil
}

// discard drops a half-initialized handle so nothing keeps pointing at it.
func (m *Manager) discard() {
	if err := m.registry.Evict(m.name, m.path); err != nil {
		slog.Debug("closing failed connection", "name", m.name, "error", err)
	}
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Ping initializes the store if needed and checks the handle is alive.
func (m *Manager) Ping(ctx context.Context) error {
	db, err := m.DB(ctx)
	if err != nil {
		return err
	}
	return ping(ctx, db)
}

// Execute runs a mutating statement.
func (m *Manager) Execute(ctx context.Context, stmt string, args ...any) (Result, error) {
	db, err := m.DB(ctx)
	if err != nil {
		return Result{}, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return Result{}, err
	}

	res, err := sqlDB.ExecContext(ctx, stmt, args...)
	if err != nil {
		return Result{}, Translate(err)
	}

	var out Result
	// SQLite always reports both values.
	out.LastInsertID, _ = res.LastInsertId()
	out.RowsAffected, _ = res.RowsAffected()
	return out, nil
}

// Query runs a read statement and scans every row into dest.
func (m *Manager) Query(ctx context.Context, dest any, stmt string, args ...any) error {
	db, err := m.DB(ctx)
	if err != nil {
		return err
	}
	return Translate(db.Raw(stmt, args...).Scan(dest).Error)
}

// Close releases this manager's hold on the handle. The connection itself is
// closed once no other manager uses it. A later call to DB opens the store
// again.
func (m *Manager) Close() error {
	m.mu.Lock()
	db := m.db
	m.db = nil
	m.mu.Unlock()

	if db == nil {
		return nil
	}
	return m.registry.Release(m.name, m.path, db)
}
