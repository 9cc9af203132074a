package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// countingOpener opens real SQLite handles and counts how often it is called.
type countingOpener struct {
	calls   atomic.Int32
	release chan struct{}
	fail    atomic.Bool
}

func newCountingOpener() *countingOpener {
	o := &countingOpener{release: make(chan struct{})}
	close(o.release)
	return o
}

func (o *countingOpener) Open(path string) (*gorm.DB, error) {
	o.calls.Add(1)
	<-o.release
	if o.fail.Load() {
		return nil, errors.New("disk unavailable")
	}
	return SQLiteOpener(time.Second, logger.Silent)(path)
}

func setupTestManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	if opts.Path == "" {
		opts.Path = filepath.Join(t.TempDir(), "test.db")
	}
	if opts.Name == "" {
		opts.Name = t.Name()
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	opts.LogLevel = logger.Silent

	mgr := NewManager(opts)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func tableNames(t *testing.T, mgr *Manager) []string {
	t.Helper()
	var names []string
	err := mgr.Query(context.Background(), &names,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	require.NoError(t, err)
	return names
}

func TestManager_InitializeCreatesSchema(t *testing.T) {
	mgr := setupTestManager(t, Options{})
	assert.False(t, mgr.Ready())

	require.NoError(t, mgr.Initialize(context.Background()))

	assert.True(t, mgr.Ready())
	assert.Equal(t, []string{
		"people", "products", "purchase_people", "purchase_products", "purchases", "settings",
	}, tableNames(t, mgr))
}

func TestApplySchema_Idempotent(t *testing.T) {
	ctx := context.Background()
	mgr := setupTestManager(t, Options{})

	db, err := mgr.DB(ctx)
	require.NoError(t, err)

	var before []string
	require.NoError(t, db.Raw("SELECT sql FROM sqlite_master WHERE sql IS NOT NULL ORDER BY name").Scan(&before).Error)

	require.NoError(t, ApplySchema(ctx, db))
	require.NoError(t, ApplySchema(ctx, db))

	var after []string
	require.NoError(t, db.Raw("SELECT sql FROM sqlite_master WHERE sql IS NOT NULL ORDER BY name").Scan(&after).Error)
	assert.Equal(t, before, after)
}

func TestManager_SingleFlight(t *testing.T) {
	opener := &countingOpener{release: make(chan struct{})}
	mgr := setupTestManager(t, Options{Opener: opener.Open})

	const callers = 16
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			errs[i] = mgr.Initialize(context.Background())
		}(i)
	}

	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(opener.release)
	done.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), opener.calls.Load())
	assert.True(t, mgr.Ready())
}

func TestManager_SingleFlightFailure(t *testing.T) {
	opener := &countingOpener{release: make(chan struct{})}
	opener.fail.Store(true)
	mgr := setupTestManager(t, Options{Opener: opener.Open})

	const callers = 8
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			errs[i] = mgr.Initialize(context.Background())
		}(i)
	}

	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(opener.release)
	done.Wait()

	assert.Equal(t, int32(1), opener.calls.Load())
	assert.False(t, mgr.Ready())

	var initErr *InitError
	require.ErrorAs(t, errs[0], &initErr)
	assert.Equal(t, "connect", initErr.Step)
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrInitialization)
		assert.Same(t, initErr, err)
	}

	// The next call starts a fresh attempt.
	opener.fail.Store(false)
	require.NoError(t, mgr.Initialize(context.Background()))
	assert.Equal(t, int32(2), opener.calls.Load())
	assert.True(t, mgr.Ready())
}

func TestManager_FailedOpenClearsHandle(t *testing.T) {
	registry := NewRegistry()
	closedOpener := func(path string) (*gorm.DB, error) {
		db, err := SQLiteOpener(time.Second, logger.Silent)(path)
		if err != nil {
			return nil, err
		}
		sqlDB, _ := db.DB()
		sqlDB.Close()
		return db, nil
	}
	path := filepath.Join(t.TempDir(), "closed.db")
	mgr := setupTestManager(t, Options{Name: "closed", Path: path, Opener: closedOpener, Registry: registry})

	err := mgr.Initialize(context.Background())

	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "open", initErr.Step)
	assert.False(t, mgr.Ready())

	_, registered := registry.Retrieve("closed", path)
	assert.False(t, registered)
}

func TestManager_ReusesRegisteredConnection(t *testing.T) {
	registry := NewRegistry()
	opener := newCountingOpener()
	path := filepath.Join(t.TempDir(), "shared.db")

	first := setupTestManager(t, Options{Name: "shared", Path: path, Opener: opener.Open, Registry: registry})
	require.NoError(t, first.Initialize(context.Background()))

	second := NewManager(Options{Name: "shared", Path: path, Opener: opener.Open, Registry: registry})
	require.NoError(t, second.Initialize(context.Background()))

	assert.Equal(t, int32(1), opener.calls.Load())
}

func TestManager_RecreatesStaleConnection(t *testing.T) {
	registry := NewRegistry()
	path := filepath.Join(t.TempDir(), "stale.db")

	stale, err := SQLiteOpener(time.Second, logger.Silent)(path)
	require.NoError(t, err)
	sqlDB, _ := stale.DB()
	require.NoError(t, sqlDB.Close())
	registry.Register("stale", path, stale)

	opener := newCountingOpener()
	mgr := setupTestManager(t, Options{Name: "stale", Path: path, Opener: opener.Open, Registry: registry})

	require.NoError(t, mgr.Initialize(context.Background()))
	assert.Equal(t, int32(1), opener.calls.Load())

	current, ok := registry.Retrieve("stale", path)
	require.True(t, ok)
	assert.NotSame(t, stale, current)
}

func TestManager_SameNameDifferentPath(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	dir := t.TempDir()

	a := setupTestManager(t, Options{Name: "shared", Path: filepath.Join(dir, "a.db"), Registry: registry})
	b := setupTestManager(t, Options{Name: "shared", Path: filepath.Join(dir, "b.db"), Registry: registry})

	_, err := a.Execute(ctx, "INSERT INTO people (name) VALUES (?)", "in-a")
	require.NoError(t, err)
	_, err = b.Execute(ctx, "INSERT INTO people (name) VALUES (?)", "in-b")
	require.NoError(t, err)

	var fromA, fromB []string
	require.NoError(t, a.Query(ctx, &fromA, "SELECT name FROM people"))
	require.NoError(t, b.Query(ctx, &fromB, "SELECT name FROM people"))
	assert.Equal(t, []string{"in-a"}, fromA)
	assert.Equal(t, []string{"in-b"}, fromB)
}

func TestManager_CloseKeepsSharedConnectionOpen(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	opener := newCountingOpener()
	path := filepath.Join(t.TempDir(), "shared.db")

	a := setupTestManager(t, Options{Name: "shared", Path: path, Opener: opener.Open, Registry: registry})
	b := setupTestManager(t, Options{Name: "shared", Path: path, Opener: opener.Open, Registry: registry})
	require.NoError(t, a.Initialize(ctx))
	require.NoError(t, b.Initialize(ctx))

	require.NoError(t, a.Close())

	assert.True(t, b.Ready())
	_, err := b.Execute(ctx, "INSERT INTO people (name) VALUES (?)", "Ana")
	require.NoError(t, err)
	assert.Equal(t, int32(1), opener.calls.Load())

	require.NoError(t, b.Close())
	_, registered := registry.Retrieve("shared", path)
	assert.False(t, registered)
}

func TestManager_ReconnectsAfterEviction(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	opener := newCountingOpener()
	path := filepath.Join(t.TempDir(), "evicted.db")

	mgr := setupTestManager(t, Options{Name: "evicted", Path: path, Opener: opener.Open, Registry: registry})
	require.NoError(t, mgr.Initialize(ctx))

	require.NoError(t, registry.Evict("evicted", path))
	assert.False(t, mgr.Ready())

	_, err := mgr.Execute(ctx, "INSERT INTO people (name) VALUES (?)", "Ana")
	require.NoError(t, err)
	assert.True(t, mgr.Ready())
	assert.Equal(t, int32(2), opener.calls.Load())
}

func TestManager_ExecuteAndQuery(t *testing.T) {
	ctx := context.Background()
	mgr := setupTestManager(t, Options{})

	// Execute initializes the store on first use.
	res, err := mgr.Execute(ctx, "INSERT INTO people (name) VALUES (?)", "Ana")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.LastInsertID)
	assert.Equal(t, int64(1), res.RowsAffected)

	res, err = mgr.Execute(ctx, "INSERT INTO people (name) VALUES (?)", "Bruno")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.LastInsertID)

	var names []string
	require.NoError(t, mgr.Query(ctx, &names, "SELECT name FROM people ORDER BY name DESC"))
	assert.Equal(t, []string{"Bruno", "Ana"}, names)

	var none []string
	require.NoError(t, mgr.Query(ctx, &none, "SELECT name FROM people WHERE id = ?", 99))
	assert.Empty(t, none)
}

func TestManager_ForeignKeyViolation(t *testing.T) {
	ctx := context.Background()
	mgr := setupTestManager(t, Options{})

	_, err := mgr.Execute(ctx, "INSERT INTO purchase_people (purchase_id, person_id) VALUES (?, ?)", 41, 42)

	assert.ErrorIs(t, err, ErrConstraint)
}

func TestManager_UniqueViolation(t *testing.T) {
	ctx := context.Background()
	mgr := setupTestManager(t, Options{})

	_, err := mgr.Execute(ctx, "INSERT INTO products (name) VALUES (?)", "Milk")
	require.NoError(t, err)
	_, err = mgr.Execute(ctx, "INSERT INTO products (name) VALUES (?)", "Milk")

	assert.ErrorIs(t, err, ErrConstraint)
	assert.True(t, IsUniqueViolation(err))
}

func TestManager_CloseAndReopen(t *testing.T) {
	ctx := context.Background()
	opener := newCountingOpener()
	mgr := setupTestManager(t, Options{Opener: opener.Open})

	_, err := mgr.Execute(ctx, "INSERT INTO settings (key, value) VALUES (?, ?)", "theme", "dark")
	require.NoError(t, err)
	require.NoError(t, mgr.Close())
	assert.False(t, mgr.Ready())

	var values []string
	require.NoError(t, mgr.Query(ctx, &values, "SELECT value FROM settings WHERE key = ?", "theme"))
	assert.Equal(t, []string{"dark"}, values)
	assert.Equal(t, int32(2), opener.calls.Load())
}

func TestManager_WaiterCancellation(t *testing.T) {
	opener := &countingOpener{release: make(chan struct{})}
	mgr := setupTestManager(t, Options{Opener: opener.Open})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(opener.release)
	}()

	err := mgr.Initialize(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// The shared attempt still completes for everyone else.
	require.NoError(t, mgr.Initialize(context.Background()))
	assert.Equal(t, int32(1), opener.calls.Load())
}

func TestTranslate_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, Translate(plain))
	assert.NoError(t, Translate(nil))
	assert.False(t, IsUniqueViolation(plain))
}
