package products

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/grocery-share/internal/database"
)

func setupTestDB(t *testing.T) (*Repository, *database.Manager) {
	t.Helper()
	mgr := database.NewManager(database.Options{
		Name:     t.Name(),
		Path:     filepath.Join(t.TempDir(), "products.db"),
		LogLevel: logger.Silent,
		Registry: database.NewRegistry(),
	})
	t.Cleanup(func() { mgr.Close() })
	return NewRepository(mgr), mgr
}

func countByName(t *testing.T, mgr *database.Manager, name string) int64 {
	t.Helper()
	var counts []int64
	require.NoError(t, mgr.Query(context.Background(), &counts, "SELECT COUNT(*) FROM products WHERE name = ?", name))
	return counts[0]
}

func TestRepository_GetOrCreate_New(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	id, err := repo.GetOrCreate(ctx, "Milk")
	require.NoError(t, err)
	assert.NotZero(t, id)

	product, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Milk", product.Name)
}

func TestRepository_GetOrCreate_Existing(t *testing.T) {
	repo, mgr := setupTestDB(t)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, "Milk")
	require.NoError(t, err)
	second, err := repo.GetOrCreate(ctx, "Milk")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), countByName(t, mgr, "Milk"))
}

func TestRepository_GetOrCreate_CaseSensitive(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	lower, err := repo.GetOrCreate(ctx, "milk")
	require.NoError(t, err)
	upper, err := repo.GetOrCreate(ctx, "Milk")
	require.NoError(t, err)

	assert.NotEqual(t, lower, upper)
}

func TestRepository_GetOrCreate_Concurrent(t *testing.T) {
	repo, mgr := setupTestDB(t)
	ctx := context.Background()

	const callers = 10
	ids := make([]uint, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = repo.GetOrCreate(ctx, "Bread")
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, int64(1), countByName(t, mgr, "Bread"))
}

func TestRepository_GetOrCreate_RejectsEmptyName(t *testing.T) {
	repo, _ := setupTestDB(t)

	_, err := repo.GetOrCreate(context.Background(), "")

	assert.ErrorIs(t, err, database.ErrInvalidInput)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _ := setupTestDB(t)

	product, err := repo.GetByID(context.Background(), 7)

	require.NoError(t, err)
	assert.Nil(t, product)
}

func TestRepository_List(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"Tomato", "Apple", "Milk"} {
		_, err := repo.GetOrCreate(ctx, name)
		require.NoError(t, err)
	}

	products, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Apple", products[0].Name)
	assert.Equal(t, "Milk", products[1].Name)
	assert.Equal(t, "Tomato", products[2].Name)
}

func TestRepository_Search(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"Whole Milk", "Milk Chocolate", "Bread", "Oat milk"} {
		_, err := repo.GetOrCreate(ctx, name)
		require.NoError(t, err)
	}

	t.Run("case insensitive partial match", func(t *testing.T) {
		products, err := repo.Search(ctx, "MILK", 0)
		require.NoError(t, err)

		var names []string
		for _, p := range products {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{"Milk Chocolate", "Oat milk", "Whole Milk"}, names)
	})

	t.Run("respects limit", func(t *testing.T) {
		products, err := repo.Search(ctx, "milk", 2)
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("no match", func(t *testing.T) {
		products, err := repo.Search(ctx, "cheese", 0)
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}

func TestRepository_Search_WildcardsMatchLiterally(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"Milk", "Bread", "100% Juice", "snake_case", `C:\Bin`} {
		_, err := repo.GetOrCreate(ctx, name)
		require.NoError(t, err)
	}

	names := func(term string) []string {
		products, err := repo.Search(ctx, term, 0)
		require.NoError(t, err)
		var out []string
		for _, p := range products {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Equal(t, []string{"100% Juice"}, names("%"))
	assert.Equal(t, []string{"snake_case"}, names("_"))
	assert.Equal(t, []string{`C:\Bin`}, names(`\`))
}

func TestRepository_Search_DefaultLimit(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9", "a10", "a11", "a12"} {
		_, err := repo.GetOrCreate(ctx, name)
		require.NoError(t, err)
	}

	products, err := repo.Search(ctx, "a", 0)
	require.NoError(t, err)
	assert.Len(t, products, DefaultSearchLimit)
}

func TestRepository_DeleteOrphans(t *testing.T) {
	repo, mgr := setupTestDB(t)
	ctx := context.Background()

	used, err := repo.GetOrCreate(ctx, "Eggs")
	require.NoError(t, err)
	_, err = repo.GetOrCreate(ctx, "Caviar")
	require.NoError(t, err)

	res, err := mgr.Execute(ctx, "INSERT INTO purchases (establishment, created_at) VALUES (?, ?)", "Market", "2024-01-01T10:00:00.000Z")
	require.NoError(t, err)
	_, err = mgr.Execute(ctx, "INSERT INTO purchase_products (purchase_id, product_id) VALUES (?, ?)", res.LastInsertID, used)
	require.NoError(t, err)

	deleted, err := repo.DeleteOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	products, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Eggs", products[0].Name)
}

func TestRepository_Delete_CascadesToLineItems(t *testing.T) {
	repo, mgr := setupTestDB(t)
	ctx := context.Background()

	id, err := repo.GetOrCreate(ctx, "Eggs")
	require.NoError(t, err)
	res, err := mgr.Execute(ctx, "INSERT INTO purchases (establishment, created_at) VALUES (?, ?)", "Market", "2024-01-01T10:00:00.000Z")
	require.NoError(t, err)
	_, err = mgr.Execute(ctx, "INSERT INTO purchase_products (purchase_id, product_id, price) VALUES (?, ?, ?)", res.LastInsertID, id, 3.5)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))

	var remaining []int64
	require.NoError(t, mgr.Query(ctx, &remaining, "SELECT COUNT(*) FROM purchase_products"))
	assert.Equal(t, int64(0), remaining[0])
}
