package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/grocery-share/internal/database/people"
	"github.com/mrlokans/grocery-share/internal/database/products"
	"github.com/mrlokans/grocery-share/internal/database/purchases"
	"github.com/mrlokans/grocery-share/internal/services"
)

func TestInitStoreCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "grocery.db")

	cmd := NewInitStoreCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath}))
	require.NoError(t, cmd.Run())

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)

	// Running again is harmless.
	require.NoError(t, cmd.Run())
}

func TestSummaryCommand_ParseFlags(t *testing.T) {
	cmd := NewSummaryCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-purchase", "7", "-db", "x.db"}))

	assert.Equal(t, uint(7), cmd.PurchaseID)
	assert.Equal(t, "x.db", cmd.DatabasePath)

	assert.Error(t, NewSummaryCommand().ParseFlags(nil))
}

func seedPurchase(t *testing.T, dbPath string) uint {
	t.Helper()
	ctx := context.Background()

	store := openStore(dbPath)
	defer store.Close()

	peopleRepo := people.NewRepository(store)
	anna, err := peopleRepo.Insert(ctx, "Anna")
	require.NoError(t, err)
	ben, err := peopleRepo.Insert(ctx, "Ben")
	require.NoError(t, err)

	service := services.NewPurchaseService(purchases.NewRepository(store), products.NewRepository(store), nil)
	id, err := service.CreatePurchase(ctx, "Market", []uint{anna, ben})
	require.NoError(t, err)

	price := func(s string) decimal.NullDecimal {
		return decimal.NewNullDecimal(decimal.RequireFromString(s))
	}
	_, err = service.AddItem(ctx, id, "Bread", price("4"), nil)
	require.NoError(t, err)
	_, err = service.AddItem(ctx, id, "Wine", price("9"), &anna)
	require.NoError(t, err)
	_, err = service.AddItem(ctx, id, "Cheese", price("3"), &ben)
	require.NoError(t, err)
	_, err = service.AddItem(ctx, id, "Salt", decimal.NullDecimal{}, nil)
	require.NoError(t, err)
	return id
}

func TestSummaryCommand_Run(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "grocery.db")
	id := seedPurchase(t, dbPath)

	var out bytes.Buffer
	cmd := &SummaryCommand{DatabasePath: dbPath, PurchaseID: id, out: &out}
	require.NoError(t, cmd.Run())

	text := out.String()
	assert.Contains(t, text, "Purchase #1 at Market")
	assert.Contains(t, text, "Total: 16.00")
	assert.Regexp(t, `Anna\s+9.00\s+2.00\s+11.00`, text)
	assert.Regexp(t, `Ben\s+3.00\s+2.00\s+5.00`, text)
	assert.Regexp(t, `Salt\s+-\s+shared`, text)
	assert.Contains(t, text, "Items without a price: 1")
}

func TestSummaryCommand_NotFound(t *testing.T) {
	cmd := &SummaryCommand{DatabasePath: filepath.Join(t.TempDir(), "grocery.db"), PurchaseID: 99, out: &bytes.Buffer{}}

	assert.ErrorContains(t, cmd.Run(), "not found")
}
