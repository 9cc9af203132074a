package purchases

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/grocery-share/internal/database"
	"github.com/mrlokans/grocery-share/internal/database/people"
	"github.com/mrlokans/grocery-share/internal/database/products"
	"github.com/mrlokans/grocery-share/internal/entities"
)

type fixture struct {
	repo     *Repository
	people   *people.Repository
	products *products.Repository
	mgr      *database.Manager
}

func setupTestDB(t *testing.T) *fixture {
	t.Helper()
	mgr := database.NewManager(database.Options{
		Name:     t.Name(),
		Path:     filepath.Join(t.TempDir(), "purchases.db"),
		LogLevel: logger.Silent,
		Registry: database.NewRegistry(),
	})
	t.Cleanup(func() { mgr.Close() })
	return &fixture{
		repo:     NewRepository(mgr),
		people:   people.NewRepository(mgr),
		products: products.NewRepository(mgr),
		mgr:      mgr,
	}
}

func (f *fixture) person(t *testing.T, name string) uint {
	t.Helper()
	id, err := f.people.Insert(context.Background(), name)
	require.NoError(t, err)
	return id
}

func (f *fixture) product(t *testing.T, name string) uint {
	t.Helper()
	id, err := f.products.GetOrCreate(context.Background(), name)
	require.NoError(t, err)
	return id
}

func (f *fixture) count(t *testing.T, stmt string, args ...any) int64 {
	t.Helper()
	var counts []int64
	require.NoError(t, f.mgr.Query(context.Background(), &counts, stmt, args...))
	return counts[0]
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func TestRepository_Create(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	ana, bruno := f.person(t, "Ana"), f.person(t, "Bruno")

	id, err := f.repo.Create(ctx, " Farmers Market ", []uint{bruno, ana, bruno})
	require.NoError(t, err)

	purchase, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, purchase)

	assert.Equal(t, "Farmers Market", purchase.Establishment)
	assert.False(t, purchase.IsCompleted)
	assert.False(t, purchase.CreatedAt.IsZero())
	assert.ElementsMatch(t, []uint{ana, bruno}, purchase.ParticipantIDs)
}

func TestRepository_Create_RejectsEmptyEstablishment(t *testing.T) {
	f := setupTestDB(t)

	_, err := f.repo.Create(context.Background(), "  ", nil)

	assert.ErrorIs(t, err, database.ErrInvalidInput)
}

func TestRepository_Create_UnknownParticipantRollsBack(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	ana := f.person(t, "Ana")

	_, err := f.repo.Create(ctx, "Market", []uint{ana, 999})

	assert.ErrorIs(t, err, database.ErrConstraint)
	assert.Equal(t, int64(0), f.count(t, "SELECT COUNT(*) FROM purchases"))
	assert.Equal(t, int64(0), f.count(t, "SELECT COUNT(*) FROM purchase_people"))
}

func TestRepository_CreatedAtStoredAsISOText(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	f.repo.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 123456789, time.UTC) }

	_, err := f.repo.Create(ctx, "Market", nil)
	require.NoError(t, err)

	var stored []string
	require.NoError(t, f.mgr.Query(ctx, &stored, "SELECT created_at FROM purchases"))
	assert.Equal(t, []string{"2024-03-09T14:05:07.123Z"}, stored)
}

func TestRepository_GetAll_NewestFirst(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	f.repo.now = fixedClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	ana, bruno := f.person(t, "Ana"), f.person(t, "Bruno")

	first, err := f.repo.Create(ctx, "Bakery", []uint{ana})
	require.NoError(t, err)
	second, err := f.repo.Create(ctx, "Market", []uint{ana, bruno})
	require.NoError(t, err)
	third, err := f.repo.Create(ctx, "Butcher", nil)
	require.NoError(t, err)

	all, err := f.repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, third, all[0].ID)
	assert.Equal(t, second, all[1].ID)
	assert.Equal(t, first, all[2].ID)
	assert.Equal(t, []uint{}, all[0].ParticipantIDs)
	assert.Equal(t, []uint{ana, bruno}, all[1].ParticipantIDs)
	assert.Equal(t, []uint{ana}, all[2].ParticipantIDs)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	f := setupTestDB(t)

	purchase, err := f.repo.GetByID(context.Background(), 12)

	require.NoError(t, err)
	assert.Nil(t, purchase)
}

func TestRepository_Complete(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()

	id, err := f.repo.Create(ctx, "Market", nil)
	require.NoError(t, err)
	require.NoError(t, f.repo.Complete(ctx, id))

	purchase, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, purchase.IsCompleted)
}

func TestRepository_UpdateEstablishment(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()

	id, err := f.repo.Create(ctx, "Market", nil)
	require.NoError(t, err)
	before, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)

	require.NoError(t, f.repo.UpdateEstablishment(ctx, id, "Supermarket"))

	after, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Supermarket", after.Establishment)
	assert.Equal(t, before.CreatedAt.String(), after.CreatedAt.String())

	assert.ErrorIs(t, f.repo.UpdateEstablishment(ctx, id, ""), database.ErrInvalidInput)
}

func TestRepository_Participants(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	ana, bruno := f.person(t, "Ana"), f.person(t, "Bruno")

	id, err := f.repo.Create(ctx, "Market", []uint{ana})
	require.NoError(t, err)

	require.NoError(t, f.repo.AddParticipant(ctx, id, bruno))
	require.NoError(t, f.repo.AddParticipant(ctx, id, bruno))

	purchase, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []uint{ana, bruno}, purchase.ParticipantIDs)

	require.NoError(t, f.repo.RemoveParticipant(ctx, id, ana))

	purchase, err = f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []uint{bruno}, purchase.ParticipantIDs)

	assert.ErrorIs(t, f.repo.AddParticipant(ctx, id, 404), database.ErrConstraint)
}

func TestRepository_Delete_Cascades(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	ana := f.person(t, "Ana")
	milk := f.product(t, "Milk")

	id, err := f.repo.Create(ctx, "Market", []uint{ana})
	require.NoError(t, err)
	_, err = f.repo.AddLineItem(ctx, id, LineItemInput{ProductID: milk, Price: price("2.50")})
	require.NoError(t, err)
	_, err = f.repo.AddLineItem(ctx, id, LineItemInput{ProductID: milk, SplitMode: entities.SplitAssigned, PersonID: &ana})
	require.NoError(t, err)

	require.NoError(t, f.repo.Delete(ctx, id))

	purchase, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, purchase)
	assert.Equal(t, int64(0), f.count(t, "SELECT COUNT(*) FROM purchase_people"))
	assert.Equal(t, int64(0), f.count(t, "SELECT COUNT(*) FROM purchase_products"))
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) FROM people"))
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) FROM products"))
}

func TestRepository_DeletePerson_NullsAssignment(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	ana, bruno := f.person(t, "Ana"), f.person(t, "Bruno")
	milk := f.product(t, "Milk")

	id, err := f.repo.Create(ctx, "Market", []uint{ana, bruno})
	require.NoError(t, err)
	itemID, err := f.repo.AddLineItem(ctx, id, LineItemInput{
		ProductID: milk,
		Price:     price("6"),
		SplitMode: entities.SplitAssigned,
		PersonID:  &ana,
	})
	require.NoError(t, err)

	require.NoError(t, f.people.Delete(ctx, ana))

	item, err := f.repo.GetLineItem(ctx, itemID)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Nil(t, item.PersonID)
	assert.Equal(t, entities.SplitAssigned, item.SplitMode)

	purchase, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []uint{bruno}, purchase.ParticipantIDs)
}

func TestRepository_RecentEstablishments(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	f.repo.now = fixedClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	for _, name := range []string{"Bakery", "Market", "Bakery", "Butcher", "Pharmacy"} {
		_, err := f.repo.Create(ctx, name, nil)
		require.NoError(t, err)
	}

	names, err := f.repo.RecentEstablishments(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pharmacy", "Butcher", "Bakery", "Market"}, names)

	names, err = f.repo.RecentEstablishments(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pharmacy", "Butcher"}, names)
}

func TestRepository_RecentEstablishments_Empty(t *testing.T) {
	f := setupTestDB(t)

	names, err := f.repo.RecentEstablishments(context.Background(), 5)

	require.NoError(t, err)
	assert.Empty(t, names)
}
