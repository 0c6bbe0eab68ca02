package database

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

func newTestDatabase(t *testing.T) (*Database, func()) {
	dbPath := "./test_database_" + t.Name() + ".db"

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestNewDatabaseSeedsPaymentItems(t *testing.T) {
	db, cleanup := newTestDatabase(t)
	defer cleanup()

	items, err := db.GetActivePaymentItems()
	require.NoError(t, err)
	require.Len(t, items, len(defaultPaymentItems))

	membership, err := db.GetPaymentItemByName("membership")
	require.NoError(t, err)
	assert.True(t, membership.IsCategoryBased)
	assert.True(t, membership.SupportsInstallments)
	assert.Equal(t, 3, membership.MaxInstallments)
	require.Len(t, membership.CategoryPrices, 3)

	prices := map[entities.Category]float64{}
	for _, p := range membership.CategoryPrices {
		prices[p.Category] = p.Amount
	}
	assert.Equal(t, 200.0, prices[entities.CategoryPupil])
	assert.Equal(t, 450.0, prices[entities.CategoryStudent])
	assert.Equal(t, 600.0, prices[entities.CategoryAdult])
}

func TestNewDatabaseSeedsBookCategories(t *testing.T) {
	db, cleanup := newTestDatabase(t)
	defer cleanup()

	var count int64
	require.NoError(t, db.DB.Model(&entities.BookCategory{}).Count(&count).Error)
	assert.Equal(t, int64(len(defaultBookCategories)), count)

	var dinosaurs entities.BookCategory
	require.NoError(t, db.DB.Where("name = ?", "Dinosaurs").First(&dinosaurs).Error)
	assert.Equal(t, entities.AudienceChildren, dinosaurs.Audience)
	assert.Equal(t, []string{"ORANGE", "BLUE"}, dinosaurs.Colors())
}

func TestSeedingIsIdempotent(t *testing.T) {
	dbPath := "./test_database_" + t.Name() + ".db"
	defer os.Remove(dbPath)

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening the same file must not duplicate the catalog of items.
	db, err = NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int64
	require.NoError(t, db.DB.Model(&entities.PaymentItem{}).Count(&count).Error)
	assert.Equal(t, int64(len(defaultPaymentItems)), count)

	require.NoError(t, db.DB.Model(&entities.BookCategory{}).Count(&count).Error)
	assert.Equal(t, int64(len(defaultBookCategories)), count)
}

func TestGetPaymentItemByName(t *testing.T) {
	db, cleanup := newTestDatabase(t)
	defer cleanup()

	item, err := db.GetPaymentItemByName("access")
	require.NoError(t, err)
	assert.Equal(t, 20.0, item.BaseAmount)
	assert.False(t, item.SupportsInstallments)

	_, err = db.GetPaymentItemByName("no_such_item")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	t.Run("inactive items are hidden", func(t *testing.T) {
		require.NoError(t, db.DB.Model(&entities.PaymentItem{}).
			Where("name = ?", "access").
			Update("is_active", false).Error)

		_, err := db.GetPaymentItemByName("access")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		items, err := db.GetActivePaymentItems()
		require.NoError(t, err)
		assert.Len(t, items, len(defaultPaymentItems)-1)
	})
}
