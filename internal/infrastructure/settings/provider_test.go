package settings

import (
	"context"
	"testing"
	"time"

	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/infrastructure/config"
	"github.com/library/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSettingsTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SettingModel{}))
	return db
}

func newTestProvider(t *testing.T) (*DBSettingsProvider, *gorm.DB) {
	db := setupSettingsTestDB(t)
	return NewDBSettingsProvider(db, nil, 5*time.Minute, nil), db
}

func seedRow(t *testing.T, db *gorm.DB, key, value string) {
	t.Helper()
	require.NoError(t, db.Create(&models.SettingModel{Key: key, Value: value}).Error)
}

func TestDBSettingsProvider_GetDefaults(t *testing.T) {
	provider, _ := newTestProvider(t)

	settings, err := provider.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2.00", settings.FinePerDay.StringFixed(2))
	assert.Equal(t, 30, settings.MaxOverdueDays)
	assert.Equal(t, "50.00", settings.CreditLimit.StringFixed(2))
	assert.Equal(t, 30, settings.BanDurationDays)
}

func TestDBSettingsProvider_GetFromTable(t *testing.T) {
	provider, db := newTestProvider(t)

	seedRow(t, db, lending.SettingFinePerDay, "3.50")
	seedRow(t, db, lending.SettingMaxOverdueDays, "45")
	seedRow(t, db, lending.SettingCreditLimit, "100.00")
	seedRow(t, db, lending.SettingBanDurationDays, "14")

	settings, err := provider.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "3.50", settings.FinePerDay.StringFixed(2))
	assert.Equal(t, 45, settings.MaxOverdueDays)
	assert.Equal(t, "100.00", settings.CreditLimit.StringFixed(2))
	assert.Equal(t, 14, settings.BanDurationDays)
}

func TestDBSettingsProvider_InvalidValuesFallBack(t *testing.T) {
	provider, db := newTestProvider(t)

	seedRow(t, db, lending.SettingFinePerDay, "not-a-number")
	seedRow(t, db, lending.SettingMaxOverdueDays, "-5")
	seedRow(t, db, lending.SettingCreditLimit, "75.00")

	settings, err := provider.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2.00", settings.FinePerDay.StringFixed(2))
	assert.Equal(t, 30, settings.MaxOverdueDays)
	assert.Equal(t, "75.00", settings.CreditLimit.StringFixed(2))
}

func TestDBSettingsProvider_Seed(t *testing.T) {
	provider, db := newTestProvider(t)
	ctx := context.Background()

	cfg := config.LendingConfig{
		FinePerDay:      "2.00",
		MaxOverdueDays:  30,
		CreditLimit:     "50.00",
		BanDurationDays: 30,
	}

	require.NoError(t, provider.Seed(ctx, cfg))

	var count int64
	require.NoError(t, db.Model(&models.SettingModel{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)

	t.Run("does not overwrite existing rows", func(t *testing.T) {
		require.NoError(t, db.Model(&models.SettingModel{}).
			Where("key = ?", lending.SettingFinePerDay).
			Update("value", "9.99").Error)

		require.NoError(t, provider.Seed(ctx, cfg))

		var row models.SettingModel
		require.NoError(t, db.First(&row, "key = ?", lending.SettingFinePerDay).Error)
		assert.Equal(t, "9.99", row.Value)
	})

	t.Run("seeded values are readable", func(t *testing.T) {
		settings, err := provider.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "9.99", settings.FinePerDay.StringFixed(2))
	})
}

func TestDBSettingsProvider_InvalidateWithoutRedis(t *testing.T) {
	provider, _ := newTestProvider(t)
	assert.NoError(t, provider.Invalidate(context.Background()))
}
