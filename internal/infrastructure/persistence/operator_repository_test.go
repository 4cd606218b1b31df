package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/identity"
	"github.com/library/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOperatorTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.OperatorModel{}))
	return db
}

func TestGormOperatorRepository_CreateAndFind(t *testing.T) {
	db := setupOperatorTestDB(t)
	repo := NewGormOperatorRepository(db)
	ctx := context.Background()

	operator, err := identity.NewOperator("desk1", "Front Desk 1")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, operator))

	t.Run("by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, operator.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "desk1", found.Username)
		assert.True(t, found.IsActive())
	})

	t.Run("by username is case-insensitive", func(t *testing.T) {
		found, err := repo.FindByUsername(ctx, "  DESK1 ")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, operator.ID, found.ID)
	})

	t.Run("missing returns nil", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormOperatorRepository_Update(t *testing.T) {
	db := setupOperatorTestDB(t)
	repo := NewGormOperatorRepository(db)
	ctx := context.Background()

	operator, err := identity.NewOperator("desk2", "Front Desk 2")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, operator))

	operator.Deactivate()
	require.NoError(t, repo.Update(ctx, operator))

	found, err := repo.FindByID(ctx, operator.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.OperatorStatusDeactivated, found.Status)
	assert.False(t, found.IsActive())
}
