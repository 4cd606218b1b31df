package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/identity"
	"github.com/library/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOperatorRepository implements identity.OperatorRepository using GORM
type GormOperatorRepository struct {
	db *gorm.DB
}

// NewGormOperatorRepository creates a new GormOperatorRepository
func NewGormOperatorRepository(db *gorm.DB) *GormOperatorRepository {
	return &GormOperatorRepository{db: db}
}

// Create inserts a new operator
func (r *GormOperatorRepository) Create(ctx context.Context, operator *identity.Operator) error {
	model := models.OperatorModelFromDomain(operator)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update saves changes to an existing operator
func (r *GormOperatorRepository) Update(ctx context.Context, operator *identity.Operator) error {
	model := models.OperatorModelFromDomain(operator)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds an operator by ID, returning nil when no row exists
func (r *GormOperatorRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Operator, error) {
	var model models.OperatorModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUsername finds an operator by username, case-insensitively
func (r *GormOperatorRepository) FindByUsername(ctx context.Context, username string) (*identity.Operator, error) {
	var model models.OperatorModel
	if err := r.db.WithContext(ctx).
		First(&model, "username = ?", strings.ToLower(strings.TrimSpace(username))).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormOperatorRepository implements the interface
var _ identity.OperatorRepository = (*GormOperatorRepository)(nil)
