package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared"
	"github.com/library/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMemberRepository implements lending.MemberRepository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// FindByID finds a member by ID, returning nil when no row exists
func (r *GormMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Member, error) {
	var model models.MemberModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMemberNumber finds a member by their membership number
func (r *GormMemberRepository) FindByMemberNumber(ctx context.Context, memberNumber string) (*lending.Member, error) {
	var model models.MemberModel
	if err := r.db.WithContext(ctx).
		First(&model, "member_number = ?", memberNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBanned returns all currently banned members
func (r *GormMemberRepository) FindBanned(ctx context.Context) ([]*lending.Member, error) {
	var rows []models.MemberModel
	if err := r.db.WithContext(ctx).
		Where("is_banned = ?", true).
		Order("ban_start_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	members := make([]*lending.Member, 0, len(rows))
	for i := range rows {
		members = append(members, rows[i].ToDomain())
	}
	return members, nil
}

// Save creates or updates a member without a version check
func (r *GormMemberRepository) Save(ctx context.Context, member *lending.Member) error {
	model := models.MemberModelFromDomain(member)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock persists the member with an optimistic version check
func (r *GormMemberRepository) SaveWithLock(ctx context.Context, member *lending.Member) error {
	return saveMemberWithLock(r.db.WithContext(ctx), member)
}

func saveMemberWithLock(db *gorm.DB, member *lending.Member) error {
	model := models.MemberModelFromDomain(member)
	result := db.Model(&models.MemberModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormMemberRepository implements the interface
var _ lending.MemberRepository = (*GormMemberRepository)(nil)
