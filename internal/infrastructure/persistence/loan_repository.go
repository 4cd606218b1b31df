package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared"
	"github.com/library/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLoanRepository implements lending.LoanRepository using GORM
type GormLoanRepository struct {
	db *gorm.DB
}

// NewGormLoanRepository creates a new GormLoanRepository
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// FindByID finds a loan by ID, returning nil when no row exists
func (r *GormLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	var model models.LoanModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOverdue returns unreturned loans whose due date has passed as of the
// given date and whose fine can still change: non-exempt loans without a
// terminal fine status, plus exempt loans still carrying a pending amount.
func (r *GormLoanRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]*lending.Loan, error) {
	var rows []models.LoanModel
	// Exempt loans stay in the scan while they still carry a pending fine,
	// so the next run can zero the stale amount and credit the member back.
	if err := r.db.WithContext(ctx).
		Where("returned = ?", false).
		Where("due_date < ?", lending.Midnight(asOf)).
		Where(
			"(fine_exempt = ? AND fine_status IN ?) OR (fine_exempt = ? AND fine_status = ? AND fine_amount > 0)",
			false, []lending.FineStatus{lending.FineStatusNone, lending.FineStatusPending},
			true, lending.FineStatusPending,
		).
		Order("due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainLoans(rows), nil
}

// FindByMember returns all loans for a member, newest first
func (r *GormLoanRepository) FindByMember(ctx context.Context, memberID uuid.UUID) ([]*lending.Loan, error) {
	var rows []models.LoanModel
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("loan_date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainLoans(rows), nil
}

// FindPendingByMember returns the member's loans with a PENDING fine
func (r *GormLoanRepository) FindPendingByMember(ctx context.Context, memberID uuid.UUID) ([]*lending.Loan, error) {
	var rows []models.LoanModel
	if err := r.db.WithContext(ctx).
		Where("member_id = ? AND fine_status = ?", memberID, lending.FineStatusPending).
		Order("due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainLoans(rows), nil
}

// Save creates or updates a loan without a version check
func (r *GormLoanRepository) Save(ctx context.Context, loan *lending.Loan) error {
	model := models.LoanModelFromDomain(loan)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock persists the loan with an optimistic version check.
// The aggregate's version must already be incremented; the row is matched
// against the previous version.
func (r *GormLoanRepository) SaveWithLock(ctx context.Context, loan *lending.Loan) error {
	return saveLoanWithLock(r.db.WithContext(ctx), loan)
}

func saveLoanWithLock(db *gorm.DB, loan *lending.Loan) error {
	model := models.LoanModelFromDomain(loan)
	result := db.Model(&models.LoanModel{}).
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

func toDomainLoans(rows []models.LoanModel) []*lending.Loan {
	loans := make([]*lending.Loan, 0, len(rows))
	for i := range rows {
		loans = append(loans, rows[i].ToDomain())
	}
	return loans
}

// Ensure GormLoanRepository implements the interface
var _ lending.LoanRepository = (*GormLoanRepository)(nil)
