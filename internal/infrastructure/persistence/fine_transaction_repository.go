package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFineTransactionRepository implements lending.FineTransactionRepository using GORM
type GormFineTransactionRepository struct {
	db *gorm.DB
}

// NewGormFineTransactionRepository creates a new GormFineTransactionRepository
func NewGormFineTransactionRepository(db *gorm.DB) *GormFineTransactionRepository {
	return &GormFineTransactionRepository{db: db}
}

// Create appends a new ledger entry. Entries are never updated or deleted.
func (r *GormFineTransactionRepository) Create(ctx context.Context, txn *lending.FineTransaction) error {
	model := models.FineTransactionModelFromDomain(txn)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a ledger entry by ID, returning nil when no row exists
func (r *GormFineTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.FineTransaction, error) {
	var model models.FineTransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReceiptNumber finds a ledger entry by its receipt number
func (r *GormFineTransactionRepository) FindByReceiptNumber(ctx context.Context, receiptNumber string) (*lending.FineTransaction, error) {
	var model models.FineTransactionModel
	if err := r.db.WithContext(ctx).
		First(&model, "receipt_number = ?", receiptNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Find returns ledger entries matching the filter, newest first
func (r *GormFineTransactionRepository) Find(ctx context.Context, filter lending.TransactionFilter) ([]*lending.FineTransaction, error) {
	query := r.db.WithContext(ctx).Model(&models.FineTransactionModel{})

	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.LoanID != nil {
		query = query.Where("loan_id = ?", *filter.LoanID)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("transaction_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("transaction_date <= ?", *filter.DateTo)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []models.FineTransactionModel
	if err := query.Order("transaction_date DESC, receipt_number DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	txns := make([]*lending.FineTransaction, 0, len(rows))
	for i := range rows {
		txns = append(txns, rows[i].ToDomain())
	}
	return txns, nil
}

// NextReceiptNumber generates the next receipt number for the given date.
// Format: FINE-<YYYYMMDD>-<6-digit-sequence>, sequence restarting each day.
func (r *GormFineTransactionRepository) NextReceiptNumber(ctx context.Context, date time.Time) (string, error) {
	prefix := fmt.Sprintf("FINE-%s-", date.Format("20060102"))

	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.FineTransactionModel{}).
		Select("receipt_number").
		Where("receipt_number LIKE ?", prefix+"%").
		Order("receipt_number DESC").
		Limit(1).
		Scan(&maxNumber).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	nextSeq := 1
	if len(maxNumber) > len(prefix) {
		var seq int
		if _, err := fmt.Sscanf(maxNumber[len(prefix):], "%06d", &seq); err == nil {
			nextSeq = seq + 1
		}
	}

	return fmt.Sprintf("%s%06d", prefix, nextSeq), nil
}

// Ensure GormFineTransactionRepository implements the interface
var _ lending.FineTransactionRepository = (*GormFineTransactionRepository)(nil)
