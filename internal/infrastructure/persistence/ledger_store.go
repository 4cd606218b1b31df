package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared"
	"github.com/library/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerStore implements lending.LedgerStore using a GORM transaction.
// Loan and member writes carry an optimistic version check; the transaction
// rolls back as a whole when any write fails, so callers may safely retry
// after reloading the aggregates.
type GormLedgerStore struct {
	db *gorm.DB
}

// NewGormLedgerStore creates a new GormLedgerStore
func NewGormLedgerStore(db *gorm.DB) *GormLedgerStore {
	return &GormLedgerStore{db: db}
}

// SaveAtomically persists the given loan, member, and ledger entry as one
// atomic unit. Nil arguments are skipped.
func (s *GormLedgerStore) SaveAtomically(ctx context.Context, loan *lending.Loan, member *lending.Member, txn *lending.FineTransaction) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if loan != nil {
			if err := saveLoanWithLock(tx, loan); err != nil {
				return err
			}
		}
		if member != nil {
			if err := saveMemberWithLock(tx, member); err != nil {
				return err
			}
		}
		if txn != nil {
			model := models.FineTransactionModelFromDomain(txn)
			if err := tx.Create(model).Error; err != nil {
				// Receipt numbers are issued before the transaction opens;
				// a duplicate insert means a concurrent writer claimed the
				// same number, so surface it as a retryable conflict and
				// let the caller reload and reissue.
				if isDuplicateKey(err) {
					return shared.ErrConcurrencyConflict
				}
				return err
			}
		}
		return nil
	})
}

// isDuplicateKey reports whether err is a unique constraint violation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

// Ensure GormLedgerStore implements the interface
var _ lending.LedgerStore = (*GormLedgerStore)(nil)
