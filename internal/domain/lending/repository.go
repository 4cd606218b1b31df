package lending

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TransactionFilter describes criteria for querying the fine ledger
type TransactionFilter struct {
	MemberID *uuid.UUID
	LoanID   *uuid.UUID
	Method   *PaymentMethod
	Status   *TransactionStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Offset   int
	Limit    int
}

// LoanRepository defines the persistence operations for loans
type LoanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	// FindOverdue returns unreturned loans whose due date has passed as of the given date
	FindOverdue(ctx context.Context, asOf time.Time) ([]*Loan, error)
	FindByMember(ctx context.Context, memberID uuid.UUID) ([]*Loan, error)
	// FindPendingByMember returns the member's loans with a PENDING fine
	FindPendingByMember(ctx context.Context, memberID uuid.UUID) ([]*Loan, error)
	Save(ctx context.Context, loan *Loan) error
	// SaveWithLock persists the loan with an optimistic version check
	SaveWithLock(ctx context.Context, loan *Loan) error
}

// MemberRepository defines the persistence operations for members
type MemberRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)
	// FindBanned returns all currently banned members
	FindBanned(ctx context.Context) ([]*Member, error)
	Save(ctx context.Context, member *Member) error
	// SaveWithLock persists the member with an optimistic version check
	SaveWithLock(ctx context.Context, member *Member) error
}

// FineTransactionRepository defines the persistence operations for the fine ledger
type FineTransactionRepository interface {
	Create(ctx context.Context, txn *FineTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*FineTransaction, error)
	FindByReceiptNumber(ctx context.Context, receiptNumber string) (*FineTransaction, error)
	Find(ctx context.Context, filter TransactionFilter) ([]*FineTransaction, error)
	// NextReceiptNumber generates the next unique receipt number for the given date,
	// format FINE-<YYYYMMDD>-<6-digit-sequence>
	NextReceiptNumber(ctx context.Context, date time.Time) (string, error)
}

// LedgerStore persists related loan, member, and transaction changes as one
// atomic unit. Nil arguments are skipped; loan and member writes carry an
// optimistic version check and the whole unit fails on conflict.
type LedgerStore interface {
	SaveAtomically(ctx context.Context, loan *Loan, member *Member, txn *FineTransaction) error
}
