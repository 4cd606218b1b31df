package lending

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared"
)

// QueryService serves read-only lookups over loans, members, and the fine ledger
type QueryService struct {
	loanRepo   lending.LoanRepository
	memberRepo lending.MemberRepository
	txnRepo    lending.FineTransactionRepository
}

// NewQueryService creates a new QueryService
func NewQueryService(
	loanRepo lending.LoanRepository,
	memberRepo lending.MemberRepository,
	txnRepo lending.FineTransactionRepository,
) *QueryService {
	return &QueryService{
		loanRepo:   loanRepo,
		memberRepo: memberRepo,
		txnRepo:    txnRepo,
	}
}

// GetLoan returns a loan by ID
func (s *QueryService) GetLoan(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	loan, err := s.loanRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load loan: %w", err)
	}
	if loan == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Loan not found")
	}
	return loan, nil
}

// GetMember returns a member by ID
func (s *QueryService) GetMember(ctx context.Context, id uuid.UUID) (*lending.Member, error) {
	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	if member == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Member not found")
	}
	return member, nil
}

// GetMemberFines returns the member's loans carrying a pending fine
func (s *QueryService) GetMemberFines(ctx context.Context, memberID uuid.UUID) ([]*lending.Loan, error) {
	if _, err := s.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	loans, err := s.loanRepo.FindPendingByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending fines: %w", err)
	}
	return loans, nil
}

// GetMemberTransactions returns the member's fine ledger entries
func (s *QueryService) GetMemberTransactions(ctx context.Context, memberID uuid.UUID, filter lending.TransactionFilter) ([]*lending.FineTransaction, error) {
	if _, err := s.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	filter.MemberID = &memberID
	txns, err := s.txnRepo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return txns, nil
}

// GetTransaction returns a ledger entry by ID
func (s *QueryService) GetTransaction(ctx context.Context, id uuid.UUID) (*lending.FineTransaction, error) {
	txn, err := s.txnRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if txn == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Transaction not found")
	}
	return txn, nil
}
