package lending

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/library/backend/internal/domain/identity"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared"
	"github.com/library/backend/internal/domain/shared/valueobject"
	"github.com/library/backend/internal/infrastructure/telemetry"
)

// PayFineRequest represents an administrative fine payment
type PayFineRequest struct {
	LoanID     uuid.UUID
	Amount     decimal.Decimal
	Method     lending.PaymentMethod
	Reference  string
	Notes      string
	OperatorID uuid.UUID
}

// WaiveFineRequest represents an administrative fine waiver
type WaiveFineRequest struct {
	LoanID     uuid.UUID
	Reason     string
	OperatorID uuid.UUID
}

// PaymentService validates and records fine payments and waivers as
// immutable ledger transactions, keeping loan and member state consistent.
type PaymentService struct {
	loanRepo     lending.LoanRepository
	memberRepo   lending.MemberRepository
	txnRepo      lending.FineTransactionRepository
	operatorRepo identity.OperatorRepository
	ledger       lending.LedgerStore
	clock        lending.Clock
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	loanRepo lending.LoanRepository,
	memberRepo lending.MemberRepository,
	txnRepo lending.FineTransactionRepository,
	operatorRepo identity.OperatorRepository,
	ledger lending.LedgerStore,
	clock lending.Clock,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		loanRepo:     loanRepo,
		memberRepo:   memberRepo,
		txnRepo:      txnRepo,
		operatorRepo: operatorRepo,
		ledger:       ledger,
		clock:        clock,
		publisher:    publisher,
		logger:       logger,
	}
}

// Pay settles a pending fine in full. Partial payments are rejected with
// INSUFFICIENT_AMOUNT; overpayment is accepted at face value. A retried
// request after a committed payment hits the already-settled check instead
// of producing a duplicate receipt.
func (s *PaymentService) Pay(ctx context.Context, req PayFineRequest) (*lending.FineTransaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "pay_fine")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrLoanID, req.LoanID.String(),
		telemetry.SpanAttrOperatorID, req.OperatorID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrMethod, string(req.Method),
	)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		err := shared.NewDomainError("INVALID_INPUT", "Payment amount must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !req.Method.IsValid() || req.Method == lending.PaymentMethodWaived {
		err := shared.NewDomainError("INVALID_INPUT", "Payment method is not valid")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if _, err := s.resolveOperator(ctx, req.OperatorID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	amount := valueobject.NewMoneyUSD(req.Amount)

	var txn *lending.FineTransaction
	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		loan, member, err := s.loadLoanAndMember(ctx, req.LoanID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		if loan.FineStatus.IsSettled() {
			telemetry.RecordError(span, shared.ErrAlreadySettled)
			return nil, shared.ErrAlreadySettled
		}
		if req.Amount.LessThan(loan.FineAmount) {
			telemetry.RecordError(span, shared.ErrInsufficientAmount)
			return nil, shared.ErrInsufficientAmount
		}

		receipt, err := s.txnRepo.NextReceiptNumber(ctx, s.clock.Today())
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to generate receipt number: %w", err)
		}

		loanID := loan.ID
		txn, err = lending.NewPaymentTransaction(
			receipt, member.ID, &loanID, amount,
			req.Method, req.Reference, req.Notes, req.OperatorID, s.clock.Now(),
		)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		wasOverdue := loan.DaysOverdue > 0
		if _, err := loan.SettleByPayment(); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := member.RecordPayment(amount, wasOverdue); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		if err := s.ledger.SaveAtomically(ctx, loan, member, txn); err != nil {
			if isConflict(err) {
				lastErr = err
				continue
			}
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to record payment: %w", err)
		}

		telemetry.SetAttribute(span, telemetry.SpanAttrReceipt, txn.ReceiptNumber)
		s.logger.Info("Fine payment recorded",
			zap.String("loan_id", loan.ID.String()),
			zap.String("member_id", member.ID.String()),
			zap.String("receipt_number", txn.ReceiptNumber),
			zap.String("amount", amount.StringFixed(2)),
			zap.String("method", string(req.Method)),
		)

		s.publishEvents(ctx, loan, member, txn)
		return txn, nil
	}

	telemetry.RecordError(span, lastErr)
	return nil, fmt.Errorf("payment retry limit reached: %w", lastErr)
}

// Waive forgives a pending fine without payment. The recorded transaction
// carries the forgiven amount under the WAIVED method.
func (s *PaymentService) Waive(ctx context.Context, req WaiveFineRequest) (*lending.FineTransaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "waive_fine")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrLoanID, req.LoanID.String(),
		telemetry.SpanAttrOperatorID, req.OperatorID.String(),
	)

	if req.Reason == "" {
		err := shared.NewDomainError("INVALID_INPUT", "Waive reason cannot be empty")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if _, err := s.resolveOperator(ctx, req.OperatorID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var txn *lending.FineTransaction
	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		loan, member, err := s.loadLoanAndMember(ctx, req.LoanID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		if loan.FineStatus.IsSettled() {
			telemetry.RecordError(span, shared.ErrAlreadySettled)
			return nil, shared.ErrAlreadySettled
		}

		receipt, err := s.txnRepo.NextReceiptNumber(ctx, s.clock.Today())
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to generate receipt number: %w", err)
		}

		wasOverdue := loan.DaysOverdue > 0
		waived, err := loan.SettleByWaiver(req.Reason)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		loanID := loan.ID
		txn, err = lending.NewWaiverTransaction(
			receipt, member.ID, &loanID, waived, req.Reason, req.OperatorID, s.clock.Now(),
		)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		member.RecordWaiver(waived, wasOverdue)

		if err := s.ledger.SaveAtomically(ctx, loan, member, txn); err != nil {
			if isConflict(err) {
				lastErr = err
				continue
			}
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to record waiver: %w", err)
		}

		telemetry.SetAttribute(span, telemetry.SpanAttrReceipt, txn.ReceiptNumber)
		s.logger.Info("Fine waived",
			zap.String("loan_id", loan.ID.String()),
			zap.String("member_id", member.ID.String()),
			zap.String("receipt_number", txn.ReceiptNumber),
			zap.String("amount", waived.StringFixed(2)),
			zap.String("reason", req.Reason),
		)

		s.publishEvents(ctx, loan, member, txn)
		return txn, nil
	}

	telemetry.RecordError(span, lastErr)
	return nil, fmt.Errorf("waiver retry limit reached: %w", lastErr)
}

// resolveOperator fails with NOT_FOUND when the operator is missing or inactive
func (s *PaymentService) resolveOperator(ctx context.Context, operatorID uuid.UUID) (*identity.Operator, error) {
	if operatorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Operator ID is required")
	}
	operator, err := s.operatorRepo.FindByID(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load operator: %w", err)
	}
	if operator == nil || !operator.IsActive() {
		return nil, shared.NewDomainError("NOT_FOUND", "Operator not found or inactive")
	}
	return operator, nil
}

func (s *PaymentService) loadLoanAndMember(ctx context.Context, loanID uuid.UUID) (*lending.Loan, *lending.Member, error) {
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load loan: %w", err)
	}
	if loan == nil {
		return nil, nil, shared.NewDomainError("NOT_FOUND", "Loan not found")
	}
	member, err := s.memberRepo.FindByID(ctx, loan.MemberID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load member: %w", err)
	}
	if member == nil {
		return nil, nil, shared.NewDomainError("NOT_FOUND", "Member not found")
	}
	return loan, member, nil
}

func (s *PaymentService) publishEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish domain events", zap.Error(err))
		}
		agg.ClearDomainEvents()
	}
}
