package notification

import (
	"context"
	"fmt"

	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Handler forwards lifecycle events to the member-facing notifier.
// It subscribes to the event bus and resolves aggregates through the
// repositories before dispatch. Notification failures are logged and
// returned for the bus to record, never retried.
type Handler struct {
	notifier   lending.Notifier
	memberRepo lending.MemberRepository
	loanRepo   lending.LoanRepository
	txnRepo    lending.FineTransactionRepository
	logger     *zap.Logger
}

// NewHandler creates a new notification handler
func NewHandler(
	notifier lending.Notifier,
	memberRepo lending.MemberRepository,
	loanRepo lending.LoanRepository,
	txnRepo lending.FineTransactionRepository,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		notifier:   notifier,
		memberRepo: memberRepo,
		loanRepo:   loanRepo,
		txnRepo:    txnRepo,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *Handler) EventTypes() []string {
	return []string{
		lending.EventTypeMemberCreditLimitExceeded,
		lending.EventTypeMemberBanned,
		lending.EventTypeMemberBanLifted,
		lending.EventTypeFineReceiptIssued,
	}
}

// Handle processes a lifecycle event
func (h *Handler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch evt := event.(type) {
	case *lending.MemberCreditLimitExceededEvent:
		return h.handleCreditLimitExceeded(ctx, evt)
	case *lending.MemberBannedEvent:
		return h.handleBanned(ctx, evt)
	case *lending.MemberBanLiftedEvent:
		return h.handleBanLifted(ctx, evt)
	case *lending.FineReceiptIssuedEvent:
		return h.handleReceiptIssued(ctx, evt)
	default:
		h.logger.Warn("unexpected event type", zap.String("event_type", event.EventType()))
		return nil
	}
}

func (h *Handler) handleCreditLimitExceeded(ctx context.Context, evt *lending.MemberCreditLimitExceededEvent) error {
	member, err := h.memberRepo.FindByID(ctx, evt.AggregateID())
	if err != nil || member == nil {
		return fmt.Errorf("load member %s: %w", evt.AggregateID(), firstErr(err))
	}

	if err := h.notifier.Warn(ctx, member, h.mostOverdueLoan(ctx, member)); err != nil {
		h.logger.Warn("credit limit warning failed",
			zap.String("member_number", member.MemberNumber), zap.Error(err))
		return err
	}
	return nil
}

func (h *Handler) handleBanned(ctx context.Context, evt *lending.MemberBannedEvent) error {
	member, err := h.memberRepo.FindByID(ctx, evt.AggregateID())
	if err != nil || member == nil {
		return fmt.Errorf("load member %s: %w", evt.AggregateID(), firstErr(err))
	}

	if err := h.notifier.Banned(ctx, member, h.mostOverdueLoan(ctx, member)); err != nil {
		h.logger.Warn("ban notification failed",
			zap.String("member_number", member.MemberNumber), zap.Error(err))
		return err
	}
	return nil
}

func (h *Handler) handleBanLifted(ctx context.Context, evt *lending.MemberBanLiftedEvent) error {
	member, err := h.memberRepo.FindByID(ctx, evt.AggregateID())
	if err != nil || member == nil {
		return fmt.Errorf("load member %s: %w", evt.AggregateID(), firstErr(err))
	}

	if err := h.notifier.Restored(ctx, member); err != nil {
		h.logger.Warn("ban lifted notification failed",
			zap.String("member_number", member.MemberNumber), zap.Error(err))
		return err
	}
	return nil
}

func (h *Handler) handleReceiptIssued(ctx context.Context, evt *lending.FineReceiptIssuedEvent) error {
	member, err := h.memberRepo.FindByID(ctx, evt.MemberID)
	if err != nil || member == nil {
		return fmt.Errorf("load member %s: %w", evt.MemberID, firstErr(err))
	}
	txn, err := h.txnRepo.FindByReceiptNumber(ctx, evt.ReceiptNumber)
	if err != nil || txn == nil {
		return fmt.Errorf("load receipt %s: %w", evt.ReceiptNumber, firstErr(err))
	}

	if err := h.notifier.Receipt(ctx, member, txn); err != nil {
		h.logger.Warn("receipt notification failed",
			zap.String("receipt_number", txn.ReceiptNumber), zap.Error(err))
		return err
	}
	return nil
}

// mostOverdueLoan returns the member's oldest pending-fine loan for context
// in warnings and ban notices, or nil when none exists.
func (h *Handler) mostOverdueLoan(ctx context.Context, member *lending.Member) *lending.Loan {
	loans, err := h.loanRepo.FindPendingByMember(ctx, member.ID)
	if err != nil || len(loans) == 0 {
		return nil
	}
	return loans[0]
}

func firstErr(err error) error {
	if err != nil {
		return err
	}
	return shared.ErrNotFound
}

// Ensure Handler implements the interface
var _ shared.EventHandler = (*Handler)(nil)
