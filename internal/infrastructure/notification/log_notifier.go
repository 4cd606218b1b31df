package notification

import (
	"context"

	"github.com/library/backend/internal/domain/lending"
	"go.uber.org/zap"
)

// LogNotifier implements lending.Notifier by writing structured log entries.
// It stands in for an outbound channel (email, SMS) in deployments that have
// none configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("notifier")}
}

// Warn tells a member their outstanding fines exceeded the credit limit
func (n *LogNotifier) Warn(ctx context.Context, member *lending.Member, loan *lending.Loan) error {
	fields := []zap.Field{
		zap.String("member_number", member.MemberNumber),
		zap.String("member_name", member.Name),
		zap.String("current_fines_due", member.CurrentFinesDue.String()),
	}
	if loan != nil {
		fields = append(fields, zap.String("book_title", loan.BookTitle))
	}
	n.logger.Info("Credit limit warning sent", fields...)
	return nil
}

// Banned tells a member their borrowing privileges were suspended
func (n *LogNotifier) Banned(ctx context.Context, member *lending.Member, loan *lending.Loan) error {
	fields := []zap.Field{
		zap.String("member_number", member.MemberNumber),
		zap.String("member_name", member.Name),
		zap.String("reason", member.BanReason),
	}
	if member.BanEndDate != nil {
		fields = append(fields, zap.Time("ban_end_date", *member.BanEndDate))
	}
	if loan != nil {
		fields = append(fields, zap.String("book_title", loan.BookTitle))
	}
	n.logger.Info("Ban notification sent", fields...)
	return nil
}

// Restored tells a member their ban has been lifted
func (n *LogNotifier) Restored(ctx context.Context, member *lending.Member) error {
	n.logger.Info("Ban lifted notification sent",
		zap.String("member_number", member.MemberNumber),
		zap.String("member_name", member.Name),
	)
	return nil
}

// Receipt delivers a payment or waiver receipt
func (n *LogNotifier) Receipt(ctx context.Context, member *lending.Member, txn *lending.FineTransaction) error {
	n.logger.Info("Receipt sent",
		zap.String("member_number", member.MemberNumber),
		zap.String("receipt_number", txn.ReceiptNumber),
		zap.String("amount", txn.Amount.String()),
		zap.String("method", string(txn.Method)),
	)
	return nil
}

// Ensure LogNotifier implements the interface
var _ lending.Notifier = (*LogNotifier)(nil)
