package lending

import "context"

// Notifier delivers member-facing notifications. All calls are best-effort:
// callers log returned errors and never let them fail the triggering operation.
type Notifier interface {
	// Warn tells a member their outstanding fines exceeded the credit limit
	Warn(ctx context.Context, member *Member, loan *Loan) error
	// Banned tells a member their borrowing privileges were suspended
	Banned(ctx context.Context, member *Member, loan *Loan) error
	// Restored tells a member their ban has been lifted
	Restored(ctx context.Context, member *Member) error
	// Receipt delivers a payment or waiver receipt
	Receipt(ctx context.Context, member *Member, txn *FineTransaction) error
}
