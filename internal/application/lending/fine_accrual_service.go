package lending

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared"
	"github.com/library/backend/internal/infrastructure/telemetry"
)

// maxSaveRetries bounds the optimistic-lock retry loop on member conflicts
const maxSaveRetries = 3

// AccrualReport summarizes one accrual run
type AccrualReport struct {
	RunDate   string `json:"run_date"`
	Processed int    `json:"processed"` // Overdue loans examined
	Updated   int    `json:"updated"`   // Loans whose fine changed
	Skipped   int    `json:"skipped"`   // Loans already up to date
	Failed    int    `json:"failed"`    // Loans that could not be persisted
	Banned    int    `json:"banned"`    // Members banned by the escalation pass
}

// FineAccrualService drives the daily re-evaluation of every unreturned
// overdue loan. Each loan is processed independently: a failure on one is
// logged and never aborts the rest of the batch.
type FineAccrualService struct {
	loanRepo   lending.LoanRepository
	memberRepo lending.MemberRepository
	ledger     lending.LedgerStore
	settings   lending.SettingsProvider
	clock      lending.Clock
	banService *BanService
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewFineAccrualService creates a new FineAccrualService
func NewFineAccrualService(
	loanRepo lending.LoanRepository,
	memberRepo lending.MemberRepository,
	ledger lending.LedgerStore,
	settings lending.SettingsProvider,
	clock lending.Clock,
	banService *BanService,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *FineAccrualService {
	return &FineAccrualService{
		loanRepo:   loanRepo,
		memberRepo: memberRepo,
		ledger:     ledger,
		settings:   settings,
		clock:      clock,
		banService: banService,
		publisher:  publisher,
		logger:     logger,
	}
}

// Run executes one accrual pass over all overdue loans as of today, then
// invokes the ban escalation pass. Safe to run more than once per day: loans
// whose fine is already current are skipped without mutation.
func (s *FineAccrualService) Run(ctx context.Context) (*AccrualReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fine_accrual", "run")
	defer span.End()

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load fine settings: %w", err)
	}

	today := s.clock.Today()
	report := &AccrualReport{RunDate: today.Format("2006-01-02")}

	loans, err := s.loanRepo.FindOverdue(ctx, today)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to query overdue loans: %w", err)
	}

	s.logger.Info("Fine accrual run started",
		zap.String("run_date", report.RunDate),
		zap.Int("overdue_loans", len(loans)),
	)

	for _, loan := range loans {
		report.Processed++

		updated, err := s.accrueLoan(ctx, loan.ID, cfg)
		if err != nil {
			report.Failed++
			s.logger.Error("Fine accrual failed for loan",
				zap.String("loan_id", loan.ID.String()),
				zap.String("member_id", loan.MemberID.String()),
				zap.Error(err),
			)
			continue
		}
		if updated {
			report.Updated++
		} else {
			report.Skipped++
		}
	}

	banned, err := s.banService.EscalateOverdue(ctx, today, cfg)
	if err != nil {
		// Escalation failure does not invalidate the committed accruals
		s.logger.Error("Ban escalation pass failed", zap.Error(err))
	}
	report.Banned = banned

	telemetry.SetAttributes(span,
		"processed", report.Processed,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"banned", report.Banned,
	)

	s.logger.Info("Fine accrual run finished",
		zap.String("run_date", report.RunDate),
		zap.Int("processed", report.Processed),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int("banned", report.Banned),
	)

	return report, nil
}

// accrueLoan recomputes one loan's fine and persists the loan together with
// its owning member as one atomic unit. Returns false when the cached fine
// was already current. Retries on optimistic-lock conflicts with fresh state.
func (s *FineAccrualService) accrueLoan(ctx context.Context, loanID uuid.UUID, cfg lending.FineSettings) (bool, error) {
	today := s.clock.Today()

	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		loan, err := s.loanRepo.FindByID(ctx, loanID)
		if err != nil {
			return false, fmt.Errorf("failed to load loan: %w", err)
		}

		newDays := lending.DaysOverdue(loan, today)
		newFine := lending.FineAmount(loan, today)

		// Idempotent no-op: running the job twice in a day must not double-count
		if newFine.Amount().Equal(loan.FineAmount) {
			return false, nil
		}

		member, err := s.memberRepo.FindByID(ctx, loan.MemberID)
		if err != nil {
			return false, fmt.Errorf("failed to load member: %w", err)
		}

		previousDays := loan.DaysOverdue
		delta, err := loan.ApplyAccrual(newDays, newFine, today)
		if err != nil {
			return false, err
		}

		firstDayOverdue := previousDays == 0 && newDays > 0
		member.ApplyFineDelta(delta, firstDayOverdue, member.EffectiveCreditLimit(cfg.CreditLimit))

		if err := s.ledger.SaveAtomically(ctx, loan, member, nil); err != nil {
			if isConflict(err) {
				lastErr = err
				continue
			}
			return false, err
		}

		s.publishEvents(ctx, loan, member)
		return true, nil
	}

	return false, fmt.Errorf("accrual retry limit reached: %w", lastErr)
}

// publishEvents dispatches pending domain events after a successful commit.
// Delivery is best-effort: notification handlers log their own failures.
func (s *FineAccrualService) publishEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
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

func isConflict(err error) bool {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == shared.ErrConcurrencyConflict.Code
	}
	return false
}
