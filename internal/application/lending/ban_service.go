package lending

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared"
	"github.com/library/backend/internal/infrastructure/telemetry"
)

// BanService applies and lifts member suspensions. Escalation runs at the
// end of each accrual pass; the expiry sweep runs on its own daily trigger.
type BanService struct {
	loanRepo   lending.LoanRepository
	memberRepo lending.MemberRepository
	clock      lending.Clock
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewBanService creates a new BanService
func NewBanService(
	loanRepo lending.LoanRepository,
	memberRepo lending.MemberRepository,
	clock lending.Clock,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *BanService {
	return &BanService{
		loanRepo:   loanRepo,
		memberRepo: memberRepo,
		clock:      clock,
		publisher:  publisher,
		logger:     logger,
	}
}

// EscalateOverdue bans every member holding an unreturned loan overdue past
// the effective max-overdue-days threshold. Already-banned members are left
// untouched even when multiple loans qualify. Returns the number of members
// newly banned.
func (s *BanService) EscalateOverdue(ctx context.Context, asOf time.Time, cfg lending.FineSettings) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ban", "escalate_overdue")
	defer span.End()

	loans, err := s.loanRepo.FindOverdue(ctx, asOf)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to query overdue loans: %w", err)
	}

	banned := 0
	seen := make(map[uuid.UUID]bool)

	for _, loan := range loans {
		if seen[loan.MemberID] {
			continue
		}

		days := lending.DaysOverdue(loan, asOf)
		if days == 0 {
			continue
		}

		member, err := s.memberRepo.FindByID(ctx, loan.MemberID)
		if err != nil {
			s.logger.Error("Ban escalation failed to load member",
				zap.String("member_id", loan.MemberID.String()),
				zap.Error(err),
			)
			continue
		}

		if days <= member.EffectiveMaxOverdueDays(cfg.MaxOverdueDays) {
			continue
		}
		seen[loan.MemberID] = true

		if member.IsBanned {
			continue
		}

		end := lending.Midnight(asOf).AddDate(0, 0, cfg.BanDurationDays)
		reason := fmt.Sprintf("Loan %s (%s) overdue %d days", loan.ID, loan.BookTitle, days)
		if err := member.Ban(reason, asOf, &end); err != nil {
			s.logger.Error("Ban escalation rejected",
				zap.String("member_id", member.ID.String()),
				zap.Error(err),
			)
			continue
		}

		if err := s.memberRepo.SaveWithLock(ctx, member); err != nil {
			s.logger.Error("Failed to persist ban",
				zap.String("member_id", member.ID.String()),
				zap.Error(err),
			)
			continue
		}

		banned++
		s.logger.Info("Member banned for excessive overdue",
			zap.String("member_id", member.ID.String()),
			zap.String("loan_id", loan.ID.String()),
			zap.Int("days_overdue", days),
			zap.Time("ban_end", end),
		)

		s.publishEvents(ctx, member)
	}

	telemetry.SetAttribute(span, "banned", banned)
	return banned, nil
}

// SweepExpired lifts every ban whose end date has passed. Permanent bans
// (nil end date) are never auto-lifted. Returns the number of bans lifted.
func (s *BanService) SweepExpired(ctx context.Context) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ban", "sweep_expired")
	defer span.End()

	today := s.clock.Today()

	members, err := s.memberRepo.FindBanned(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to query banned members: %w", err)
	}

	lifted := 0
	for _, member := range members {
		if !member.BanExpired(today) {
			continue
		}

		member.LiftBan()
		if err := s.memberRepo.SaveWithLock(ctx, member); err != nil {
			s.logger.Error("Failed to lift expired ban",
				zap.String("member_id", member.ID.String()),
				zap.Error(err),
			)
			continue
		}

		lifted++
		s.logger.Info("Expired ban lifted",
			zap.String("member_id", member.ID.String()),
			zap.String("member_number", member.MemberNumber),
		)

		s.publishEvents(ctx, member)
	}

	telemetry.SetAttribute(span, "lifted", lifted)
	return lifted, nil
}

func (s *BanService) publishEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
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
