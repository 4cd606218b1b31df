package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	applending "github.com/library/backend/internal/application/lending"
)

// AccrualAPI is the slice of the accrual service the admin handler needs.
type AccrualAPI interface {
	Run(ctx context.Context) (*applending.AccrualReport, error)
}

// BanSweepAPI is the slice of the ban service the admin handler needs.
type BanSweepAPI interface {
	SweepExpired(ctx context.Context) (int, error)
}

// SchedulerStatusAPI reports the nightly job schedule state.
type SchedulerStatusAPI interface {
	GetStatus() map[string]interface{}
}

// AdminHandler serves manual triggers for the nightly jobs. The endpoints
// run the services synchronously and return the run report, so an operator
// can rerun a failed night without waiting for the next schedule. Both jobs
// are idempotent, so overlapping a manual run with the cron run is safe.
type AdminHandler struct {
	BaseHandler
	accrual   AccrualAPI
	bans      BanSweepAPI
	scheduler SchedulerStatusAPI
}

// NewAdminHandler creates an AdminHandler. scheduler may be nil when the
// cron trigger is disabled.
func NewAdminHandler(accrual AccrualAPI, bans BanSweepAPI, scheduler SchedulerStatusAPI, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		accrual:     accrual,
		bans:        bans,
		scheduler:   scheduler,
	}
}

// RunAccrual runs the daily fine accrual immediately and returns its report.
func (h *AdminHandler) RunAccrual(c *gin.Context) {
	report, err := h.accrual.Run(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// SweepBans lifts expired bans immediately and returns the count lifted.
func (h *AdminHandler) SweepBans(c *gin.Context) {
	lifted, err := h.bans.SweepExpired(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"lifted": lifted})
}

// SchedulerStatus reports the nightly schedule and last run dates.
func (h *AdminHandler) SchedulerStatus(c *gin.Context) {
	if h.scheduler == nil {
		h.Success(c, gin.H{"enabled": false})
		return
	}

	h.Success(c, h.scheduler.GetStatus())
}
