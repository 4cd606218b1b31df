package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/library/backend/internal/domain/shared"
	"github.com/library/backend/internal/interfaces/http/dto"
)

// BaseHandler provides response helpers shared by all HTTP handlers.
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a BaseHandler.
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseHandler{logger: logger}
}

// Success writes a 200 response with the standard envelope.
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created writes a 201 response with the standard envelope.
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent writes a 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error envelope with the status derived from the code.
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	requestID := c.GetString("request_id")
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// BadRequest writes a 400 validation error.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeValidation, message)
}

// NotFound writes a 404 error.
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeNotFound, message)
}

// InternalError writes a 500 error, hiding the underlying cause from the
// client.
func (h *BaseHandler) InternalError(c *gin.Context, err error) {
	h.logger.Error("internal error",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")),
		zap.Error(err),
	)
	h.Error(c, dto.ErrCodeInternal, "An internal error occurred")
}

// HandleError translates a service-layer error into an API response. Domain
// errors keep their message and get a normalized code; anything else is
// treated as internal.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		if code == dto.ErrCodeInternal {
			h.InternalError(c, err)
			return
		}
		h.Error(c, code, domainErr.Message)
		return
	}

	h.InternalError(c, err)
}
