package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/library/backend/internal/interfaces/http/dto"
)

// OperatorIDKey is the gin context key holding the authenticated operator ID.
const OperatorIDKey = "operator_id"

// OperatorHeader is the request header identifying the acting operator.
const OperatorHeader = "X-Operator-ID"

// Operator extracts the operator ID from the X-Operator-ID header and stores
// it in the gin context. Requests without the header pass through; handlers
// that mutate state enforce presence via RequireOperator.
func Operator() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(OperatorHeader)
		if raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
					dto.ErrCodeBadRequest,
					"Invalid X-Operator-ID header",
				))
				return
			}
			c.Set(OperatorIDKey, id)
		}

		c.Next()
	}
}

// RequireOperator rejects requests that did not present a valid operator ID.
// It must run after Operator.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(OperatorIDKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				dto.ErrCodeUnauthorized,
				"X-Operator-ID header is required",
			))
			return
		}

		c.Next()
	}
}

// GetOperatorID returns the operator ID stored by the Operator middleware.
func GetOperatorID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(OperatorIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
