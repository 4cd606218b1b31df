package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/library/backend/internal/interfaces/http/dto"
)

// DefaultMaxBodySize caps request bodies at 1 MiB. Fine payments and waivers
// carry small JSON payloads; anything larger is rejected outright.
const DefaultMaxBodySize = 1 << 20

// BodyLimit rejects requests whose body exceeds maxBytes. Declared lengths
// are checked up front; chunked bodies are capped while being read.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(
				dto.ErrCodeBadRequest,
				"Request body too large",
			))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

		c.Next()
	}
}
