package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns OpenTelemetry middleware for gin, enriching each span with
// the request ID and operator ID once the earlier middlewares have set them.
func Tracing(serviceName string) gin.HandlerFunc {
	otelMiddleware := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		otelMiddleware(c)

		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := c.GetString("request_id"); requestID != "" {
				span.SetAttributes(attribute.String("http.request_id", requestID))
			}
			if operatorID, ok := GetOperatorID(c); ok {
				span.SetAttributes(attribute.String("operator.id", operatorID.String()))
			}
		}
	}
}

// SpanErrorMarker marks the active span as errored when the handler chain
// produced a 5xx status or recorded gin errors.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}

		for _, ginErr := range c.Errors {
			span.RecordError(ginErr.Err)
		}
	}
}
