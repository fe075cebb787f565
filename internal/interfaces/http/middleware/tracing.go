// Package middleware provides the HTTP middleware of the viaticos API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing opens a server span per request with otelgin
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanAttributes tags the span opened by Tracing with request_id and
// actor_id, and marks it as an error for 5xx answers and for 4xx answers
// other than 404. It must run after Tracing and RequestID in the chain.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}
		if id := GetRequestID(c); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		// only well-formed ids go into traces
		if actor, err := uuid.Parse(c.GetHeader(ActorIDHeader)); err == nil {
			span.SetAttributes(attribute.String("actor_id", actor.String()))
		}

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError || (status >= http.StatusBadRequest && status != http.StatusNotFound) {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
