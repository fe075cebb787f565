package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer installs a recording tracer provider for the test
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func tracedRouter(status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Tracing(TracingConfig{Enabled: true, ServiceName: "viaticos-test"}), SpanAttributes())
	r.POST("/requests/:id/submit", func(c *gin.Context) { c.Status(status) })
	return r
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	spans := sr.Ended()
	require.NotEmpty(t, spans)
	return spans[len(spans)-1]
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]string {
	out := map[attribute.Key]string{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value.Emit()
	}
	return out
}

func TestTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Tracing(TracingConfig{Enabled: false}), SpanAttributes())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestSpanAttributes(t *testing.T) {
	t.Run("request and actor ids", func(t *testing.T) {
		sr := setupTestTracer(t)
		actor := uuid.New()

		req := httptest.NewRequest(http.MethodPost, "/requests/1/submit", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		req.Header.Set(ActorIDHeader, actor.String())
		serve(tracedRouter(http.StatusOK), req)

		span := findSpan(t, sr)
		got := attrs(span)
		assert.Equal(t, "req-42", got["request_id"])
		assert.Equal(t, actor.String(), got["actor_id"])
		assert.NotEqual(t, codes.Error, span.Status().Code)
	})

	t.Run("malformed actor is left out", func(t *testing.T) {
		sr := setupTestTracer(t)

		req := httptest.NewRequest(http.MethodPost, "/requests/1/submit", nil)
		req.Header.Set(ActorIDHeader, "not-a-uuid")
		serve(tracedRouter(http.StatusOK), req)

		_, ok := attrs(findSpan(t, sr))["actor_id"]
		assert.False(t, ok)
	})

	statuses := []struct {
		name   string
		status int
		isErr  bool
	}{
		{"precondition failure is an error", http.StatusUnprocessableEntity, true},
		{"conflict is an error", http.StatusConflict, true},
		{"not found is not", http.StatusNotFound, false},
		{"server error", http.StatusInternalServerError, true},
	}
	for _, tt := range statuses {
		t.Run(tt.name, func(t *testing.T) {
			sr := setupTestTracer(t)
			serve(tracedRouter(tt.status), httptest.NewRequest(http.MethodPost, "/requests/1/submit", nil))

			assert.Equal(t, tt.isErr, findSpan(t, sr).Status().Code == codes.Error)
		})
	}
}
