package middleware

import (
	"net/http/httptest"
	"testing"

	"devhub/internal/models"
	"devhub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() { observability.Tracer = prev })
	return rec
}

func spanAttr(s sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingMiddleware(t *testing.T) {
	rec := recordSpans(t)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Use(TracingMiddleware())
	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/api/games/:id", func(c *fiber.Ctx) error {
		assert.NotEmpty(t, c.Locals(LocalTraceID))
		assert.Equal(t, c.Locals(LocalTraceID), c.UserContext().Value(TraceIDKey))
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/api/snippets", func(c *fiber.Ctx) error {
		return models.NewInternalError(assert.AnError)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/health/live", nil))
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("X-Trace-ID"))
	assert.Empty(t, rec.Ended())

	gameReq := httptest.NewRequest("GET", "/api/games/42?ref=home", nil)
	gameReq.Header.Set("User-Agent", "devhub-test/1.0")
	resp, err = app.Test(gameReq)
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get("X-Trace-ID"), 32)

	_, err = app.Test(httptest.NewRequest("POST", "/api/snippets", nil))
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 2)

	get := spans[0]
	assert.Equal(t, "GET /api/games/:id", get.Name())
	kind, ok := spanAttr(get, "devhub.content_kind")
	require.True(t, ok)
	assert.Equal(t, string(models.KindGame), kind.AsString())
	assert.Equal(t, codes.Unset, get.Status().Code)
	// Later requests reuse fiber's buffers; the ended span must keep its values.
	target, ok := spanAttr(get, "http.target")
	require.True(t, ok)
	assert.Equal(t, "/api/games/42?ref=home", target.AsString())
	ua, ok := spanAttr(get, "user_agent.original")
	require.True(t, ok)
	assert.Equal(t, "devhub-test/1.0", ua.AsString())
	method, ok := spanAttr(get, "http.method")
	require.True(t, ok)
	assert.Equal(t, "GET", method.AsString())

	post := spans[1]
	status, ok := spanAttr(post, "http.status_code")
	require.True(t, ok)
	assert.EqualValues(t, fiber.StatusInternalServerError, status.AsInt64())
	assert.Equal(t, codes.Error, post.Status().Code)
}

func TestContentKindOf(t *testing.T) {
	kind, ok := contentKindOf("/api/tutorials/similar/abc")
	assert.True(t, ok)
	assert.Equal(t, models.KindTutorial, kind)

	_, ok = contentKindOf("/api/users/1")
	assert.False(t, ok)
	_, ok = contentKindOf("/games")
	assert.False(t, ok)
}
