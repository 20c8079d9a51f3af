package middleware

import (
	"context"
	"errors"
	"strings"

	"devhub/internal/models"
	"devhub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// LocalTraceID holds the hex trace id of the request span.
const LocalTraceID = "traceID"

// untracedPrefixes are probe and scrape paths that would only add noise.
var untracedPrefixes = []string{"/health", "/metrics", "/api/metrics", "/api/swagger"}

// TracingMiddleware opens a server span per request, continuing any trace
// propagated by the caller. The span is renamed to the matched route once
// routing is done so span names stay low-cardinality.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Span attributes outlive the request; fiber reuses the buffers
		// behind Path, OriginalURL and header values.
		path := utils.CopyString(c.Path())
		method := utils.CopyString(c.Method())
		for _, p := range untracedPrefixes {
			if strings.HasPrefix(path, p) {
				return c.Next()
			}
		}

		carrier := propagation.HeaderCarrier(c.GetReqHeaders())
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)
		ctx, span := observability.Tracer.Start(ctx, method+" "+path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.target", utils.CopyString(c.OriginalURL())),
				attribute.String("client.address", c.IP()),
				attribute.String("user_agent.original", utils.CopyString(c.Get(fiber.HeaderUserAgent))),
			),
		)
		defer span.End()

		if kind, ok := contentKindOf(path); ok {
			span.SetAttributes(attribute.String("devhub.content_kind", string(kind)))
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			span.SetAttributes(attribute.String("request.id", utils.CopyString(rid)))
		}

		traceID := span.SpanContext().TraceID().String()
		c.Locals(LocalTraceID, traceID)
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(context.WithValue(ctx, TraceIDKey, traceID))

		err := c.Next()

		if route := c.Route(); route != nil && route.Path != "" {
			span.SetName(method + " " + route.Path)
			span.SetAttributes(attribute.String("http.route", route.Path))
		}
		status := c.Response().StatusCode()
		if err != nil {
			var appErr *models.AppError
			var fe *fiber.Error
			switch {
			case errors.As(err, &appErr):
				status = appErr.Status()
			case errors.As(err, &fe):
				status = fe.Code
			}
			span.RecordError(err)
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "server error")
		}
		if userID := c.Locals(LocalUserID); userID != nil {
			if id, ok := userID.(uint); ok {
				span.SetAttributes(attribute.Int64("user.id", int64(id)))
			}
		}
		return err
	}
}

// contentKindOf maps /api/games/... style paths to the content kind they
// operate on.
func contentKindOf(path string) (models.ContentKind, bool) {
	rest, ok := strings.CutPrefix(path, "/api/")
	if !ok {
		return "", false
	}
	segment, _, _ := strings.Cut(rest, "/")
	kind := models.ContentKind(strings.TrimSuffix(segment, "s"))
	return kind, kind.Valid()
}
