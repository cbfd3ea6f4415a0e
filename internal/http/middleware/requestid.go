package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"savesignal/internal/logging"
)

const (
	RequestIDHeader   = "X-Request-ID"
	RequestIDLocalKey = "request_id"

	maxRequestIDLength = 128
)

// RequestID accepts a client X-Request-ID when it is short printable ASCII
// and generates a UUID otherwise. The ID is stored in locals, in the user
// context (so signal receivers log it), on the active span and echoed back.
// Run it after otelfiber so the span exists.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// The header value aliases a reused buffer; the ID outlives the request.
		id := utils.CopyString(c.Get(RequestIDHeader))
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		ctx := logging.WithRequestID(c.UserContext(), id)
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("request.id", id))

		c.Locals(RequestIDLocalKey, id)
		c.SetUserContext(ctx)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
