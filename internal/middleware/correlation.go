package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/noah-isme/campus-admin-api/internal/observability"
)

// CorrelationID assigns every request an identifier so log lines and
// lifecycle events emitted while serving it can be tied back together.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		incoming := strings.TrimSpace(c.Get("X-Correlation-ID"))
		if incoming == "" {
			incoming = strings.TrimSpace(c.Get("X-Request-ID"))
		}
		if incoming == "" {
			incoming = uuid.NewString()
		}

		c.Locals(observability.CorrelationKey, incoming)
		c.Set("X-Correlation-ID", incoming)

		// make the id visible through c.Context(), which services receive
		c.Context().SetUserValue(observability.CorrelationKey, incoming)
		c.SetUserContext(observability.ContextWithCorrelation(c.UserContext(), incoming))

		return c.Next()
	}
}

// GetCorrelationID returns the identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(observability.CorrelationKey).(string); ok {
		return id
	}
	return observability.CorrelationFromContext(c.Context())
}
