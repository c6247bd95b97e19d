package logging

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// Middleware attaches a request-scoped logger carrying the request id to the
// fiber user context. An incoming X-Request-ID is reused, otherwise one is
// generated; either way it is echoed on the response.
func Middleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)

		reqLogger := logger.With(zap.String("request_id", id))
		c.SetUserContext(NewContext(c.UserContext(), reqLogger))
		return c.Next()
	}
}
