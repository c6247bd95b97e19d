package engine

import (
	"github.com/gofiber/fiber/v2"

	"blog-backend/internal/metadata"
)

// WebResponse is the envelope of every successful response.
type WebResponse struct {
	Data   any  `json:"data"`
	Status bool `json:"status"`
}

// Respond writes data inside the WebResponse envelope.
func Respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(WebResponse{Data: data, Status: true})
}

func respondError(c *fiber.Ctx, appErr *AppError) error {
	return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
}

// DecodePayload decodes the JSON object body, checks it against the rules of
// payload, then decodes it again into dst.
func DecodePayload(c *fiber.Ctx, v *Validator, payload string, dst any) error {
	decode := c.App().Config().JSONDecoder

	var record map[string]any
	if err := decode(c.Body(), &record); err != nil || record == nil {
		return InvalidPayloadError()
	}
	if errs := v.Validate(payload, record); len(errs) > 0 {
		return ValidationError(errs)
	}
	if err := decode(c.Body(), dst); err != nil {
		return InvalidPayloadError()
	}
	return nil
}

func getUser(c *fiber.Ctx) *metadata.UserContext {
	user, _ := c.Locals("user").(*metadata.UserContext)
	return user
}
