package cpfauthapi

import (
	"github.com/gofiber/fiber/v2"
)

// Header values sent on every response.
const (
	AllowOrigin  = "*"
	AllowHeaders = "Content-Type,Authorization"
	AllowMethods = "POST,OPTIONS"
)

// CORS sets the fixed cross-origin headers and the JSON content type on every
// response and answers OPTIONS with 200 and an empty body. Preflights stop
// here and never reach a handler.
//
// fiber's cors middleware is not used: it answers preflights with 204 and
// only sends the allow-* headers on preflight responses.
func CORS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, AllowOrigin)
		c.Set(fiber.HeaderAccessControlAllowHeaders, AllowHeaders)
		c.Set(fiber.HeaderAccessControlAllowMethods, AllowMethods)
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		if c.Method() == fiber.MethodOptions {
			c.Status(fiber.StatusOK)
			return nil
		}
		return c.Next()
	}
}
