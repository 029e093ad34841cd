package middleware

import (
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CheckObjectID rejects the request with 400 when the named route parameter
// is not a well-formed identifier.
func CheckObjectID(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !models.IsValidID(c.Params(param)) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewBadRequestError("Invalid ID"))
		}
		return c.Next()
	}
}
