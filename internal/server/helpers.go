package server

import (
	"errors"
	"log/slog"

	"agora/internal/middleware"
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that a helper already committed the response.
// Handlers must return nil, not this error, so the ErrorHandler does not
// overwrite it.
var errResponseWritten = errors.New("response already written")

// respondServiceError renders a service failure. Server errors are logged with
// their cause; the client only sees the opaque message.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// parseBody decodes the request body into dest. An empty body leaves dest
// untouched so field validation reports the missing fields. On a malformed
// body it writes a 400 and returns errResponseWritten.
func parseBody(c *fiber.Ctx, dest any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dest); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// callerID returns the id AuthRequired stored for this request.
func callerID(c *fiber.Ctx) string {
	id, _ := middleware.UserID(c)
	return id
}
