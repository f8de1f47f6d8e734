package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"notesync/backend"
	"notesync/validator"
)

// Deps is what the HTTP handlers need from the backend.
type Deps struct {
	Store     *backend.Store
	JWT       *backend.JWT
	Validator *validator.Validator
	Logger    *slog.Logger
}

func success(c *fiber.Ctx, data any) error {
	return c.JSON(data)
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func noContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func validationFailed(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   verrs.Error(),
			"details": verrs,
		})
	}
	return badRequest(c, err.Error())
}

// storeError maps backend errors to HTTP responses.
func storeError(c *fiber.Ctx, d *Deps, message string, err error) error {
	switch {
	case errors.Is(err, backend.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, backend.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, backend.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, backend.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}
	return serverErrorWithDetails(c, d.Logger, message, err)
}

func serverErrorWithDetails(c *fiber.Ctx, logger *slog.Logger, message string, err error) error {
	requestID := ""
	if id, ok := c.Locals("requestID").(string); ok {
		requestID = id
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Error("server error",
		"request_id", requestID,
		"method", c.Method(),
		"path", c.Path(),
		"message", message,
		"error", err,
	)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}

// paramID parses a positive integer route parameter.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// bind parses and validates a JSON body. It writes the error response
// itself and reports whether the handler should continue.
func bind(c *fiber.Ctx, d *Deps, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, badRequest(c, "Invalid request body")
	}
	if err := d.Validator.Validate(dst); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}
