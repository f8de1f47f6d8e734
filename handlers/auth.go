package handlers

import (
	"github.com/gofiber/fiber/v2"

	"notesync/models"
)

// Register creates an account and returns a token pair.
func Register(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.RegisterRequest
		if ok, err := bind(c, d, &req); !ok {
			return err
		}

		tokens, err := d.Store.Register(c.UserContext(), d.JWT, req)
		if err != nil {
			return storeError(c, d, "Failed to register", err)
		}
		return created(c, tokens)
	}
}

// Login exchanges a username or email and password for a token pair.
func Login(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if ok, err := bind(c, d, &req); !ok {
			return err
		}

		tokens, err := d.Store.Login(c.UserContext(), d.JWT, req)
		if err != nil {
			return storeError(c, d, "Failed to sign in", err)
		}
		return success(c, tokens)
	}
}
