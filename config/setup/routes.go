package setup

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"notesync/handlers"
	"notesync/middleware"
)

// RegisterRoutes mounts the REST API under /api.
func RegisterRoutes(fiberApp *fiber.App, d *handlers.Deps) {
	fiberApp.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	api := fiberApp.Group("/api")

	// Credential endpoints get a tighter per-IP budget
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "auth:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many sign-in attempts",
			})
		},
	}))
	auth.Post("/register", handlers.Register(d))
	auth.Post("/login", handlers.Login(d))

	protected := api.Group("", middleware.AuthRequired(d.JWT), limiter.New(limiter.Config{
		Max:        200,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID := middleware.GetUserID(c); userID != "" {
				return "user:" + userID
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded for your account",
			})
		},
	}))

	protected.Post("/notes/sync", handlers.SyncNotes(d))
	protected.Get("/notes", handlers.ListNotes(d))
	protected.Post("/notes", handlers.CreateNote(d))
	protected.Get("/notes/:id", handlers.GetNote(d))
	protected.Put("/notes/:id", handlers.UpdateNote(d))
	protected.Delete("/notes/:id", handlers.DeleteNote(d))
	protected.Post("/notes/:id/comments", handlers.AddNoteComment(d))

	protected.Get("/groups", handlers.ListGroups(d))
	protected.Post("/groups", handlers.CreateGroup(d))
	protected.Get("/groups/:id", handlers.GetGroup(d))
	protected.Put("/groups/:id", handlers.UpdateGroup(d))
	protected.Delete("/groups/:id", handlers.DeleteGroup(d))
	protected.Post("/groups/:id/members", handlers.AddMember(d))
	protected.Delete("/groups/:id/members/:userId", handlers.RemoveMember(d))
	protected.Post("/groups/:id/leave", handlers.LeaveGroup(d))

	protected.Get("/tasks", handlers.ListTasks(d))
	protected.Post("/tasks", handlers.CreateTask(d))
	protected.Get("/tasks/:id", handlers.GetTask(d))
	protected.Put("/tasks/:id", handlers.UpdateTask(d))
	protected.Delete("/tasks/:id", handlers.DeleteTask(d))
	protected.Post("/tasks/:id/comments", handlers.AddTaskComment(d))

	protected.Post("/analysis/audio", handlers.SubmitAudio(d))
	protected.Post("/analysis/transcript", handlers.SubmitTranscript(d))
	protected.Get("/analysis/:id", handlers.GetAnalysis(d))
}
