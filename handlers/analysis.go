package handlers

import (
	"io"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"notesync/middleware"
	"notesync/models"
	"notesync/pkg/audio"
)

const maxAudioBytes = 25 << 20

// SubmitAudio queues a recording uploaded as the multipart field "file".
func SubmitAudio(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return badRequest(c, "file is required")
		}
		if fh.Size > maxAudioBytes {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "Audio file too large"})
		}

		f, err := fh.Open()
		if err != nil {
			return serverErrorWithDetails(c, d.Logger, "Failed to read upload", err)
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxAudioBytes+1))
		if err != nil {
			return serverErrorWithDetails(c, d.Logger, "Failed to read upload", err)
		}
		if len(data) == 0 {
			return badRequest(c, "file is empty")
		}
		if _, err := audio.Validate(data); err != nil {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"error": err.Error()})
		}

		job, err := d.Store.SubmitJob(c.UserContext(), middleware.GetUserID(c),
			models.JobTypeAudio, filepath.Base(fh.Filename), data)
		if err != nil {
			return storeError(c, d, "Failed to queue analysis", err)
		}
		return c.Status(fiber.StatusAccepted).JSON(job)
	}
}

// SubmitTranscript queues text for action-item extraction.
func SubmitTranscript(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.TranscriptRequest
		if ok, err := bind(c, d, &req); !ok {
			return err
		}

		job, err := d.Store.SubmitJob(c.UserContext(), middleware.GetUserID(c),
			models.JobTypeTask, "", []byte(req.Text))
		if err != nil {
			return storeError(c, d, "Failed to queue analysis", err)
		}
		return c.Status(fiber.StatusAccepted).JSON(job)
	}
}

func GetAnalysis(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid job id")
		}

		job, err := d.Store.GetJob(c.UserContext(), middleware.GetUserID(c), id)
		if err != nil {
			return storeError(c, d, "Failed to fetch job", err)
		}
		return success(c, job)
	}
}
