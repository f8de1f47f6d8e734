package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"notesync/middleware"
	"notesync/models"
)

// SyncNotes merges the caller's pending changes and returns what changed
// since their baseline.
func SyncNotes(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.SyncRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		for i := range req.Notes {
			if err := d.Validator.Validate(&req.Notes[i]); err != nil {
				return c.JSON(models.SyncResponse{
					Notes:          []models.Note{},
					DeletedNoteIDs: []int64{},
					Success:        false,
					Message:        "note " + req.Notes[i].ClientID + ": " + err.Error(),
				})
			}
		}

		resp, err := d.Store.SyncNotes(c.UserContext(), middleware.GetUserID(c), req)
		if err != nil {
			return serverErrorWithDetails(c, d.Logger, "Failed to sync notes", err)
		}
		return success(c, resp)
	}
}

func ListNotes(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var groupID *int64
		if raw := c.Query("groupId"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return badRequest(c, "groupId must be a number")
			}
			groupID = &id
		}

		notes, err := d.Store.ListNotes(c.UserContext(), middleware.GetUserID(c), groupID)
		if err != nil {
			return storeError(c, d, "Failed to list notes", err)
		}
		return success(c, notes)
	}
}

func GetNote(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid note id")
		}

		note, err := d.Store.GetNote(c.UserContext(), middleware.GetUserID(c), id)
		if err != nil {
			return storeError(c, d, "Failed to fetch note", err)
		}
		return success(c, note)
	}
}

func CreateNote(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.Note
		if ok, err := bind(c, d, &req); !ok {
			return err
		}

		note, err := d.Store.CreateNote(c.UserContext(), middleware.GetUserID(c), req)
		if err != nil {
			return storeError(c, d, "Failed to create note", err)
		}
		return created(c, note)
	}
}

func UpdateNote(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid note id")
		}
		var req models.Note
		if ok, err := bind(c, d, &req); !ok {
			return err
		}

		note, err := d.Store.UpdateNote(c.UserContext(), middleware.GetUserID(c), id, req)
		if err != nil {
			return storeError(c, d, "Failed to update note", err)
		}
		return success(c, note)
	}
}

func DeleteNote(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid note id")
		}

		if err := d.Store.DeleteNote(c.UserContext(), middleware.GetUserID(c), id); err != nil {
			return storeError(c, d, "Failed to delete note", err)
		}
		return noContent(c)
	}
}

func AddNoteComment(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid note id")
		}
		var req models.AddCommentRequest
		if ok, err := bind(c, d, &req); !ok {
			return err
		}

		comment, err := d.Store.AddNoteComment(c.UserContext(), middleware.GetUserID(c), id, req.Text)
		if err != nil {
			return storeError(c, d, "Failed to add comment", err)
		}
		return created(c, comment)
	}
}
