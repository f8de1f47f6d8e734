package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"notesync/middleware"
	"notesync/models"
)

// ListTasks returns the caller's tasks, optionally limited to one group
// with ?groupId=.
func ListTasks(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var groupID *int64
		if raw := c.Query("groupId"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return badRequest(c, "groupId must be a number")
			}
			groupID = &id
		}

		tasks, err := d.Store.ListTasks(c.UserContext(), middleware.GetUserID(c), groupID)
		if err != nil {
			return storeError(c, d, "Failed to list tasks", err)
		}
		return success(c, tasks)
	}
}

func GetTask(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid task id")
		}

		task, err := d.Store.GetTask(c.UserContext(), middleware.GetUserID(c), id)
		if err != nil {
			return storeError(c, d, "Failed to fetch task", err)
		}
		return success(c, task)
	}
}

func CreateTask(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.TaskRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if req.Priority == "" {
			req.Priority = models.PriorityMedium
		}
		if err := d.Validator.Validate(&req); err != nil {
			return validationFailed(c, err)
		}

		task, err := d.Store.CreateTask(c.UserContext(), middleware.GetUserID(c), req)
		if err != nil {
			return storeError(c, d, "Failed to create task", err)
		}
		return created(c, task)
	}
}

func UpdateTask(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid task id")
		}
		var req models.TaskRequest
		if ok, err := bind(c, d, &req); !ok {
			return err
		}

		task, err := d.Store.UpdateTask(c.UserContext(), middleware.GetUserID(c), id, req)
		if err != nil {
			return storeError(c, d, "Failed to update task", err)
		}
		return success(c, task)
	}
}

func DeleteTask(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid task id")
		}

		if err := d.Store.DeleteTask(c.UserContext(), middleware.GetUserID(c), id); err != nil {
			return storeError(c, d, "Failed to delete task", err)
		}
		return noContent(c)
	}
}

func AddTaskComment(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid task id")
		}
		var req models.AddCommentRequest
		if ok, err := bind(c, d, &req); !ok {
			return err
		}

		comment, err := d.Store.AddTaskComment(c.UserContext(), middleware.GetUserID(c), id, req.Text)
		if err != nil {
			return storeError(c, d, "Failed to add comment", err)
		}
		return created(c, comment)
	}
}
