package handlers

import (
	"github.com/gofiber/fiber/v2"

	"notesync/middleware"
	"notesync/models"
)

func ListGroups(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		groups, err := d.Store.ListGroups(c.UserContext(), middleware.GetUserID(c))
		if err != nil {
			return storeError(c, d, "Failed to list groups", err)
		}
		return success(c, groups)
	}
}

func GetGroup(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid group id")
		}

		group, err := d.Store.GetGroup(c.UserContext(), middleware.GetUserID(c), id)
		if err != nil {
			return storeError(c, d, "Failed to fetch group", err)
		}
		return success(c, group)
	}
}

func CreateGroup(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.GroupRequest
		if ok, err := bind(c, d, &req); !ok {
			return err
		}

		group, err := d.Store.CreateGroup(c.UserContext(), middleware.GetUserID(c), req)
		if err != nil {
			return storeError(c, d, "Failed to create group", err)
		}
		return created(c, group)
	}
}

func UpdateGroup(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid group id")
		}
		var req models.GroupRequest
		if ok, err := bind(c, d, &req); !ok {
			return err
		}

		group, err := d.Store.UpdateGroup(c.UserContext(), middleware.GetUserID(c), id, req)
		if err != nil {
			return storeError(c, d, "Failed to update group", err)
		}
		return success(c, group)
	}
}

func DeleteGroup(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid group id")
		}

		if err := d.Store.DeleteGroup(c.UserContext(), middleware.GetUserID(c), id); err != nil {
			return storeError(c, d, "Failed to delete group", err)
		}
		return noContent(c)
	}
}

func AddMember(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid group id")
		}
		var req models.AddMemberRequest
		if ok, err := bind(c, d, &req); !ok {
			return err
		}

		group, err := d.Store.AddMember(c.UserContext(), middleware.GetUserID(c), id, req)
		if err != nil {
			return storeError(c, d, "Failed to add member", err)
		}
		return success(c, group)
	}
}

func RemoveMember(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid group id")
		}
		memberID := c.Params("userId")
		if memberID == "" {
			return badRequest(c, "userId is required")
		}

		if err := d.Store.RemoveMember(c.UserContext(), middleware.GetUserID(c), id, memberID); err != nil {
			return storeError(c, d, "Failed to remove member", err)
		}
		return noContent(c)
	}
}

func LeaveGroup(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid group id")
		}

		if err := d.Store.LeaveGroup(c.UserContext(), middleware.GetUserID(c), id); err != nil {
			return storeError(c, d, "Failed to leave group", err)
		}
		return noContent(c)
	}
}
