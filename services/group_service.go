package services

import (
	"context"
	"errors"
	"log/slog"

	"notesync/api"
	"notesync/models"
	"notesync/validator"
)

// GroupService is remote-first: every change goes to the backend, and only a
// change the backend accepted is mirrored into the local cache.
type GroupService struct {
	store     GroupStore
	api       GroupsAPI
	validator *validator.Validator
	logger    *slog.Logger
}

// NewGroupService creates a new group service
func NewGroupService(store GroupStore, groupsAPI GroupsAPI, v *validator.Validator, logger *slog.Logger) *GroupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupService{store: store, api: groupsAPI, validator: v, logger: logger}
}

// List returns the cached groups.
func (gs *GroupService) List(ctx context.Context) ([]models.Group, error) {
	return gs.store.ListGroups(ctx)
}

// Refresh replaces the local cache with the backend's list. On failure the
// cache is left as it was and the error is returned.
func (gs *GroupService) Refresh(ctx context.Context) ([]models.Group, error) {
	groups, err := gs.api.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := gs.store.ReplaceGroups(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Get fetches a group with members. When the backend is unreachable the
// cached copy is returned instead.
func (gs *GroupService) Get(ctx context.Context, id int64) (*models.Group, error) {
	group, err := gs.api.Get(ctx, id)
	if err == nil {
		gs.mirror(ctx, group)
		return group, nil
	}
	if errors.Is(err, api.ErrNotFound) {
		gs.forget(ctx, id)
		return nil, ErrGroupNotFound
	}

	cached, cacheErr := gs.store.GetGroup(ctx, id)
	if cacheErr != nil || cached == nil {
		return nil, err
	}
	gs.logger.Warn("serving cached group", "group_id", id, "error", err)
	return cached, nil
}

func (gs *GroupService) Create(ctx context.Context, req models.GroupRequest) (*models.Group, error) {
	if err := gs.validator.Validate(req); err != nil {
		return nil, err
	}
	group, err := gs.api.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	gs.mirror(ctx, group)
	return group, nil
}

func (gs *GroupService) Update(ctx context.Context, id int64, req models.GroupRequest) (*models.Group, error) {
	if err := gs.validator.Validate(req); err != nil {
		return nil, err
	}
	group, err := gs.api.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	gs.mirror(ctx, group)
	return group, nil
}

func (gs *GroupService) Delete(ctx context.Context, id int64) error {
	if err := gs.api.Delete(ctx, id); err != nil && !errors.Is(err, api.ErrNotFound) {
		return err
	}
	gs.forget(ctx, id)
	return nil
}

func (gs *GroupService) AddMember(ctx context.Context, id int64, req models.AddMemberRequest) (*models.Group, error) {
	if req.Role == "" {
		req.Role = models.RoleMember
	}
	if err := gs.validator.Validate(req); err != nil {
		return nil, err
	}
	group, err := gs.api.AddMember(ctx, id, req)
	if err != nil {
		return nil, err
	}
	gs.mirror(ctx, group)
	return group, nil
}

func (gs *GroupService) RemoveMember(ctx context.Context, id int64, userID string) error {
	if err := gs.api.RemoveMember(ctx, id, userID); err != nil {
		return err
	}
	if err := gs.store.RemoveGroupMember(ctx, id, userID); err != nil {
		gs.logger.Error("failed to mirror member removal", "group_id", id, "user_id", userID, "error", err)
	}
	return nil
}

// Leave removes the current user from a group and drops it from the cache.
func (gs *GroupService) Leave(ctx context.Context, id int64) error {
	if err := gs.api.Leave(ctx, id); err != nil {
		return err
	}
	gs.forget(ctx, id)
	return nil
}

// mirror caches a group the backend returned. The backend change already took
// effect, so a cache failure is logged rather than returned.
func (gs *GroupService) mirror(ctx context.Context, g *models.Group) {
	if err := gs.store.UpsertGroup(ctx, g); err != nil {
		gs.logger.Error("failed to cache group", "group_id", g.ID, "error", err)
	}
}

func (gs *GroupService) forget(ctx context.Context, id int64) {
	if err := gs.store.DeleteGroup(ctx, id); err != nil {
		gs.logger.Error("failed to drop cached group", "group_id", id, "error", err)
	}
}
