package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"notesync/models"
)

type GroupsClient struct {
	c *Client
}

func NewGroupsClient(c *Client) *GroupsClient {
	return &GroupsClient{c: c}
}

func (g *GroupsClient) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := g.c.doJSON(ctx, g.c.authed, http.MethodGet, "/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (g *GroupsClient) Get(ctx context.Context, id int64) (*models.Group, error) {
	var group models.Group
	if err := g.c.doJSON(ctx, g.c.authed, http.MethodGet, groupPath(id), nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (g *GroupsClient) Create(ctx context.Context, req models.GroupRequest) (*models.Group, error) {
	var group models.Group
	if err := g.c.doJSON(ctx, g.c.authed, http.MethodPost, "/groups", req, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (g *GroupsClient) Update(ctx context.Context, id int64, req models.GroupRequest) (*models.Group, error) {
	var group models.Group
	if err := g.c.doJSON(ctx, g.c.authed, http.MethodPut, groupPath(id), req, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (g *GroupsClient) Delete(ctx context.Context, id int64) error {
	return g.c.doJSON(ctx, g.c.authed, http.MethodDelete, groupPath(id), nil, nil)
}

// AddMember returns the group with its updated member list.
func (g *GroupsClient) AddMember(ctx context.Context, id int64, req models.AddMemberRequest) (*models.Group, error) {
	var group models.Group
	if err := g.c.doJSON(ctx, g.c.authed, http.MethodPost, groupPath(id)+"/members", req, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (g *GroupsClient) RemoveMember(ctx context.Context, id int64, userID string) error {
	path := groupPath(id) + "/members/" + url.PathEscape(userID)
	return g.c.doJSON(ctx, g.c.authed, http.MethodDelete, path, nil, nil)
}

// Leave removes the signed-in user from the group.
func (g *GroupsClient) Leave(ctx context.Context, id int64) error {
	return g.c.doJSON(ctx, g.c.authed, http.MethodPost, groupPath(id)+"/leave", nil, nil)
}

func groupPath(id int64) string {
	return fmt.Sprintf("/groups/%d", id)
}
