package services

import (
	"errors"
	"testing"

	"notesync/api"
	"notesync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGroupService_Create(t *testing.T) {
	tests := []struct {
		name           string
		req            models.GroupRequest
		mockAPISetup   func(*MockGroupsAPI)
		mockStoreSetup func(*MockGroupStore)
		expectError    bool
	}{
		{
			name: "Success - Mirrored after backend accepts",
			req:  models.GroupRequest{Name: "Family"},
			mockAPISetup: func(api *MockGroupsAPI) {
				api.On("Create", mock.Anything, models.GroupRequest{Name: "Family"}).
					Return(&models.Group{ID: 3, Name: "Family", OwnerID: "u-1"}, nil)
			},
			mockStoreSetup: func(store *MockGroupStore) {
				store.On("UpsertGroup", mock.Anything, &models.Group{ID: 3, Name: "Family", OwnerID: "u-1"}).Return(nil)
			},
		},
		{
			name: "Success - Cache failure does not fail the call",
			req:  models.GroupRequest{Name: "Family"},
			mockAPISetup: func(api *MockGroupsAPI) {
				api.On("Create", mock.Anything, mock.Anything).Return(&models.Group{ID: 3, Name: "Family"}, nil)
			},
			mockStoreSetup: func(store *MockGroupStore) {
				store.On("UpsertGroup", mock.Anything, mock.Anything).Return(errors.New("disk full"))
			},
		},
		{
			name: "Error - Backend rejects, nothing cached",
			req:  models.GroupRequest{Name: "Family"},
			mockAPISetup: func(api *MockGroupsAPI) {
				api.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("offline"))
			},
			expectError: true,
		},
		{
			name:        "Error - Missing name",
			req:         models.GroupRequest{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAPI := new(MockGroupsAPI)
			mockStore := new(MockGroupStore)
			if tt.mockAPISetup != nil {
				tt.mockAPISetup(mockAPI)
			}
			if tt.mockStoreSetup != nil {
				tt.mockStoreSetup(mockStore)
			}

			service := NewGroupService(mockStore, mockAPI, testValidator, quietLogger())

			group, err := service.Create(testContext(t), tt.req)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, group)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(3), group.ID)
			}
			mockAPI.AssertExpectations(t)
			mockStore.AssertExpectations(t)
		})
	}
}

func TestGroupService_Refresh(t *testing.T) {
	mockAPI := new(MockGroupsAPI)
	mockStore := new(MockGroupStore)
	remote := []models.Group{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}

	mockAPI.On("List", mock.Anything).Return(remote, nil)
	mockStore.On("ReplaceGroups", mock.Anything, remote).Return(nil)

	service := NewGroupService(mockStore, mockAPI, testValidator, quietLogger())

	groups, err := service.Refresh(testContext(t))
	require.NoError(t, err)
	assert.Len(t, groups, 2)
	mockStore.AssertExpectations(t)
}

func TestGroupService_RefreshOfflineKeepsCache(t *testing.T) {
	mockAPI := new(MockGroupsAPI)
	mockStore := new(MockGroupStore)

	mockAPI.On("List", mock.Anything).Return(nil, errors.New("offline"))

	service := NewGroupService(mockStore, mockAPI, testValidator, quietLogger())

	groups, err := service.Refresh(testContext(t))
	assert.Error(t, err)
	assert.Nil(t, groups)
	mockStore.AssertNotCalled(t, "ReplaceGroups", mock.Anything, mock.Anything)
}

func TestGroupService_Get(t *testing.T) {
	t.Run("Falls back to cache when offline", func(t *testing.T) {
		mockAPI := new(MockGroupsAPI)
		mockStore := new(MockGroupStore)
		mockAPI.On("Get", mock.Anything, int64(3)).Return(nil, errors.New("offline"))
		mockStore.On("GetGroup", mock.Anything, int64(3)).Return(&models.Group{ID: 3, Name: "cached"}, nil)

		service := NewGroupService(mockStore, mockAPI, testValidator, quietLogger())

		group, err := service.Get(testContext(t), 3)
		require.NoError(t, err)
		assert.Equal(t, "cached", group.Name)
	})

	t.Run("Drops cache when backend says gone", func(t *testing.T) {
		mockAPI := new(MockGroupsAPI)
		mockStore := new(MockGroupStore)
		mockAPI.On("Get", mock.Anything, int64(3)).Return(nil, &api.Error{StatusCode: 404, Message: "group not found"})
		mockStore.On("DeleteGroup", mock.Anything, int64(3)).Return(nil)

		service := NewGroupService(mockStore, mockAPI, testValidator, quietLogger())

		_, err := service.Get(testContext(t), 3)
		assert.ErrorIs(t, err, ErrGroupNotFound)
		mockStore.AssertExpectations(t)
	})
}

func TestGroupService_Members(t *testing.T) {
	mockAPI := new(MockGroupsAPI)
	mockStore := new(MockGroupStore)
	updated := &models.Group{ID: 3, Members: []models.User{{ID: "u-2", Role: models.RoleMember}}}

	mockAPI.On("AddMember", mock.Anything, int64(3), models.AddMemberRequest{UserID: "u-2", Role: models.RoleMember}).Return(updated, nil)
	mockStore.On("UpsertGroup", mock.Anything, updated).Return(nil)
	mockAPI.On("RemoveMember", mock.Anything, int64(3), "u-2").Return(nil)
	mockStore.On("RemoveGroupMember", mock.Anything, int64(3), "u-2").Return(nil)
	mockAPI.On("Leave", mock.Anything, int64(3)).Return(nil)
	mockStore.On("DeleteGroup", mock.Anything, int64(3)).Return(nil)

	service := NewGroupService(mockStore, mockAPI, testValidator, quietLogger())

	group, err := service.AddMember(testContext(t), 3, models.AddMemberRequest{UserID: "u-2"})
	require.NoError(t, err)
	assert.Len(t, group.Members, 1)

	require.NoError(t, service.RemoveMember(testContext(t), 3, "u-2"))
	require.NoError(t, service.Leave(testContext(t), 3))

	mockAPI.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestGroupService_LeaveFailureKeepsCache(t *testing.T) {
	mockAPI := new(MockGroupsAPI)
	mockStore := new(MockGroupStore)
	mockAPI.On("Leave", mock.Anything, int64(3)).Return(errors.New("offline"))

	service := NewGroupService(mockStore, mockAPI, testValidator, quietLogger())

	assert.Error(t, service.Leave(testContext(t), 3))
	mockStore.AssertNotCalled(t, "DeleteGroup", mock.Anything, mock.Anything)
}
