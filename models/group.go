package models

// Group roles.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

type Group struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	OwnerID     string `json:"ownerId"`
	CreatedAt   int64  `json:"createdAt"`
	MemberCount int    `json:"memberCount"`
	Members     []User `json:"members,omitempty"`
}

// GroupRequest is the create/update payload for groups.
type GroupRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// AddMemberRequest adds a user to a group with the given role.
type AddMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"omitempty,oneof=owner member"`
}
