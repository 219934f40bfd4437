package dto

import (
	"github.com/taskflow-hq/taskflow-api/internal/models"
	"github.com/taskflow-hq/taskflow-api/internal/store"
)

// TokenRequest is the identity-token exchange payload.
type TokenRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// RegisterStaffRequest adds a staff member to the roster.
type RegisterStaffRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// UpdateUserRequest is the wire form of a user patch.
type UpdateUserRequest struct {
	Name    *string `json:"name"`
	Picture *string `json:"picture"`
	Bio     *string `json:"bio"`
}

// ChatRequest submits one message to a staff member's chat persona.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// UserView is a user plus their derived workload. The chat transcript is
// omitted from roster listings.
type UserView struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Picture  string          `json:"picture"`
	Role     models.UserRole `json:"role"`
	Bio      string          `json:"bio,omitempty"`
	IsActive bool            `json:"isActive"`
	JoinedAt int64           `json:"joinedAt"`
	Workload store.Workload  `json:"workload"`
}

// ToUserView converts a user, deriving the workload from the task
// collection.
func ToUserView(u models.User, tasks []models.Task) UserView {
	return UserView{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Picture:  u.Picture,
		Role:     u.Role,
		Bio:      u.Bio,
		IsActive: u.IsActive,
		JoinedAt: u.JoinedAt,
		Workload: store.UserWorkload(tasks, u.ID),
	}
}

// ToUserViews converts the roster, preserving order.
func ToUserViews(users []models.User, tasks []models.Task) []UserView {
	out := make([]UserView, len(users))
	for i, u := range users {
		out[i] = ToUserView(u, tasks)
	}
	return out
}
