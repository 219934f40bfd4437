package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskflow-hq/taskflow-api/internal/models"
	"github.com/taskflow-hq/taskflow-api/internal/utils"
)

// IdentityProfile is the decoded payload of an identity token: the only
// fields the core ever reads from it.
type IdentityProfile struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// UserPatch is a partial update for a user record.
type UserPatch struct {
	Name    *string
	Picture *string
	Bio     *string
}

// Authenticate finds or creates a user for the given identity profile. The
// first user ever created is auto-provisioned as ADMIN and active; every
// later one starts as STAFF and inactive until an admin approves them.
func Authenticate(s State, profile IdentityProfile) (State, models.User) {
	if existing, ok := s.FindUserByEmail(profile.Email); ok {
		return s, existing
	}

	isFirst := len(s.Users) == 0
	user := models.User{
		ID:       profile.Sub,
		Name:     profile.Name,
		Email:    profile.Email,
		Picture:  profile.Picture,
		Role:     models.RoleStaff,
		IsActive: isFirst,
		JoinedAt: time.Now().UnixMilli(),
	}
	if isFirst {
		user.Role = models.RoleAdmin
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	next := s.Clone()
	next.Users = append(next.Users, user)
	return next, user
}

// RegisterStaff appends a staff member added through the roster. Unlike
// token sign-ins, roster registrations are active immediately because an
// admin created them. The avatar is a generated placeholder.
func RegisterStaff(s State, name, email string) (State, models.User) {
	user := models.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Picture:  utils.AvatarURL(name),
		Role:     models.RoleStaff,
		IsActive: true,
		JoinedAt: time.Now().UnixMilli(),
	}
	next := s.Clone()
	next.Users = append(next.Users, user)
	return next, user
}

// UpdateUser merges a patch into the user with the given ID. An absent ID
// returns the state unchanged and a nil user.
func UpdateUser(s State, id string, patch UserPatch) (State, *models.User) {
	next := s.Clone()
	for i := range next.Users {
		if next.Users[i].ID != id {
			continue
		}
		u := &next.Users[i]
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.Picture != nil {
			u.Picture = *patch.Picture
		}
		if patch.Bio != nil {
			u.Bio = *patch.Bio
		}
		updated := *u
		return next, &updated
	}
	return s, nil
}

// ToggleUserActive flips the active flag. Applying it twice restores the
// original value. An absent ID is a no-op.
func ToggleUserActive(s State, id string) (State, *models.User) {
	next := s.Clone()
	for i := range next.Users {
		if next.Users[i].ID != id {
			continue
		}
		next.Users[i].IsActive = !next.Users[i].IsActive
		updated := next.Users[i]
		return next, &updated
	}
	return s, nil
}

// DeleteUser removes a user and clears AssignedTo on every task that pointed
// at them. Tasks themselves are never deleted.
func DeleteUser(s State, id string) State {
	next := s.Clone()

	users := make([]models.User, 0, len(next.Users))
	for _, u := range next.Users {
		if u.ID != id {
			users = append(users, u)
		}
	}
	next.Users = users

	for i := range next.Tasks {
		if next.Tasks[i].AssignedTo == id {
			next.Tasks[i].AssignedTo = ""
		}
	}
	return next
}

// SetChatHistory replaces a user's transcript after a completed chat turn.
// An absent ID is a no-op.
func SetChatHistory(s State, id string, history []models.ChatMessage) (State, *models.User) {
	next := s.Clone()
	for i := range next.Users {
		if next.Users[i].ID != id {
			continue
		}
		next.Users[i].ChatHistory = append([]models.ChatMessage{}, history...)
		updated := next.Users[i]
		return next, &updated
	}
	return s, nil
}
