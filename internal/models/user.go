package models

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleStaff UserRole = "STAFF"
)

type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatMessage is one turn of the transcript attached to a staff member.
type ChatMessage struct {
	ID        string   `json:"id"`
	Role      ChatRole `json:"role"`
	Text      string   `json:"text"`
	Timestamp int64    `json:"timestamp"`
}

// User is a workspace member. The first user ever created becomes ADMIN and
// active; everyone who signs in after that starts as STAFF and inactive until
// an admin flips the flag.
type User struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Picture     string        `json:"picture"`
	Role        UserRole      `json:"role"`
	Bio         string        `json:"bio,omitempty"`
	IsActive    bool          `json:"isActive"`
	JoinedAt    int64         `json:"joinedAt"`
	ChatHistory []ChatMessage `json:"chatHistory,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
