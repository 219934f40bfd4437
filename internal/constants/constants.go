package constants

// Session
const (
	SessionCookieName = "taskflow_session"
	ContextKeyUserID  = "user_id"
	SessionMaxAge     = 86400 * 7
)

// Well-known keys of the durable state layout. The whole task and user
// collections are JSON-serialized under the first two; the third holds the
// most recent session user ID.
const (
	StateKeyTasks   = "taskflow_tasks"
	StateKeyUsers   = "taskflow_users"
	StateKeySession = "taskflow_user_id"
)

// Task defaults
const (
	DefaultTaskTitle = "Untitled"
)

// AI advisory
const (
	MinSuggestedSubtasks = 4
	MaxSuggestedSubtasks = 6
)
