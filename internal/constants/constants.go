package constants

import "time"

// Context keys
const (
	ContextKeyTask   = "task"
	ContextKeyClient = "client"

	ContextKeyRequestID = "request_id"
)

// HeaderRequestID carries the request id in and out.
const HeaderRequestID = "X-Request-ID"

// Session keys
const (
	SessionCookieName    = "ledger_session"
	SessionKeyViewMode   = "dashboard_mode"
	SessionKeyViewCursor = "dashboard_cursor"
)

// Date layouts
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Subtask defaults
const (
	DefaultSubtaskAssignee = "Me"
)

// AI limits
const (
	MaxAISuggestedSubtasks = 10
	MaxAIInputLength       = 4000
	DefaultAITimeout       = 20 * time.Second
)

// Profile defaults
const (
	DefaultProfileName     = "User"
	DefaultProfileRole     = "Admin"
	DefaultProfileInitials = "ME"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 500
)
