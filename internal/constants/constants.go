package constants

// Session
const (
	SessionCookieName = "zadaci_session"
)

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyWorkspace = "workspace"
	ContextKeyMember    = "workspace_member"
)

// Validation limits
const (
	MinPasswordLength = 8
)

// Pagination
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Invites
const (
	InviteCodeLength = 6
	InviteExpiryDays = 7
)

// Outbox dispatch
const (
	OutboxBatchSize   = 20
	OutboxMaxAttempts = 5
)
