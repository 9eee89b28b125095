package models

// Status is the shared lifecycle of projects and tasks
type Status string

const (
	StatusIdea       Status = "IDEA"
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN PROGRESS"
	StatusInReview   Status = "IN REVIEW"
	StatusCompleted  Status = "COMPLETED"
	StatusAbandoned  Status = "ABANDONED"
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusIdea, StatusTodo, StatusInProgress, StatusInReview, StatusCompleted, StatusAbandoned:
		return true
	}
	return false
}

// LogsActivity reports whether entering this status appends a task
// activity row. Only terminal-ish transitions feed the productivity stats.
func (s Status) LogsActivity() bool {
	switch s {
	case StatusCompleted, StatusInReview, StatusAbandoned:
		return true
	}
	return false
}

// Priority orders projects and tasks by urgency
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
	PriorityNone   Priority = "NONE"
)

// IsValid checks if the priority value is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow, PriorityNone:
		return true
	}
	return false
}

// Role is a member's standing within a workspace
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleMember Role = "MEMBER"
	RoleGuest  Role = "GUEST"
)

var roleRank = map[Role]int{
	RoleGuest:  0,
	RoleMember: 1,
	RoleOwner:  2,
}

// IsValid checks if the role value is valid
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role grants at least the given role's power
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// InviteStatus is the state of a workspace invite. Accepted and declined
// invites are deleted rather than kept, so PENDING is the only stored value.
type InviteStatus string

const (
	InvitePending InviteStatus = "PENDING"
)
