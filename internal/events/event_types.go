package events

import (
	"time"

	"github.com/spec-kit/rail-complaints/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted     EventType = "complaint_submitted"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintTriageUpdated EventType = "complaint_triage_updated"
	EventComplaintDeleted       EventType = "complaint_deleted"
	EventAccountLoggedIn        EventType = "account_logged_in"
	EventAccountLoggedOut       EventType = "account_logged_out"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Reference string      `json:"reference,omitempty"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	Category  domain.ComplaintCategory `json:"category"`
	Priority  domain.ComplaintPriority `json:"priority"`
	Anonymous bool                     `json:"anonymous"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
	Comment   string                 `json:"comment,omitempty"`
}

// ComplaintTriageUpdatedPayload payload.
type ComplaintTriageUpdatedPayload struct {
	Priority   *domain.ComplaintPriority `json:"priority,omitempty"`
	AssigneeID *string                   `json:"assignee_id,omitempty"`
	Department *string                   `json:"department,omitempty"`
}

// AccountSessionPayload payload for login/logout events.
type AccountSessionPayload struct {
	Email string             `json:"email"`
	Role  domain.AccountRole `json:"role"`
}
