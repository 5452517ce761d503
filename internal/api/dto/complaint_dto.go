package dto

import (
	"regexp"
	"strings"
	"time"

	"github.com/spec-kit/rail-complaints/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	pnrPattern   = regexp.MustCompile(`^\d{10}$`)
)

// SubmitComplaintRequest is the public intake payload.
type SubmitComplaintRequest struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       *string    `json:"phone,omitempty"`
	PNR         *string    `json:"pnr,omitempty"`
	TrainNumber *string    `json:"trainNumber,omitempty"`
	TrainName   *string    `json:"trainName,omitempty"`
	JourneyDate *time.Time `json:"journeyDate,omitempty"`
	Station     *string    `json:"station,omitempty"`
	Coach       *string    `json:"coach,omitempty"`
	Seat        *string    `json:"seat,omitempty"`
	Category    string     `json:"category"`
	Subcategory *string    `json:"subcategory,omitempty"`
	Description string     `json:"description"`
	Priority    *string    `json:"priority,omitempty"`
}

// Validate checks shape constraints before the payload reaches the core.
// It returns field-level messages, or nil when the request is acceptable.
func (r SubmitComplaintRequest) Validate() map[string]any {
	details := map[string]any{}

	if strings.TrimSpace(r.Name) == "" {
		details["name"] = "name is required"
	}
	if strings.TrimSpace(r.Email) == "" {
		details["email"] = "email is required"
	} else if !emailPattern.MatchString(strings.TrimSpace(r.Email)) {
		details["email"] = "email is invalid"
	}
	if r.Phone != nil && !phonePattern.MatchString(*r.Phone) {
		details["phone"] = "phone must be a valid 10-digit mobile number"
	}
	if r.PNR != nil && !pnrPattern.MatchString(*r.PNR) {
		details["pnr"] = "pnr must be 10 digits"
	}
	if !domain.ValidCategory(domain.ComplaintCategory(r.Category)) {
		details["category"] = "unknown category"
	}
	if len(strings.TrimSpace(r.Description)) < 10 {
		details["description"] = "description must be at least 10 characters"
	}
	if r.Priority != nil && !domain.ValidPriority(domain.ComplaintPriority(*r.Priority)) {
		details["priority"] = "unknown priority"
	}

	if len(details) == 0 {
		return nil
	}
	return details
}

// UpdateComplaintRequest is the admin triage patch payload.
type UpdateComplaintRequest struct {
	Status            *string `json:"status,omitempty"`
	Priority          *string `json:"priority,omitempty"`
	AssigneeID        *string `json:"assigneeId,omitempty"`
	Department        *string `json:"department,omitempty"`
	ResolutionDetails *string `json:"resolutionDetails,omitempty"`
	Comment           *string `json:"comment,omitempty"`
}

// Validate rejects empty patches and unknown enumeration values.
func (r UpdateComplaintRequest) Validate() map[string]any {
	details := map[string]any{}

	if r.Status == nil && r.Priority == nil && r.AssigneeID == nil &&
		r.Department == nil && r.ResolutionDetails == nil {
		details["patch"] = "at least one mutable field is required"
	}
	if r.Status != nil && !domain.ValidStatus(domain.ComplaintStatus(*r.Status)) {
		details["status"] = "unknown status"
	}
	if r.Priority != nil && !domain.ValidPriority(domain.ComplaintPriority(*r.Priority)) {
		details["priority"] = "unknown priority"
	}

	if len(details) == 0 {
		return nil
	}
	return details
}

// JourneyContext is the optional travel detail block echoed in responses.
type JourneyContext struct {
	PNR         *string    `json:"pnr,omitempty"`
	TrainNumber *string    `json:"trainNumber,omitempty"`
	TrainName   *string    `json:"trainName,omitempty"`
	JourneyDate *time.Time `json:"journeyDate,omitempty"`
	Station     *string    `json:"station,omitempty"`
	Coach       *string    `json:"coach,omitempty"`
	Seat        *string    `json:"seat,omitempty"`
}

// StatusUpdateResponse is one audit entry in staff responses.
type StatusUpdateResponse struct {
	Status    domain.ComplaintStatus `json:"status"`
	UpdatedBy string                 `json:"updatedBy"`
	UpdatedAt time.Time              `json:"updatedAt"`
	Comment   *string                `json:"comment,omitempty"`
}

// PublicStatusUpdateResponse is one audit entry in the public tracking view.
// The acting account reference is withheld.
type PublicStatusUpdateResponse struct {
	Status    domain.ComplaintStatus `json:"status"`
	UpdatedAt time.Time              `json:"updatedAt"`
	Comment   *string                `json:"comment,omitempty"`
}

// AccountRefResponse is the expanded identity of an assignee or resolver.
type AccountRefResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ComplaintResponse is the staff-facing complaint shape.
type ComplaintResponse struct {
	ID                string                    `json:"id"`
	ComplaintID       string                    `json:"complaintId"`
	Name              string                    `json:"name"`
	Email             string                    `json:"email"`
	Phone             *string                   `json:"phone,omitempty"`
	AccountID         *string                   `json:"accountId,omitempty"`
	Journey           JourneyContext            `json:"journey"`
	Category          domain.ComplaintCategory  `json:"category"`
	Subcategory       *string                   `json:"subcategory,omitempty"`
	Description       string                    `json:"description"`
	Status            domain.ComplaintStatus    `json:"status"`
	Priority          domain.ComplaintPriority  `json:"priority"`
	AssigneeID        *string                   `json:"assigneeId,omitempty"`
	Assignee          *AccountRefResponse       `json:"assignee,omitempty"`
	Department        *string                   `json:"department,omitempty"`
	ResolutionDetails *string                   `json:"resolutionDetails,omitempty"`
	ResolvedAt        *time.Time                `json:"resolvedAt,omitempty"`
	ResolvedBy        *string                   `json:"resolvedBy,omitempty"`
	Resolver          *AccountRefResponse       `json:"resolver,omitempty"`
	StatusUpdates     []StatusUpdateResponse    `json:"statusUpdates,omitempty"`
	CreatedAt         time.Time                 `json:"createdAt"`
	UpdatedAt         time.Time                 `json:"updatedAt"`
}

// TrackComplaintResponse is the public projection: no submitter account
// reference, no assignee, no classifier fields.
type TrackComplaintResponse struct {
	ComplaintID       string                       `json:"complaintId"`
	Status            domain.ComplaintStatus       `json:"status"`
	Priority          domain.ComplaintPriority     `json:"priority"`
	Category          domain.ComplaintCategory     `json:"category"`
	Subcategory       *string                      `json:"subcategory,omitempty"`
	Description       string                       `json:"description"`
	Journey           JourneyContext               `json:"journey"`
	Department        *string                      `json:"department,omitempty"`
	StatusUpdates     []PublicStatusUpdateResponse `json:"statusUpdates"`
	ResolutionDetails *string                      `json:"resolutionDetails,omitempty"`
	ResolvedAt        *time.Time                   `json:"resolvedAt,omitempty"`
	CreatedAt         time.Time                    `json:"createdAt"`
	UpdatedAt         time.Time                    `json:"updatedAt"`
}

// PaginationResponse mirrors the query engine metadata.
type PaginationResponse struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// ComplaintListResponse is one admin result page.
type ComplaintListResponse struct {
	Complaints []ComplaintResponse `json:"complaints"`
	Pagination PaginationResponse  `json:"pagination"`
}

// DeleteComplaintResponse echoes the removed reference.
type DeleteComplaintResponse struct {
	ComplaintID string `json:"complaintId"`
}
