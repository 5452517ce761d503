package domain

import (
	"fmt"
	"regexp"
	"time"
)

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "pending"
	ComplaintStatusInProgress ComplaintStatus = "in_progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
	ComplaintStatusRejected   ComplaintStatus = "rejected"
)

// ComplaintPriority enumerates triage urgency.
type ComplaintPriority string

const (
	ComplaintPriorityLow    ComplaintPriority = "low"
	ComplaintPriorityMedium ComplaintPriority = "medium"
	ComplaintPriorityHigh   ComplaintPriority = "high"
	ComplaintPriorityUrgent ComplaintPriority = "urgent"
)

// ComplaintCategory enumerates the closed complaint classification set.
type ComplaintCategory string

const (
	CategoryCleanliness   ComplaintCategory = "cleanliness"
	CategoryStaffBehavior ComplaintCategory = "staff_behavior"
	CategoryFacilities    ComplaintCategory = "facilities"
	CategorySecurity      ComplaintCategory = "security"
	CategoryTicketing     ComplaintCategory = "ticketing"
	CategoryFoodQuality   ComplaintCategory = "food_quality"
	CategoryMaintenance   ComplaintCategory = "maintenance"
	CategoryOther         ComplaintCategory = "other"
)

// Complaint is the aggregate for passenger grievances.
type Complaint struct {
	ID        string
	Reference string

	Name      string
	Email     string
	Phone     *string
	AccountID *string

	PNR         *string
	TrainNumber *string
	TrainName   *string
	JourneyDate *time.Time
	Station     *string
	Coach       *string
	Seat        *string

	Category     ComplaintCategory
	Subcategory  *string
	Description  string
	AICategory   *ComplaintCategory
	AIConfidence *float64

	Status     ComplaintStatus
	Priority   ComplaintPriority
	AssigneeID *string
	Department *string

	ResolutionDetails *string
	ResolvedAt        *time.Time
	ResolvedBy        *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusUpdate is one append-only audit entry in a complaint's trail.
type StatusUpdate struct {
	ID          string
	ComplaintID string
	Status      ComplaintStatus
	UpdatedBy   string
	Comment     *string
	CreatedAt   time.Time
}

// referencePattern matches the public complaint reference shape.
var referencePattern = regexp.MustCompile(`^CMP-\d{4}-\d{4}$`)

// FormatReference builds the human-facing reference for a per-year sequence value.
func FormatReference(year int, sequence int64) string {
	return fmt.Sprintf("CMP-%d-%04d", year, sequence)
}

// IsValidReference reports whether a string has the public reference shape.
func IsValidReference(ref string) bool {
	return referencePattern.MatchString(ref)
}

// ValidStatus reports membership in the status enumeration.
func ValidStatus(s ComplaintStatus) bool {
	switch s {
	case ComplaintStatusPending, ComplaintStatusInProgress, ComplaintStatusResolved, ComplaintStatusRejected:
		return true
	}
	return false
}

// ValidPriority reports membership in the priority enumeration.
func ValidPriority(p ComplaintPriority) bool {
	switch p {
	case ComplaintPriorityLow, ComplaintPriorityMedium, ComplaintPriorityHigh, ComplaintPriorityUrgent:
		return true
	}
	return false
}

// ValidCategory reports membership in the category enumeration.
func ValidCategory(c ComplaintCategory) bool {
	switch c {
	case CategoryCleanliness, CategoryStaffBehavior, CategoryFacilities, CategorySecurity,
		CategoryTicketing, CategoryFoodQuality, CategoryMaintenance, CategoryOther:
		return true
	}
	return false
}

// CanTransition is the single seam for status-transition policy. Staff may
// currently move a complaint between any two statuses; tightening the graph
// only requires changing this function.
func CanTransition(from, to ComplaintStatus) bool {
	return ValidStatus(from) && ValidStatus(to)
}
