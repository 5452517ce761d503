package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/rail-complaints/internal/domain"
	"github.com/spec-kit/rail-complaints/internal/events"
	"github.com/spec-kit/rail-complaints/internal/repository"
	apperrors "github.com/spec-kit/rail-complaints/pkg/util"
)

// ComplaintService coordinates the complaint lifecycle and the admin query
// engine over it.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	accounts   repository.AccountRepository
	dispatcher events.Dispatcher
}

// ComplaintDependencies bundles repositories for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	AccountRepo   repository.AccountRepository
	Dispatcher    events.Dispatcher
}

// SubmitInput describes a public submission payload.
type SubmitInput struct {
	Name        string
	Email       string
	Phone       *string
	AccountID   *string
	PNR         *string
	TrainNumber *string
	TrainName   *string
	JourneyDate *time.Time
	Station     *string
	Coach       *string
	Seat        *string
	Category    domain.ComplaintCategory
	Subcategory *string
	Description string
	Priority    domain.ComplaintPriority
}

// TriagePatch describes a partial admin mutation. Nil fields are left
// untouched.
type TriagePatch struct {
	Status            *domain.ComplaintStatus
	Priority          *domain.ComplaintPriority
	AssigneeID        *string
	Department        *string
	ResolutionDetails *string
	Comment           *string
}

// IsEmpty reports whether the patch changes nothing.
func (p TriagePatch) IsEmpty() bool {
	return p.Status == nil && p.Priority == nil && p.AssigneeID == nil &&
		p.Department == nil && p.ResolutionDetails == nil
}

// AccountRef is the expanded identity shown to staff for assignees and
// resolvers.
type AccountRef struct {
	ID    string
	Name  string
	Email string
}

// ComplaintDetail is a complaint with its trail and expanded staff identities.
type ComplaintDetail struct {
	Complaint *domain.Complaint
	Updates   []domain.StatusUpdate
	Assignee  *AccountRef
	Resolver  *AccountRef
}

// TrackedComplaint is a complaint with its trail, for the public tracking
// projection. Field exclusion happens at the transport layer.
type TrackedComplaint struct {
	Complaint *domain.Complaint
	Updates   []domain.StatusUpdate
}

// ComplaintListInput carries filters, sort and 1-based pagination.
type ComplaintListInput struct {
	Filter repository.ComplaintFilter
	Sort   repository.ComplaintSort
	Page   int
	Limit  int
}

// PaginationMeta describes the filtered result set, never the raw collection.
type PaginationMeta struct {
	CurrentPage  int
	TotalPages   int
	TotalItems   int64
	ItemsPerPage int
	HasNextPage  bool
	HasPrevPage  bool
}

// ComplaintPage bundles one page of results with its metadata.
type ComplaintPage struct {
	Items []domain.Complaint
	Meta  PaginationMeta
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		accounts:   deps.AccountRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Submit creates a pending complaint with a freshly allocated reference.
// Input shape was already validated at the boundary.
func (s *ComplaintService) Submit(ctx context.Context, input SubmitInput) (*domain.Complaint, error) {
	complaint := &domain.Complaint{
		Name:        strings.TrimSpace(input.Name),
		Email:       strings.TrimSpace(input.Email),
		Phone:       input.Phone,
		AccountID:   input.AccountID,
		PNR:         input.PNR,
		TrainNumber: input.TrainNumber,
		TrainName:   input.TrainName,
		JourneyDate: input.JourneyDate,
		Station:     input.Station,
		Coach:       input.Coach,
		Seat:        input.Seat,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.ComplaintStatusPending,
		Priority:    input.Priority,
	}
	if complaint.Priority == "" {
		complaint.Priority = domain.ComplaintPriorityMedium
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventComplaintSubmitted,
		Reference: complaint.Reference,
		ActorID:   complaint.AccountID,
		Payload: events.ComplaintSubmittedPayload{
			Category:  complaint.Category,
			Priority:  complaint.Priority,
			Anonymous: complaint.AccountID == nil,
		},
	})
	return complaint, nil
}

// UpdateTriage applies the patch on behalf of the acting staff account. A
// status change appends exactly one audit entry, and a transition to
// resolved stamps the resolution fields, all in one atomic write.
func (s *ComplaintService) UpdateTriage(ctx context.Context, id string, patch TriagePatch, actorID string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}

	now := time.Now()
	oldStatus := complaint.Status
	var entry *domain.StatusUpdate

	if patch.Status != nil && *patch.Status != complaint.Status {
		if !domain.CanTransition(complaint.Status, *patch.Status) {
			return nil, apperrors.NewValidationError("invalid status transition", map[string]any{
				"from": oldStatus,
				"to":   *patch.Status,
			})
		}
		complaint.Status = *patch.Status
		entry = &domain.StatusUpdate{
			ComplaintID: complaint.ID,
			Status:      complaint.Status,
			UpdatedBy:   actorID,
			Comment:     patch.Comment,
		}
		if complaint.Status == domain.ComplaintStatusResolved {
			complaint.ResolvedAt = &now
			resolvedBy := actorID
			complaint.ResolvedBy = &resolvedBy
		} else {
			complaint.ResolutionDetails = nil
			complaint.ResolvedAt = nil
			complaint.ResolvedBy = nil
		}
	}

	if patch.Priority != nil {
		complaint.Priority = *patch.Priority
	}
	if patch.AssigneeID != nil {
		complaint.AssigneeID = patch.AssigneeID
	}
	if patch.Department != nil {
		complaint.Department = patch.Department
	}
	if patch.ResolutionDetails != nil && complaint.Status == domain.ComplaintStatusResolved {
		complaint.ResolutionDetails = patch.ResolutionDetails
	}

	if err := s.complaints.UpdateTriage(ctx, complaint, entry); err != nil {
		return nil, notFoundOr(err)
	}

	if entry != nil {
		comment := ""
		if patch.Comment != nil {
			comment = *patch.Comment
		}
		s.publishEvent(ctx, events.Event{
			Type:      events.EventComplaintStatusChanged,
			Reference: complaint.Reference,
			ActorID:   &actorID,
			Payload: events.ComplaintStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: complaint.Status,
				Comment:   comment,
			},
		})
	} else {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventComplaintTriageUpdated,
			Reference: complaint.Reference,
			ActorID:   &actorID,
			Payload: events.ComplaintTriageUpdatedPayload{
				Priority:   patch.Priority,
				AssigneeID: patch.AssigneeID,
				Department: patch.Department,
			},
		})
	}
	return complaint, nil
}

// Track fetches a complaint by its public reference. Unknown and malformed
// references are both reported as not found.
func (s *ComplaintService) Track(ctx context.Context, reference string) (*TrackedComplaint, error) {
	if !domain.IsValidReference(reference) {
		return nil, apperrors.NewNotFound("complaint", map[string]any{"complaintId": reference})
	}
	complaint, err := s.complaints.GetByReference(ctx, reference)
	if err != nil {
		return nil, notFoundOr(err)
	}
	updates, err := s.complaints.ListStatusUpdates(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TrackedComplaint{Complaint: complaint, Updates: updates}, nil
}

// Get returns the staff view with assignee and resolver identities expanded.
func (s *ComplaintService) Get(ctx context.Context, id string) (*ComplaintDetail, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	updates, err := s.complaints.ListStatusUpdates(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	detail := &ComplaintDetail{Complaint: complaint, Updates: updates}
	detail.Assignee = s.accountRef(ctx, complaint.AssigneeID)
	detail.Resolver = s.accountRef(ctx, complaint.ResolvedBy)
	return detail, nil
}

// Delete hard-deletes a complaint and returns its public reference.
func (s *ComplaintService) Delete(ctx context.Context, id string, actorID string) (string, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return "", notFoundOr(err)
	}
	if err := s.complaints.Delete(ctx, id); err != nil {
		return "", notFoundOr(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventComplaintDeleted,
		Reference: complaint.Reference,
		ActorID:   &actorID,
	})
	return complaint.Reference, nil
}

// List runs the admin query engine: filters, allow-listed sort and 1-based
// pagination, with totals computed over the filtered set.
func (s *ComplaintService) List(ctx context.Context, input ComplaintListInput) (*ComplaintPage, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit

	total, err := s.complaints.CountWithFilter(ctx, input.Filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	items, err := s.complaints.ListWithFilter(ctx, input.Filter, input.Sort, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return &ComplaintPage{
		Items: items,
		Meta: PaginationMeta{
			CurrentPage:  page,
			TotalPages:   totalPages,
			TotalItems:   total,
			ItemsPerPage: limit,
			HasNextPage:  page < totalPages,
			HasPrevPage:  page > 1,
		},
	}, nil
}

func (s *ComplaintService) accountRef(ctx context.Context, accountID *string) *AccountRef {
	if accountID == nil {
		return nil
	}
	account, err := s.accounts.GetByID(ctx, *accountID)
	if err != nil {
		return nil
	}
	return &AccountRef{ID: account.ID, Name: account.Name, Email: account.Email}
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func notFoundOr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("complaint", nil)
	}
	return apperrors.MapError(err)
}
