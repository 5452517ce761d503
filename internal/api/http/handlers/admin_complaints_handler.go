package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rail-complaints/internal/api/dto"
	"github.com/spec-kit/rail-complaints/internal/auth"
	"github.com/spec-kit/rail-complaints/internal/domain"
	"github.com/spec-kit/rail-complaints/internal/repository"
	"github.com/spec-kit/rail-complaints/internal/service"
	apperrors "github.com/spec-kit/rail-complaints/pkg/util"
)

// AdminComplaintsHandler manages staff triage endpoints.
type AdminComplaintsHandler struct {
	service *service.ComplaintService
}

// NewAdminComplaintsHandler constructs handler.
func NewAdminComplaintsHandler(complaintService *service.ComplaintService) *AdminComplaintsHandler {
	return &AdminComplaintsHandler{service: complaintService}
}

// List GET /admin/complaints.
func (h *AdminComplaintsHandler) List(c *fiber.Ctx) error {
	input, details := parseListQuery(c)
	if details != nil {
		return apperrors.NewValidationError("invalid list query", details)
	}

	page, err := h.service.List(c.UserContext(), input)
	if err != nil {
		return err
	}

	items := make([]dto.ComplaintResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, complaintResponse(&page.Items[i], nil, nil, nil))
	}
	return c.JSON(dto.OK(dto.ComplaintListResponse{
		Complaints: items,
		Pagination: paginationResponse(page.Meta),
	}))
}

// Get GET /admin/complaints/:id.
func (h *AdminComplaintsHandler) Get(c *fiber.Ctx) error {
	detail, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(complaintResponse(detail.Complaint, detail.Updates, detail.Assignee, detail.Resolver)))
}

// Update PATCH /admin/complaints/:id.
func (h *AdminComplaintsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := req.Validate(); details != nil {
		return apperrors.NewValidationError("invalid update payload", details)
	}

	patch := service.TriagePatch{
		AssigneeID:        req.AssigneeID,
		Department:        req.Department,
		ResolutionDetails: req.ResolutionDetails,
		Comment:           req.Comment,
	}
	if req.Status != nil {
		status := domain.ComplaintStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.ComplaintPriority(*req.Priority)
		patch.Priority = &priority
	}

	complaint, err := h.service.UpdateTriage(c.UserContext(), c.Params("id"), patch, principal.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("complaint updated", complaintResponse(complaint, nil, nil, nil)))
}

// Delete DELETE /admin/complaints/:id.
func (h *AdminComplaintsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	reference, err := h.service.Delete(c.UserContext(), c.Params("id"), principal.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("complaint deleted", dto.DeleteComplaintResponse{ComplaintID: reference}))
}

// parseListQuery validates and assembles the admin listing parameters. All
// rejections happen here, before the query engine runs.
func parseListQuery(c *fiber.Ctx) (service.ComplaintListInput, map[string]any) {
	details := map[string]any{}
	input := service.ComplaintListInput{
		Page:  1,
		Limit: 10,
		Sort:  repository.ComplaintSort{Field: "createdAt", Descending: true},
	}

	if val := c.Query("page"); val != "" {
		page, err := strconv.Atoi(val)
		if err != nil || page < 1 {
			details["page"] = "page must be a positive integer"
		} else {
			input.Page = page
		}
	}
	if val := c.Query("limit"); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil || limit < 1 || limit > 100 {
			details["limit"] = "limit must be between 1 and 100"
		} else {
			input.Limit = limit
		}
	}

	if val := c.Query("status"); val != "" {
		status := domain.ComplaintStatus(val)
		if !domain.ValidStatus(status) {
			details["status"] = "unknown status"
		} else {
			input.Filter.Status = &status
		}
	}
	if val := c.Query("category"); val != "" {
		category := domain.ComplaintCategory(val)
		if !domain.ValidCategory(category) {
			details["category"] = "unknown category"
		} else {
			input.Filter.Category = &category
		}
	}
	if val := c.Query("priority"); val != "" {
		priority := domain.ComplaintPriority(val)
		if !domain.ValidPriority(priority) {
			details["priority"] = "unknown priority"
		} else {
			input.Filter.Priority = &priority
		}
	}
	if val := c.Query("department"); val != "" {
		input.Filter.Department = &val
	}
	if val := c.Query("assignee"); val != "" {
		input.Filter.AssigneeID = &val
	}
	if val := c.Query("search"); val != "" {
		input.Filter.SearchTerm = &val
	}

	if from := parseDate(c.Query("startDate")); c.Query("startDate") != "" {
		if from == nil {
			details["startDate"] = "startDate must be an RFC3339 timestamp or YYYY-MM-DD"
		} else {
			input.Filter.CreatedFrom = from
		}
	}
	if to := parseDate(c.Query("endDate")); c.Query("endDate") != "" {
		if to == nil {
			details["endDate"] = "endDate must be an RFC3339 timestamp or YYYY-MM-DD"
		} else {
			input.Filter.CreatedTo = to
		}
	}

	if val := c.Query("sortBy"); val != "" {
		if !repository.SortableField(val) {
			details["sortBy"] = "unsortable field"
		} else {
			input.Sort.Field = val
		}
	}
	if val := c.Query("order"); val != "" {
		switch strings.ToLower(val) {
		case "asc":
			input.Sort.Descending = false
		case "desc":
			input.Sort.Descending = true
		default:
			details["order"] = "order must be asc or desc"
		}
	}

	if len(details) == 0 {
		return input, nil
	}
	return input, details
}

func parseDate(val string) *time.Time {
	if val == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", val); err == nil {
		return &t
	}
	return nil
}
