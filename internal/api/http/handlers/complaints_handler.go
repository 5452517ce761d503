package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rail-complaints/internal/api/dto"
	"github.com/spec-kit/rail-complaints/internal/auth"
	"github.com/spec-kit/rail-complaints/internal/domain"
	"github.com/spec-kit/rail-complaints/internal/service"
	apperrors "github.com/spec-kit/rail-complaints/pkg/util"
)

// ComplaintsHandler manages the public complaint endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// Submit POST /complaints. Anyone may submit; an authenticated submitter
// gets their account linked to the complaint.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := req.Validate(); details != nil {
		return apperrors.NewValidationError("invalid complaint payload", details)
	}

	input := service.SubmitInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		PNR:         req.PNR,
		TrainNumber: req.TrainNumber,
		TrainName:   req.TrainName,
		JourneyDate: req.JourneyDate,
		Station:     req.Station,
		Coach:       req.Coach,
		Seat:        req.Seat,
		Category:    domain.ComplaintCategory(req.Category),
		Subcategory: req.Subcategory,
		Description: req.Description,
	}
	if req.Priority != nil {
		input.Priority = domain.ComplaintPriority(*req.Priority)
	}
	if principal, ok := auth.PrincipalFromContext(c); ok {
		accountID := principal.AccountID
		input.AccountID = &accountID
	}

	complaint, err := h.service.Submit(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(
		dto.OKMessage("complaint submitted", complaintResponse(complaint, nil, nil, nil)))
}

// Track GET /complaints/track/:complaintId.
func (h *ComplaintsHandler) Track(c *fiber.Ctx) error {
	tracked, err := h.service.Track(c.UserContext(), c.Params("complaintId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(trackResponse(tracked)))
}
