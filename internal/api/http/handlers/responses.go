package handlers

import (
	"github.com/spec-kit/rail-complaints/internal/api/dto"
	"github.com/spec-kit/rail-complaints/internal/domain"
	"github.com/spec-kit/rail-complaints/internal/service"
)

func journeyContext(c *domain.Complaint) dto.JourneyContext {
	return dto.JourneyContext{
		PNR:         c.PNR,
		TrainNumber: c.TrainNumber,
		TrainName:   c.TrainName,
		JourneyDate: c.JourneyDate,
		Station:     c.Station,
		Coach:       c.Coach,
		Seat:        c.Seat,
	}
}

func complaintResponse(c *domain.Complaint, updates []domain.StatusUpdate, assignee, resolver *service.AccountRef) dto.ComplaintResponse {
	resp := dto.ComplaintResponse{
		ID:                c.ID,
		ComplaintID:       c.Reference,
		Name:              c.Name,
		Email:             c.Email,
		Phone:             c.Phone,
		AccountID:         c.AccountID,
		Journey:           journeyContext(c),
		Category:          c.Category,
		Subcategory:       c.Subcategory,
		Description:       c.Description,
		Status:            c.Status,
		Priority:          c.Priority,
		AssigneeID:        c.AssigneeID,
		Department:        c.Department,
		ResolutionDetails: c.ResolutionDetails,
		ResolvedAt:        c.ResolvedAt,
		ResolvedBy:        c.ResolvedBy,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	for _, entry := range updates {
		resp.StatusUpdates = append(resp.StatusUpdates, dto.StatusUpdateResponse{
			Status:    entry.Status,
			UpdatedBy: entry.UpdatedBy,
			UpdatedAt: entry.CreatedAt,
			Comment:   entry.Comment,
		})
	}
	resp.Assignee = accountRefResponse(assignee)
	resp.Resolver = accountRefResponse(resolver)
	return resp
}

func accountRefResponse(ref *service.AccountRef) *dto.AccountRefResponse {
	if ref == nil {
		return nil
	}
	return &dto.AccountRefResponse{ID: ref.ID, Name: ref.Name, Email: ref.Email}
}

func trackResponse(tracked *service.TrackedComplaint) dto.TrackComplaintResponse {
	c := tracked.Complaint
	resp := dto.TrackComplaintResponse{
		ComplaintID:       c.Reference,
		Status:            c.Status,
		Priority:          c.Priority,
		Category:          c.Category,
		Subcategory:       c.Subcategory,
		Description:       c.Description,
		Journey:           journeyContext(c),
		Department:        c.Department,
		StatusUpdates:     []dto.PublicStatusUpdateResponse{},
		ResolutionDetails: c.ResolutionDetails,
		ResolvedAt:        c.ResolvedAt,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	for _, entry := range tracked.Updates {
		resp.StatusUpdates = append(resp.StatusUpdates, dto.PublicStatusUpdateResponse{
			Status:    entry.Status,
			UpdatedAt: entry.CreatedAt,
			Comment:   entry.Comment,
		})
	}
	return resp
}

func accountResponse(account *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Phone:     account.Phone,
		Role:      account.Role,
		IsActive:  account.IsActive,
		LastLogin: account.LastLogin,
		CreatedAt: account.CreatedAt,
	}
}

func paginationResponse(meta service.PaginationMeta) dto.PaginationResponse {
	return dto.PaginationResponse{
		CurrentPage:  meta.CurrentPage,
		TotalPages:   meta.TotalPages,
		TotalItems:   meta.TotalItems,
		ItemsPerPage: meta.ItemsPerPage,
		HasNextPage:  meta.HasNextPage,
		HasPrevPage:  meta.HasPrevPage,
	}
}
