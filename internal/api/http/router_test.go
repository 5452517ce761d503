package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/rail-complaints/internal/api/http"
	"github.com/spec-kit/rail-complaints/internal/api/http/handlers"
	"github.com/spec-kit/rail-complaints/internal/auth"
	"github.com/spec-kit/rail-complaints/internal/config"
	"github.com/spec-kit/rail-complaints/internal/domain"
	"github.com/spec-kit/rail-complaints/internal/observability"
	"github.com/spec-kit/rail-complaints/internal/repository"
	"github.com/spec-kit/rail-complaints/internal/service"
)

// memComplaintRepo backs the handler tests without Postgres.
type memComplaintRepo struct {
	complaints map[string]*domain.Complaint
	updates    map[string][]domain.StatusUpdate
	sequence   int64
}

func newMemComplaintRepo() *memComplaintRepo {
	return &memComplaintRepo{
		complaints: make(map[string]*domain.Complaint),
		updates:    make(map[string][]domain.StatusUpdate),
	}
}

func (m *memComplaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	m.sequence++
	complaint.ID = uuid.NewString()
	complaint.Reference = domain.FormatReference(time.Now().Year(), m.sequence)
	now := time.Now()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now
	stored := *complaint
	m.complaints[complaint.ID] = &stored
	return nil
}

func (m *memComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	stored, ok := m.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (m *memComplaintRepo) GetByReference(_ context.Context, reference string) (*domain.Complaint, error) {
	for _, stored := range m.complaints {
		if stored.Reference == reference {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memComplaintRepo) UpdateTriage(_ context.Context, complaint *domain.Complaint, entry *domain.StatusUpdate) error {
	if _, ok := m.complaints[complaint.ID]; !ok {
		return pgx.ErrNoRows
	}
	complaint.UpdatedAt = time.Now()
	stored := *complaint
	m.complaints[complaint.ID] = &stored
	if entry != nil {
		entry.ID = uuid.NewString()
		entry.CreatedAt = time.Now()
		m.updates[complaint.ID] = append(m.updates[complaint.ID], *entry)
	}
	return nil
}

func (m *memComplaintRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.complaints[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.complaints, id)
	return nil
}

func (m *memComplaintRepo) ListWithFilter(_ context.Context, filter repository.ComplaintFilter, _ repository.ComplaintSort, limit, offset int) ([]domain.Complaint, error) {
	matched := m.matching(filter)
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (m *memComplaintRepo) CountWithFilter(_ context.Context, filter repository.ComplaintFilter) (int64, error) {
	return int64(len(m.matching(filter))), nil
}

func (m *memComplaintRepo) ListStatusUpdates(_ context.Context, complaintID string) ([]domain.StatusUpdate, error) {
	return append([]domain.StatusUpdate{}, m.updates[complaintID]...), nil
}

func (m *memComplaintRepo) matching(filter repository.ComplaintFilter) []domain.Complaint {
	var matched []domain.Complaint
	for _, stored := range m.complaints {
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		matched = append(matched, *stored)
	}
	return matched
}

type memAccountRepo struct {
	accounts map[string]*domain.Account
}

func (m *memAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	stored, ok := m.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (m *memAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, stored := range m.accounts {
		if strings.EqualFold(stored.Email, email) {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memAccountRepo) RecordLogin(_ context.Context, id string, at time.Time) error {
	stored, ok := m.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stamp := at
	stored.LastLogin = &stamp
	return nil
}

type memDashboardRepo struct{}

func (memDashboardRepo) TotalComplaints(context.Context) (int64, error) { return 0, nil }
func (memDashboardRepo) CountByStatus(context.Context) (map[domain.ComplaintStatus]int64, error) {
	return map[domain.ComplaintStatus]int64{}, nil
}
func (memDashboardRepo) CountCreatedSince(context.Context, time.Time) (int64, error) { return 0, nil }
func (memDashboardRepo) CountByCategory(context.Context) ([]repository.BucketCount, error) {
	return nil, nil
}
func (memDashboardRepo) CountByPriority(context.Context) ([]repository.BucketCount, error) {
	return nil, nil
}
func (memDashboardRepo) DailyCounts(context.Context, time.Time) ([]repository.DailyCount, error) {
	return nil, nil
}
func (memDashboardRepo) ResolutionStats(context.Context) (repository.ResolutionStats, error) {
	return repository.ResolutionStats{}, nil
}
func (memDashboardRepo) ResolutionByCategory(context.Context) ([]repository.CategoryResolution, error) {
	return nil, nil
}

type testEnv struct {
	app        *fiber.App
	complaints *service.ComplaintService
	tokens     *auth.TokenManager
	admin      *domain.Account
	rider      *domain.Account
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	adminHash, err := auth.HashPassword("open sesame", 4)
	require.NoError(t, err)

	admin := &domain.Account{
		ID:           "acct-admin",
		Name:         "Control Room",
		Email:        "control@railcomplaints.local",
		PasswordHash: adminHash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	rider := &domain.Account{
		ID:       "acct-rider",
		Name:     "Daily Rider",
		Email:    "rider@example.com",
		Role:     domain.RoleUser,
		IsActive: true,
	}
	accounts := &memAccountRepo{accounts: map[string]*domain.Account{
		admin.ID: admin,
		rider.ID: rider,
	}}

	cfg := config.Config{Auth: config.AuthConfig{
		AccessTokenSecret:     "access-secret",
		RefreshTokenSecret:    "refresh-secret",
		AccessTokenTTLMinutes: 15,
		RefreshTokenTTLHours:  168,
	}}

	authService := service.NewAuthService(cfg, service.AuthDependencies{AccountRepo: accounts})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: newMemComplaintRepo(),
		AccountRepo:   accounts,
	})
	metricsService := service.NewMetricsService(memDashboardRepo{})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0, true)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler("rail-complaints-test", "0.0.0", nil, nil),
		Complaints:      handlers.NewComplaintsHandler(complaintService),
		Auth:            handlers.NewAuthHandler(authService),
		AdminComplaints: handlers.NewAdminComplaintsHandler(complaintService),
		Dashboard:       handlers.NewDashboardHandler(metricsService),
		AuthMiddleware:  auth.NewAuthMiddleware(authService.TokenManager(), accounts),
	})

	return &testEnv{
		app:        app,
		complaints: complaintService,
		tokens:     authService.TokenManager(),
		admin:      admin,
		rider:      rider,
	}
}

func (e *testEnv) request(t *testing.T, method, target, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func (e *testEnv) accessToken(t *testing.T, account *domain.Account) string {
	t.Helper()
	pair, err := e.tokens.GeneratePair(account)
	require.NoError(t, err)
	return pair.AccessToken
}

func validSubmitBody() map[string]any {
	return map[string]any{
		"name":        "Asha Verma",
		"email":       "asha@example.com",
		"category":    "cleanliness",
		"description": "Coach B3 toilets were not cleaned for the whole journey.",
	}
}

func TestSubmitComplaintEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, fiber.MethodPost, "/api/v1/complaints", "", validSubmitBody())

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "complaint submitted", body["message"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "medium", data["priority"])
	assert.Regexp(t, `^CMP-\d{4}-\d{4}$`, data["complaintId"])
}

func TestSubmitComplaintValidationEnvelope(t *testing.T) {
	env := newTestEnv(t)

	payload := validSubmitBody()
	payload["description"] = "too short"
	resp, body := env.request(t, fiber.MethodPost, "/api/v1/complaints", "", payload)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(fiber.StatusBadRequest), body["statusCode"])
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "description")
}

func TestTrackHidesStaffFields(t *testing.T) {
	env := newTestEnv(t)

	_, submitted := env.request(t, fiber.MethodPost, "/api/v1/complaints", "", validSubmitBody())
	data := submitted["data"].(map[string]any)
	reference := data["complaintId"].(string)
	id := data["id"].(string)

	status := domain.ComplaintStatusResolved
	details := "deep-cleaned and re-stocked"
	_, err := env.complaints.UpdateTriage(context.Background(), id, service.TriagePatch{
		Status:            &status,
		AssigneeID:        &env.admin.ID,
		ResolutionDetails: &details,
	}, env.admin.ID)
	require.NoError(t, err)

	resp, body := env.request(t, fiber.MethodGet, "/api/v1/complaints/track/"+reference, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	tracked := body["data"].(map[string]any)
	assert.Equal(t, "resolved", tracked["status"])
	assert.NotContains(t, tracked, "assigneeId")
	assert.NotContains(t, tracked, "accountId")
	assert.NotContains(t, tracked, "resolvedBy")
	assert.NotContains(t, tracked, "email")

	updates := tracked["statusUpdates"].([]any)
	require.Len(t, updates, 1)
	entry := updates[0].(map[string]any)
	assert.NotContains(t, entry, "updatedBy")
}

func TestTrackUnknownReference(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, fiber.MethodGet, "/api/v1/complaints/track/CMP-2026-9999", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, fiber.MethodGet, "/api/v1/admin/complaints", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	riderToken := env.accessToken(t, env.rider)
	resp, _ = env.request(t, fiber.MethodGet, "/api/v1/admin/complaints", riderToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	adminToken := env.accessToken(t, env.admin)
	resp, body := env.request(t, fiber.MethodGet, "/api/v1/admin/complaints", adminToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Contains(t, data, "pagination")
}

func TestAdminListRejectsOversizedLimit(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.accessToken(t, env.admin)

	resp, body := env.request(t, fiber.MethodGet, "/api/v1/admin/complaints?limit=5000", adminToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "limit")
}

func TestAdminListPaginationShape(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.accessToken(t, env.admin)

	for i := 0; i < 5; i++ {
		env.request(t, fiber.MethodPost, "/api/v1/complaints", "", validSubmitBody())
	}

	resp, body := env.request(t, fiber.MethodGet, "/api/v1/admin/complaints?page=2&limit=2", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	pagination := data["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["currentPage"])
	assert.Equal(t, float64(3), pagination["totalPages"])
	assert.Equal(t, float64(5), pagination["totalItems"])
	assert.Equal(t, true, pagination["hasNextPage"])
	assert.Equal(t, true, pagination["hasPrevPage"])
}

func TestLoginAndProfileFlow(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, fiber.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "control@railcomplaints.local",
		"password": "open sesame",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	tokens := data["tokens"].(map[string]any)
	accessToken := tokens["accessToken"].(string)
	require.NotEmpty(t, accessToken)

	account := data["account"].(map[string]any)
	assert.NotContains(t, account, "passwordHash")

	resp, body = env.request(t, fiber.MethodGet, "/api/v1/auth/me", accessToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	profile := body["data"].(map[string]any)
	assert.Equal(t, "control@railcomplaints.local", profile["email"])
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, fiber.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "control@railcomplaints.local",
		"password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credentials", body["message"])
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])
}

func TestAdminDeleteEchoesReference(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.accessToken(t, env.admin)

	_, submitted := env.request(t, fiber.MethodPost, "/api/v1/complaints", "", validSubmitBody())
	data := submitted["data"].(map[string]any)
	id := data["id"].(string)
	reference := data["complaintId"].(string)

	resp, body := env.request(t, fiber.MethodDelete, fmt.Sprintf("/api/v1/admin/complaints/%s", id), adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	deleted := body["data"].(map[string]any)
	assert.Equal(t, reference, deleted["complaintId"])

	resp, _ = env.request(t, fiber.MethodGet, "/api/v1/complaints/track/"+reference, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
