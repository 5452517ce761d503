package service_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/rail-complaints/internal/domain"
	"github.com/spec-kit/rail-complaints/internal/repository"
)

// fakeComplaintRepo is an in-memory stand-in for the Postgres-backed
// complaint repository, including the per-year reference sequence.
type fakeComplaintRepo struct {
	complaints map[string]*domain.Complaint
	updates    map[string][]domain.StatusUpdate
	sequences  map[int]int64
}

func newFakeComplaintRepo() *fakeComplaintRepo {
	return &fakeComplaintRepo{
		complaints: make(map[string]*domain.Complaint),
		updates:    make(map[string][]domain.StatusUpdate),
		sequences:  make(map[int]int64),
	}
}

func (f *fakeComplaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	year := time.Now().Year()
	f.sequences[year]++
	complaint.Reference = domain.FormatReference(year, f.sequences[year])
	complaint.ID = uuid.NewString()
	now := time.Now()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now

	stored := *complaint
	f.complaints[complaint.ID] = &stored
	return nil
}

func (f *fakeComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	stored, ok := f.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeComplaintRepo) GetByReference(_ context.Context, reference string) (*domain.Complaint, error) {
	for _, stored := range f.complaints {
		if stored.Reference == reference {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeComplaintRepo) UpdateTriage(_ context.Context, complaint *domain.Complaint, entry *domain.StatusUpdate) error {
	if _, ok := f.complaints[complaint.ID]; !ok {
		return pgx.ErrNoRows
	}
	complaint.UpdatedAt = time.Now()
	stored := *complaint
	f.complaints[complaint.ID] = &stored

	if entry != nil {
		entry.ID = uuid.NewString()
		entry.CreatedAt = time.Now()
		f.updates[complaint.ID] = append(f.updates[complaint.ID], *entry)
	}
	return nil
}

func (f *fakeComplaintRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.complaints[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.complaints, id)
	delete(f.updates, id)
	return nil
}

func (f *fakeComplaintRepo) ListWithFilter(_ context.Context, filter repository.ComplaintFilter, sortBy repository.ComplaintSort, limit, offset int) ([]domain.Complaint, error) {
	matched := f.matching(filter)
	sort.SliceStable(matched, func(i, j int) bool {
		if sortBy.Descending {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (f *fakeComplaintRepo) CountWithFilter(_ context.Context, filter repository.ComplaintFilter) (int64, error) {
	return int64(len(f.matching(filter))), nil
}

func (f *fakeComplaintRepo) ListStatusUpdates(_ context.Context, complaintID string) ([]domain.StatusUpdate, error) {
	return append([]domain.StatusUpdate{}, f.updates[complaintID]...), nil
}

func (f *fakeComplaintRepo) matching(filter repository.ComplaintFilter) []domain.Complaint {
	var matched []domain.Complaint
	for _, stored := range f.complaints {
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		if filter.Category != nil && stored.Category != *filter.Category {
			continue
		}
		if filter.Priority != nil && stored.Priority != *filter.Priority {
			continue
		}
		if filter.Department != nil && (stored.Department == nil || *stored.Department != *filter.Department) {
			continue
		}
		if filter.AssigneeID != nil && (stored.AssigneeID == nil || *stored.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if filter.CreatedFrom != nil && stored.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && stored.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		if filter.SearchTerm != nil {
			needle := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
			haystack := strings.ToLower(stored.Reference + " " + stored.Email + " " + stored.Description + " " + stored.Name)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		matched = append(matched, *stored)
	}
	return matched
}

// fakeAccountRepo is an in-memory account store.
type fakeAccountRepo struct {
	accounts map[string]*domain.Account
}

func newFakeAccountRepo(accounts ...*domain.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: make(map[string]*domain.Account)}
	for _, account := range accounts {
		stored := *account
		repo.accounts[account.ID] = &stored
	}
	return repo
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	stored, ok := f.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, stored := range f.accounts {
		if strings.EqualFold(stored.Email, email) {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepo) RecordLogin(_ context.Context, id string, at time.Time) error {
	stored, ok := f.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stamp := at
	stored.LastLogin = &stamp
	return nil
}
