package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/rail-complaints/internal/domain"
)

// ComplaintFilter captures admin search parameters. All fields are optional
// and AND-combined.
type ComplaintFilter struct {
	Status      *domain.ComplaintStatus
	Category    *domain.ComplaintCategory
	Priority    *domain.ComplaintPriority
	Department  *string
	AssigneeID  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SearchTerm  *string
}

// ComplaintSort names a sortable column and direction. Field values are
// restricted by sortColumns; anything else falls back to creation time.
type ComplaintSort struct {
	Field      string
	Descending bool
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"priority":  "priority",
	"status":    "status",
}

// SortableField reports whether the query engine accepts the field name.
func SortableField(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	GetByReference(ctx context.Context, reference string) (*domain.Complaint, error)
	UpdateTriage(ctx context.Context, complaint *domain.Complaint, entry *domain.StatusUpdate) error
	Delete(ctx context.Context, id string) error
	ListWithFilter(ctx context.Context, filter ComplaintFilter, sort ComplaintSort, limit, offset int) ([]domain.Complaint, error)
	CountWithFilter(ctx context.Context, filter ComplaintFilter) (int64, error)
	ListStatusUpdates(ctx context.Context, complaintID string) ([]domain.StatusUpdate, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, reference, name, email, phone, account_id,
        pnr, train_number, train_name, journey_date, station, coach, seat,
        category, subcategory, description, ai_category, ai_confidence,
        status, priority, assignee_id, department,
        resolution_details, resolved_at, resolved_by, created_at, updated_at`

// Create inserts the complaint and assigns its reference from the per-year
// sequence. Both happen in one transaction so concurrent submissions can
// never observe or reuse the same sequence value.
func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	year := time.Now().Year()
	var seq int64
	const seqQuery = `
        INSERT INTO complaint_sequences (year, value) VALUES ($1, 1)
        ON CONFLICT (year) DO UPDATE SET value = complaint_sequences.value + 1
        RETURNING value`
	if err := tx.QueryRow(ctx, seqQuery, year).Scan(&seq); err != nil {
		return err
	}
	complaint.Reference = domain.FormatReference(year, seq)

	const insertQuery = `
        INSERT INTO complaints (reference, name, email, phone, account_id,
            pnr, train_number, train_name, journey_date, station, coach, seat,
            category, subcategory, description, status, priority, department)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertQuery,
		complaint.Reference,
		complaint.Name,
		complaint.Email,
		complaint.Phone,
		complaint.AccountID,
		complaint.PNR,
		complaint.TrainNumber,
		complaint.TrainName,
		complaint.JourneyDate,
		complaint.Station,
		complaint.Coach,
		complaint.Seat,
		complaint.Category,
		complaint.Subcategory,
		complaint.Description,
		complaint.Status,
		complaint.Priority,
		complaint.Department,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE id=$1`, complaintColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *complaintRepository) GetByReference(ctx context.Context, reference string) (*domain.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE reference=$1`, complaintColumns)
	return r.fetchSingle(ctx, query, reference)
}

func (r *complaintRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Complaint, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	return scanComplaint(row)
}

// UpdateTriage persists triage mutations and, when a status change occurred,
// the matching audit entry in the same transaction. A reader can never see
// the new status without its audit row or resolution stamps.
func (r *complaintRepository) UpdateTriage(ctx context.Context, complaint *domain.Complaint, entry *domain.StatusUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const updateQuery = `
        UPDATE complaints SET status=$1, priority=$2, assignee_id=$3, department=$4,
            resolution_details=$5, resolved_at=$6, resolved_by=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	if err := tx.QueryRow(ctx, updateQuery,
		complaint.Status,
		complaint.Priority,
		complaint.AssigneeID,
		complaint.Department,
		complaint.ResolutionDetails,
		complaint.ResolvedAt,
		complaint.ResolvedBy,
		complaint.ID,
	).Scan(&complaint.UpdatedAt); err != nil {
		return err
	}

	if entry != nil {
		const auditQuery = `
            INSERT INTO complaint_status_updates (complaint_id, status, updated_by, comment)
            VALUES ($1,$2,$3,$4)
            RETURNING id, created_at`
		if err := tx.QueryRow(ctx, auditQuery,
			entry.ComplaintID,
			entry.Status,
			entry.UpdatedBy,
			entry.Comment,
		).Scan(&entry.ID, &entry.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *complaintRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM complaints WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter, sort ComplaintSort, limit, offset int) ([]domain.Complaint, error) {
	clauses, args := buildFilterClauses(filter)

	column, ok := sortColumns[sort.Field]
	if !ok {
		column = "created_at"
		sort.Descending = true
	}
	direction := "ASC"
	if sort.Descending {
		direction = "DESC"
	}

	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		complaintColumns, strings.Join(clauses, " AND "), column, direction, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

// CountWithFilter counts documents matching the exact filter the page query
// uses, so pagination totals always describe the filtered set.
func (r *complaintRepository) CountWithFilter(ctx context.Context, filter ComplaintFilter) (int64, error) {
	clauses, args := buildFilterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM complaints WHERE %s`, strings.Join(clauses, " AND "))

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *complaintRepository) ListStatusUpdates(ctx context.Context, complaintID string) ([]domain.StatusUpdate, error) {
	const query = `
        SELECT id, complaint_id, status, updated_by, comment, created_at
        FROM complaint_status_updates
        WHERE complaint_id=$1
        ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updates []domain.StatusUpdate
	for rows.Next() {
		var entry domain.StatusUpdate
		if err := rows.Scan(
			&entry.ID,
			&entry.ComplaintID,
			&entry.Status,
			&entry.UpdatedBy,
			&entry.Comment,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		updates = append(updates, entry)
	}
	return updates, rows.Err()
}

func buildFilterClauses(filter ComplaintFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(reference) LIKE %s OR LOWER(email) LIKE %s OR LOWER(description) LIKE %s OR LOWER(name) LIKE %s)",
			placeholder, placeholder, placeholder, placeholder))
	}

	return clauses, args
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := row.Scan(
		&c.ID,
		&c.Reference,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.AccountID,
		&c.PNR,
		&c.TrainNumber,
		&c.TrainName,
		&c.JourneyDate,
		&c.Station,
		&c.Coach,
		&c.Seat,
		&c.Category,
		&c.Subcategory,
		&c.Description,
		&c.AICategory,
		&c.AIConfidence,
		&c.Status,
		&c.Priority,
		&c.AssigneeID,
		&c.Department,
		&c.ResolutionDetails,
		&c.ResolvedAt,
		&c.ResolvedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *complaint)
	}
	return result, rows.Err()
}
