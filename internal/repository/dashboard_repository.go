package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/rail-complaints/internal/domain"
)

// BucketCount is one grouped counter row.
type BucketCount struct {
	Key   string
	Count int64
}

// DailyCount is one calendar-day counter row.
type DailyCount struct {
	Date  string
	Count int64
}

// ResolutionStats aggregates resolved complaints that carry a resolution
// timestamp.
type ResolutionStats struct {
	Count    int64
	AvgHours float64
}

// CategoryResolution is average resolution time for one category.
type CategoryResolution struct {
	Category domain.ComplaintCategory
	AvgHours float64
}

// DashboardRepository is the read-only aggregate surface the metrics
// pipeline scans. It never mutates state.
type DashboardRepository interface {
	TotalComplaints(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	CountByCategory(ctx context.Context) ([]BucketCount, error)
	CountByPriority(ctx context.Context) ([]BucketCount, error)
	DailyCounts(ctx context.Context, since time.Time) ([]DailyCount, error)
	ResolutionStats(ctx context.Context) (ResolutionStats, error)
	ResolutionByCategory(ctx context.Context) ([]CategoryResolution, error)
}

type dashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository instantiates repository.
func NewDashboardRepository(pool *pgxpool.Pool) DashboardRepository {
	return &dashboardRepository{pool: pool}
}

func (r *dashboardRepository) TotalComplaints(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints`).Scan(&total)
	return total, err
}

func (r *dashboardRepository) CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM complaints GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ComplaintStatus]int64)
	for rows.Next() {
		var status domain.ComplaintStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *dashboardRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM complaints WHERE created_at >= $1`, since).Scan(&total)
	return total, err
}

func (r *dashboardRepository) CountByCategory(ctx context.Context) ([]BucketCount, error) {
	return r.bucketCounts(ctx, `SELECT category, COUNT(*) FROM complaints GROUP BY category ORDER BY category`)
}

func (r *dashboardRepository) CountByPriority(ctx context.Context) ([]BucketCount, error) {
	return r.bucketCounts(ctx, `SELECT priority, COUNT(*) FROM complaints GROUP BY priority ORDER BY priority`)
}

func (r *dashboardRepository) bucketCounts(ctx context.Context, query string) ([]BucketCount, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []BucketCount
	for rows.Next() {
		var b BucketCount
		if err := rows.Scan(&b.Key, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// DailyCounts returns per-calendar-day creation counts since the given
// instant, ascending. Days without complaints produce no row.
func (r *dashboardRepository) DailyCounts(ctx context.Context, since time.Time) ([]DailyCount, error) {
	const query = `
        SELECT TO_CHAR(created_at, 'YYYY-MM-DD') AS day, COUNT(*)
        FROM complaints
        WHERE created_at >= $1
        GROUP BY day
        ORDER BY day ASC`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []DailyCount
	for rows.Next() {
		var d DailyCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *dashboardRepository) ResolutionStats(ctx context.Context) (ResolutionStats, error) {
	const query = `
        SELECT COUNT(*),
               COALESCE(AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)) / 3600.0), 0)
        FROM complaints
        WHERE status=$1 AND resolved_at IS NOT NULL`

	var stats ResolutionStats
	err := r.pool.QueryRow(ctx, query, domain.ComplaintStatusResolved).Scan(&stats.Count, &stats.AvgHours)
	return stats, err
}

func (r *dashboardRepository) ResolutionByCategory(ctx context.Context) ([]CategoryResolution, error) {
	const query = `
        SELECT category,
               AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)) / 3600.0) AS avg_hours
        FROM complaints
        WHERE status=$1 AND resolved_at IS NOT NULL
        GROUP BY category
        ORDER BY avg_hours DESC`

	rows, err := r.pool.Query(ctx, query, domain.ComplaintStatusResolved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryResolution
	for rows.Next() {
		var entry CategoryResolution
		if err := rows.Scan(&entry.Category, &entry.AvgHours); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
