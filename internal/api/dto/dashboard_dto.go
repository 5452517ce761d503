package dto

// MetricsResponse is the dashboard counter snapshot.
type MetricsResponse struct {
	Total              int64            `json:"total"`
	ByStatus           map[string]int64 `json:"byStatus"`
	Last7Days          int64            `json:"last7Days"`
	Last30Days         int64            `json:"last30Days"`
	AvgResolutionHours float64          `json:"avgResolutionHours"`
	ResolutionRate     float64          `json:"resolutionRate"`
}

// ChartBucket is one grouped counter.
type ChartBucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// DailyBucket is one calendar-day counter.
type DailyBucket struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ResolutionBucket is the average resolution time for one category.
type ResolutionBucket struct {
	Category string  `json:"category"`
	AvgHours float64 `json:"avgHours"`
}

// ChartsResponse holds the grouped dashboard breakdowns.
type ChartsResponse struct {
	ByCategory           []ChartBucket      `json:"byCategory"`
	ByStatus             []ChartBucket      `json:"byStatus"`
	ByPriority           []ChartBucket      `json:"byPriority"`
	Daily                []DailyBucket      `json:"daily"`
	ResolutionByCategory []ResolutionBucket `json:"resolutionByCategory"`
}
