package domain

import "time"

// RoutingRule maps complaint keywords to a department. The entity is dormant:
// it is persisted and administered out of band but no dispatch path reads it.
type RoutingRule struct {
	ID         string
	Name       string
	Category   ComplaintCategory
	Keywords   []string
	Department string
	Priority   int
	AssigneeID *string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
