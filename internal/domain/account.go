package domain

import "time"

// AccountRole separates staff from regular riders.
type AccountRole string

const (
	RoleAdmin AccountRole = "admin"
	RoleUser  AccountRole = "user"
)

// Account is the domain model for authenticated principals. The password
// digest never leaves the service boundary.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        *string
	Role         AccountRole
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
