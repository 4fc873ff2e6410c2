package auth

import "time"

// Operator is a store employee allowed to log into the terminal.
type Operator struct {
	ID           int64
	Username     string
	Name         string
	Role         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}
