package domain

import "time"

// Plan identifies a subscription plan (account type) of a user.
type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanPro        Plan = "PRO"
	PlanEnterprise Plan = "ENTERPRISE"
)

// User is the domain model for an account that can authenticate.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Plan         Plan
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
