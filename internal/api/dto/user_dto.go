package dto

import "time"

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest payload for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserInfoResponse describes the authenticated user.
type UserInfoResponse struct {
	Name                 string    `json:"name"`
	Email                string    `json:"email"`
	CreatedAt            time.Time `json:"created_at"`
	SubscriptionPlanName string    `json:"subscription_plan_name"`
	Authorities          []string  `json:"authorities"`
}

// RemainingLifetimeResponse reports the seconds left on a token; -1 means unverifiable.
type RemainingLifetimeResponse struct {
	RemainingSeconds int64 `json:"remaining_seconds"`
}

// MessageResponse is a generic acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
