package models

import "time"

// ProfileRecord captures application-level metadata for an account.
// There is exactly one profile per account.
type ProfileRecord struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	FullName     string    `json:"full_name"`
	BusinessName string    `json:"business_name"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
}
