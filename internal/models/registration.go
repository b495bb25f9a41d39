package models

import "strings"

// RegistrationRequest is the raw signup form submission.
type RegistrationRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FullName        string `json:"fullName"`
	BusinessName    string `json:"businessName"`
	Username        string `json:"username"`
	Phone           string `json:"phone,omitempty"`
	Role            Role   `json:"role"`
	TermsAccepted   bool   `json:"termsAccepted"`
}

// Profile builds the profile record to provision for userID.
func (r RegistrationRequest) Profile(userID string) ProfileRecord {
	return ProfileRecord{
		UserID:       userID,
		Username:     strings.TrimSpace(r.Username),
		Phone:        strings.TrimSpace(r.Phone),
		Role:         r.Role,
		FullName:     strings.TrimSpace(r.FullName),
		BusinessName: strings.TrimSpace(r.BusinessName),
	}
}
