// Package validation checks signup and login form input before any network
// call is made.
package validation

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/hongminglow/inventory-be/internal/models"
)

// Field names reported in Errors. They match the JSON form fields.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldPhone           = "phone"
	FieldFullName        = "fullName"
	FieldBusinessName    = "businessName"
	FieldUsername        = "username"
	FieldRole            = "role"
	FieldTermsAccepted   = "termsAccepted"
)

// MinPasswordLength is the shortest password the signup form accepts.
const MinPasswordLength = 8

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]*[0-9]$`)
)

// Errors maps a field name to a human-readable message. An empty Errors
// means the input is valid.
type Errors map[string]string

// Error implements error by listing the offending fields in a stable order.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Valid reports whether no field failed.
func (e Errors) Valid() bool {
	return len(e) == 0
}

// Validate checks every registration rule and reports all violations at once.
func Validate(req models.RegistrationRequest) Errors {
	errs := Errors{}

	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		errs[FieldEmail] = "Email is required"
	case !emailPattern.MatchString(email):
		errs[FieldEmail] = "Please enter a valid email address"
	}

	if msg := passwordProblem(req.Password); msg != "" {
		errs[FieldPassword] = msg
	}
	if req.ConfirmPassword != req.Password {
		errs[FieldConfirmPassword] = "Passwords do not match"
	}

	if phone := strings.TrimSpace(req.Phone); phone != "" && !validPhone(phone) {
		errs[FieldPhone] = "Please enter a valid phone number"
	}

	required(errs, FieldFullName, req.FullName, "Full name is required")
	required(errs, FieldBusinessName, req.BusinessName, "Business name is required")
	required(errs, FieldUsername, req.Username, "Username is required")

	switch {
	case strings.TrimSpace(string(req.Role)) == "":
		errs[FieldRole] = "Please select a role"
	case !req.Role.Valid():
		errs[FieldRole] = "Role must be owner or staff"
	}

	if !req.TermsAccepted {
		errs[FieldTermsAccepted] = "You must accept the terms and conditions"
	}
	return errs
}

// Login checks that both login fields are present.
func Login(email, password string) Errors {
	errs := Errors{}
	required(errs, FieldEmail, email, "Email is required")
	// Passwords are taken verbatim; only the empty string is missing.
	if password == "" {
		errs[FieldPassword] = "Password is required"
	}
	return errs
}

func required(errs Errors, field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = msg
	}
}

func passwordProblem(password string) string {
	if password == "" {
		return "Password is required"
	}
	if len([]rune(password)) < MinPasswordLength {
		return "Password must be at least 8 characters"
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return "Password must contain an uppercase letter, a lowercase letter, and a number"
	}
	return ""
}

func validPhone(phone string) bool {
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 10
}
