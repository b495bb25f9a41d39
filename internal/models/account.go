package models

import "time"

// AccountIdentity is the identity a credential provider assigns on sign-up.
// It is never constructed from user input.
type AccountIdentity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	// AccessToken is set when the provider signed the new account in
	// immediately. It authorizes the profile insert and is never serialized.
	AccessToken string `json:"-"`
}

// Account is a credential row owned by the local credential provider.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity returns the public identity of the account.
func (a Account) Identity() AccountIdentity {
	return AccountIdentity{UserID: a.ID, Email: a.Email}
}
