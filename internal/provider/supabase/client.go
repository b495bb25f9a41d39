// Package supabase is the credential provider client for the hosted GoTrue
// auth API.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/inventory-be/internal/models"
	"github.com/hongminglow/inventory-be/internal/provider"
	"github.com/hongminglow/inventory-be/internal/session"
)

var _ provider.Provider = (*Client)(nil)

// Client calls {baseURL}/auth/v1 with the project's public anon key.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	sessions session.Store
	logger   *zap.Logger
	now      func() time.Time
}

// NewClient builds a Client. A nil httpClient falls back to http.DefaultClient.
func NewClient(baseURL, apiKey string, httpClient *http.Client, sessions session.Store, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		http:     httpClient,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type user struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	// Identities is present but empty when GoTrue disguises a sign-up for an
	// already registered address as a new, unconfirmed user.
	Identities []json.RawMessage `json:"identities"`
}

// tokenResponse covers both shapes returned by /signup: a bare user when
// email confirmation is on, a session with a nested user otherwise.
type tokenResponse struct {
	user
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *user  `json:"user"`
}

func (t tokenResponse) account() user {
	if t.User != nil && t.User.ID != "" {
		return *t.User
	}
	return t.user
}

type errorBody struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e errorBody) text() string {
	for _, s := range []string{e.Msg, e.ErrorDescription, e.Message, e.Error} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// SignUp registers email/password and returns the provider-assigned identity.
func (c *Client) SignUp(ctx context.Context, email, password string) (models.AccountIdentity, error) {
	const op = "sign up"
	var out tokenResponse
	if err := c.post(ctx, op, "/auth/v1/signup", credentials{Email: email, Password: password}, &out); err != nil {
		return models.AccountIdentity{}, err
	}
	u := out.account()
	if u.ID == "" {
		return models.AccountIdentity{}, provider.Transport(op, fmt.Errorf("response carried no user id"))
	}
	if u.Identities != nil && len(u.Identities) == 0 {
		return models.AccountIdentity{}, &provider.Error{
			Op:      op,
			Kind:    provider.KindDuplicateAccount,
			Message: "User already registered",
			Err:     fmt.Errorf("sign up for existing user answered with empty identities"),
		}
	}
	return models.AccountIdentity{UserID: u.ID, Email: u.Email, AccessToken: out.AccessToken}, nil
}

// SignIn exchanges email/password for a session and persists it.
func (c *Client) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	const op = "sign in"
	var out tokenResponse
	if err := c.post(ctx, op, "/auth/v1/token?grant_type=password", credentials{Email: email, Password: password}, &out); err != nil {
		return models.Session{}, err
	}
	if out.AccessToken == "" {
		return models.Session{}, provider.Transport(op, fmt.Errorf("response carried no access token"))
	}
	u := out.account()
	s := models.Session{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		TokenType:    out.TokenType,
		UserID:       u.ID,
		Email:        u.Email,
	}
	switch {
	case out.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(out.ExpiresAt, 0)
	case out.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	if err := session.Persist(ctx, c.sessions, s); err != nil {
		return models.Session{}, provider.Transport(op, err)
	}
	return s, nil
}

// CurrentSession returns the session previously persisted for the caller.
func (c *Client) CurrentSession(ctx context.Context) (models.Session, bool) {
	s, ok, err := session.Lookup(ctx, c.sessions)
	if err != nil {
		c.logger.Warn("session lookup failed", zap.Error(err))
		return models.Session{}, false
	}
	return s, ok
}

func (c *Client) post(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return provider.Transport(op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return provider.Transport(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return provider.Transport(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return provider.Transport(op, err)
	}
	if resp.StatusCode/100 != 2 {
		return classify(op, resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return provider.Transport(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func classify(op string, status int, raw []byte) error {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || status >= 500 {
		return provider.Transport(op, fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(raw))))
	}
	msg := body.text()
	cause := fmt.Errorf("status %d: %s", status, body.ErrorCode)
	if msg == "" {
		return provider.Transport(op, cause)
	}

	kind := provider.KindRejected
	switch body.ErrorCode {
	case "user_already_exists", "email_exists":
		kind = provider.KindDuplicateAccount
	case "weak_password":
		kind = provider.KindWeakPassword
	case "invalid_credentials":
		kind = provider.KindInvalidCredentials
	case "":
		kind = legacyKind(body, msg)
	}
	return &provider.Error{Op: op, Kind: kind, Message: msg, Err: cause}
}

// legacyKind handles GoTrue versions that predate error_code.
func legacyKind(body errorBody, msg string) provider.Kind {
	lower := strings.ToLower(msg)
	switch {
	case body.Error == "invalid_grant", strings.Contains(lower, "invalid login credentials"):
		return provider.KindInvalidCredentials
	case strings.Contains(lower, "already registered"):
		return provider.KindDuplicateAccount
	case strings.Contains(lower, "password"):
		return provider.KindWeakPassword
	}
	return provider.KindRejected
}
