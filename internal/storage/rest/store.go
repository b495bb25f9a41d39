// Package rest stores profiles in a hosted PostgREST table, the data API of
// the backend-as-a-service.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hongminglow/inventory-be/internal/models"
	"github.com/hongminglow/inventory-be/internal/storage"
)

var _ storage.ProfileStore = (*Store)(nil)

// DefaultTable is the profile table name used when none is configured.
const DefaultTable = "profile"

// Store talks to {baseURL}/rest/v1/{table}.
type Store struct {
	baseURL string
	apiKey  string
	table   string
	client  *http.Client
}

// NewStore builds a Store. A nil client falls back to http.DefaultClient.
func NewStore(baseURL, apiKey, table string, client *http.Client) *Store {
	if client == nil {
		client = http.DefaultClient
	}
	if strings.TrimSpace(table) == "" {
		table = DefaultTable
	}
	return &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		table:   table,
		client:  client,
	}
}

type profileRow struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	FullName     string `json:"full_name"`
	BusinessName string `json:"business_name"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// IsUsernameAvailable runs a point query filtered on username.
func (s *Store) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	q := url.Values{}
	q.Set("select", "user_id")
	q.Set("username", "eq."+username)
	q.Set("limit", "1")

	req, err := s.newRequest(ctx, http.MethodGet, "?"+q.Encode(), nil)
	if err != nil {
		return false, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", storage.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, s.statusError(resp)
	}
	var rows []struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return false, fmt.Errorf("%w: decode lookup: %v", storage.ErrTransport, err)
	}
	return len(rows) == 0, nil
}

// CreateProfile inserts exactly one row keyed by profile.UserID. It acts as
// the new account when ctx carries its access token, and as anon otherwise.
func (s *Store) CreateProfile(ctx context.Context, profile models.ProfileRecord) error {
	body, err := json.Marshal([]profileRow{{
		UserID:       profile.UserID,
		Username:     profile.Username,
		Phone:        profile.Phone,
		Role:         string(profile.Role),
		FullName:     profile.FullName,
		BusinessName: profile.BusinessName,
	}})
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, "", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return s.statusError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *Store) newRequest(ctx context.Context, method, suffix string, body io.Reader) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s%s", s.baseURL, url.PathEscape(s.table), suffix)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	bearer := s.apiKey
	if token, ok := storage.AccessTokenFrom(ctx); ok {
		bearer = token
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (s *Store) statusError(resp *http.Response) error {
	var apiErr apiError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &apiErr)

	if resp.StatusCode == http.StatusConflict || apiErr.Code == "23505" {
		return fmt.Errorf("%w: %s", storage.ErrConflict, apiErr.Message)
	}
	msg := apiErr.Message
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	return fmt.Errorf("%w: status %d: %s", storage.ErrTransport, resp.StatusCode, msg)
}
