package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// errUserNotFound is returned by findUserIDByEmail.
var errUserNotFound = errors.New("user not found")

// AdminClient calls the Supabase Auth admin API with the service role key.
// Only the seed tool uses it.
type AdminClient struct {
	supabaseURL string
	serviceKey  string
	httpClient  *http.Client
}

func NewAdminClient(supabaseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		supabaseURL: supabaseURL,
		serviceKey:  serviceKey,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

type createUserRequest struct {
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	EmailConfirm bool           `json:"email_confirm"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

type adminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// EnsureUser returns the id of the user with this email, creating a confirmed
// account with full_name metadata when none exists.
func (c *AdminClient) EnsureUser(ctx context.Context, email, password, fullName string) (string, error) {
	id, err := c.findUserIDByEmail(ctx, email)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, errUserNotFound) {
		return "", err
	}

	payload := createUserRequest{Email: email, Password: password, EmailConfirm: true}
	if fullName != "" {
		payload.UserMetadata = map[string]any{"full_name": fullName}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal create request: %w", err)
	}

	var created adminUser
	if err := c.do(ctx, http.MethodPost, "/auth/v1/admin/users", body, &created); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return created.ID, nil
}

// DeleteUserByEmail is idempotent: a missing user is not an error.
func (c *AdminClient) DeleteUserByEmail(ctx context.Context, email string) error {
	id, err := c.findUserIDByEmail(ctx, email)
	if errors.Is(err, errUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (c *AdminClient) findUserIDByEmail(ctx context.Context, email string) (string, error) {
	var list struct {
		Users []adminUser `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/v1/admin/users", nil, &list); err != nil {
		return "", fmt.Errorf("list users: %w", err)
	}
	for _, u := range list.Users {
		if u.Email == email {
			return u.ID, nil
		}
	}
	return "", errUserNotFound
}

func (c *AdminClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.supabaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
