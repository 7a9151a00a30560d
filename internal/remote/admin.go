package remote

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Ishan-Karpe/ShelfSense/internal/domain"
	apperrors "github.com/Ishan-Karpe/ShelfSense/internal/errors"
)

// AdminClient holds the service-role credential and performs the privileged
// operations the account endpoints need: token introspection, auth-user
// mutation, and row cleanup across users. It must never be handed to
// client-side code.
type AdminClient struct {
	httpClient *http.Client
	baseURL    string
	serviceKey string
	logger     *slog.Logger
}

// NewAdminClient creates an admin client authorized with the service-role key.
func NewAdminClient(baseURL, serviceKey string, logger *slog.Logger) *AdminClient {
	return &AdminClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		serviceKey: serviceKey,
		logger:     logger,
	}
}

// VerifyToken introspects a user access token against the auth service and
// returns the identity it belongs to. An invalid or expired token yields
// ErrUnauthorized.
func (a *AdminClient) VerifyToken(ctx context.Context, accessToken string) (*domain.Identity, error) {
	endpoint := a.baseURL + "/auth/v1/user"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build introspection request: %w", err)
	}
	req.Header.Set("apikey", a.serviceKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.ErrRemote.WithMessage("verify token").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperrors.Unauthorized("token rejected by auth service")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Remotef("verify token: unexpected status %d", resp.StatusCode)
	}

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.UnmarshalRead(resp.Body, &user); err != nil {
		return nil, apperrors.ErrRemote.WithMessage("decode auth user").WithCause(err)
	}
	if user.ID == "" {
		return nil, apperrors.Unauthorized("no user behind token")
	}

	return &domain.Identity{AccessToken: accessToken, UserID: user.ID, Email: user.Email}, nil
}

// UpdateUserEmail changes the auth user's email address.
func (a *AdminClient) UpdateUserEmail(ctx context.Context, userID, email string) error {
	endpoint := fmt.Sprintf("%s/auth/v1/admin/users/%s", a.baseURL, url.PathEscape(userID))
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return fmt.Errorf("marshal email update: %w", err)
	}
	return a.do(ctx, http.MethodPut, endpoint, body, http.StatusOK)
}

// DeleteUser removes the auth user entirely.
func (a *AdminClient) DeleteUser(ctx context.Context, userID string) error {
	endpoint := fmt.Sprintf("%s/auth/v1/admin/users/%s", a.baseURL, url.PathEscape(userID))
	return a.do(ctx, http.MethodDelete, endpoint, nil, http.StatusOK)
}

// UpdateProfileName updates the display-name row for the user.
func (a *AdminClient) UpdateProfileName(ctx context.Context, userID, name string) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?user_id=eq.%s",
		a.baseURL, profilesTable, url.QueryEscape(userID))
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return fmt.Errorf("marshal name update: %w", err)
	}
	return a.do(ctx, http.MethodPatch, endpoint, body, http.StatusNoContent)
}

// DeleteBooksForUser removes every book row owned by the user.
func (a *AdminClient) DeleteBooksForUser(ctx context.Context, userID string) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?user_id=eq.%s",
		a.baseURL, booksTable, url.QueryEscape(userID))
	return a.do(ctx, http.MethodDelete, endpoint, nil, http.StatusNoContent)
}

// DeleteProfile removes the display-name row for the user.
func (a *AdminClient) DeleteProfile(ctx context.Context, userID string) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?user_id=eq.%s",
		a.baseURL, profilesTable, url.QueryEscape(userID))
	return a.do(ctx, http.MethodDelete, endpoint, nil, http.StatusNoContent)
}

func (a *AdminClient) do(ctx context.Context, method, endpoint string, body []byte, wantStatus int) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("apikey", a.serviceKey)
	req.Header.Set("Authorization", "Bearer "+a.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return apperrors.ErrRemote.WithMessage("admin call").WithCause(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode != wantStatus {
		return apperrors.Remotef("%s %s: unexpected status %d", method, endpoint, resp.StatusCode)
	}
	return nil
}
