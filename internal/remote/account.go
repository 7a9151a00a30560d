package remote

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Ishan-Karpe/ShelfSense/internal/errors"
)

// AccountClient calls the privileged account endpoints hosted by this
// application's own API server. Renaming or deleting an account requires
// the service-role credential the client does not hold, so those operations
// go through this intermediary with the user's bearer token.
type AccountClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewAccountClient creates an account client pointed at the API server.
func NewAccountClient(baseURL string, logger *slog.Logger) *AccountClient {
	return &AccountClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// UpdateAccount changes the account email and display name. Success is a
// 200 response.
func (a *AccountClient) UpdateAccount(ctx context.Context, token, email, name string) error {
	body, err := json.Marshal(map[string]string{"email": email, "userName": name})
	if err != nil {
		return fmt.Errorf("marshal account update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		a.baseURL+"/api/v1/account", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build account update request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return apperrors.ErrRemote.WithMessage("update account").WithCause(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return apperrors.Remotef("update account: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// DeleteAccount deletes the account behind the token. On failure the error
// carries the response status and body text so it can be shown to the user.
func (a *AccountClient) DeleteAccount(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		a.baseURL+"/api/v1/account", nil)
	if err != nil {
		return fmt.Errorf("build account delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return apperrors.ErrRemote.WithMessage("delete account").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apperrors.Remotef("delete account: status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
