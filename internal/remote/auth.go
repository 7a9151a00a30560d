package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/Ishan-Karpe/ShelfSense/internal/errors"
)

// AuthClient talks to the hosted auth surface on behalf of a signed-in user.
type AuthClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	token      string
	logger     *slog.Logger
}

// NewAuthClient creates an auth client.
func NewAuthClient(baseURL, apiKey string, logger *slog.Logger) *AuthClient {
	return &AuthClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// ForUser returns a copy of the client sending the given access token.
func (a *AuthClient) ForUser(accessToken string) *AuthClient {
	scoped := *a
	scoped.token = accessToken
	return &scoped
}

// SignOut invalidates the remote session behind the client's access token.
func (a *AuthClient) SignOut(ctx context.Context) error {
	endpoint := a.baseURL + "/auth/v1/logout"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}
	req.Header.Set("apikey", a.apiKey)
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return apperrors.ErrRemote.WithMessage("sign out").WithCause(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return apperrors.Remotef("sign out: unexpected status %d", resp.StatusCode)
	}
	return nil
}
