// Package remote provides typed clients for the hosted backend that owns
// persistence, auth, and file storage. Row access speaks the backend's REST
// dialect: tables under /rest/v1 with column equality filters, mutations
// answered with 204 No Content.
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

const (
	booksTable    = "books"
	profilesTable = "user_names"

	requestTimeout = 30 * time.Second
)

// Client is a rows client scoped to one caller. The zero value is not
// usable; construct with NewClient and scope to a session with ForUser.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	token      string
	logger     *slog.Logger
}

// NewClient creates a rows client authorized with the given API key.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// ForUser returns a copy of the client that sends the given access token as
// its bearer credential. Row-level security on the backend scopes every
// query to that user.
func (c *Client) ForUser(accessToken string) *Client {
	scoped := *c
	scoped.token = accessToken
	return &scoped
}

// SelectBooks returns all books owned by the user, or an error. A nil slice
// with a nil error means the backend reported no data; callers treat that
// the same as a hard failure.
func (c *Client) SelectBooks(ctx context.Context, userID string) ([]domain.Book, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=*&user_id=eq.%s",
		c.baseURL, booksTable, url.QueryEscape(userID))

	var books []domain.Book
	if err := c.getJSON(ctx, endpoint, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// SelectProfile returns the display-name record for the user, or nil if the
// backend has none.
func (c *Client) SelectProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=*&user_id=eq.%s",
		c.baseURL, profilesTable, url.QueryEscape(userID))

	var profiles []domain.Profile
	if err := c.getJSON(ctx, endpoint, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// InsertBooks inserts all drafts in one batch and returns the created rows.
func (c *Client) InsertBooks(ctx context.Context, drafts []domain.BookDraft) ([]domain.Book, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, booksTable)

	body, err := json.Marshal(drafts)
	if err != nil {
		return nil, fmt.Errorf("marshal drafts: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build insert request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.ErrRemote.WithMessage("insert books").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, apperrors.Remotef("insert books: unexpected status %d", resp.StatusCode)
	}

	var created []domain.Book
	if err := json.UnmarshalRead(resp.Body, &created); err != nil {
		return nil, apperrors.ErrRemote.WithMessage("decode inserted books").WithCause(err)
	}
	return created, nil
}

// UpdateBook applies the partial fields to the book row with the given id.
// The returned status is the backend's verbatim response code; callers must
// check for 204 in addition to a nil error.
func (c *Client) UpdateBook(ctx context.Context, id int64, fields domain.BookUpdate) (int, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?id=eq.%d", c.baseURL, booksTable, id)

	body, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("marshal update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build update request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperrors.ErrRemote.WithMessage("update book").WithCause(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	return resp.StatusCode, nil
}

// DeleteBook removes the book row with the given id. Same status contract
// as UpdateBook: success means 204 and a nil error.
func (c *Client) DeleteBook(ctx context.Context, id int64) (int, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?id=eq.%d", c.baseURL, booksTable, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build delete request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperrors.ErrRemote.WithMessage("delete book").WithCause(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	return resp.StatusCode, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.ErrRemote.WithMessage("query rows").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.Remotef("query rows: unexpected status %d", resp.StatusCode)
	}

	if err := json.UnmarshalRead(resp.Body, out); err != nil {
		return apperrors.ErrRemote.WithMessage("decode rows").WithCause(err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	token := c.token
	if token == "" {
		token = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
}
