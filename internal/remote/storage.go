package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/Ishan-Karpe/ShelfSense/internal/errors"
)

// StorageClient uploads objects to the hosted backend's storage surface and
// resolves their public URLs.
type StorageClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	token      string
	bucket     string
	logger     *slog.Logger
}

// NewStorageClient creates a storage client for the given bucket.
func NewStorageClient(baseURL, apiKey, bucket string, logger *slog.Logger) *StorageClient {
	return &StorageClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		bucket:     bucket,
		logger:     logger,
	}
}

// ForUser returns a copy of the client sending the given access token, so
// bucket policies apply per user.
func (s *StorageClient) ForUser(accessToken string) *StorageClient {
	scoped := *s
	scoped.token = accessToken
	return &scoped
}

// Upload stores the object bytes at the given path within the bucket.
func (s *StorageClient) Upload(ctx context.Context, path string, data []byte) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	token := s.token
	if token == "" {
		token = s.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperrors.ErrRemote.WithMessage("upload object").WithCause(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return apperrors.Remotef("upload object: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// PublicURL returns the public URL for an object path. Purely string
// assembly; no network failure mode.
func (s *StorageClient) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, path)
}
