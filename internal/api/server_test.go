package api

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ishan-Karpe/ShelfSense/internal/domain"
	apperrors "github.com/Ishan-Karpe/ShelfSense/internal/errors"
	"github.com/Ishan-Karpe/ShelfSense/internal/logger"
)

type fakeAdmin struct {
	verifyErr error

	emailErr   error
	profileErr error
	booksErr   error
	rowErr     error
	userErr    error

	emails      []string
	names       []string
	booksCalls  int
	rowCalls    int
	userCalls   int
	verifiedFor []string
}

func (f *fakeAdmin) VerifyToken(_ context.Context, token string) (*domain.Identity, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	f.verifiedFor = append(f.verifiedFor, token)
	return &domain.Identity{AccessToken: token, UserID: "u-1", Email: "u@example.com"}, nil
}

func (f *fakeAdmin) UpdateUserEmail(_ context.Context, _, email string) error {
	if f.emailErr != nil {
		return f.emailErr
	}
	f.emails = append(f.emails, email)
	return nil
}

func (f *fakeAdmin) UpdateProfileName(_ context.Context, _, name string) error {
	if f.profileErr != nil {
		return f.profileErr
	}
	f.names = append(f.names, name)
	return nil
}

func (f *fakeAdmin) DeleteBooksForUser(context.Context, string) error {
	f.booksCalls++
	return f.booksErr
}

func (f *fakeAdmin) DeleteProfile(context.Context, string) error {
	f.rowCalls++
	return f.rowErr
}

func (f *fakeAdmin) DeleteUser(context.Context, string) error {
	f.userCalls++
	return f.userErr
}

type fakeScanner struct {
	candidates []domain.ShelfCandidate
	err        error
	images     []string
}

func (f *fakeScanner) Scan(_ context.Context, base64Image string) ([]domain.ShelfCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.images = append(f.images, base64Image)
	return f.candidates, nil
}

type envelope struct {
	Data    map[string]any `json:"data"`
	Error   string         `json:"error"`
	Success bool           `json:"success"`
}

func setupServer(t *testing.T) (*Server, *fakeAdmin, *fakeScanner) {
	t.Helper()
	admin := &fakeAdmin{}
	scanner := &fakeScanner{}
	return NewServer(admin, scanner, logger.Discard().Logger), admin, scanner
}

func doRequest(t *testing.T, s *Server, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealthCheck(t *testing.T) {
	s, _, _ := setupServer(t)

	rec, env := doRequest(t, s, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data["status"])
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	s, _, _ := setupServer(t)

	rec, env := doRequest(t, s, http.MethodPatch, "/api/v1/account", "", `{"email":"a@b.com","userName":"A"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	s, _, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/account", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsBadToken(t *testing.T) {
	s, admin, _ := setupServer(t)
	admin.verifyErr = apperrors.Unauthorized("token expired")

	rec, _ := doRequest(t, s, http.MethodPatch, "/api/v1/account", "stale", `{"email":"a@b.com","userName":"A"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateAccount(t *testing.T) {
	s, admin, _ := setupServer(t)

	rec, env := doRequest(t, s, http.MethodPatch, "/api/v1/account", "tok", `{"email":"new@example.com","userName":"New Name"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	assert.Equal(t, []string{"new@example.com"}, admin.emails)
	assert.Equal(t, []string{"New Name"}, admin.names)
	assert.Equal(t, []string{"tok"}, admin.verifiedFor)
}

func TestUpdateAccountValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad email", `{"email":"nope","userName":"A"}`},
		{"missing name", `{"email":"a@b.com"}`},
		{"missing email", `{"userName":"A"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, admin, _ := setupServer(t)

			rec, _ := doRequest(t, s, http.MethodPatch, "/api/v1/account", "tok", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, admin.emails)
		})
	}
}

func TestUpdateAccountAuthUpdateFailure(t *testing.T) {
	s, admin, _ := setupServer(t)
	admin.emailErr = apperrors.Remote("auth backend down")

	rec, env := doRequest(t, s, http.MethodPatch, "/api/v1/account", "tok", `{"email":"a@b.com","userName":"A"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, env.Success)
	assert.Empty(t, admin.names, "profile update skipped after auth failure")
}

func TestDeleteAccount(t *testing.T) {
	s, admin, _ := setupServer(t)

	rec, env := doRequest(t, s, http.MethodDelete, "/api/v1/account", "tok", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	assert.Equal(t, 1, admin.booksCalls)
	assert.Equal(t, 1, admin.rowCalls)
	assert.Equal(t, 1, admin.userCalls)
}

func TestDeleteAccountRowFailuresAreBestEffort(t *testing.T) {
	s, admin, _ := setupServer(t)
	admin.booksErr = apperrors.Remote("books table locked")
	admin.rowErr = apperrors.Remote("profile table locked")

	rec, _ := doRequest(t, s, http.MethodDelete, "/api/v1/account", "tok", "")

	// Row failures are logged, not fatal: the auth user still goes.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, admin.userCalls)
}

func TestDeleteAccountAuthFailureIsFatal(t *testing.T) {
	s, admin, _ := setupServer(t)
	admin.userErr = apperrors.Remote("auth deletion failed")

	rec, env := doRequest(t, s, http.MethodDelete, "/api/v1/account", "tok", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, env.Success)
}

func TestScanShelf(t *testing.T) {
	s, _, scanner := setupServer(t)
	scanner.candidates = []domain.ShelfCandidate{
		{BookTitle: "Dune", Author: "Frank Herbert"},
	}

	rec, env := doRequest(t, s, http.MethodPost, "/api/v1/scan-shelf", "tok", `{"base64":"aGVsbG8="}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	books, ok := env.Data["bookArray"].([]any)
	require.True(t, ok)
	require.Len(t, books, 1)
	assert.Equal(t, []string{"aGVsbG8="}, scanner.images)
}

func TestScanShelfMissingImage(t *testing.T) {
	s, _, _ := setupServer(t)

	rec, _ := doRequest(t, s, http.MethodPost, "/api/v1/scan-shelf", "tok", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanShelfRateLimited(t *testing.T) {
	s, _, scanner := setupServer(t)
	scanner.candidates = []domain.ShelfCandidate{}

	// Burst is 3; the fourth immediate request from the same IP trips it.
	for range 3 {
		rec, _ := doRequest(t, s, http.MethodPost, "/api/v1/scan-shelf", "tok", `{"base64":"aGVsbG8="}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, env := doRequest(t, s, http.MethodPost, "/api/v1/scan-shelf", "tok", `{"base64":"aGVsbG8="}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, env.Success)
}

func TestScanShelfModelFailure(t *testing.T) {
	s, _, scanner := setupServer(t)
	scanner.err = apperrors.Remote("model unreachable")

	rec, env := doRequest(t, s, http.MethodPost, "/api/v1/scan-shelf", "tok", `{"base64":"aGVsbG8="}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, env.Success)
}
