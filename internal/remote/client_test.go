package remote

import (
	"context"
	"encoding/json/v2"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ishan-Karpe/ShelfSense/internal/domain"
	apperrors "github.com/Ishan-Karpe/ShelfSense/internal/errors"
	"github.com/Ishan-Karpe/ShelfSense/internal/logger"
)

func newRowsClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "anon-key", logger.Discard().Logger).ForUser("user-token")
}

func TestSelectBooks(t *testing.T) {
	var gotPath, gotAuth, gotAPIKey string
	client := newRowsClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":1,"user_id":"u-1","title":"Dune","created_at":"2025-03-01T00:00:00Z"}]`)
	})

	books, err := client.SelectBooks(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, int64(1), books[0].ID)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "/rest/v1/books?select=*&user_id=eq.u-1", gotPath)
	assert.Equal(t, "Bearer user-token", gotAuth)
	assert.Equal(t, "anon-key", gotAPIKey)
}

func TestSelectBooks_RemoteError(t *testing.T) {
	client := newRowsClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.SelectBooks(context.Background(), "u-1")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrRemote))
}

func TestSelectProfile_Missing(t *testing.T) {
	client := newRowsClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})

	profile, err := client.SelectProfile(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestSelectProfile(t *testing.T) {
	client := newRowsClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "user_id=eq.u-1")
		io.WriteString(w, `[{"user_id":"u-1","name":"Ishan"}]`)
	})

	profile, err := client.SelectProfile(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Ishan", profile.Name)
}

func TestInsertBooks_ReturnsRepresentation(t *testing.T) {
	client := newRowsClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var drafts []domain.BookDraft
		require.NoError(t, json.UnmarshalRead(r.Body, &drafts))
		require.Len(t, drafts, 1)
		assert.Equal(t, "Dune", drafts[0].Title)

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `[{"id":7,"user_id":"u-1","title":"Dune","created_at":"2025-03-01T00:00:00Z"}]`)
	})

	author := "Herbert"
	created, err := client.InsertBooks(context.Background(), []domain.BookDraft{
		{Title: "Dune", Author: &author, UserID: "u-1"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, int64(7), created[0].ID)
}

func TestUpdateBook_ReportsStatusVerbatim(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusNotFound, http.StatusConflict} {
		client := newRowsClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Contains(t, r.URL.RawQuery, "id=eq.42")
			w.WriteHeader(status)
		})

		title := "Dune Messiah"
		got, err := client.UpdateBook(context.Background(), 42, domain.BookUpdate{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, status, got)
	}
}

func TestUpdateBook_OmitsUnsetFields(t *testing.T) {
	client := newRowsClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"rating":5}`, string(body))
		w.WriteHeader(http.StatusNoContent)
	})

	rating := 5.0
	_, err := client.UpdateBook(context.Background(), 1, domain.BookUpdate{Rating: &rating})
	require.NoError(t, err)
}

func TestDeleteBook(t *testing.T) {
	client := newRowsClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	status, err := client.DeleteBook(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestStorageClient(t *testing.T) {
	var gotPath string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	storage := NewStorageClient(server.URL, "anon-key", "covers", logger.Discard().Logger).ForUser("user-token")

	err := storage.Upload(context.Background(), "u-1/42/cover.jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/storage/v1/object/covers/u-1/42/cover.jpg", gotPath)
	assert.Equal(t, "jpeg-bytes", string(gotBody))

	url := storage.PublicURL("u-1/42/cover.jpg")
	assert.Equal(t, server.URL+"/storage/v1/object/public/covers/u-1/42/cover.jpg", url)
}

func TestStorageClient_UploadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	storage := NewStorageClient(server.URL, "anon-key", "covers", logger.Discard().Logger)
	err := storage.Upload(context.Background(), "p", nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrRemote))
}

func TestAuthClientSignOut(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	auth := NewAuthClient(server.URL, "anon-key", logger.Discard().Logger).ForUser("user-token")
	require.NoError(t, auth.SignOut(context.Background()))
	assert.Equal(t, "Bearer user-token", gotAuth)
}

func TestAdminClientVerifyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		io.WriteString(w, `{"id":"u-1","email":"ishan@example.com"}`)
	}))
	t.Cleanup(server.Close)

	admin := NewAdminClient(server.URL, "service-key", logger.Discard().Logger)
	identity, err := admin.VerifyToken(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.UserID)
	assert.Equal(t, "ishan@example.com", identity.Email)
	assert.Equal(t, "user-token", identity.AccessToken)
}

func TestAdminClientVerifyToken_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	admin := NewAdminClient(server.URL, "service-key", logger.Discard().Logger)
	_, err := admin.VerifyToken(context.Background(), "bad-token")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestAccountClientDeleteAccount_ErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "auth deletion failed")
	}))
	t.Cleanup(server.Close)

	account := NewAccountClient(server.URL, logger.Discard().Logger)
	err := account.DeleteAccount(context.Background(), "user-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "auth deletion failed")
}

func TestAccountClientUpdateAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/account", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"email":"new@example.com","userName":"Ishan"}`, string(body))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	account := NewAccountClient(server.URL, logger.Discard().Logger)
	err := account.UpdateAccount(context.Background(), "user-token", "new@example.com", "Ishan")
	require.NoError(t, err)
}
