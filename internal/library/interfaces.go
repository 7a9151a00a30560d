package library

import (
	"context"

	"github.com/Ishan-Karpe/ShelfSense/internal/domain"
)

// RowStore is the slice of the hosted backend's row surface the library
// state needs. remote.Client satisfies it.
//
// UpdateBook and DeleteBook report the backend's verbatim status code;
// success requires 204 No Content and a nil error, both.
type RowStore interface {
	SelectBooks(ctx context.Context, userID string) ([]domain.Book, error)
	SelectProfile(ctx context.Context, userID string) (*domain.Profile, error)
	InsertBooks(ctx context.Context, drafts []domain.BookDraft) ([]domain.Book, error)
	UpdateBook(ctx context.Context, id int64, fields domain.BookUpdate) (status int, err error)
	DeleteBook(ctx context.Context, id int64) (status int, err error)
}

// ObjectStorage uploads cover images and resolves their public URLs.
// remote.StorageClient satisfies it.
type ObjectStorage interface {
	Upload(ctx context.Context, path string, data []byte) error
	// PublicURL is pure string assembly; it has no failure mode.
	PublicURL(path string) string
}

// Auth invalidates the remote session. remote.AuthClient satisfies it.
type Auth interface {
	SignOut(ctx context.Context) error
}

// AccountAPI reaches the privileged account endpoints with the user's
// bearer token. remote.AccountClient satisfies it.
type AccountAPI interface {
	UpdateAccount(ctx context.Context, token, email, name string) error
	DeleteAccount(ctx context.Context, token string) error
}

// Navigator performs UI navigation side effects.
type Navigator interface {
	Goto(path string)
}

// Alerter surfaces a blocking, user-visible message.
type Alerter interface {
	Alert(message string)
}
