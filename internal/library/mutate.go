package library

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Ishan-Karpe/ShelfSense/internal/domain"
)

// Post-mutation navigation targets.
const (
	dashboardPath = "/private/dashboard"
	homePath      = "/"
)

// UpdateBook applies the partial fields to the remote row and, only when the
// store confirms (204 and no error), merges the same fields into the cached
// book. Failures are logged and swallowed; callers observe them only by
// re-reading state.
func (s *State) UpdateBook(ctx context.Context, id int64, fields domain.BookUpdate) {
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()

	if store == nil {
		s.logger.Debug("book update skipped: no store handle", "book_id", id)
		return
	}

	status, err := store.UpdateBook(ctx, id, fields)
	if err != nil || status != http.StatusNoContent {
		s.logger.Error("book update failed",
			"book_id", id,
			"status", status,
			"error", err,
		)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].ID == id {
			fields.Apply(&s.books[i])
			return
		}
	}
}

// UploadCover stores the cover bytes under userID/bookID/filename, resolves
// the public URL, and records it on the book. An upload failure aborts
// before the book update.
func (s *State) UploadCover(ctx context.Context, bookID int64, filename string, data []byte) {
	s.mu.Lock()
	identity := s.identity
	s.mu.Unlock()

	if identity == nil || s.storage == nil {
		s.logger.Debug("cover upload skipped: no active session", "book_id", bookID)
		return
	}

	path := fmt.Sprintf("%s/%d/%s", identity.UserID, bookID, filename)
	if err := s.storage.Upload(ctx, path, data); err != nil {
		s.logger.Error("cover upload failed", "book_id", bookID, "path", path, "error", err)
		return
	}

	url := s.storage.PublicURL(path)
	s.UpdateBook(ctx, bookID, domain.BookUpdate{CoverImageURL: &url})
}

// DeleteBook deletes the remote row and removes the book from the snapshot
// on success. The navigation back to the dashboard fires regardless of
// outcome — the original app behaves this way, and the regression tests
// pin it; do not "fix" without a product decision.
func (s *State) DeleteBook(ctx context.Context, id int64) {
	s.mu.Lock()
	store := s.store
	s.mu.Unlock()

	if store != nil {
		status, err := store.DeleteBook(ctx, id)
		if err == nil && status == http.StatusNoContent {
			s.mu.Lock()
			for i := range s.books {
				if s.books[i].ID == id {
					s.books = append(s.books[:i], s.books[i+1:]...)
					break
				}
			}
			s.mu.Unlock()
		} else {
			s.logger.Error("book delete failed",
				"book_id", id,
				"status", status,
				"error", err,
			)
		}
	}

	if s.nav != nil {
		s.nav.Goto(dashboardPath)
	}
}

// BulkAddBooks inserts all candidates in one batch, then replaces the cached
// collection with a fresh read of the book list rather than trusting the
// insert response. An insert failure aborts with no state change.
func (s *State) BulkAddBooks(ctx context.Context, candidates []domain.ShelfCandidate) {
	s.mu.Lock()
	identity := s.identity
	store := s.store
	s.mu.Unlock()

	if identity == nil || store == nil {
		s.logger.Debug("bulk add skipped: no active session")
		return
	}

	drafts := make([]domain.BookDraft, 0, len(candidates))
	for _, c := range candidates {
		author := c.Author
		drafts = append(drafts, domain.BookDraft{
			Title:  c.BookTitle,
			Author: &author,
			UserID: identity.UserID,
		})
	}

	if _, err := store.InsertBooks(ctx, drafts); err != nil {
		s.logger.Error("bulk insert failed", "count", len(drafts), "error", err)
		return
	}

	books, err := store.SelectBooks(ctx, identity.UserID)
	if err != nil || books == nil {
		s.logger.Error("post-insert refetch failed", "error", err)
		return
	}

	s.mu.Lock()
	s.books = books
	s.mu.Unlock()

	s.logger.Info("bulk add complete", "inserted", len(drafts), "total", len(books))
}

// SetGenreFilter sets the in-memory genre filter and persists it locally
// under a key scoped to the current user. An empty genre clears both. The
// remote store is never involved.
func (s *State) SetGenreFilter(genre string) {
	s.mu.Lock()
	s.genreFilter = genre
	identity := s.identity
	s.mu.Unlock()

	if identity == nil {
		return
	}

	key := genreFilterKey(identity.UserID)
	var err error
	if genre == "" {
		err = s.prefs.Remove(key)
	} else {
		err = s.prefs.Set(key, genre)
	}
	if err != nil {
		s.logger.Error("genre filter persistence failed", "key", key, "error", err)
	}
}

// UpdateAccount changes the account email and display name through the
// privileged endpoint. On success the cached display name is updated; on
// failure the state is unchanged and the error is only logged.
func (s *State) UpdateAccount(ctx context.Context, email, displayName string) {
	s.mu.Lock()
	identity := s.identity
	s.mu.Unlock()

	if identity == nil || s.account == nil {
		s.logger.Debug("account update skipped: no active session")
		return
	}

	if err := s.account.UpdateAccount(ctx, identity.AccessToken, email, displayName); err != nil {
		s.logger.Error("account update failed", "error", err)
		return
	}

	s.mu.Lock()
	s.displayName = displayName
	s.mu.Unlock()
}

// DeleteAccount deletes the account through the privileged endpoint. On
// success the user is signed out and sent home; on failure a blocking alert
// carries the error detail — account deletion is the one destructive action
// whose failure must reach the user.
func (s *State) DeleteAccount(ctx context.Context) {
	s.mu.Lock()
	identity := s.identity
	s.mu.Unlock()

	if identity == nil || s.account == nil {
		s.logger.Debug("account delete skipped: no active session")
		return
	}

	if err := s.account.DeleteAccount(ctx, identity.AccessToken); err != nil {
		s.logger.Error("account delete failed", "error", err)
		if s.alerter != nil {
			s.alerter.Alert("Failed to delete account: " + err.Error())
		}
		return
	}

	s.SignOut(ctx)
}

// SignOut invalidates the remote session and navigates home. Sign-out
// failures are logged; navigation happens either way.
func (s *State) SignOut(ctx context.Context) {
	if s.auth != nil {
		if err := s.auth.SignOut(ctx); err != nil {
			s.logger.Error("sign out failed", "error", err)
		}
	}
	if s.nav != nil {
		s.nav.Goto(homePath)
	}
}
