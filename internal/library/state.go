// Package library holds the in-memory state of the signed-in user's book
// collection and derives every read-only view from it.
//
// The State is the single source of truth between the hosted backend and the
// UI: mutations go through it, derivation queries recompute from the current
// snapshot on every call, and a user-identity change is the only trigger for
// a full refetch. Remote failures never propagate to callers; they are
// logged and the snapshot stays at last-known-good.
package library

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Ishan-Karpe/ShelfSense/internal/domain"
	"github.com/Ishan-Karpe/ShelfSense/internal/prefs"
)

// genreFilterKeyPrefix scopes the persisted genre filter per user.
const genreFilterKeyPrefix = "shelfsense:genre-filter:"

// Deps are the collaborators a State needs beyond the per-session row store,
// which arrives through Reconcile.
type Deps struct {
	Storage   ObjectStorage
	Auth      Auth
	Account   AccountAPI
	Prefs     prefs.Store
	Navigator Navigator
	Alerter   Alerter
	Logger    *slog.Logger
}

// State owns the snapshot for the currently signed-in user: books, display
// name, and genre filter. One State is constructed per user session and
// handed by reference to all consumers; it is safe for concurrent use.
//
// Known quirk carried over from the original app: signing out clears books
// but leaves the display name stale until the next sign-in refetch.
type State struct {
	mu          sync.Mutex
	identity    *domain.Identity
	store       RowStore
	books       []domain.Book
	displayName string
	genreFilter string

	storage ObjectStorage
	auth    Auth
	account AccountAPI
	prefs   prefs.Store
	nav     Navigator
	alerter Alerter
	logger  *slog.Logger

	// refetch tracks in-flight detached refetches so tests (and shutdown)
	// can wait for them; Reconcile itself never does.
	refetch sync.WaitGroup
}

// New creates an empty State. Callers follow up with Reconcile to attach
// the first session; the initial refetch (and genre-filter load) happens
// there.
func New(deps Deps) *State {
	if deps.Prefs == nil {
		deps.Prefs = prefs.NewNoop()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &State{
		storage: deps.Storage,
		auth:    deps.Auth,
		account: deps.Account,
		prefs:   deps.Prefs,
		nav:     deps.Navigator,
		alerter: deps.Alerter,
		logger:  deps.Logger,
	}
}

// Reconcile absorbs a new identity snapshot from the auth provider. The
// identity and store handle are overwritten unconditionally; the cached
// books are refetched only when the user actually changed. A token refresh
// for the same user is not a change.
//
// The refetch runs detached: Reconcile returns without waiting for it, and
// its failures are logged, never surfaced.
func (s *State) Reconcile(identity *domain.Identity, store RowStore) {
	s.mu.Lock()
	changed := userID(s.identity) != userID(identity)

	s.logger.Debug("reconcile",
		"old_user", userEmail(s.identity),
		"new_user", userEmail(identity),
		"changed", changed,
	)

	s.identity = identity
	s.store = store

	if identity == nil {
		// Signed out: clear books synchronously. The display name stays
		// stale on purpose; the next sign-in refetch overwrites it.
		s.books = nil
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if changed {
		s.refetch.Add(1)
		go func() {
			defer s.refetch.Done()
			s.fetchUserData(context.Background())
		}()
	}
}

// fetchUserData reloads books and display name from the remote store and
// replaces the snapshot. Both reads run concurrently and both must succeed;
// on any failure (including a nil result with no error) the snapshot is
// left untouched. On success the genre filter is reloaded for this user.
func (s *State) fetchUserData(ctx context.Context) {
	s.mu.Lock()
	identity := s.identity
	store := s.store
	s.mu.Unlock()

	if identity == nil || store == nil {
		s.logger.Debug("refetch skipped: no active session")
		return
	}

	var (
		books      []domain.Book
		profile    *domain.Profile
		booksErr   error
		profileErr error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		books, booksErr = store.SelectBooks(ctx, identity.UserID)
	}()
	go func() {
		defer wg.Done()
		profile, profileErr = store.SelectProfile(ctx, identity.UserID)
	}()
	wg.Wait()

	if booksErr != nil || profileErr != nil || books == nil || profile == nil {
		s.logger.Error("refetch failed, keeping snapshot",
			"user_id", identity.UserID,
			"books_error", booksErr,
			"profile_error", profileErr,
			"books_missing", books == nil,
			"profile_missing", profile == nil,
		)
		return
	}

	filter, _ := s.prefs.Get(genreFilterKey(identity.UserID))

	s.mu.Lock()
	s.books = books
	s.displayName = profile.Name
	s.genreFilter = filter
	s.mu.Unlock()

	s.logger.Info("snapshot refreshed",
		"user_id", identity.UserID,
		"books", len(books),
	)
}

// WaitForRefetch blocks until any in-flight refetch has finished.
func (s *State) WaitForRefetch() {
	s.refetch.Wait()
}

// Identity returns the current identity snapshot, or nil when signed out.
func (s *State) Identity() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Books returns a copy of the current book snapshot.
func (s *State) Books() []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Book, len(s.books))
	copy(out, s.books)
	return out
}

// DisplayName returns the cached display name.
func (s *State) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayName
}

// GenreFilter returns the active genre filter, or empty when unset.
func (s *State) GenreFilter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.genreFilter
}

func genreFilterKey(userID string) string {
	return genreFilterKeyPrefix + userID
}

func userID(identity *domain.Identity) string {
	if identity == nil {
		return ""
	}
	return identity.UserID
}

func userEmail(identity *domain.Identity) string {
	if identity == nil {
		return "no user"
	}
	return identity.Email
}
