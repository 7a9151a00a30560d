// Package prefs provides client-local preference storage. Preferences are
// scoped to a user and survive across sessions on the same machine; they are
// never synced through the hosted backend.
package prefs

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Store is the key-value surface the library core uses for preferences.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)
	// Set stores the value under key.
	Set(key, value string) error
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(key string) error
}

// Local is a badger-backed Store.
type Local struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the local preference database at path.
func Open(path string, logger *slog.Logger) (*Local, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}

	return &Local{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (l *Local) Close() error {
	return l.db.Close()
}

// Get returns the stored value for key.
func (l *Local) Get(key string) (string, bool) {
	var value string
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false
	}
	if err != nil {
		if l.logger != nil {
			l.logger.Error("preference read failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

// Set stores the value under key.
func (l *Local) Set(key, value string) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

// Remove deletes the key.
func (l *Local) Remove(key string) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Noop is a Store for execution contexts without local persistence. Every
// write succeeds and nothing is ever found, matching how the original app
// degrades outside a browser.
type Noop struct{}

// NewNoop creates a no-op preference store.
func NewNoop() Noop { return Noop{} }

// Get never finds a value.
func (Noop) Get(string) (string, bool) { return "", false }

// Set discards the value.
func (Noop) Set(string, string) error { return nil }

// Remove does nothing.
func (Noop) Remove(string) error { return nil }
