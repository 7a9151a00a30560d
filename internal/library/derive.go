package library

import (
	"slices"
	"strings"

	"github.com/Ishan-Karpe/ShelfSense/internal/domain"
)

// defaultShelfSize caps every derived shelf the dashboard renders.
const defaultShelfSize = 9

// TopRated returns the highest-rated books: only books with a rating, sorted
// by rating descending with ties broken by most recent creation. limit <= 0
// means the default shelf size.
func (s *State) TopRated(limit int) []domain.Book {
	if limit <= 0 {
		limit = defaultShelfSize
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rated := make([]domain.Book, 0, len(s.books))
	for _, b := range s.books {
		if b.Rating != nil {
			rated = append(rated, b)
		}
	}

	slices.SortFunc(rated, func(a, b domain.Book) int {
		if *a.Rating != *b.Rating {
			if *a.Rating > *b.Rating {
				return -1
			}
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return capBooks(rated, limit)
}

// Unread returns the books not yet started, newest first. limit <= 0 means
// the default shelf size.
func (s *State) Unread(limit int) []domain.Book {
	if limit <= 0 {
		limit = defaultShelfSize
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unread := make([]domain.Book, 0, len(s.books))
	for _, b := range s.books {
		if b.IsUnread() {
			unread = append(unread, b)
		}
	}

	slices.SortFunc(unread, func(a, b domain.Book) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return capBooks(unread, limit)
}

// FavoriteGenre returns the most frequent genre tag across the collection.
// Ties go to the tag first encountered, which makes the result deterministic
// for a given book order. Empty string when no book carries a tag.
func (s *State) FavoriteGenre() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return favoriteGenre(s.books)
}

func favoriteGenre(books []domain.Book) string {
	counts := make(map[string]int)
	var order []string

	for _, b := range books {
		for _, tag := range b.GenreTags() {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	favorite := ""
	best := 0
	for _, tag := range order {
		if counts[tag] > best {
			favorite = tag
			best = counts[tag]
		}
	}
	return favorite
}

// GenreList returns every distinct genre tag in the collection, sorted
// lexicographically.
func (s *State) GenreList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	var tags []string
	for _, b := range s.books {
		for _, tag := range b.GenreTags() {
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				tags = append(tags, tag)
			}
		}
	}

	slices.Sort(tags)
	return tags
}

// BooksByGenre returns the genre shelf, newest first, capped at the default
// shelf size. An empty genre falls back to the persisted filter, then to
// FavoriteGenre.
//
// Matching is by substring on the raw genre field, so "Fantasy" also matches
// "High Fantasy". A known imprecision kept from the original app.
func (s *State) BooksByGenre(genre string) []domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	if genre == "" {
		genre = s.genreFilter
	}
	if genre == "" {
		genre = favoriteGenre(s.books)
	}

	matched := make([]domain.Book, 0, len(s.books))
	for _, b := range s.books {
		if genre == "" {
			matched = append(matched, b)
			continue
		}
		if b.Genre != nil && strings.Contains(*b.Genre, genre) {
			matched = append(matched, b)
		}
	}

	slices.SortFunc(matched, func(a, b domain.Book) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return capBooks(matched, defaultShelfSize)
}

// BookByID looks up a book in the snapshot by id.
func (s *State) BookByID(id int64) (domain.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.books {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Book{}, false
}

func capBooks(books []domain.Book, limit int) []domain.Book {
	if len(books) > limit {
		books = books[:limit]
	}
	return books
}
