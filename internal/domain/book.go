// Package domain contains the core business entities for the ShelfSense library.
package domain

import (
	"strings"
	"time"
)

// Book represents one row of a user's library.
//
// ID and CreatedAt are assigned by the remote store and never change.
// UserID ties the row to its owner; every book held in memory must belong
// to the signed-in user.
type Book struct {
	ID                int64      `json:"id"`
	UserID            string     `json:"user_id"`
	Title             string     `json:"title"`
	Author            *string    `json:"author"`
	CoverImageURL     *string    `json:"cover_image"`
	Description       *string    `json:"description"`
	Genre             *string    `json:"genre"`
	Rating            *float64   `json:"rating"`
	StartedReadingOn  *time.Time `json:"started_reading_on"`
	FinishedReadingOn *time.Time `json:"finished_reading_on"`
	CreatedAt         time.Time  `json:"created_at"`
}

// GenreTags splits the free-text genre field on commas, trims whitespace,
// and drops empty tokens. A nil genre yields no tags.
func (b *Book) GenreTags() []string {
	if b.Genre == nil {
		return nil
	}
	var tags []string
	for _, raw := range strings.Split(*b.Genre, ",") {
		tag := strings.TrimSpace(raw)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// IsUnread reports whether the user has not started reading the book.
func (b *Book) IsUnread() bool {
	return b.StartedReadingOn == nil
}

// BookDraft is an insertable row for bulk import. The remote store assigns
// id and created_at; the caller supplies only title, author, and owner.
type BookDraft struct {
	Title  string  `json:"title"`
	Author *string `json:"author"`
	UserID string  `json:"user_id"`
}

// BookUpdate carries the fields a caller may change on a book. Only non-nil
// fields are applied (true PATCH semantics). ID, UserID, and CreatedAt are
// excluded by construction.
//
// omitempty is intentionally not used on nullable columns where clearing a
// value is meaningful; the remote codec serializes only set fields.
type BookUpdate struct {
	Title             *string    `json:"title,omitempty"`
	Author            *string    `json:"author,omitempty"`
	Description       *string    `json:"description,omitempty"`
	Genre             *string    `json:"genre,omitempty"`
	Rating            *float64   `json:"rating,omitempty"`
	CoverImageURL     *string    `json:"cover_image,omitempty"`
	StartedReadingOn  *time.Time `json:"started_reading_on,omitempty"`
	FinishedReadingOn *time.Time `json:"finished_reading_on,omitempty"`
}

// Apply merges the non-nil fields into the book, leaving the rest untouched.
func (u BookUpdate) Apply(b *Book) {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Author != nil {
		b.Author = u.Author
	}
	if u.Description != nil {
		b.Description = u.Description
	}
	if u.Genre != nil {
		b.Genre = u.Genre
	}
	if u.Rating != nil {
		b.Rating = u.Rating
	}
	if u.CoverImageURL != nil {
		b.CoverImageURL = u.CoverImageURL
	}
	if u.StartedReadingOn != nil {
		b.StartedReadingOn = u.StartedReadingOn
	}
	if u.FinishedReadingOn != nil {
		b.FinishedReadingOn = u.FinishedReadingOn
	}
}

// IsEmpty reports whether the update carries no fields at all.
func (u BookUpdate) IsEmpty() bool {
	return u.Title == nil && u.Author == nil && u.Description == nil &&
		u.Genre == nil && u.Rating == nil && u.CoverImageURL == nil &&
		u.StartedReadingOn == nil && u.FinishedReadingOn == nil
}

// ShelfCandidate is one title/author pair extracted from a shelf photo.
type ShelfCandidate struct {
	BookTitle string `json:"bookTitle"`
	Author    string `json:"author"`
}
