package shelfscan

import (
	"encoding/json/v2"
	"strings"

	"github.com/Ishan-Karpe/ShelfSense/internal/domain"
	apperrors "github.com/Ishan-Karpe/ShelfSense/internal/errors"
)

// rawCandidate accepts the field spellings different models produce for
// the author. Only one of the three is ever populated per entry.
type rawCandidate struct {
	BookTitle  string `json:"bookTitle"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	BookAuthor string `json:"bookAuthor"`
	AuthorName string `json:"authorName"`
}

func (r rawCandidate) normalize() (domain.ShelfCandidate, bool) {
	title := strings.TrimSpace(r.BookTitle)
	if title == "" {
		title = strings.TrimSpace(r.Title)
	}
	if title == "" {
		return domain.ShelfCandidate{}, false
	}

	author := strings.TrimSpace(r.Author)
	if author == "" {
		author = strings.TrimSpace(r.BookAuthor)
	}
	if author == "" {
		author = strings.TrimSpace(r.AuthorName)
	}

	return domain.ShelfCandidate{BookTitle: title, Author: author}, true
}

// ParseCandidates parses a model response into shelf candidates.
// Handles markdown code fences and an optional {"books": [...]} wrapper.
func ParseCandidates(raw string) ([]domain.ShelfCandidate, error) {
	cleaned := stripCodeFence(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil, apperrors.Remote("empty model response")
	}

	var items []rawCandidate
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		var wrapped struct {
			Books []rawCandidate `json:"books"`
		}
		if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
			return nil, apperrors.Remotef("unparseable model response: %v", err)
		}
		items = wrapped.Books
	}

	candidates := make([]domain.ShelfCandidate, 0, len(items))
	for _, item := range items {
		if c, ok := item.normalize(); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

// stripCodeFence removes a markdown code block wrapper (```json ... ```).
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
