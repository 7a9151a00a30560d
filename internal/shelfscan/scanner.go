// Package shelfscan turns a photo of a bookshelf into book candidates
// using a multimodal chat-completion model.
package shelfscan

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/Ishan-Karpe/ShelfSense/internal/domain"
	apperrors "github.com/Ishan-Karpe/ShelfSense/internal/errors"
)

const scanPrompt = `You are a librarian. The image shows the spines of books on a shelf.
List every book you can read, as a JSON array of objects with exactly two
string fields: "bookTitle" and "author". Use "" for an author you cannot
read. Respond with the JSON array only, no prose.`

// completions is the slice of the OpenAI client the scanner needs.
// *openai.Client satisfies it.
type completions interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Scanner sends shelf photos to a vision model and parses the reply.
type Scanner struct {
	client      completions
	model       string
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewScanner creates a scanner backed by the OpenAI API.
func NewScanner(apiKey, model string, logger *slog.Logger) *Scanner {
	return newScanner(openai.NewClient(apiKey), model, logger)
}

func newScanner(client completions, model string, logger *slog.Logger) *Scanner {
	return &Scanner{
		client: client,
		model:  model,
		// 10 scans per minute, burst of 3
		rateLimiter: rate.NewLimiter(rate.Every(6*time.Second), 3),
		logger:      logger,
	}
}

// Scan identifies books in a base64-encoded JPEG shelf photo.
func (s *Scanner) Scan(ctx context.Context, base64Image string) ([]domain.ShelfCandidate, error) {
	if strings.TrimSpace(base64Image) == "" {
		return nil, apperrors.Validation("image payload is empty")
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, apperrors.ErrRemote.WithCause(err)
	}

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: scanPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    "data:image/jpeg;base64," + base64Image,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		s.logger.Error("shelf scan request failed", "model", s.model, "error", err)
		return nil, apperrors.ErrRemote.WithCause(err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.Remote("model returned no choices")
	}

	candidates, err := ParseCandidates(resp.Choices[0].Message.Content)
	if err != nil {
		s.logger.Error("shelf scan response unparseable", "model", s.model, "error", err)
		return nil, err
	}

	s.logger.Debug("shelf scan complete", "candidates", len(candidates))
	return candidates, nil
}
