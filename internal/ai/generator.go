package ai

import (
	"context"
	"errors"
)

var ErrEmptyResponse = errors.New("model returned no content")

// Generator produces report text and embeddings for retrieval.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}
