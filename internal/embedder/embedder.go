// internal/embedder/embedder.go
// Package embedder turns text into fixed-length vectors via a model
// server. Model identifiers form a closed enumeration; each maps to one
// pretrained model with a fixed output dimensionality.
package embedder

import (
	"context"
	"errors"
	"fmt"
)

// ErrModelNotFound is returned for model identifiers outside the
// supported enumeration. Unknown models are never mapped to a default:
// vectors from different models share no semantic space.
var ErrModelNotFound = errors.New("embedding model not found")

// Model identifies a supported embedding model
type Model string

const (
	ModelMiniLM Model = "mini_lm"
	ModelMPNet  Model = "mp_net"
)

// Valid returns true if the Model is a known identifier
func (m Model) Valid() bool {
	switch m {
	case ModelMiniLM, ModelMPNet:
		return true
	}
	return false
}

// Validate returns ErrModelNotFound for unknown identifiers
func (m Model) Validate() error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q (supported: mini_lm, mp_net)", ErrModelNotFound, m)
	}
	return nil
}

// Dimensions returns the output vector width of the model, 0 if unknown
func (m Model) Dimensions() int {
	switch m {
	case ModelMiniLM:
		return 384
	case ModelMPNet:
		return 768
	}
	return 0
}

// Encoder generates vector embeddings for text
type Encoder interface {
	// Encode embeds a single text
	Encode(ctx context.Context, text string) ([]float32, error)
	// EncodeBatch embeds texts in order, one vector per input
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions is the fixed length of every vector this encoder produces
	Dimensions() int
}

// Resolver hands out an Encoder for a model identifier
type Resolver interface {
	Resolve(model Model) (Encoder, error)
}
