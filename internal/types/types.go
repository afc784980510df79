// internal/types/types.go
// Package types contains shared data types that have no CGO dependencies.
// This allows the MCP tools and the loader to use Article without pulling
// in sqlite-vec.
package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when an article is not found
var ErrNotFound = errors.New("article not found")

// ErrDimensionMismatch is returned when a vector does not match the
// dimensionality the store was created with. This is a configuration
// error, not a retryable one.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ErrModelMismatch is returned when a patch re-embeds with a different
// model than the one that produced the stored vectors.
var ErrModelMismatch = errors.New("embedding model mismatch")

// Article represents a stored article
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	Body      string    `json:"body"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateForCreate returns an error unless all text fields are set
func (a Article) ValidateForCreate() error {
	if a.Title == "" || a.Excerpt == "" || a.Body == "" {
		return fmt.Errorf("title, excerpt, and body are required")
	}
	return nil
}

// ArticlePatch is a sparse update: nil fields are left untouched in
// storage. A present text field must be non-empty, otherwise the stored
// text and its embedding could not stay in sync.
type ArticlePatch struct {
	Title     *string    `json:"title,omitempty"`
	Excerpt   *string    `json:"excerpt,omitempty"`
	Body      *string    `json:"body,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// HasText returns true if the patch touches any text field
func (p ArticlePatch) HasText() bool {
	return p.Title != nil || p.Excerpt != nil || p.Body != nil
}

// Validate rejects present-but-empty text fields
func (p ArticlePatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return fmt.Errorf("title must not be empty when present")
	}
	if p.Excerpt != nil && *p.Excerpt == "" {
		return fmt.Errorf("excerpt must not be empty when present")
	}
	if p.Body != nil && *p.Body == "" {
		return fmt.Errorf("body must not be empty when present")
	}
	return nil
}

// EmbeddedArticle is an article together with the vectors derived from
// its current text fields. Vectors are never serialized to callers.
type EmbeddedArticle struct {
	Article
	TitleEmbedding   []float32 `json:"-"`
	ExcerptEmbedding []float32 `json:"-"`
	BodyEmbedding    []float32 `json:"-"`
}

// Validate checks that every text field has its vector and that the
// model tag is set
func (e EmbeddedArticle) Validate() error {
	if err := e.ValidateForCreate(); err != nil {
		return err
	}
	if e.Model == "" {
		return fmt.Errorf("model tag is required")
	}
	if len(e.TitleEmbedding) == 0 || len(e.ExcerptEmbedding) == 0 || len(e.BodyEmbedding) == 0 {
		return fmt.Errorf("all three embeddings are required")
	}
	return nil
}

// EmbeddedPatch pairs a sparse patch with vectors for exactly the text
// fields the patch touches. Model is the identifier of the model that
// produced the vectors; empty when the patch carries no text.
type EmbeddedPatch struct {
	ArticlePatch
	Model            string
	TitleEmbedding   []float32
	ExcerptEmbedding []float32
	BodyEmbedding    []float32
}

// Validate checks that vectors are attached exactly to the fields
// present in the patch
func (p EmbeddedPatch) Validate() error {
	if err := p.ArticlePatch.Validate(); err != nil {
		return err
	}
	if (p.Title != nil) != (len(p.TitleEmbedding) > 0) {
		return fmt.Errorf("title and title embedding must be patched together")
	}
	if (p.Excerpt != nil) != (len(p.ExcerptEmbedding) > 0) {
		return fmt.Errorf("excerpt and excerpt embedding must be patched together")
	}
	if (p.Body != nil) != (len(p.BodyEmbedding) > 0) {
		return fmt.Errorf("body and body embedding must be patched together")
	}
	if p.HasText() && p.Model == "" {
		return fmt.Errorf("model tag is required when patching text fields")
	}
	return nil
}
