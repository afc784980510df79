package storage

import (
	"context"

	"github.com/arhont375/articlevec/internal/types"
)

// Store defines the interface for article persistence. Every
// implementation keeps text columns and their embedding columns in the
// same row, so a single-statement write is the unit of atomicity for
// "text and embedding agree".
type Store interface {
	// Insert writes text fields and all three embeddings atomically and
	// returns the stored row
	Insert(ctx context.Context, art types.EmbeddedArticle) (*types.Article, error)
	// InsertMany bulk-inserts a batch; no row is silently skipped on
	// failure
	InsertMany(ctx context.Context, arts []types.EmbeddedArticle) (int, error)
	// GetByID returns the article or types.ErrNotFound
	GetByID(ctx context.Context, id int64) (*types.Article, error)
	// PatchByID updates exactly the supplied columns in one transaction,
	// always advancing updated_at, and returns the post-update row
	PatchByID(ctx context.Context, id int64, patch types.EmbeddedPatch) (*types.Article, error)
	// DeleteByID removes the row; a missing id reports types.ErrNotFound
	DeleteByID(ctx context.Context, id int64) error
	// SearchByEmbedding returns up to limit articles ordered by cosine
	// distance to the query vector, nearest first
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]types.Article, error)
	Close() error
}

// defaultSearchLimit caps similarity results when the caller passes no
// positive limit
const defaultSearchLimit = 5
