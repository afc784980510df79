//go:build !cgo

package storage

import (
	"context"
	"fmt"

	"github.com/arhont375/articlevec/internal/types"
)

// SQLite is a stub for non-CGO builds
type SQLite struct{}

var errNoCGO = fmt.Errorf("SQLite storage requires CGO (build with CGO_ENABLED=1)")

// NewSQLite returns an error in non-CGO builds
func NewSQLite(path string, dims int, searchField string) (*SQLite, error) {
	return nil, errNoCGO
}

func (s *SQLite) Insert(ctx context.Context, art types.EmbeddedArticle) (*types.Article, error) {
	return nil, errNoCGO
}

func (s *SQLite) InsertMany(ctx context.Context, arts []types.EmbeddedArticle) (int, error) {
	return 0, errNoCGO
}

func (s *SQLite) GetByID(ctx context.Context, id int64) (*types.Article, error) {
	return nil, errNoCGO
}

func (s *SQLite) PatchByID(ctx context.Context, id int64, patch types.EmbeddedPatch) (*types.Article, error) {
	return nil, errNoCGO
}

func (s *SQLite) DeleteByID(ctx context.Context, id int64) error {
	return errNoCGO
}

func (s *SQLite) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]types.Article, error) {
	return nil, errNoCGO
}

func (s *SQLite) Close() error {
	return nil
}
