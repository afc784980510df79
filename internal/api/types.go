// internal/api/types.go
package api

import (
	"time"

	"github.com/arhont375/articlevec/internal/types"
)

// CreateArticleRequest is the body for POST /articles
type CreateArticleRequest struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Body    string `json:"body"`
	Model   string `json:"model"`
}

// PatchArticleRequest is the body for PATCH /articles/{id}. Absent
// fields are left untouched in storage.
type PatchArticleRequest struct {
	Title     *string    `json:"title,omitempty"`
	Excerpt   *string    `json:"excerpt,omitempty"`
	Body      *string    `json:"body,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Model     string     `json:"model"`
}

// ArticleResponse wraps a single article
type ArticleResponse struct {
	Article *types.Article `json:"article"`
}

// SearchResponse wraps similarity search results, nearest first
type SearchResponse struct {
	Articles []types.Article `json:"articles"`
}

// DeleteResponse reports the removed id
type DeleteResponse struct {
	ID int64 `json:"id"`
}

// ErrorResponse carries an error message
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports service status
type HealthResponse struct {
	Status string `json:"status"`
}
