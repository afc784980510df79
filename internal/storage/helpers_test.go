package storage_test

import "github.com/arhont375/articlevec/internal/types"

// Tests use 3-dimensional vectors so distances stay easy to reason
// about.
const testDims = 3

func embeddedArticle(title, excerpt, body string, bodyVec []float32) types.EmbeddedArticle {
	return types.EmbeddedArticle{
		Article: types.Article{
			Title:   title,
			Excerpt: excerpt,
			Body:    body,
			Model:   "mini_lm",
		},
		TitleEmbedding:   []float32{1, 0, 0},
		ExcerptEmbedding: []float32{0, 1, 0},
		BodyEmbedding:    bodyVec,
	}
}

func strPtr(s string) *string {
	return &s
}
