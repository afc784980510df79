// Package loader reads a JSON corpus for initial population of the
// article store.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/arhont375/articlevec/internal/types"
)

type rawArticle struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Body    string `json:"body"`
}

// ReadFile parses an array of {title, excerpt, body} objects. Any
// invalid entry fails the whole file, so a bad corpus is caught before
// anything is embedded or written.
func ReadFile(path string) ([]types.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	var raw []rawArticle
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}

	articles := make([]types.Article, len(raw))
	for i, r := range raw {
		art := types.Article{
			Title:   r.Title,
			Excerpt: r.Excerpt,
			Body:    r.Body,
		}
		if err := art.ValidateForCreate(); err != nil {
			return nil, fmt.Errorf("article %d: %w", i, err)
		}
		articles[i] = art
	}
	return articles, nil
}
