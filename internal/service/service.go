// internal/service/service.go
package service

import (
	"context"
	"fmt"

	"github.com/arhont375/articlevec/internal/embedder"
	"github.com/arhont375/articlevec/internal/storage"
	"github.com/arhont375/articlevec/internal/types"
)

// Service contains the business logic for article operations: it decides
// which text fields need (re-)embedding, computes the vectors, and hands
// fully-populated records to the store. Embedding always completes before
// the corresponding write is issued.
type Service struct {
	store    storage.Store
	resolver embedder.Resolver
}

// New creates a new Service
func New(store storage.Store, resolver embedder.Resolver) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
	}
}

// Create embeds all three text fields and inserts the article
func (s *Service) Create(ctx context.Context, art types.Article, model embedder.Model) (*types.Article, error) {
	if err := art.ValidateForCreate(); err != nil {
		return nil, err
	}

	enc, err := s.resolver.Resolve(model)
	if err != nil {
		return nil, err
	}

	vectors, err := enc.EncodeBatch(ctx, []string{art.Title, art.Excerpt, art.Body})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vectors) != 3 {
		return nil, fmt.Errorf("expected 3 embeddings, got %d", len(vectors))
	}

	art.Model = string(model)
	return s.store.Insert(ctx, types.EmbeddedArticle{
		Article:          art,
		TitleEmbedding:   vectors[0],
		ExcerptEmbedding: vectors[1],
		BodyEmbedding:    vectors[2],
	})
}

// Get returns the article by id
func (s *Service) Get(ctx context.Context, id int64) (*types.Article, error) {
	return s.store.GetByID(ctx, id)
}

// Patch re-embeds exactly the text fields present in the patch and
// applies the combined sparse field set. A patch without text fields
// computes no embeddings and reduces to a timestamp update.
func (s *Service) Patch(ctx context.Context, id int64, patch types.ArticlePatch, model embedder.Model) (*types.Article, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	embedded := types.EmbeddedPatch{ArticlePatch: patch}

	if patch.HasText() {
		enc, err := s.resolver.Resolve(model)
		if err != nil {
			return nil, err
		}

		var texts []string
		var assign []func([]float32)
		if patch.Title != nil {
			texts = append(texts, *patch.Title)
			assign = append(assign, func(v []float32) { embedded.TitleEmbedding = v })
		}
		if patch.Excerpt != nil {
			texts = append(texts, *patch.Excerpt)
			assign = append(assign, func(v []float32) { embedded.ExcerptEmbedding = v })
		}
		if patch.Body != nil {
			texts = append(texts, *patch.Body)
			assign = append(assign, func(v []float32) { embedded.BodyEmbedding = v })
		}

		vectors, err := enc.EncodeBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
		}
		for i, v := range vectors {
			assign[i](v)
		}
		embedded.Model = string(model)
	}

	return s.store.PatchByID(ctx, id, embedded)
}

// Delete removes the article by id
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteByID(ctx, id)
}

// Search embeds the query with the selected model and returns the
// nearest stored articles, closest first. An empty corpus yields an
// empty result, not an error.
func (s *Service) Search(ctx context.Context, query string, model embedder.Model, limit int) ([]types.Article, error) {
	enc, err := s.resolver.Resolve(model)
	if err != nil {
		return nil, err
	}

	vector, err := enc.Encode(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	return s.store.SearchByEmbedding(ctx, vector, limit)
}

// LoadMany embeds and bulk-inserts a batch of articles for corpus
// bootstrapping. Any invalid or unembeddable article fails the whole
// batch.
func (s *Service) LoadMany(ctx context.Context, arts []types.Article, model embedder.Model) (int, error) {
	if len(arts) == 0 {
		return 0, nil
	}

	enc, err := s.resolver.Resolve(model)
	if err != nil {
		return 0, err
	}

	texts := make([]string, 0, len(arts)*3)
	for i, art := range arts {
		if err := art.ValidateForCreate(); err != nil {
			return 0, fmt.Errorf("article %d: %w", i, err)
		}
		texts = append(texts, art.Title, art.Excerpt, art.Body)
	}

	vectors, err := enc.EncodeBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}

	embedded := make([]types.EmbeddedArticle, len(arts))
	for i, art := range arts {
		art.Model = string(model)
		embedded[i] = types.EmbeddedArticle{
			Article:          art,
			TitleEmbedding:   vectors[i*3],
			ExcerptEmbedding: vectors[i*3+1],
			BodyEmbedding:    vectors[i*3+2],
		}
	}

	return s.store.InsertMany(ctx, embedded)
}

// Close cleans up resources
func (s *Service) Close() error {
	return s.store.Close()
}
