package storage_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/arhont375/articlevec/internal/storage"
	"github.com/arhont375/articlevec/internal/types"
)

// Integration tests for the MongoDB store. Vector search needs an Atlas
// deployment with a vector index; against a plain mongod the store falls
// back to a recency listing, so ordering is not asserted here.
//
//	TEST_MONGODB_URI="mongodb://localhost:27017" go test ./internal/storage/
func newMongoStore(t *testing.T) *storage.MongoDB {
	t.Helper()

	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set, skipping MongoDB integration tests")
	}

	store, err := storage.NewMongoDB(context.Background(), uri, "articlevec_test", testDims, "body")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func insertMongo(t *testing.T, store *storage.MongoDB, art types.EmbeddedArticle) *types.Article {
	t.Helper()

	inserted, err := store.Insert(context.Background(), art)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	t.Cleanup(func() { store.DeleteByID(context.Background(), inserted.ID) })

	return inserted
}

func TestMongoDB_InsertAndGet(t *testing.T) {
	store := newMongoStore(t)
	ctx := context.Background()

	inserted := insertMongo(t, store, embeddedArticle("A", "B", "C", []float32{0, 0, 1}))

	if inserted.ID == 0 {
		t.Error("expected non-zero ID")
	}

	fetched, err := store.GetByID(ctx, inserted.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Title != "A" || fetched.Excerpt != "B" || fetched.Body != "C" {
		t.Errorf("round-trip mismatch: %+v", fetched)
	}
	if fetched.Model != "mini_lm" {
		t.Errorf("expected model tag 'mini_lm', got %q", fetched.Model)
	}
}

func TestMongoDB_IDsAreSequential(t *testing.T) {
	store := newMongoStore(t)

	first := insertMongo(t, store, embeddedArticle("first", "B", "C", []float32{1, 0, 0}))
	second := insertMongo(t, store, embeddedArticle("second", "B", "C", []float32{0, 1, 0}))

	if second.ID != first.ID+1 {
		t.Errorf("expected sequential ids, got %d then %d", first.ID, second.ID)
	}
}

func TestMongoDB_Patch(t *testing.T) {
	store := newMongoStore(t)
	ctx := context.Background()

	inserted := insertMongo(t, store, embeddedArticle("A", "B", "C", []float32{0, 0, 1}))

	patched, err := store.PatchByID(ctx, inserted.ID, types.EmbeddedPatch{
		ArticlePatch:     types.ArticlePatch{Excerpt: strPtr("B2")},
		Model:            "mini_lm",
		ExcerptEmbedding: []float32{0.5, 0.5, 0},
	})
	if err != nil {
		t.Fatalf("PatchByID failed: %v", err)
	}

	if patched.Excerpt != "B2" || patched.Title != "A" || patched.Body != "C" {
		t.Errorf("unexpected patched article: %+v", patched)
	}
	if patched.UpdatedAt.Before(inserted.UpdatedAt) {
		t.Errorf("expected updated_at not to regress: %v -> %v", inserted.UpdatedAt, patched.UpdatedAt)
	}
}

func TestMongoDB_Patch_ModelMismatch(t *testing.T) {
	store := newMongoStore(t)
	ctx := context.Background()

	inserted := insertMongo(t, store, embeddedArticle("A", "B", "C", []float32{0, 0, 1}))

	_, err := store.PatchByID(ctx, inserted.ID, types.EmbeddedPatch{
		ArticlePatch:   types.ArticlePatch{Title: strPtr("A2")},
		Model:          "mp_net",
		TitleEmbedding: []float32{0.5, 0.5, 0},
	})
	if !errors.Is(err, types.ErrModelMismatch) {
		t.Errorf("expected ErrModelMismatch, got %v", err)
	}
}

func TestMongoDB_Delete(t *testing.T) {
	store := newMongoStore(t)
	ctx := context.Background()

	inserted, err := store.Insert(ctx, embeddedArticle("A", "B", "C", []float32{0, 0, 1}))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := store.DeleteByID(ctx, inserted.ID); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	err = store.DeleteByID(ctx, inserted.ID)
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMongoDB_SearchReturnsArticles(t *testing.T) {
	store := newMongoStore(t)
	ctx := context.Background()

	insertMongo(t, store, embeddedArticle("first", "B", "C", []float32{1, 0, 0}))
	insertMongo(t, store, embeddedArticle("second", "B", "C", []float32{0, 1, 0}))

	results, err := store.SearchByEmbedding(ctx, []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("SearchByEmbedding failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}
