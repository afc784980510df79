package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/arhont375/articlevec/internal/embedder"
	"github.com/arhont375/articlevec/internal/service"
	"github.com/arhont375/articlevec/internal/types"
)

type stubEncoder struct{}

func (stubEncoder) Encode(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (stubEncoder) EncodeBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (stubEncoder) Dimensions() int { return 3 }

type stubResolver struct{}

func (stubResolver) Resolve(model embedder.Model) (embedder.Encoder, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return stubEncoder{}, nil
}

type stubStore struct {
	articles map[int64]types.Article
	nextID   int64
}

func newStubStore() *stubStore {
	return &stubStore{articles: make(map[int64]types.Article)}
}

func (s *stubStore) Insert(_ context.Context, art types.EmbeddedArticle) (*types.Article, error) {
	s.nextID++
	out := art.Article
	out.ID = s.nextID
	s.articles[out.ID] = out
	return &out, nil
}

func (s *stubStore) InsertMany(_ context.Context, arts []types.EmbeddedArticle) (int, error) {
	for _, art := range arts {
		s.Insert(context.Background(), art)
	}
	return len(arts), nil
}

func (s *stubStore) GetByID(_ context.Context, id int64) (*types.Article, error) {
	art, ok := s.articles[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &art, nil
}

func (s *stubStore) PatchByID(_ context.Context, id int64, _ types.EmbeddedPatch) (*types.Article, error) {
	art, ok := s.articles[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &art, nil
}

func (s *stubStore) DeleteByID(_ context.Context, id int64) error {
	if _, ok := s.articles[id]; !ok {
		return types.ErrNotFound
	}
	delete(s.articles, id)
	return nil
}

func (s *stubStore) SearchByEmbedding(_ context.Context, _ []float32, limit int) ([]types.Article, error) {
	var out []types.Article
	for id := int64(1); id <= s.nextID; id++ {
		if art, ok := s.articles[id]; ok {
			out = append(out, art)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubStore) Close() error { return nil }

func newTestHandler() (*Handler, *stubStore) {
	store := newStubStore()
	return &Handler{svc: service.New(store, stubResolver{})}, store
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	if len(res.Content) == 0 {
		t.Fatal("expected content in result")
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestAdd(t *testing.T) {
	h, store := newTestHandler()

	res, out, err := h.Add(context.Background(), nil, AddInput{
		Title:   "A",
		Excerpt: "B",
		Body:    "C",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	if out.Article == nil || out.Article.ID == 0 {
		t.Fatalf("expected stored article, got %+v", out)
	}
	if out.Article.Model != "mini_lm" {
		t.Errorf("expected default model 'mini_lm', got %q", out.Article.Model)
	}
	if len(store.articles) != 1 {
		t.Errorf("expected 1 stored article, got %d", len(store.articles))
	}
}

func TestAdd_MissingField(t *testing.T) {
	h, store := newTestHandler()

	res, _, err := h.Add(context.Background(), nil, AddInput{Title: "A", Body: "C"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing excerpt")
	}
	if len(store.articles) != 0 {
		t.Error("store must not be touched on invalid input")
	}
}

func TestAdd_UnknownModel(t *testing.T) {
	h, _ := newTestHandler()

	res, _, err := h.Add(context.Background(), nil, AddInput{
		Title:   "A",
		Excerpt: "B",
		Body:    "C",
		Model:   "bert_base",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for unknown model")
	}
}

func TestGet(t *testing.T) {
	h, store := newTestHandler()
	store.Insert(context.Background(), types.EmbeddedArticle{
		Article: types.Article{Title: "A", Excerpt: "B", Body: "C", Model: "mini_lm"},
	})

	res, out, err := h.Get(context.Background(), nil, GetInput{ID: 1})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if out.Article == nil || out.Article.Title != "A" {
		t.Errorf("unexpected article: %+v", out.Article)
	}
}

func TestGet_NotFound(t *testing.T) {
	h, _ := newTestHandler()

	res, _, err := h.Get(context.Background(), nil, GetInput{ID: 42})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing article")
	}
}

func TestSearch(t *testing.T) {
	h, store := newTestHandler()
	store.Insert(context.Background(), types.EmbeddedArticle{
		Article: types.Article{Title: "A", Excerpt: "B", Body: "C", Model: "mini_lm"},
	})

	res, out, err := h.Search(context.Background(), nil, SearchInput{Query: "anything"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if len(out.Articles) != 1 {
		t.Errorf("expected 1 result, got %d", len(out.Articles))
	}
}

func TestSearch_EmptyCorpus(t *testing.T) {
	h, _ := newTestHandler()

	res, out, err := h.Search(context.Background(), nil, SearchInput{Query: "anything"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if len(out.Articles) != 0 {
		t.Errorf("expected no results, got %d", len(out.Articles))
	}
	if !strings.Contains(resultText(t, res), "No matching articles") {
		t.Errorf("expected friendly empty message, got %q", resultText(t, res))
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	h, _ := newTestHandler()

	res, _, err := h.Search(context.Background(), nil, SearchInput{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing query")
	}
}

func TestDelete(t *testing.T) {
	h, store := newTestHandler()
	store.Insert(context.Background(), types.EmbeddedArticle{
		Article: types.Article{Title: "A", Excerpt: "B", Body: "C", Model: "mini_lm"},
	})

	res, out, err := h.Delete(context.Background(), nil, DeleteInput{ID: 1})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if !strings.Contains(out.Message, "deleted") {
		t.Errorf("unexpected message: %q", out.Message)
	}
	if len(store.articles) != 0 {
		t.Error("expected article to be removed")
	}
}

func TestDelete_NotFound(t *testing.T) {
	h, _ := newTestHandler()

	res, _, err := h.Delete(context.Background(), nil, DeleteInput{ID: 42})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing article")
	}
}
