package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arhont375/articlevec/internal/loader"
)

func TestReadFile(t *testing.T) {
	articles, err := loader.ReadFile(filepath.Join("testdata", "articles.json"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Title != "Go at scale" {
		t.Errorf("unexpected first title: %q", articles[0].Title)
	}
	if articles[1].Excerpt != "Cosine distance in practice." {
		t.Errorf("unexpected second excerpt: %q", articles[1].Excerpt)
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := loader.ReadFile(filepath.Join("testdata", "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestReadFile_InvalidJSON(t *testing.T) {
	path := writeCorpus(t, `{"title": "not an array"}`)

	_, err := loader.ReadFile(path)
	if err == nil {
		t.Fatal("expected error for non-array corpus, got nil")
	}
}

func TestReadFile_InvalidArticleFailsFile(t *testing.T) {
	path := writeCorpus(t, `[
		{"title": "ok", "excerpt": "ok", "body": "ok"},
		{"title": "missing body", "excerpt": "ok"}
	]`)

	_, err := loader.ReadFile(path)
	if err == nil {
		t.Fatal("expected error for invalid article, got nil")
	}
}

func writeCorpus(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "corpus.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
