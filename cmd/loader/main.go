// cmd/loader/main.go
// Bulk corpus loader: reads a JSON array of articles, embeds every text
// field, and inserts the batch in one go.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/arhont375/articlevec/internal/embedder"
	"github.com/arhont375/articlevec/internal/loader"
	"github.com/arhont375/articlevec/internal/service"
	"github.com/arhont375/articlevec/internal/storage"
)

func main() {
	// Input flags
	file := flag.String("file", "articles.json", "Path to the JSON corpus")
	model := flag.String("model", "mini_lm", "Embedding model: mini_lm or mp_net")

	// Storage flags
	storageDriver := flag.String("storage-driver", "postgres", "Storage driver: sqlite, postgres, mongodb")
	sqlitePath := flag.String("sqlite-path", "", "Path to SQLite database (sqlite driver)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (postgres driver)")
	mongoURI := flag.String("mongodb-uri", "", "MongoDB connection URI (mongodb driver)")
	mongoDatabase := flag.String("mongodb-database", "articlevec", "MongoDB database name (mongodb driver)")
	dimensions := flag.Int("dimensions", 384, "Vector column width; must match the embedding model")
	searchField := flag.String("search-field", "body", "Embedding column similarity search orders by: title, excerpt, body")

	// Embedder flags
	ollamaURL := flag.String("ollama-url", "http://localhost:11434", "Ollama API URL")

	flag.Parse()

	ctx := context.Background()

	articles, err := loader.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read corpus: %v", err)
	}
	log.Printf("Read %d articles from %s", len(articles), *file)

	store, err := storage.New(ctx, storage.Config{
		Driver:          *storageDriver,
		Dimensions:      *dimensions,
		SearchField:     *searchField,
		SQLitePath:      *sqlitePath,
		PostgresDSN:     *postgresDSN,
		MongoDBURI:      *mongoURI,
		MongoDBDatabase: *mongoDatabase,
	})
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	provider := embedder.NewProvider(*ollamaURL)
	svc := service.New(store, provider)

	count, err := svc.LoadMany(ctx, articles, embedder.Model(*model))
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}

	log.Printf("Loaded %d articles", count)
}
