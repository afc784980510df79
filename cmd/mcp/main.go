package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/arhont375/articlevec/internal/embedder"
	"github.com/arhont375/articlevec/internal/service"
	"github.com/arhont375/articlevec/internal/storage"
	"github.com/arhont375/articlevec/internal/tools"
)

// version is set by goreleaser via ldflags
var version = "dev"

func main() {
	// Storage flags
	storageDriver := flag.String("storage-driver", "sqlite", "Storage driver: sqlite, postgres, mongodb")
	sqlitePath := flag.String("sqlite-path", ".articlevec/articles.db", "Path to SQLite database (sqlite driver)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (postgres driver)")
	mongoURI := flag.String("mongodb-uri", "", "MongoDB connection URI (mongodb driver)")
	mongoDatabase := flag.String("mongodb-database", "articlevec", "MongoDB database name (mongodb driver)")
	dimensions := flag.Int("dimensions", 384, "Vector column width; must match the embedding model")
	searchField := flag.String("search-field", "body", "Embedding column similarity search orders by: title, excerpt, body")

	// Embedder flags
	ollamaURL := flag.String("ollama-url", "http://localhost:11434", "Ollama API URL")

	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("articlevec-mcp %s\n", version)
		return
	}

	ctx := context.Background()

	if *storageDriver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(*sqlitePath), 0o755); err != nil {
			log.Fatalf("Failed to create database directory: %v", err)
		}
	}

	cfg := storage.Config{
		Driver:          *storageDriver,
		Dimensions:      *dimensions,
		SearchField:     *searchField,
		SQLitePath:      *sqlitePath,
		PostgresDSN:     *postgresDSN,
		MongoDBURI:      *mongoURI,
		MongoDBDatabase: *mongoDatabase,
	}

	// Initialize storage
	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Initialize embedding provider
	provider := embedder.NewProvider(*ollamaURL)

	// Create service
	svc := service.New(store, provider)

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "articlevec",
		Version: version,
	}, nil)

	// Register tools
	tools.Register(server, svc)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	// Start server with stdio transport
	log.Println("Starting articlevec MCP server...")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
