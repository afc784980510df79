// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/arhont375/articlevec/internal/api"
	"github.com/arhont375/articlevec/internal/embedder"
	"github.com/arhont375/articlevec/internal/service"
	"github.com/arhont375/articlevec/internal/storage"
	"github.com/arhont375/articlevec/internal/types"
)

func main() {
	// Server flags
	addr := flag.String("addr", ":8080", "Server address")

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

	// Migrate flag
	migrateOnly := flag.Bool("migrate", false, "Create the schema and exit")

	flag.Parse()

	ctx := context.Background()

	cfg := storage.Config{
		Driver:          *storageDriver,
		Dimensions:      *dimensions,
		SearchField:     *searchField,
		SQLitePath:      *sqlitePath,
		PostgresDSN:     *postgresDSN,
		MongoDBURI:      *mongoURI,
		MongoDBDatabase: *mongoDatabase,
	}

	// Initialize storage (schema creation is idempotent)
	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// If migrate-only, exit now
	if *migrateOnly {
		log.Println("Schema ready")
		return
	}

	// Embedding provider: one cached encoder per model for the process
	// lifetime
	provider := embedder.NewProvider(*ollamaURL)

	// Create service
	svc := service.New(store, provider)

	// Create handlers
	handlers := api.NewHandlers(svc)

	// Health check verifies storage connectivity; a missing row still
	// means the store answered
	handlers.SetHealthCheck(func() error {
		_, err := store.GetByID(context.Background(), 1)
		if err != nil && !errors.Is(err, types.ErrNotFound) {
			return err
		}
		return nil
	})

	// Setup router
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(api.RequestID)
	r.Use(api.MaxBodySize)

	// Routes
	r.Get("/health", handlers.Health)
	r.Route("/articles", func(r chi.Router) {
		r.Post("/", handlers.Create)
		r.Get("/{id}", handlers.Get)
		r.Patch("/{id}", handlers.Patch)
		r.Delete("/{id}", handlers.Delete)
	})
	r.Get("/search", handlers.Search)

	// Create server
	srv := &http.Server{
		Addr:         *addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}

		close(done)
	}()

	// Start server
	log.Printf("Starting API server on %s", *addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	<-done
	fmt.Println("Server stopped")
}
