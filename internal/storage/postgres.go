package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/arhont375/articlevec/internal/types"
)

// Postgres implements Store using PostgreSQL with pgvector
type Postgres struct {
	pool        *pgxpool.Pool
	dims        int
	searchField string
	now         func() time.Time
}

// NewPostgres creates a new Postgres store. Connections come from a
// bounded pgx pool; acquisition is governed by the caller's context.
func NewPostgres(ctx context.Context, dsn string, dims int, searchField string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	p := &Postgres{
		pool:        pool,
		dims:        dims,
		searchField: searchField,
		now:         time.Now,
	}
	if err := p.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return p, nil
}

func (p *Postgres) initSchema(ctx context.Context) error {
	schema := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS articles (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			title TEXT NOT NULL,
			excerpt TEXT NOT NULL,
			body TEXT NOT NULL,
			model TEXT NOT NULL,
			title_embedding vector(%d) NOT NULL,
			excerpt_embedding vector(%d) NOT NULL,
			body_embedding vector(%d) NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_articles_%s_embedding
		ON articles USING hnsw (%s_embedding vector_cosine_ops);
	`, p.dims, p.dims, p.dims, p.searchField, p.searchField)

	_, err := p.pool.Exec(ctx, schema)
	return err
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) checkDims(vectors ...[]float32) error {
	for _, v := range vectors {
		if v != nil && len(v) != p.dims {
			return fmt.Errorf("%w: got %d dimensions, store expects %d",
				types.ErrDimensionMismatch, len(v), p.dims)
		}
	}
	return nil
}

const articleColumns = "id, title, excerpt, body, model, created_at, updated_at"

func (p *Postgres) Insert(ctx context.Context, art types.EmbeddedArticle) (*types.Article, error) {
	if err := art.Validate(); err != nil {
		return nil, err
	}
	if err := p.checkDims(art.TitleEmbedding, art.ExcerptEmbedding, art.BodyEmbedding); err != nil {
		return nil, err
	}

	// One statement writes text and vectors together, so the row can
	// never be observed with the two out of sync.
	row := p.pool.QueryRow(ctx,
		`INSERT INTO articles (title, excerpt, body, model, title_embedding, excerpt_embedding, body_embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+articleColumns,
		art.Title, art.Excerpt, art.Body, art.Model,
		pgvector.NewVector(art.TitleEmbedding),
		pgvector.NewVector(art.ExcerptEmbedding),
		pgvector.NewVector(art.BodyEmbedding),
	)

	stored, err := scanArticle(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert article: %w", err)
	}
	return stored, nil
}

func (p *Postgres) InsertMany(ctx context.Context, arts []types.EmbeddedArticle) (int, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	for i, art := range arts {
		if err := art.Validate(); err != nil {
			return 0, fmt.Errorf("article %d: %w", i, err)
		}
		if err := p.checkDims(art.TitleEmbedding, art.ExcerptEmbedding, art.BodyEmbedding); err != nil {
			return 0, fmt.Errorf("article %d: %w", i, err)
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO articles (title, excerpt, body, model, title_embedding, excerpt_embedding, body_embedding)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			art.Title, art.Excerpt, art.Body, art.Model,
			pgvector.NewVector(art.TitleEmbedding),
			pgvector.NewVector(art.ExcerptEmbedding),
			pgvector.NewVector(art.BodyEmbedding),
		)
		if err != nil {
			return 0, fmt.Errorf("article %d: failed to insert: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(arts), nil
}

func (p *Postgres) GetByID(ctx context.Context, id int64) (*types.Article, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)

	art, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return art, nil
}

func (p *Postgres) PatchByID(ctx context.Context, id int64, patch types.EmbeddedPatch) (*types.Article, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if err := p.checkDims(patch.TitleEmbedding, patch.ExcerptEmbedding, patch.BodyEmbedding); err != nil {
		return nil, err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var storedModel string
	err = tx.QueryRow(ctx, `SELECT model FROM articles WHERE id = $1 FOR UPDATE`, id).Scan(&storedModel)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if patch.Model != "" && patch.Model != storedModel {
		return nil, fmt.Errorf("%w: article %d was embedded with %s, patch uses %s",
			types.ErrModelMismatch, id, storedModel, patch.Model)
	}

	set := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
		add("title_embedding", pgvector.NewVector(patch.TitleEmbedding))
	}
	if patch.Excerpt != nil {
		add("excerpt", *patch.Excerpt)
		add("excerpt_embedding", pgvector.NewVector(patch.ExcerptEmbedding))
	}
	if patch.Body != nil {
		add("body", *patch.Body)
		add("body_embedding", pgvector.NewVector(patch.BodyEmbedding))
	}

	// updated_at always advances, defaulting to the write-time clock
	updatedAt := p.now().UTC()
	if patch.UpdatedAt != nil {
		updatedAt = *patch.UpdatedAt
	}
	add("updated_at", updatedAt)

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE articles SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), articleColumns)

	stored, err := scanArticle(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to patch article: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return stored, nil
}

func (p *Postgres) DeleteByID(ctx context.Context, id int64) error {
	var deleted int64
	err := p.pool.QueryRow(ctx,
		`DELETE FROM articles WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.ErrNotFound
	}
	return err
}

func (p *Postgres) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]types.Article, error) {
	if err := p.checkDims(embedding); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	query := fmt.Sprintf(
		`SELECT %s FROM articles ORDER BY %s_embedding <=> $1 LIMIT $2`,
		articleColumns, p.searchField)

	rows, err := p.pool.Query(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []types.Article
	for rows.Next() {
		art, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *art)
	}
	return articles, rows.Err()
}

// scanArticle maps a row onto the article shape with named fields;
// callers never unpack positional tuples themselves
func scanArticle(row pgx.Row) (*types.Article, error) {
	var a types.Article
	err := row.Scan(&a.ID, &a.Title, &a.Excerpt, &a.Body, &a.Model, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
