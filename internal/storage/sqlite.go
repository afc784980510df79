//go:build cgo

// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/arhont375/articlevec/internal/types"
)

// SQLite implements Store using SQLite with sqlite-vec. Embeddings live
// in JSON columns next to their text fields; vec_distance_cosine orders
// similarity search over them.
type SQLite struct {
	conn        *sql.DB
	dims        int
	searchField string
	now         func() time.Time
}

// NewSQLite creates a new SQLite store
func NewSQLite(path string, dims int, searchField string) (*SQLite, error) {
	sqlite_vec.Auto()

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{
		conn:        conn,
		dims:        dims,
		searchField: searchField,
		now:         time.Now,
	}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLite) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			title TEXT NOT NULL,
			excerpt TEXT NOT NULL,
			body TEXT NOT NULL,
			model TEXT NOT NULL,
			title_embedding TEXT NOT NULL,
			excerpt_embedding TEXT NOT NULL,
			body_embedding TEXT NOT NULL
		);
	`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) checkDims(vectors ...[]float32) error {
	for _, v := range vectors {
		if v != nil && len(v) != s.dims {
			return fmt.Errorf("%w: got %d dimensions, store expects %d",
				types.ErrDimensionMismatch, len(v), s.dims)
		}
	}
	return nil
}

func marshalVec(embedding []float32) (string, error) {
	out, err := json.Marshal(embedding)
	if err != nil {
		return "", fmt.Errorf("failed to marshal embedding: %w", err)
	}
	return string(out), nil
}

func (s *SQLite) Insert(ctx context.Context, art types.EmbeddedArticle) (*types.Article, error) {
	if err := art.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkDims(art.TitleEmbedding, art.ExcerptEmbedding, art.BodyEmbedding); err != nil {
		return nil, err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id, err := insertArticleTx(ctx, tx, art)
	if err != nil {
		return nil, err
	}

	stored, err := scanSQLiteArticle(tx.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

func insertArticleTx(ctx context.Context, tx *sql.Tx, art types.EmbeddedArticle) (int64, error) {
	titleVec, err := marshalVec(art.TitleEmbedding)
	if err != nil {
		return 0, err
	}
	excerptVec, err := marshalVec(art.ExcerptEmbedding)
	if err != nil {
		return 0, err
	}
	bodyVec, err := marshalVec(art.BodyEmbedding)
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO articles (title, excerpt, body, model, title_embedding, excerpt_embedding, body_embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		art.Title, art.Excerpt, art.Body, art.Model, titleVec, excerptVec, bodyVec,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert article: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLite) InsertMany(ctx context.Context, arts []types.EmbeddedArticle) (int, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for i, art := range arts {
		if err := art.Validate(); err != nil {
			return 0, fmt.Errorf("article %d: %w", i, err)
		}
		if err := s.checkDims(art.TitleEmbedding, art.ExcerptEmbedding, art.BodyEmbedding); err != nil {
			return 0, fmt.Errorf("article %d: %w", i, err)
		}
		if _, err := insertArticleTx(ctx, tx, art); err != nil {
			return 0, fmt.Errorf("article %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(arts), nil
}

func (s *SQLite) GetByID(ctx context.Context, id int64) (*types.Article, error) {
	art, err := scanSQLiteArticle(s.conn.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return art, nil
}

func (s *SQLite) PatchByID(ctx context.Context, id int64, patch types.EmbeddedPatch) (*types.Article, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkDims(patch.TitleEmbedding, patch.ExcerptEmbedding, patch.BodyEmbedding); err != nil {
		return nil, err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var storedModel string
	err = tx.QueryRowContext(ctx, `SELECT model FROM articles WHERE id = ?`, id).Scan(&storedModel)
	if errors.Is(err, sql.ErrNoRows) {
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

	if patch.Title != nil {
		vec, err := marshalVec(patch.TitleEmbedding)
		if err != nil {
			return nil, err
		}
		set = append(set, "title = ?", "title_embedding = ?")
		args = append(args, *patch.Title, vec)
	}
	if patch.Excerpt != nil {
		vec, err := marshalVec(patch.ExcerptEmbedding)
		if err != nil {
			return nil, err
		}
		set = append(set, "excerpt = ?", "excerpt_embedding = ?")
		args = append(args, *patch.Excerpt, vec)
	}
	if patch.Body != nil {
		vec, err := marshalVec(patch.BodyEmbedding)
		if err != nil {
			return nil, err
		}
		set = append(set, "body = ?", "body_embedding = ?")
		args = append(args, *patch.Body, vec)
	}

	// updated_at always advances, defaulting to the write-time clock
	updatedAt := s.now().UTC()
	if patch.UpdatedAt != nil {
		updatedAt = *patch.UpdatedAt
	}
	set = append(set, "updated_at = ?")
	args = append(args, updatedAt)

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE articles SET %s WHERE id = ?`, strings.Join(set, ", "))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to patch article: %w", err)
	}

	stored, err := scanSQLiteArticle(tx.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *SQLite) DeleteByID(ctx context.Context, id int64) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *SQLite) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]types.Article, error) {
	if err := s.checkDims(embedding); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	queryVec, err := marshalVec(embedding)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM articles
		ORDER BY vec_distance_cosine(%s_embedding, ?)
		LIMIT ?
	`, articleColumns, s.searchField)

	rows, err := s.conn.QueryContext(ctx, query, queryVec, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer rows.Close()

	var articles []types.Article
	for rows.Next() {
		art, err := scanSQLiteArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *art)
	}
	return articles, rows.Err()
}

// sqlRow is satisfied by both *sql.Row and *sql.Rows
type sqlRow interface {
	Scan(dest ...interface{}) error
}

// scanSQLiteArticle maps a row onto the article shape with named fields
func scanSQLiteArticle(row sqlRow) (*types.Article, error) {
	var a types.Article
	err := row.Scan(&a.ID, &a.Title, &a.Excerpt, &a.Body, &a.Model, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
