package storage

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arhont375/articlevec/internal/types"
)

// MongoDB implements Store using MongoDB with Atlas Vector Search
type MongoDB struct {
	client      *mongo.Client
	db          *mongo.Database
	articles    *mongo.Collection
	dims        int
	searchField string
	idCounter   int64
	now         func() time.Time
}

// articleDoc is the MongoDB document structure. Text fields and their
// embeddings share one document, so a single write keeps them in sync.
type articleDoc struct {
	ID               int64     `bson:"_id"`
	Title            string    `bson:"title"`
	Excerpt          string    `bson:"excerpt"`
	Body             string    `bson:"body"`
	Model            string    `bson:"model"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
	TitleEmbedding   []float32 `bson:"title_embedding"`
	ExcerptEmbedding []float32 `bson:"excerpt_embedding"`
	BodyEmbedding    []float32 `bson:"body_embedding"`
}

func (d articleDoc) toArticle() types.Article {
	return types.Article{
		ID:        d.ID,
		Title:     d.Title,
		Excerpt:   d.Excerpt,
		Body:      d.Body,
		Model:     d.Model,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// NewMongoDB creates a new MongoDB store
func NewMongoDB(ctx context.Context, uri, database string, dims int, searchField string) (*MongoDB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(database)
	m := &MongoDB{
		client:      client,
		db:          db,
		articles:    db.Collection("articles"),
		dims:        dims,
		searchField: searchField,
		now:         time.Now,
	}

	if err := m.initIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	if err := m.initIDCounter(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to init id counter: %w", err)
	}

	return m, nil
}

func (m *MongoDB) initIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "model", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	}

	_, err := m.articles.Indexes().CreateMany(ctx, indexes)
	return err
}

func (m *MongoDB) initIDCounter(ctx context.Context) error {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	var doc articleDoc
	err := m.articles.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		m.idCounter = 0
		return nil
	}
	if err != nil {
		return err
	}
	m.idCounter = doc.ID
	return nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *MongoDB) checkDims(vectors ...[]float32) error {
	for _, v := range vectors {
		if v != nil && len(v) != m.dims {
			return fmt.Errorf("%w: got %d dimensions, store expects %d",
				types.ErrDimensionMismatch, len(v), m.dims)
		}
	}
	return nil
}

func (m *MongoDB) Insert(ctx context.Context, art types.EmbeddedArticle) (*types.Article, error) {
	if err := art.Validate(); err != nil {
		return nil, err
	}
	if err := m.checkDims(art.TitleEmbedding, art.ExcerptEmbedding, art.BodyEmbedding); err != nil {
		return nil, err
	}

	doc := m.newDoc(art)
	if _, err := m.articles.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert article: %w", err)
	}

	stored := doc.toArticle()
	return &stored, nil
}

func (m *MongoDB) newDoc(art types.EmbeddedArticle) articleDoc {
	now := m.now().UTC()
	return articleDoc{
		ID:               atomic.AddInt64(&m.idCounter, 1),
		Title:            art.Title,
		Excerpt:          art.Excerpt,
		Body:             art.Body,
		Model:            art.Model,
		CreatedAt:        now,
		UpdatedAt:        now,
		TitleEmbedding:   art.TitleEmbedding,
		ExcerptEmbedding: art.ExcerptEmbedding,
		BodyEmbedding:    art.BodyEmbedding,
	}
}

// InsertMany uses an ordered insert: it halts at the first failing
// document and reports the error, never skipping rows silently.
func (m *MongoDB) InsertMany(ctx context.Context, arts []types.EmbeddedArticle) (int, error) {
	docs := make([]interface{}, 0, len(arts))
	for i, art := range arts {
		if err := art.Validate(); err != nil {
			return 0, fmt.Errorf("article %d: %w", i, err)
		}
		if err := m.checkDims(art.TitleEmbedding, art.ExcerptEmbedding, art.BodyEmbedding); err != nil {
			return 0, fmt.Errorf("article %d: %w", i, err)
		}
		docs = append(docs, m.newDoc(art))
	}

	result, err := m.articles.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return 0, fmt.Errorf("failed to insert batch: %w", err)
	}
	return len(result.InsertedIDs), nil
}

func (m *MongoDB) GetByID(ctx context.Context, id int64) (*types.Article, error) {
	var doc articleDoc
	err := m.articles.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	art := doc.toArticle()
	return &art, nil
}

func (m *MongoDB) PatchByID(ctx context.Context, id int64, patch types.EmbeddedPatch) (*types.Article, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if err := m.checkDims(patch.TitleEmbedding, patch.ExcerptEmbedding, patch.BodyEmbedding); err != nil {
		return nil, err
	}

	set := bson.D{}
	if patch.Title != nil {
		set = append(set,
			bson.E{Key: "title", Value: *patch.Title},
			bson.E{Key: "title_embedding", Value: patch.TitleEmbedding})
	}
	if patch.Excerpt != nil {
		set = append(set,
			bson.E{Key: "excerpt", Value: *patch.Excerpt},
			bson.E{Key: "excerpt_embedding", Value: patch.ExcerptEmbedding})
	}
	if patch.Body != nil {
		set = append(set,
			bson.E{Key: "body", Value: *patch.Body},
			bson.E{Key: "body_embedding", Value: patch.BodyEmbedding})
	}

	// updated_at always advances, defaulting to the write-time clock
	updatedAt := m.now().UTC()
	if patch.UpdatedAt != nil {
		updatedAt = *patch.UpdatedAt
	}
	set = append(set, bson.E{Key: "updated_at", Value: updatedAt})

	filter := bson.D{{Key: "_id", Value: id}}
	if patch.Model != "" {
		filter = append(filter, bson.E{Key: "model", Value: patch.Model})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc articleDoc
	err := m.articles.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, m.explainPatchMiss(ctx, id, patch.Model)
	}
	if err != nil {
		return nil, err
	}

	art := doc.toArticle()
	return &art, nil
}

// explainPatchMiss distinguishes a missing article from a model-tag
// mismatch after a filtered update matched nothing
func (m *MongoDB) explainPatchMiss(ctx context.Context, id int64, model string) error {
	if model == "" {
		return types.ErrNotFound
	}

	var doc articleDoc
	err := m.articles.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return types.ErrNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: article %d was embedded with %s, patch uses %s",
		types.ErrModelMismatch, id, doc.Model, model)
}

func (m *MongoDB) DeleteByID(ctx context.Context, id int64) error {
	result, err := m.articles.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (m *MongoDB) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]types.Article, error) {
	if err := m.checkDims(embedding); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	// Atlas Vector Search pipeline. Requires an Atlas Vector Search
	// index named "embedding_index" on the configured path; non-Atlas
	// deployments fall back to a recency-ordered query.
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: "embedding_index"},
			{Key: "path", Value: m.searchField + "_embedding"},
			{Key: "queryVector", Value: embedding},
			{Key: "numCandidates", Value: limit * 10},
			{Key: "limit", Value: limit},
		}}},
	}

	cursor, err := m.articles.Aggregate(ctx, pipeline)
	if err != nil {
		return m.listFallback(ctx, limit)
	}
	defer cursor.Close(ctx)

	return cursorToArticles(ctx, cursor)
}

func (m *MongoDB) listFallback(ctx context.Context, limit int) ([]types.Article, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := m.articles.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return cursorToArticles(ctx, cursor)
}

func cursorToArticles(ctx context.Context, cursor *mongo.Cursor) ([]types.Article, error) {
	var articles []types.Article
	for cursor.Next(ctx) {
		var doc articleDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		articles = append(articles, doc.toArticle())
	}
	return articles, cursor.Err()
}
