package pg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/DjordjeVuckovic/newsman/internal/dto"
	"github.com/DjordjeVuckovic/newsman/internal/storage"
	"github.com/DjordjeVuckovic/newsman/pkg/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const articleColumns = `id, title, content, summary, url, source, published_at, author, categories, image_url`

// Store keeps articles and their embeddings in one pgvector-backed table
// named after the collection.
type Store struct {
	pool       *ConnectionPool
	db         *pgxpool.Pool
	collection string
	table      string
	vectorSize int
}

func NewStore(pool *ConnectionPool, collection string, vectorSize int) *Store {
	return &Store{
		pool:       pool,
		db:         pool.GetConn(),
		collection: collection,
		table:      pgx.Identifier{collection}.Sanitize(),
		vectorSize: vectorSize,
	}
}

func (s *Store) EnsureCollection(ctx context.Context) error {
	ident := func(suffix string) string {
		return pgx.Identifier{s.collection + suffix}.Sanitize()
	}

	cmd := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS %[1]s (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			content      TEXT NOT NULL DEFAULT '',
			summary      TEXT NOT NULL DEFAULT '',
			url          TEXT NOT NULL,
			source       TEXT NOT NULL,
			published_at TIMESTAMPTZ NOT NULL,
			author       TEXT NOT NULL DEFAULT '',
			categories   TEXT[] NOT NULL DEFAULT '{}',
			image_url    TEXT NOT NULL DEFAULT '',
			embedding    vector(%[2]d) NOT NULL
		);
		CREATE INDEX IF NOT EXISTS %[3]s ON %[1]s (published_at DESC, id DESC);
		CREATE INDEX IF NOT EXISTS %[4]s ON %[1]s (source);
		CREATE INDEX IF NOT EXISTS %[5]s ON %[1]s USING GIN (categories);
		CREATE INDEX IF NOT EXISTS %[6]s ON %[1]s USING hnsw (embedding vector_cosine_ops);
	`, s.table, s.vectorSize, ident("_published_idx"), ident("_source_idx"), ident("_categories_idx"), ident("_embedding_idx"))

	if _, err := s.db.Exec(ctx, cmd); err != nil {
		return fmt.Errorf("failed to ensure collection %s: %w", s.collection, err)
	}

	slog.Info("Collection ready", "collection", s.collection, "vector_size", s.vectorSize)
	return nil
}

func (s *Store) Upsert(ctx context.Context, records []storage.Record) error {
	if len(records) == 0 {
		return nil
	}

	cmd := fmt.Sprintf(`
		INSERT INTO %s (%s, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			summary = EXCLUDED.summary,
			url = EXCLUDED.url,
			source = EXCLUDED.source,
			published_at = EXCLUDED.published_at,
			author = EXCLUDED.author,
			categories = EXCLUDED.categories,
			image_url = EXCLUDED.image_url,
			embedding = EXCLUDED.embedding
	`, s.table, articleColumns)

	batch := &pgx.Batch{}
	for _, r := range records {
		a := r.Article
		categories := a.Categories
		if categories == nil {
			categories = []string{}
		}
		batch.Queue(cmd,
			a.ID,
			a.Title,
			a.Content,
			a.Summary,
			a.URL,
			a.Source,
			a.PublishedAt.UTC(),
			a.Author,
			categories,
			a.ImageURL,
			pgvector.NewVector(r.Vector),
		)
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()

	for _, r := range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to upsert article %s: %w", r.Article.ID, err)
		}
	}

	return nil
}

func (s *Store) Query(ctx context.Context, req storage.QueryRequest) ([]domain.ScoredArticle, error) {
	var (
		cmd string
		w   *whereBuilder
	)

	if req.HasVector() {
		w = newWhereBuilder(pgvector.NewVector(req.Vector))
		w.filter(req.Filter)
		if req.MinScore != nil {
			w.raw("embedding <=> $1 <= " + w.arg(1-*req.MinScore))
		}
		limit := w.arg(req.Limit)
		cmd = fmt.Sprintf(`
			SELECT %s, embedding <=> $1 AS distance
			FROM %s
			%s
			ORDER BY distance
			LIMIT %s
		`, articleColumns, s.table, w.clause(), limit)
	} else {
		w = newWhereBuilder()
		w.filter(req.Filter)
		limit := w.arg(req.Limit)
		cmd = fmt.Sprintf(`
			SELECT %s, NULL::float8 AS distance
			FROM %s
			%s
			ORDER BY published_at DESC, id DESC
			LIMIT %s
		`, articleColumns, s.table, w.clause(), limit)
	}

	rows, err := s.db.Query(ctx, cmd, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.collection, err)
	}
	defer rows.Close()

	hits := make([]domain.ScoredArticle, 0)
	for rows.Next() {
		var distance *float64
		article, err := scanArticle(rows, &distance)
		if err != nil {
			return nil, err
		}
		hit := domain.ScoredArticle{Article: *article}
		if distance != nil {
			hit.Score = utils.RoundDecimal(domain.CosineToScore(*distance), domain.ScoreDecimalPlaces)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	slog.Debug("Vector query executed", "collection", s.collection, "has_vector", req.HasVector(), "hits", len(hits))
	return hits, nil
}

func (s *Store) List(ctx context.Context, filter storage.Filter, pageToken string, limit int) (*storage.Page, error) {
	cursor, err := dto.DecodeCursor(pageToken)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = storage.ListPageSize
	}

	w := newWhereBuilder()
	w.filter(filter)
	if cursor != nil {
		published := w.arg(cursor.PublishedAt)
		id := w.arg(cursor.ID)
		w.raw(fmt.Sprintf("(published_at, id) < (%s, %s)", published, id))
	}
	limitArg := w.arg(limit + 1)

	cmd := fmt.Sprintf(`
		SELECT %s
		FROM %s
		%s
		ORDER BY published_at DESC, id DESC
		LIMIT %s
	`, articleColumns, s.table, w.clause(), limitArg)

	rows, err := s.db.Query(ctx, cmd, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.collection, err)
	}
	defer rows.Close()

	articles := make([]domain.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	page := &storage.Page{}
	if len(articles) > limit {
		articles = articles[:limit]
		last := articles[limit-1]
		if page.Next, err = dto.EncodeCursor(last.PublishedAt, last.ID); err != nil {
			return nil, err
		}
	}
	page.Articles = articles
	return page, nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Article, error) {
	cmd := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, articleColumns, s.table)

	article, err := scanArticle(s.db.QueryRow(ctx, cmd, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("article %s: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return article, nil
}

func (s *Store) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(ids) == 0 {
		return existing, nil
	}

	rows, err := s.db.Query(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE id = ANY($1)`, s.table), ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		existing[id] = struct{}{}
	}
	return existing, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, s.table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.collection, err)
	}
	return count, nil
}

func (s *Store) Collection() string {
	return s.collection
}

func (s *Store) Healthy(ctx context.Context) bool {
	if s.pool == nil {
		return false
	}
	return s.pool.Ping(ctx) == nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func scanArticle(row pgx.Row, extra ...any) (*domain.Article, error) {
	var a domain.Article
	dest := append([]any{
		&a.ID,
		&a.Title,
		&a.Content,
		&a.Summary,
		&a.URL,
		&a.Source,
		&a.PublishedAt,
		&a.Author,
		&a.Categories,
		&a.ImageURL,
	}, extra...)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan article: %w", err)
	}
	a.PublishedAt = a.PublishedAt.UTC()
	return &a, nil
}
