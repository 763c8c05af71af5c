package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/DjordjeVuckovic/newsman/internal/dto"
	"github.com/DjordjeVuckovic/newsman/internal/storage"
	"github.com/DjordjeVuckovic/newsman/pkg/utils"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

// Store keeps articles in one Elasticsearch index with a dense_vector field.
type Store struct {
	client       *elasticsearch.TypedClient
	indexName    string
	indexBuilder *IndexBuilder
}

func NewStore(config ClientConfig, vectorSize int) (*Store, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &Store{
		client:       client,
		indexName:    config.IndexName,
		indexBuilder: NewIndexBuilder(vectorSize),
	}, nil
}

func (s *Store) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.Indices.Exists(s.indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	if exists {
		slog.Info("Index already exists", "index", s.indexName)
		return nil
	}

	body, err := json.Marshal(s.indexBuilder.buildIndexBody())
	if err != nil {
		return fmt.Errorf("failed to marshal index body: %w", err)
	}

	res, err := s.client.Indices.Create(s.indexName).Raw(bytes.NewReader(body)).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if !res.Acknowledged {
		return fmt.Errorf("index creation was not acknowledged")
	}

	slog.Info("Index created successfully", "index", s.indexName, "vector_size", s.indexBuilder.vectorSize)
	return nil
}

func (s *Store) Upsert(ctx context.Context, records []storage.Record) error {
	if len(records) == 0 {
		return nil
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         s.indexName,
		Client:        s.client,
		NumWorkers:    2,
		FlushBytes:    5e+6,
		FlushInterval: 30 * time.Second,
		Refresh:       "wait_for",
	})
	if err != nil {
		return fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	for _, r := range records {
		doc := s.indexBuilder.mapToESDocument(r)

		docBytes, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal document %s: %w", doc.ID, err)
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.ID,
			Body:       bytes.NewReader(docBytes),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					slog.Error("bulk index error", "error", err, "id", item.DocumentID)
				} else {
					slog.Error("bulk index error", "status", res.Status, "error", res.Error.Type, "reason", res.Error.Reason, "id", item.DocumentID)
				}
			},
		})
		if err != nil {
			return fmt.Errorf("failed to add document %s to bulk indexer: %w", doc.ID, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("failed to close bulk indexer: %w", err)
	}

	stats := bi.Stats()
	if stats.NumFailed > 0 {
		return fmt.Errorf("failed to index %d out of %d articles", stats.NumFailed, len(records))
	}
	return nil
}

func (s *Store) Query(ctx context.Context, req storage.QueryRequest) ([]domain.ScoredArticle, error) {
	searchReq := s.client.Search().Index(s.indexName).Size(req.Limit)

	if req.HasVector() {
		searchReq = searchReq.Knn(knnQuery(req))
	} else {
		searchReq = searchReq.Query(filteredQuery(req.Filter))
		for _, so := range newestFirst() {
			searchReq = searchReq.Sort(so)
		}
	}

	res, err := searchReq.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}

	hits := make([]domain.ScoredArticle, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		article, err := decodeHit(hit)
		if err != nil {
			return nil, err
		}
		scored := domain.ScoredArticle{Article: article}
		if req.HasVector() && hit.Score_ != nil {
			scored.Score = utils.RoundDecimal(cosineFromScore(float64(*hit.Score_)), domain.ScoreDecimalPlaces)
		}
		hits = append(hits, scored)
	}

	slog.Debug("Vector query executed", "index", s.indexName, "has_vector", req.HasVector(), "hits", len(hits))
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

	searchReq := s.client.Search().
		Index(s.indexName).
		Query(filteredQuery(filter)).
		Size(limit + 1)
	for _, so := range newestFirst() {
		searchReq = searchReq.Sort(so)
	}
	if cursor != nil {
		searchReq = searchReq.SearchAfter(
			types.FieldValue(cursor.PublishedAt.UnixMilli()),
			types.FieldValue(cursor.ID),
		)
	}

	res, err := searchReq.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list index: %w", err)
	}

	articles := make([]domain.Article, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		article, err := decodeHit(hit)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
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
	res, err := s.client.Search().
		Index(s.indexName).
		Query(&types.Query{Ids: &types.IdsQuery{Values: []string{id}}}).
		Size(1).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get article %s: %w", id, err)
	}
	if len(res.Hits.Hits) == 0 {
		return nil, fmt.Errorf("article %s: %w", id, apperr.ErrNotFound)
	}

	article, err := decodeHit(res.Hits.Hits[0])
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (s *Store) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(ids) == 0 {
		return existing, nil
	}

	res, err := s.client.Search().
		Index(s.indexName).
		Query(&types.Query{Ids: &types.IdsQuery{Values: ids}}).
		Size(len(ids)).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing ids: %w", err)
	}

	for _, hit := range res.Hits.Hits {
		if hit.Id_ != nil {
			existing[*hit.Id_] = struct{}{}
		}
	}
	return existing, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	res, err := s.client.Count().Index(s.indexName).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count index: %w", err)
	}
	return res.Count, nil
}

func (s *Store) Collection() string {
	return s.indexName
}

func (s *Store) Healthy(ctx context.Context) bool {
	ok, err := s.client.Ping().Do(ctx)
	return err == nil && ok
}

func (s *Store) Close() {}

// refresh makes recent writes visible to search.
func (s *Store) refresh(ctx context.Context) error {
	_, err := s.client.Indices.Refresh().Index(s.indexName).Do(ctx)
	return err
}

func decodeHit(hit types.Hit) (domain.Article, error) {
	var doc ArticleDocument
	if err := json.Unmarshal(hit.Source_, &doc); err != nil {
		return domain.Article{}, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc.toArticle(), nil
}
