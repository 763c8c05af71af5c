package es

import (
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/storage"
	dquery "github.com/DjordjeVuckovic/newsman/internal/types/query"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
)

const (
	// numCandidatesFactor widens the HNSW candidate list relative to k.
	numCandidatesFactor = 10
	// maxNumCandidates is the largest k and num_candidates Elasticsearch accepts.
	maxNumCandidates = 10000
)

func filterQueries(f storage.Filter) []types.Query {
	queries := make([]types.Query, 0, 3)
	if f.Source != "" {
		queries = append(queries, types.Query{
			Term: map[string]types.TermQuery{"source": {Value: f.Source}},
		})
	}
	if f.Category != "" {
		queries = append(queries, types.Query{
			Term: map[string]types.TermQuery{"categories": {Value: f.Category}},
		})
	}
	if f.Date != nil {
		queries = append(queries, dateRangeQuery(f.Date))
	}
	return queries
}

func dateRangeQuery(dr *dquery.DateRange) types.Query {
	format := func(t *time.Time) *string {
		if t == nil {
			return nil
		}
		s := t.UTC().Format(time.RFC3339Nano)
		return &s
	}

	return types.Query{
		Range: map[string]types.RangeQuery{
			"published_at": types.DateRangeQuery{
				Gt:  format(dr.GT),
				Gte: format(dr.GTE),
				Lt:  format(dr.LT),
				Lte: format(dr.LTE),
			},
		},
	}
}

// filteredQuery wraps the filter in a bool query, or matches everything.
func filteredQuery(f storage.Filter) *types.Query {
	filters := filterQueries(f)
	if len(filters) == 0 {
		return &types.Query{MatchAll: &types.MatchAllQuery{}}
	}
	return &types.Query{Bool: &types.BoolQuery{Filter: filters}}
}

func knnQuery(req storage.QueryRequest) types.KnnSearch {
	k := min(max(req.Limit, 1), maxNumCandidates)
	numCandidates := min(k*numCandidatesFactor, maxNumCandidates)

	knn := types.KnnSearch{
		Field:         "embedding",
		QueryVector:   req.Vector,
		K:             &k,
		NumCandidates: &numCandidates,
		Filter:        filterQueries(req.Filter),
	}
	if req.MinScore != nil {
		// similarity is compared against the raw cosine, not the _score
		similarity := float32(*req.MinScore)
		knn.Similarity = &similarity
	}
	return knn
}

func newestFirst() []*types.SortOptions {
	desc := sortorder.Desc
	return []*types.SortOptions{
		{SortOptions: map[string]types.FieldSort{"published_at": {Order: &desc}}},
		{SortOptions: map[string]types.FieldSort{"id": {Order: &desc}}},
	}
}

// cosineFromScore undoes the (1 + cos) / 2 scaling Elasticsearch applies to
// cosine dense_vector scores.
func cosineFromScore(score float64) float64 {
	return 2*score - 1
}
