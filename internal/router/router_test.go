package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
	"github.com/DjordjeVuckovic/newsman/internal/cache"
	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/DjordjeVuckovic/newsman/internal/ingest"
	"github.com/DjordjeVuckovic/newsman/internal/monitor"
	"github.com/DjordjeVuckovic/newsman/internal/search"
	"github.com/DjordjeVuckovic/newsman/internal/storage"
	"github.com/DjordjeVuckovic/newsman/internal/storage/in_mem"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type staticEmbedder struct{}

func (staticEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type fakePipeline struct {
	running atomic.Bool
	runs    atomic.Int32
	wg      sync.WaitGroup
	report  *ingest.Report
}

func (p *fakePipeline) Run(context.Context) (*ingest.Report, error) {
	defer p.wg.Done()
	p.runs.Add(1)
	return p.report, nil
}

func (p *fakePipeline) Running() bool { return p.running.Load() }
func (p *fakePipeline) LastReport() *ingest.Report { return p.report }

type activeScheduler struct{}

func (activeScheduler) Active() bool { return true }

var published = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func newTestEcho(t *testing.T) (*echo.Echo, *search.Service) {
	t.Helper()

	store := in_mem.NewStore("test", 2)
	require.NoError(t, store.Upsert(context.Background(), []storage.Record{
		{Article: domain.Article{ID: "a1", Title: "AI chips", URL: "https://t.example/a1", Source: "techcrunch", Categories: []string{"tech"}, PublishedAt: published}, Vector: []float32{1, 0}},
		{Article: domain.Article{ID: "b1", Title: "Rates", URL: "https://w.example/b1", Source: "wsj", Categories: []string{"business"}, PublishedAt: published.Add(-24 * time.Hour)}, Vector: []float32{0, 1}},
	}))

	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	svc := search.NewService(store, staticEmbedder{}, search.WithClock(func() time.Time { return published }))
	NewSearchRouter(e, svc).Bind()
	NewNewsRouter(e, svc).Bind()
	return e, svc
}

func do(t *testing.T, e *echo.Echo, method, target string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

type searchBody struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error"`
	Results []struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	} `json:"results"`
}

func TestSearchHandler(t *testing.T) {
	e, _ := newTestEcho(t)

	var body searchBody
	code := do(t, e, http.MethodGet, "/api/search?query=chips", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, body.Success)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "a1", body.Results[0].ID)
	assert.Equal(t, 1.0, body.Results[0].Score)

	body = searchBody{}
	code = do(t, e, http.MethodGet, "/api/search?category=business&min_score=0", &body)
	assert.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "b1", body.Results[0].ID)

	body = searchBody{}
	code = do(t, e, http.MethodGet, "/api/search?date=2024-05-10&date_operand=on", &body)
	assert.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "a1", body.Results[0].ID)
}

func TestSearchHandler_EmptyQueryUsesDefaultMinScore(t *testing.T) {
	e, _ := newTestEcho(t)

	var body searchBody
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/api/search", &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "a1", body.Results[0].ID)
	assert.Equal(t, 1.0, body.Results[0].Score)

	body = searchBody{}
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/api/search?min_score=-1", &body))
	require.Equal(t, 2, body.Count)
	assert.Equal(t, []string{"a1", "b1"}, []string{body.Results[0].ID, body.Results[1].ID})
}

func TestSearchHandler_Validation(t *testing.T) {
	e, _ := newTestEcho(t)

	for _, target := range []string{
		"/api/search?limit=abc",
		"/api/search?limit=1000",
		"/api/search?min_score=high",
		"/api/search?min_score=NaN",
		"/api/search?min_score=Inf",
		"/api/search?min_score=1.5",
		"/api/search?date=yesterday",
		"/api/search?date=2024-05-10&date_operand=around",
	} {
		var body searchBody
		code := do(t, e, http.MethodGet, target, &body)
		assert.Equal(t, http.StatusBadRequest, code, target)
		assert.False(t, body.Success, target)
		assert.NotEmpty(t, body.Error, target)
	}
}

func TestNewsHandlers(t *testing.T) {
	e, _ := newTestEcho(t)

	var body searchBody
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/api/news?limit=1&skip=1", &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "b1", body.Results[0].ID)

	body = searchBody{}
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/api/news/source/techcrunch", &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "a1", body.Results[0].ID)

	body = searchBody{}
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/api/news/category/sports", &body))
	assert.Zero(t, body.Count)
	assert.NotNil(t, body.Results)
}

func TestArticleHandler(t *testing.T) {
	e, _ := newTestEcho(t)

	var ok struct {
		Success bool `json:"success"`
		Article struct {
			ID            string    `json:"id"`
			PublishedDate time.Time `json:"published_date"`
		} `json:"article"`
	}
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/api/article/a1", &ok))
	assert.Equal(t, "a1", ok.Article.ID)
	assert.True(t, published.Equal(ok.Article.PublishedDate))

	var missing apperr.ErrorResponse
	assert.Equal(t, http.StatusNotFound, do(t, e, http.MethodGet, "/api/article/nope", &missing))
	assert.False(t, missing.Success)
}

func TestSourcesCategoriesStats(t *testing.T) {
	e, _ := newTestEcho(t)

	var sources struct {
		Count   int      `json:"count"`
		Sources []string `json:"sources"`
	}
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/api/sources", &sources))
	assert.Equal(t, []string{"techcrunch", "wsj"}, sources.Sources)

	var categories struct {
		Categories []string `json:"categories"`
	}
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/api/categories", &categories))
	assert.Equal(t, []string{"business", "tech"}, categories.Categories)

	var stats struct {
		Success       bool           `json:"success"`
		TotalArticles int            `json:"total_articles"`
		ArticlesToday int            `json:"articles_today"`
		Sources       map[string]int `json:"sources"`
	}
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/api/stats", &stats))
	assert.Equal(t, 2, stats.TotalArticles)
	assert.Equal(t, 1, stats.ArticlesToday)
	assert.Equal(t, 1, stats.Sources["wsj"])
}

func TestFetchHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	p := &fakePipeline{report: &ingest.Report{TotalFetched: 3}}
	NewIngestRouter(e, context.Background(), p,
		WithFetchLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)),
		WithScheduler(activeScheduler{}),
	).Bind()

	p.wg.Add(1)
	var accepted struct {
		Success bool `json:"success"`
	}
	assert.Equal(t, http.StatusAccepted, do(t, e, http.MethodPost, "/api/news/fetch", &accepted))
	assert.True(t, accepted.Success)
	p.wg.Wait()
	assert.EqualValues(t, 1, p.runs.Load())

	var throttled apperr.ErrorResponse
	assert.Equal(t, http.StatusTooManyRequests, do(t, e, http.MethodPost, "/api/news/fetch", &throttled))
	assert.False(t, throttled.Success)

	p.running.Store(true)
	var conflict apperr.ErrorResponse
	assert.Equal(t, http.StatusConflict, do(t, e, http.MethodPost, "/api/news/fetch", &conflict))
	assert.EqualValues(t, 1, p.runs.Load())

	var status struct {
		SchedulerActive  bool           `json:"scheduler_active"`
		IngestionRunning bool           `json:"ingestion_running"`
		LastRun          *ingest.Report `json:"last_run"`
	}
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/api/status", &status))
	assert.True(t, status.SchedulerActive)
	assert.True(t, status.IngestionRunning)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, 3, status.LastRun.TotalFetched)
}

func TestCacheHandler(t *testing.T) {
	fc := cache.NewFileCache(t.TempDir())
	require.NoError(t, fc.Save("bbc", []domain.Article{{ID: "x", Title: "T", URL: "https://bbc.example/x", Source: "bbc", PublishedAt: published}}))

	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	NewIngestRouter(e, context.Background(), &fakePipeline{}, WithCacheDiagnostics(fc)).Bind()

	var body struct {
		Count    int `json:"count"`
		Articles []struct {
			ID         string   `json:"id"`
			Categories []string `json:"categories"`
		} `json:"articles"`
	}
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/api/cache/bbc", &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "x", body.Articles[0].ID)
	assert.NotNil(t, body.Articles[0].Categories)

	assert.Equal(t, http.StatusNotFound, do(t, e, http.MethodGet, "/api/cache/cnn", nil))
}

func TestMonitoringRequestsHandler(t *testing.T) {
	ring := monitor.NewRing(5)
	e, _ := newTestEcho(t)
	e.Use(monitor.Middleware(ring))
	NewMonitoringRouter(e, ring, nil).Bind()

	do(t, e, http.MethodGet, "/api/search?query=chips", nil)

	var body struct {
		Count    int               `json:"count"`
		Requests []monitor.Request `json:"requests"`
	}
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/api/monitoring/requests", &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "/api/search", body.Requests[0].Endpoint)
	assert.Equal(t, monitor.StatusSuccess, body.Requests[0].Status)
}
