package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marchebantum/caymanmyass-sub002/internal/classifier"
	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
)

// stubArticleRepo is an in-memory ArticleRepository with the same uniqueness
// semantics as the postgres implementation.
type stubArticleRepo struct {
	mu       sync.Mutex
	byHash   map[string]*entity.Article
	byTitle  map[string]*entity.Article
	nextID   int64
	failURLs map[string]error // Create fails for these URLs
}

func newStubArticleRepo() *stubArticleRepo {
	return &stubArticleRepo{
		byHash:   make(map[string]*entity.Article),
		byTitle:  make(map[string]*entity.Article),
		failURLs: make(map[string]error),
	}
}

func (r *stubArticleRepo) Create(_ context.Context, a *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failURLs[a.URL]; ok {
		return err
	}
	if _, ok := r.byHash[a.URLHash]; ok {
		return entity.ErrDuplicate
	}
	if _, ok := r.byTitle[a.NormalizedTitle]; ok {
		return entity.ErrDuplicate
	}
	r.nextID++
	a.ID = r.nextID
	r.byHash[a.URLHash] = a
	r.byTitle[a.NormalizedTitle] = a
	return nil
}

func (r *stubArticleRepo) Get(_ context.Context, id int64) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byHash {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *stubArticleRepo) GetByURLHash(_ context.Context, hash string) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byHash[hash], nil
}

func (r *stubArticleRepo) GetByNormalizedTitle(_ context.Context, title string) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byTitle[title], nil
}

func (r *stubArticleRepo) ListPaginated(context.Context, repository.ArticleFilters, int, int) ([]*entity.Article, error) {
	return nil, nil
}

func (r *stubArticleRepo) Count(context.Context, repository.ArticleFilters) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byHash)), nil
}

func (r *stubArticleRepo) ListUnresolved(context.Context, int) ([]*entity.Article, error) {
	return nil, nil
}

func (r *stubArticleRepo) MarkResolved(context.Context, int64, time.Time) error { return nil }

func (r *stubArticleRepo) CountBySignal(context.Context) ([]repository.SignalCount, error) {
	return nil, nil
}

func (r *stubArticleRepo) stored() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byHash)
}

// stubRunRepo records created and finalized runs.
type stubRunRepo struct {
	mu        sync.Mutex
	created   []*entity.IngestionRun
	finalized []*entity.IngestionRun
}

func (r *stubRunRepo) Create(_ context.Context, run *entity.IngestionRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *run
	r.created = append(r.created, &cp)
	return nil
}

func (r *stubRunRepo) Finalize(_ context.Context, run *entity.IngestionRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *run
	r.finalized = append(r.finalized, &cp)
	return nil
}

func (r *stubRunRepo) Get(context.Context, string) (*entity.IngestionRun, error) { return nil, nil }

func (r *stubRunRepo) ListRecent(context.Context, string, int) ([]*entity.IngestionRun, error) {
	return nil, nil
}

func (r *stubRunRepo) lastFinalized() *entity.IngestionRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.finalized) == 0 {
		return nil
	}
	return r.finalized[len(r.finalized)-1]
}

// stubSettingsRepo simulates the shared quota/settings row.
type stubSettingsRepo struct {
	mu         sync.Mutex
	settings   entity.AppSettings
	increments int
}

func (r *stubSettingsRepo) Get(context.Context) (*entity.AppSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := r.settings
	return &cp, nil
}

func (r *stubSettingsRepo) TryIncrementRequestCount(context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings.NewsAPIRequestCount >= r.settings.NewsAPIDailyLimit {
		return false, nil
	}
	r.settings.NewsAPIRequestCount++
	r.increments++
	return true, nil
}

func (r *stubSettingsRepo) ResetPeriod(_ context.Context, start time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.NewsAPIRequestCount = 0
	r.settings.PeriodStart = start
	return nil
}

// stubClient serves canned records and counts Fetch calls.
type stubClient struct {
	name        string
	records     []SourceRecord
	fetchErr    error
	validateErr error

	mu         sync.Mutex
	fetchCalls int
}

func (c *stubClient) Name() string { return c.name }

func (c *stubClient) Validate() error { return c.validateErr }

func (c *stubClient) Fetch(context.Context, SourceQuery) ([]SourceRecord, error) {
	c.mu.Lock()
	c.fetchCalls++
	c.mu.Unlock()
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	return c.records, nil
}

func (c *stubClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchCalls
}

func defaultSettings() entity.AppSettings {
	return entity.AppSettings{
		NewsAPIEnabled:      true,
		NewsAPIRequestCount: 0,
		NewsAPIDailyLimit:   100,
		PeriodStart:         time.Now().UTC().Truncate(24 * time.Hour),
		Keywords:            []string{"Cayman Islands", "CIMA"},
	}
}

func newTestService(t *testing.T, articles *stubArticleRepo, runs *stubRunRepo, settings *stubSettingsRepo, clients map[string]SourceClient) *Service {
	t.Helper()
	return NewService(articles, runs, settings, clients,
		classifier.New(classifier.DefaultConfig()), nil, DefaultConfig())
}

func TestIngestSource_StoresRelevantRecords(t *testing.T) {
	articles := newStubArticleRepo()
	runs := &stubRunRepo{}
	settings := &stubSettingsRepo{settings: defaultSettings()}
	client := &stubClient{
		name: entity.SourceGDELT,
		records: []SourceRecord{
			{
				Title:     "CIMA fines Cayman Islands fund administrator",
				URL:       "https://news.example.com/cima-fine",
				Content:   "The Cayman Islands Monetary Authority announced enforcement action.",
				Published: "2026-08-29T10:00:00Z",
			},
			{
				Title:     "Local sports roundup",
				URL:       "https://news.example.com/sports",
				Content:   "Weekend football results.",
				Published: "2026-08-29T11:00:00Z",
			},
		},
	}

	svc := newTestService(t, articles, runs, settings, map[string]SourceClient{entity.SourceGDELT: client})

	res, err := svc.IngestSource(context.Background(), entity.SourceGDELT, entity.TriggerManual)
	if err != nil {
		t.Fatalf("IngestSource: %v", err)
	}
	if !res.Success {
		t.Errorf("expected success, got message %q", res.Message)
	}
	if res.Fetched != 2 || res.New != 1 || res.Relevant != 1 || res.Duplicate != 0 {
		t.Errorf("unexpected counts: %+v", res)
	}
	if articles.stored() != 1 {
		t.Errorf("expected 1 stored article, got %d", articles.stored())
	}

	stored, _ := articles.GetByNormalizedTitle(context.Background(),
		"cima fines cayman islands fund administrator")
	if stored == nil {
		t.Fatal("expected stored article retrievable by normalized title")
	}
	if !stored.Relevant || stored.Status != entity.ArticleStatusClassified {
		t.Errorf("stored article not classified relevant: %+v", stored)
	}
	if len(stored.MatchedKeywords) != 2 {
		t.Errorf("expected both keywords matched, got %v", stored.MatchedKeywords)
	}
	if stored.PublishedAt == nil {
		t.Error("expected parsed publication timestamp")
	}
}

func TestIngestSource_ExactDuplicateSecondSubmission(t *testing.T) {
	articles := newStubArticleRepo()
	runs := &stubRunRepo{}
	settings := &stubSettingsRepo{settings: defaultSettings()}
	rec := SourceRecord{
		Title:     "CIMA opens investigation",
		URL:       "https://news.example.com/investigation",
		Content:   "Cayman Islands regulator CIMA investigates.",
		Published: "2026-08-28T09:00:00Z",
	}
	client := &stubClient{name: entity.SourceGDELT, records: []SourceRecord{rec}}

	svc := newTestService(t, articles, runs, settings, map[string]SourceClient{entity.SourceGDELT: client})

	if _, err := svc.IngestSource(context.Background(), entity.SourceGDELT, entity.TriggerScheduled); err != nil {
		t.Fatalf("first run: %v", err)
	}
	res, err := svc.IngestSource(context.Background(), entity.SourceGDELT, entity.TriggerScheduled)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if articles.stored() != 1 {
		t.Errorf("idempotence violated: %d articles stored", articles.stored())
	}
	if res.Duplicate != 1 || res.New != 0 {
		t.Errorf("second submission should be duplicate: %+v", res)
	}
}

func TestIngestSource_NearDuplicateByNormalizedTitle(t *testing.T) {
	articles := newStubArticleRepo()
	runs := &stubRunRepo{}
	settings := &stubSettingsRepo{settings: defaultSettings()}
	client := &stubClient{
		name: entity.SourceGDELT,
		records: []SourceRecord{
			{
				Title:     "CIMA Fines Fund Manager!",
				URL:       "https://first.example.com/a",
				Content:   "Cayman Islands enforcement.",
				Published: "2026-08-28T09:00:00Z",
			},
			{
				Title:     "cima  fines fund manager",
				URL:       "https://second.example.com/b",
				Content:   "Cayman Islands enforcement, syndicated.",
				Published: "2026-08-28T10:00:00Z",
			},
		},
	}

	svc := newTestService(t, articles, runs, settings, map[string]SourceClient{entity.SourceGDELT: client})

	res, err := svc.IngestSource(context.Background(), entity.SourceGDELT, entity.TriggerManual)
	if err != nil {
		t.Fatalf("IngestSource: %v", err)
	}
	if articles.stored() != 1 {
		t.Errorf("near-duplicate law violated: %d stored", articles.stored())
	}
	if res.New != 1 || res.Duplicate != 1 {
		t.Errorf("unexpected counts: %+v", res)
	}
}

func TestIngestSource_QuotaExhaustedFailsFast(t *testing.T) {
	articles := newStubArticleRepo()
	runs := &stubRunRepo{}
	st := defaultSettings()
	st.NewsAPIRequestCount = 100
	st.NewsAPIDailyLimit = 100
	settings := &stubSettingsRepo{settings: st}
	client := &stubClient{name: entity.SourceNewsAPI}

	svc := newTestService(t, articles, runs, settings, map[string]SourceClient{entity.SourceNewsAPI: client})

	res, err := svc.IngestSource(context.Background(), entity.SourceNewsAPI, entity.TriggerScheduled)
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("expected ErrQuotaExhausted, got %v", err)
	}
	if res.Success {
		t.Error("expected failed result")
	}
	if client.calls() != 0 {
		t.Errorf("expected zero external calls, got %d", client.calls())
	}
	if settings.increments != 0 {
		t.Errorf("quota counter mutated %d times", settings.increments)
	}

	fin := runs.lastFinalized()
	if fin == nil {
		t.Fatal("run was never finalized")
	}
	if fin.Status != entity.RunStatusFailed || fin.FinishedAt == nil {
		t.Errorf("expected failed finalized run, got status=%q finished=%v", fin.Status, fin.FinishedAt)
	}
}

func TestIngestSource_DisabledSource(t *testing.T) {
	st := defaultSettings()
	st.NewsAPIEnabled = false
	settings := &stubSettingsRepo{settings: st}
	runs := &stubRunRepo{}
	client := &stubClient{name: entity.SourceNewsAPI}

	svc := newTestService(t, newStubArticleRepo(), runs, settings, map[string]SourceClient{entity.SourceNewsAPI: client})

	_, err := svc.IngestSource(context.Background(), entity.SourceNewsAPI, entity.TriggerManual)
	if !errors.Is(err, ErrSourceDisabled) {
		t.Fatalf("expected ErrSourceDisabled, got %v", err)
	}
	if len(runs.created) != 0 {
		t.Error("no run record should be created for a disabled source")
	}
	if client.calls() != 0 {
		t.Error("disabled source must not be contacted")
	}
}

func TestIngestSource_MissingAPIKey(t *testing.T) {
	settings := &stubSettingsRepo{settings: defaultSettings()}
	runs := &stubRunRepo{}
	client := &stubClient{name: entity.SourceNewsAPI, validateErr: ErrMissingAPIKey}

	svc := newTestService(t, newStubArticleRepo(), runs, settings, map[string]SourceClient{entity.SourceNewsAPI: client})

	_, err := svc.IngestSource(context.Background(), entity.SourceNewsAPI, entity.TriggerManual)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if client.calls() != 0 {
		t.Error("misconfigured source must not be contacted")
	}
}

func TestIngestSource_UnknownSource(t *testing.T) {
	settings := &stubSettingsRepo{settings: defaultSettings()}
	runs := &stubRunRepo{}

	svc := newTestService(t, newStubArticleRepo(), runs, settings, map[string]SourceClient{})

	res, err := svc.IngestSource(context.Background(), "gazette", entity.TriggerManual)
	if !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
	if res == nil || res.Success {
		t.Error("expected structured failure result")
	}
}

func TestIngestSource_FetchErrorFinalizesRunAsFailed(t *testing.T) {
	settings := &stubSettingsRepo{settings: defaultSettings()}
	runs := &stubRunRepo{}
	client := &stubClient{name: entity.SourceGDELT, fetchErr: errors.New("connection refused")}

	svc := newTestService(t, newStubArticleRepo(), runs, settings, map[string]SourceClient{entity.SourceGDELT: client})

	res, err := svc.IngestSource(context.Background(), entity.SourceGDELT, entity.TriggerScheduled)
	if err == nil {
		t.Fatal("expected fetch error to propagate")
	}
	if res.Success {
		t.Error("expected failed result")
	}

	fin := runs.lastFinalized()
	if fin == nil {
		t.Fatal("run record left open after fetch failure")
	}
	if fin.Status != entity.RunStatusFailed {
		t.Errorf("expected failed status, got %q", fin.Status)
	}
	if fin.FinishedAt == nil {
		t.Error("expected non-nil finish timestamp")
	}
	if len(fin.Errors) == 0 {
		t.Error("expected fetch error recorded on the run")
	}
}

func TestIngestSource_PerRecordErrorDoesNotAbortRun(t *testing.T) {
	articles := newStubArticleRepo()
	articles.failURLs["https://news.example.com/bad"] = errors.New("disk full")
	runs := &stubRunRepo{}
	settings := &stubSettingsRepo{settings: defaultSettings()}
	client := &stubClient{
		name: entity.SourceGDELT,
		records: []SourceRecord{
			{
				Title:     "CIMA notice one",
				URL:       "https://news.example.com/bad",
				Content:   "Cayman Islands regulatory notice.",
				Published: "2026-08-28T09:00:00Z",
			},
			{
				Title:     "CIMA notice two",
				URL:       "https://news.example.com/good",
				Content:   "Cayman Islands regulatory notice, second.",
				Published: "2026-08-28T10:00:00Z",
			},
		},
	}

	svc := newTestService(t, articles, runs, settings, map[string]SourceClient{entity.SourceGDELT: client})

	res, err := svc.IngestSource(context.Background(), entity.SourceGDELT, entity.TriggerManual)
	if err != nil {
		t.Fatalf("per-record failure must not abort the run: %v", err)
	}
	if res.New != 1 {
		t.Errorf("surviving record not stored: %+v", res)
	}

	fin := runs.lastFinalized()
	if fin == nil {
		t.Fatal("run not finalized")
	}
	if fin.Status != entity.RunStatusCompleted {
		t.Errorf("run with only record errors should complete, got %q", fin.Status)
	}
	if len(fin.Errors) != 1 || !strings.Contains(fin.Errors[0], "disk full") {
		t.Errorf("expected one recorded error, got %v", fin.Errors)
	}
	if !strings.Contains(res.Message, "record errors") {
		t.Errorf("expected record error note in message, got %q", res.Message)
	}
}

func TestIngestSource_MalformedDateStoredAsNil(t *testing.T) {
	articles := newStubArticleRepo()
	runs := &stubRunRepo{}
	settings := &stubSettingsRepo{settings: defaultSettings()}
	client := &stubClient{
		name: entity.SourceGDELT,
		records: []SourceRecord{{
			Title:     "CIMA statement",
			URL:       "https://news.example.com/statement",
			Content:   "Cayman Islands statement.",
			Published: "next Tuesday-ish",
		}},
	}

	svc := newTestService(t, articles, runs, settings, map[string]SourceClient{entity.SourceGDELT: client})

	if _, err := svc.IngestSource(context.Background(), entity.SourceGDELT, entity.TriggerManual); err != nil {
		t.Fatalf("IngestSource: %v", err)
	}

	stored, _ := articles.GetByNormalizedTitle(context.Background(), "cima statement")
	if stored == nil {
		t.Fatal("article not stored")
	}
	if stored.PublishedAt != nil {
		t.Errorf("malformed date must store nil, got %v", stored.PublishedAt)
	}
}

func TestIngestAll_SiblingFailureIsolation(t *testing.T) {
	articles := newStubArticleRepo()
	runs := &stubRunRepo{}
	settings := &stubSettingsRepo{settings: defaultSettings()}
	healthy := &stubClient{
		name: entity.SourceGDELT,
		records: []SourceRecord{{
			Title:     "Cayman Islands fund winding up",
			URL:       "https://news.example.com/winding-up",
			Content:   "Petition filed in Grand Court.",
			Published: "2026-08-28T09:00:00Z",
		}},
	}
	broken := &stubClient{name: entity.SourceNewsAPI, fetchErr: errors.New("upstream 502")}

	svc := newTestService(t, articles, runs, settings, map[string]SourceClient{
		entity.SourceGDELT:   healthy,
		entity.SourceNewsAPI: broken,
	})

	results := svc.IngestAll(context.Background(), entity.TriggerScheduled)
	if len(results) != 2 {
		t.Fatalf("expected 2 sub-run results, got %d", len(results))
	}

	var ok, failed int
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failed++
		}
	}
	if ok != 1 || failed != 1 {
		t.Errorf("expected one success and one failure, got ok=%d failed=%d", ok, failed)
	}
	if articles.stored() != 1 {
		t.Errorf("healthy sub-run should have stored its article, got %d", articles.stored())
	}
}

func TestIngestSource_QuotaCounterAdvancesOncePerRun(t *testing.T) {
	articles := newStubArticleRepo()
	runs := &stubRunRepo{}
	settings := &stubSettingsRepo{settings: defaultSettings()}
	client := &stubClient{name: entity.SourceNewsAPI}

	svc := newTestService(t, articles, runs, settings, map[string]SourceClient{entity.SourceNewsAPI: client})

	if _, err := svc.IngestSource(context.Background(), entity.SourceNewsAPI, entity.TriggerScheduled); err != nil {
		t.Fatalf("IngestSource: %v", err)
	}
	if settings.increments != 1 {
		t.Errorf("expected exactly one quota increment, got %d", settings.increments)
	}
	if client.calls() != 1 {
		t.Errorf("expected one fetch, got %d", client.calls())
	}
}
