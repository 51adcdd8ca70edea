package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	pq "github.com/kailas-cloud/noveldex/internal/db/parquet"
	"github.com/kailas-cloud/noveldex/internal/domain"
	"github.com/kailas-cloud/noveldex/internal/domain/novel"
	"github.com/kailas-cloud/noveldex/internal/domain/query"
	"github.com/kailas-cloud/noveldex/internal/domain/view"
	"github.com/kailas-cloud/noveldex/internal/repository/detail"
	"github.com/kailas-cloud/noveldex/internal/repository/index"
	"github.com/kailas-cloud/noveldex/internal/usecase/browse"
	healthuc "github.com/kailas-cloud/noveldex/internal/usecase/health"
)

// --- Mocks ---

// flakyDetails fails FetchDetails while broken is set.
type flakyDetails struct {
	store  *pq.Store
	broken bool
}

func (f *flakyDetails) FetchDetails(ctx context.Context, ids []string) (map[string]novel.Detail, error) {
	if f.broken {
		return nil, errors.New("partition unreadable")
	}
	return f.store.FetchDetails(ctx, ids) //nolint:wrapcheck // test passthrough
}

type mockBrowser struct {
	view view.ResultView
	err  error
}

func (m *mockBrowser) Browse(context.Context, query.Query) (view.ResultView, error) {
	return m.view, m.err
}

func (m *mockBrowser) Genres(context.Context) ([]string, error) {
	return nil, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

// --- Helpers ---

type testEnv struct {
	router  chi.Router
	details *flakyDetails
}

// newTestEnv wires the full pipeline over 120 fixture novels: scores 119..0,
// genre "fantasy" for even rows and "romance" for odd ones, page size 50.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	rows := make([]pq.FixtureRow, 120)
	for i := range rows {
		genre := "fantasy"
		if i%2 == 1 {
			genre = "romance"
		}
		id := fmt.Sprintf("n%04d", i)
		rows[i] = pq.FixtureRow{
			NCode:         id,
			Title:         pq.Ptr("title " + id),
			Genre:         pq.Ptr(genre),
			GlobalPoint:   pq.Ptr(int64(119 - i)),
			Length:        int64(i),
			GeneralLastup: "2024-05-01 08:00:00",
			Keyword:       pq.Ptr("kw"),
			Story:         pq.Ptr("story of " + id),
		}
	}
	rows[7].Title = pq.Ptr("Dragon Quest fan story")

	if err := pq.WriteFixture(filepath.Join(dir, "part-000.parquet"), 40, rows); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	store, err := pq.NewStore(pq.Config{Pattern: filepath.Join(dir, "*.parquet")})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)

	details := &flakyDetails{store: store}
	cache := index.New(store, index.DefaultTTL, nil, zap.NewNop())
	svc := browse.New(cache, detail.New(details)).WithPageSize(50)

	srv := NewServer(svc, healthuc.New(store, cache), zap.NewNop())
	r := chi.NewRouter()
	srv.Register(r)
	return &testEnv{router: r, details: details}
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	return rr
}

func decodeBrowse(t *testing.T, rr *httptest.ResponseRecorder) BrowseResponse {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var resp BrowseResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return resp
}

// --- Tests ---

func TestListNovels_FirstPage(t *testing.T) {
	env := newTestEnv(t)

	resp := decodeBrowse(t, doGet(t, env.router, "/novels"))

	if resp.Total != 120 || resp.TotalPages != 3 || resp.Page != 1 || resp.PageSize != 50 {
		t.Fatalf("window: got total=%d pages=%d page=%d size=%d",
			resp.Total, resp.TotalPages, resp.Page, resp.PageSize)
	}
	if len(resp.Items) != 50 {
		t.Fatalf("items: got %d, want 50", len(resp.Items))
	}
	first := resp.Items[0]
	if first.ID != "n0000" || first.Score != 119 {
		t.Errorf("first item: got %s/%d, want n0000/119", first.ID, first.Score)
	}
	if first.Synopsis == nil || *first.Synopsis != "story of n0000" {
		t.Errorf("synopsis: got %v", first.Synopsis)
	}
	if first.LastUpdate == nil || first.LastUpdate.Year() != 2024 {
		t.Errorf("last_update: got %v", first.LastUpdate)
	}
	if resp.Empty || resp.Warning != "" {
		t.Errorf("unexpected empty=%v warning=%q", resp.Empty, resp.Warning)
	}
}

func TestListNovels_LastPageTruncated(t *testing.T) {
	env := newTestEnv(t)

	resp := decodeBrowse(t, doGet(t, env.router, "/novels?page=3"))

	if len(resp.Items) != 20 {
		t.Fatalf("items: got %d, want 20", len(resp.Items))
	}
	if resp.Items[19].ID != "n0119" {
		t.Errorf("last item: got %s, want n0119", resp.Items[19].ID)
	}
}

func TestListNovels_PageClampedIntoRange(t *testing.T) {
	env := newTestEnv(t)

	for target, want := range map[string]int{
		"/novels?page=0":  1,
		"/novels?page=99": 3,
	} {
		resp := decodeBrowse(t, doGet(t, env.router, target))
		if resp.Page != want {
			t.Errorf("%s: page got %d, want %d", target, resp.Page, want)
		}
	}
}

func TestListNovels_CombinedFilters(t *testing.T) {
	env := newTestEnv(t)

	resp := decodeBrowse(t, doGet(t, env.router, "/novels?genre=romance&min_score=100"))

	// romance rows are odd i with score 119-i >= 100, i.e. i in {1,3,...,19}
	got := make([]string, len(resp.Items))
	for i, it := range resp.Items {
		got[i] = it.ID
		if it.Genre != "romance" || it.Score < 100 {
			t.Errorf("item %s violates filter: genre=%s score=%d", it.ID, it.Genre, it.Score)
		}
	}
	want := []string{"n0001", "n0003", "n0005", "n0007", "n0009", "n0011", "n0013", "n0015", "n0017", "n0019"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if resp.Total != 10 || resp.TotalPages != 1 {
		t.Errorf("total=%d pages=%d, want 10/1", resp.Total, resp.TotalPages)
	}
}

func TestListNovels_KeywordIsCaseSensitive(t *testing.T) {
	env := newTestEnv(t)

	resp := decodeBrowse(t, doGet(t, env.router, "/novels?keyword=Dragon+Quest"))
	if resp.Total != 1 || resp.Items[0].ID != "n0007" {
		t.Fatalf("got total=%d items=%v, want only n0007", resp.Total, resp.Items)
	}

	resp = decodeBrowse(t, doGet(t, env.router, "/novels?keyword=dragon+quest"))
	if !resp.Empty {
		t.Errorf("lowercase keyword: expected empty result, got total=%d", resp.Total)
	}
}

func TestListNovels_EmptyResult(t *testing.T) {
	env := newTestEnv(t)

	resp := decodeBrowse(t, doGet(t, env.router, "/novels?min_score=1000"))

	if !resp.Empty || resp.Total != 0 || len(resp.Items) != 0 {
		t.Fatalf("expected empty view, got %+v", resp)
	}
	if resp.TotalPages != 1 || resp.Page != 1 {
		t.Errorf("window: pages=%d page=%d, want 1/1", resp.TotalPages, resp.Page)
	}
	if resp.Message == "" {
		t.Error("expected a no-results message")
	}
}

func TestListNovels_DetailFailureDegrades(t *testing.T) {
	env := newTestEnv(t)
	env.details.broken = true

	resp := decodeBrowse(t, doGet(t, env.router, "/novels?page=3"))

	if len(resp.Items) != 20 {
		t.Fatalf("items: got %d, want 20", len(resp.Items))
	}
	for _, it := range resp.Items {
		if it.Synopsis != nil {
			t.Errorf("item %s: expected null synopsis", it.ID)
		}
		if it.Title == "" {
			t.Errorf("item %s: index fields missing", it.ID)
		}
	}
	if resp.Warning == "" {
		t.Error("expected warning")
	}
}

func TestListNovels_BadParams(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{
		"/novels?min_score=abc",
		"/novels?page=two",
		"/novels?min_score=-5",
	} {
		rr := doGet(t, env.router, target)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", target, rr.Code)
			continue
		}
		if resp := decodeError(t, rr); resp.Code != ErrorCodeBadRequest {
			t.Errorf("%s: code got %s, want %s", target, resp.Code, ErrorCodeBadRequest)
		}
	}
}

func TestListNovels_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
	}{
		{
			name:       "data source",
			err:        fmt.Errorf("load index: %w", domain.NewDataSourceError("load index", errors.New("no partitions"))),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   ErrorCodeDataSourceUnavailable,
		},
		{
			name:       "invalid page",
			err:        fmt.Errorf("paginate: %w", domain.NewInvalidPage(9, 3)),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrorCodeInternalError,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrorCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(&mockBrowser{err: tt.err}, &mockHealth{}, zap.NewNop())
			r := chi.NewRouter()
			srv.Register(r)

			rr := doGet(t, r, "/novels")
			if rr.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			resp := decodeError(t, rr)
			if resp.Code != tt.wantCode {
				t.Errorf("code: got %s, want %s", resp.Code, tt.wantCode)
			}
			if resp.Message == "no partitions" || resp.Message == "boom" {
				t.Errorf("internal error leaked to client: %q", resp.Message)
			}
		})
	}
}

func TestListGenres(t *testing.T) {
	env := newTestEnv(t)

	rr := doGet(t, env.router, "/genres")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	var resp GenresResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"all", "fantasy", "romance"}, resp.Genres); diff != "" {
		t.Errorf("genres mismatch (-want +got):\n%s", diff)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		report     healthuc.Report
		wantStatus int
	}{
		{
			name: "healthy",
			report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{
				"store": healthuc.CheckOK, "index": healthuc.CheckOK,
			}},
			wantStatus: http.StatusOK,
		},
		{
			name: "degraded",
			report: healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{
				"store": healthuc.CheckOK, "index": healthuc.CheckError,
			}},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(&mockBrowser{}, &mockHealth{report: tt.report}, zap.NewNop())
			r := chi.NewRouter()
			srv.Register(r)

			rr := doGet(t, r, "/health")
			if rr.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != string(tt.report.Status) {
				t.Errorf("status field: got %s, want %s", resp.Status, tt.report.Status)
			}
			if resp.Checks["index"] != string(tt.report.Checks["index"]) {
				t.Errorf("index check: got %s", resp.Checks["index"])
			}
		})
	}
}

func TestWriteNotFound(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteNotFound(rr)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != ErrorCodeNotFound {
		t.Errorf("code: got %s, want %s", resp.Code, ErrorCodeNotFound)
	}
}
