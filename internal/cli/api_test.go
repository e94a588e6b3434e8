package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/passrank/pkg/observability"
)

func TestAPI(t *testing.T) {
	h := newRouter(tidyResult(t), log.New(io.Discard))

	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"Health", "/healthz", 200, `"status":"ok"`},
		{"Summary", "/api/summary", 200, `"entities":3`},
		{"Levels", "/api/levels", 200, `"levels":[1,2,3,5]`},
		{"Level", "/api/levels/2", 200, `"total":3`},
		{"LevelNotRetained", "/api/levels/4", 404, `"LEVEL_NOT_FOUND"`},
		{"LevelZero", "/api/levels/0", 400, `"INVALID_LEVEL"`},
		{"LevelNotNumber", "/api/levels/x", 400, `"INVALID_LEVEL"`},
		{"Movers", "/api/movers", 200, `"baseline":1`},
		{"MoversBadLimit", "/api/movers?limit=-1", 400, `"INVALID_INPUT"`},
		{"TrendMissing", "/api/trend", 400, `"INVALID_INPUT"`},
		{"TrendUnknown", "/api/trend?entity=Z", 404, `"NOT_FOUND"`},
		{"Results", "/api/results", 200, `"entities": [`},
		{"Report", "/report.md", 200, "# Passport Reach vs Depth"},
		{"NoRoute", "/nope", 404, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.status {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("GET %s body missing %s:\n%s", tt.path, tt.want, rec.Body.String())
			}
		})
	}
}

func TestAPILimit(t *testing.T) {
	h := newRouter(tidyResult(t), log.New(io.Discard))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/levels/2?limit=1", nil))
	var level levelResponse
	if err := json.NewDecoder(rec.Body).Decode(&level); err != nil {
		t.Fatal(err)
	}
	if len(level.Entries) != 1 || level.Total != 3 || level.Entries[0].Entity != "A" {
		t.Errorf("level = %+v, want only A of 3", level)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movers?limit=1", nil))
	var movers moversResponse
	if err := json.NewDecoder(rec.Body).Decode(&movers); err != nil {
		t.Fatal(err)
	}
	if len(movers.Movers) != 1 || movers.Movers[0].Entity != "C" || movers.Movers[0].Delta != 2 {
		t.Errorf("movers = %+v, want C +2", movers.Movers)
	}
}

func TestAPITrend(t *testing.T) {
	h := newRouter(tidyResult(t), log.New(io.Discard))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trend?entity=C", nil))

	var trend trendResponse
	if err := json.NewDecoder(rec.Body).Decode(&trend); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(trend.Ranks, []int{3, 2, 1, 1}) || !slices.Equal(trend.Levels, []int{1, 2, 3, 5}) {
		t.Errorf("trend = %+v, want ranks [3 2 1 1] at [1 2 3 5]", trend)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestAPICallsHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	h := newRouter(tidyResult(t), log.New(io.Discard))
	for _, path := range []string{"/healthz", "/api/levels/4"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if !slices.Equal(hooks.statuses, []int{200, 404}) {
		t.Errorf("statuses = %v, want [200 404]", hooks.statuses)
	}
}
