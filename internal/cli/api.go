package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/passrank/pkg/analysis"
	"github.com/matzehuels/passrank/pkg/buildinfo"
	perrors "github.com/matzehuels/passrank/pkg/errors"
	pio "github.com/matzehuels/passrank/pkg/io"
	"github.com/matzehuels/passrank/pkg/observability"
	"github.com/matzehuels/passrank/pkg/render/markdown"
)

// api serves one finished analysis read-only. The result is never modified
// after construction, so handlers share it without locking.
type api struct {
	res    *analysis.Result
	logger *log.Logger
}

// newRouter builds the HTTP routes over res.
func newRouter(res *analysis.Result, logger *log.Logger) http.Handler {
	a := &api{res: res, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", a.health)
	r.Get("/report.md", a.report)
	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", a.summary)
		r.Get("/levels", a.levels)
		r.Get("/levels/{level}", a.level)
		r.Get("/movers", a.movers)
		r.Get("/trend", a.trend)
		r.Get("/results", a.results)
	})
	return r
}

// requestLogger logs each request and reports it to the HTTP hooks.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hooks := observability.HTTP()
			hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			dur := time.Since(start)
			hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), dur)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", dur,
				"id", middleware.GetReqID(r.Context()))
		})
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"run_id":  a.res.RunID,
	})
}

type summaryResponse struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
	Entities    int       `json:"entities"`
	Edges       int       `json:"edges"`
	Blocked     int       `json:"blocked"`
	Records     int       `json:"records"`
	Malformed   int       `json:"malformed"`
	Excluded    int       `json:"excluded"`
	MaxLevel    int       `json:"max_level"`
	ConvergedAt int       `json:"converged_at"`
	Levels      []int     `json:"levels"`
	Baseline    int       `json:"baseline"`
	Final       int       `json:"final"`
}

func (a *api) summary(w http.ResponseWriter, r *http.Request) {
	res := a.res
	writeJSON(w, http.StatusOK, summaryResponse{
		RunID:       res.RunID,
		Source:      res.Source,
		CreatedAt:   res.CreatedAt,
		Entities:    len(res.Labels),
		Edges:       res.Stats.Graph.Edges,
		Blocked:     res.Stats.Graph.Blocked,
		Records:     res.Stats.Records,
		Malformed:   res.Stats.Malformed,
		Excluded:    res.Stats.Excluded,
		MaxLevel:    res.Propagation.MaxLevel,
		ConvergedAt: res.Propagation.ConvergedAt,
		Levels:      res.Propagation.Levels(),
		Baseline:    res.Report.Baseline,
		Final:       res.Report.Final,
	})
}

func (a *api) levels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]int{"levels": a.res.Propagation.Levels()})
}

type levelResponse struct {
	Level   int              `json:"level"`
	Total   int              `json:"total"`
	Entries []analysis.Entry `json:"entries"`
}

func (a *api) level(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil {
		writeError(w, perrors.New(perrors.ErrCodeInvalidLevel, "level must be an integer"))
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := a.res.Level(level)
	if err != nil {
		writeError(w, err)
		return
	}
	total := len(entries)
	if limit > 0 && limit < total {
		entries = entries[:limit]
	}
	writeJSON(w, http.StatusOK, levelResponse{Level: level, Total: total, Entries: entries})
}

type moverView struct {
	Entity   string `json:"entity"`
	FromRank int    `json:"from_rank"`
	ToRank   int    `json:"to_rank"`
	Delta    int    `json:"delta"`
}

type moversResponse struct {
	Baseline int         `json:"baseline"`
	Final    int         `json:"final"`
	Movers   []moverView `json:"movers"`
}

func (a *api) movers(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rep := a.res.Report
	top := rep.Top
	if limit > 0 && limit < len(top) {
		top = top[:limit]
	}
	views := make([]moverView, len(top))
	for i, m := range top {
		views[i] = moverView{Entity: m.Entity, FromRank: m.FromRank, ToRank: m.ToRank, Delta: m.Delta}
	}
	writeJSON(w, http.StatusOK, moversResponse{Baseline: rep.Baseline, Final: rep.Final, Movers: views})
}

type trendResponse struct {
	Entity string `json:"entity"`
	Levels []int  `json:"levels"`
	Ranks  []int  `json:"ranks"`
}

func (a *api) trend(w http.ResponseWriter, r *http.Request) {
	entity := r.URL.Query().Get("entity")
	if entity == "" {
		writeError(w, perrors.New(perrors.ErrCodeInvalidInput, "missing entity parameter"))
		return
	}
	ranks, err := a.res.Trend(entity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trendResponse{Entity: entity, Levels: a.res.Propagation.Levels(), Ranks: ranks})
}

func (a *api) results(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	res := a.res
	if err := pio.WriteResults(&buf, res.Run(), res.Labels, res.Propagation, res.Report); err != nil {
		writeError(w, perrors.Wrap(perrors.ErrCodeInternal, err, "export results"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (a *api) report(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := markdown.Render(&buf, a.res, markdown.Options{}); err != nil {
		writeError(w, perrors.Wrap(perrors.ErrCodeInternal, err, "render report"))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// =============================================================================
// Responses
// =============================================================================

// limitParam parses the optional ?limit query parameter. Zero means no limit.
func limitParam(r *http.Request) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, perrors.New(perrors.ErrCodeInvalidInput, "limit must be a non-negative integer, got %q", s)
	}
	return n, nil
}

type errorBody struct {
	Error struct {
		Code    perrors.Code `json:"code"`
		Message string       `json:"message"`
	} `json:"error"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code perrors.Code) int {
	switch code {
	case perrors.ErrCodeInvalidInput, perrors.ErrCodeInvalidConfig, perrors.ErrCodeInvalidFormat,
		perrors.ErrCodeInvalidLevel, perrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case perrors.ErrCodeNotFound, perrors.ErrCodeFileNotFound, perrors.ErrCodeLevelNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := perrors.GetCode(err)
	if code == "" {
		code = perrors.ErrCodeInternal
	}
	var body errorBody
	body.Error.Code = code
	body.Error.Message = perrors.UserMessage(err)
	writeJSON(w, statusFor(code), body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
