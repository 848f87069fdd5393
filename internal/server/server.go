// Package server exposes a loaded network over HTTP.
//
// The JSON API lists stations and lines; the /render routes serve the same
// artifacts the CLI writes, cached through the pipeline runner.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/leafstorm/railgen/pkg/buildinfo"
	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/network"
	"github.com/leafstorm/railgen/pkg/pipeline"
	"github.com/leafstorm/railgen/pkg/render/html"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Options configures a Server.
type Options struct {
	CORSOrigins []string
	Stylesheet  string
	Logger      *log.Logger
}

// Server serves one network. It is safe for concurrent use.
type Server struct {
	net    *network.Network
	digest string
	runner *pipeline.Runner
	opts   Options
}

// artifacts maps the /render file names to pipeline formats.
var artifacts = map[string]string{
	"listing.html":    pipeline.FormatHTML,
	"dump.txt":        pipeline.FormatText,
	"network.dot":     pipeline.FormatDOT,
	"network.svg":     pipeline.FormatSVG,
	"nodes.json":      pipeline.FormatNodes,
	"nodes.js":        pipeline.FormatNodesJS,
	"network.geojson": pipeline.FormatGeoJSON,
	"snapshot.json":   pipeline.FormatJSON,
}

// New returns a server for net. digest keys the rendered artifacts in the
// runner's cache; an empty digest renders on every request.
func New(net *network.Network, digest string, runner *pipeline.Runner, opts Options) *Server {
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{net: net, digest: digest, runner: runner, opts: opts}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/network", s.getNetwork)
		r.Get("/stations", s.listStations)
		r.Get("/stations/{slug}", s.getStation)
		r.Get("/lines", s.listLines)
		r.Get("/lines/{number}", s.getLine)
	})
	r.Get("/render/{file}", s.render)
	r.Get("/"+html.DefaultStylesheet, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		_, _ = w.Write(html.Stylesheet())
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, rgerrors.New(rgerrors.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.opts.Logger.Info("serving", "network", s.net.Name(), "addr", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return rgerrors.Wrap(rgerrors.ErrCodeInternal, err, "listen on %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return rgerrors.Wrap(rgerrors.ErrCodeInternal, err, "shutdown")
		}
		return ctx.Err()
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"network": s.net.Name(),
		"version": buildinfo.Get().Version,
	})
}

func (s *Server) getNetwork(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, summarize(s.net, s.digest))
}

func (s *Server) listStations(w http.ResponseWriter, _ *http.Request) {
	out := make([]StationView, 0, s.net.StationCount())
	for st := range s.net.Stations() {
		out = append(out, stationView(st))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getStation(w http.ResponseWriter, r *http.Request) {
	st, err := s.net.StationBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stationView(st))
}

func (s *Server) listLines(w http.ResponseWriter, r *http.Request) {
	out := make([]LineView, 0, s.net.LineCount())
	for ln := range s.net.Lines() {
		v, err := lineView(ln)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getLine(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		s.writeError(w, r, rgerrors.New(rgerrors.ErrCodeInvalidInput, "line number %q is not an integer", chi.URLParam(r, "number")))
		return
	}
	ln, err := s.net.Line(number)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := lineView(ln)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	format, ok := artifacts[file]
	if !ok {
		s.writeError(w, r, rgerrors.New(rgerrors.ErrCodeNotFound, "no artifact named %q", file))
		return
	}
	opts := pipeline.Options{
		Formats:    []string{format},
		Stylesheet: s.opts.Stylesheet,
		Generator:  buildinfo.Generator(),
		Indent:     true,
		Logger:     s.opts.Logger,
	}
	out, err := s.runner.Render(r.Context(), s.net, s.digest, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	_, _ = w.Write(out[format])
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

type errorDetail struct {
	Code    rgerrors.Code `json:"code"`
	Message string        `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := rgerrors.HTTPStatus(err)
	code := rgerrors.GetCode(err)
	if code == "" {
		code = rgerrors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.opts.Logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{
		Error:     errorDetail{Code: code, Message: rgerrors.UserMessage(err)},
		RequestID: RequestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
