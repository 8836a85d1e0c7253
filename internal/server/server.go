// Package server exposes the rendered maps and the interaction session API
// over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/choropleth-cli/internal/choropleth"
	"github.com/sells-group/choropleth-cli/internal/interact"
	"github.com/sells-group/choropleth-cli/internal/model"
	"github.com/sells-group/choropleth-cli/internal/render"
)

// maxDimension bounds the viewport a client may request.
const maxDimension = 4096

// maxEventBytes bounds a pointer event request body.
const maxEventBytes = 4 << 10

// Options configures the server.
type Options struct {
	Width          float64
	Height         float64
	SessionTTL     time.Duration
	CacheSize      int
	CacheTTL       time.Duration
	AllowedOrigins []string

	// MaxSessions caps live sessions; 0 means no cap.
	MaxSessions int
	// SessionRate limits session creation per second across all
	// clients, with a burst of SessionBurst. 0 disables the limit.
	SessionRate  float64
	SessionBurst int
}

// Server serves one atlas. The atlas is shared read-only; per-viewer
// state lives in sessions.
type Server struct {
	atlas    *choropleth.Atlas
	opts     Options
	cache    *render.Cache
	sessions *Sessions
	creates  *rate.Limiter
	registry *prometheus.Registry
	metrics  *metrics
}

// New creates a Server. The default viewport is fitted eagerly so a bad
// atlas fails at startup rather than on the first request.
func New(a *choropleth.Atlas, opts Options) (*Server, error) {
	if _, err := render.NewScene(a, opts.Width, opts.Height); err != nil {
		return nil, eris.Wrap(err, "server: default scene")
	}

	s := &Server{
		atlas:    a,
		opts:     opts,
		cache:    render.NewCache(opts.CacheSize, opts.CacheTTL),
		sessions: NewSessions(a, opts.SessionTTL, opts.MaxSessions),
		creates:  rate.NewLimiter(rate.Inf, 0),
		registry: prometheus.NewRegistry(),
	}
	if opts.SessionRate > 0 {
		s.creates = rate.NewLimiter(rate.Limit(opts.SessionRate), max(opts.SessionBurst, 1))
	}
	s.metrics = newMetrics(s.registry, s.sessions)
	return s, nil
}

// Sessions returns the session store.
func (s *Server) Sessions() *Sessions { return s.sessions }

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(s.metrics.instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handlePage)
	r.Get("/health", s.handleHealth)
	r.Get("/manifest.yaml", s.handleManifest)
	r.Get("/maps/{file}", s.handleMap)
	r.Get("/trends/{file}", s.handleTrend)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.With(middleware.RequestSize(maxEventBytes)).Post("/{id}/events", s.handleEvent)
		r.Delete("/{id}", s.handleDeleteSession)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// viewport reads width and height query parameters, falling back to the
// configured size.
func (s *Server) viewport(r *http.Request) (float64, float64, error) {
	dim := func(name string, def float64) (float64, error) {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			return def, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || v > maxDimension {
			return 0, eris.Errorf("%s must be a number in (0, %d]", name, maxDimension)
		}
		return v, nil
	}
	w, err := dim("width", s.opts.Width)
	if err != nil {
		return 0, 0, err
	}
	h, err := dim("height", s.opts.Height)
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// cached serves a rendered document from the render cache.
func (s *Server) cached(w http.ResponseWriter, key, contentType string, fn func() ([]byte, error)) {
	data, hit, err := s.cache.GetOrRender(key, fn)
	s.metrics.cacheResult(hit)
	if err != nil {
		zap.L().Error("server: render failed", zap.String("key", key), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	_, _ = w.Write(data)
}

// atSize renders with a scene fitted to width x height.
func (s *Server) atSize(width, height float64, draw func(*render.Scene) ([]byte, error)) func() ([]byte, error) {
	return func() ([]byte, error) {
		sc, err := render.NewScene(s.atlas, width, height)
		if err != nil {
			return nil, err
		}
		return draw(sc)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	width, height, err := s.viewport(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	key := render.CacheKey("page", "html", width, height)
	s.cached(w, key, "text/html; charset=utf-8", s.atSize(width, height, func(sc *render.Scene) ([]byte, error) {
		var buf bytes.Buffer
		if err := render.WritePage(&buf, sc, true); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}))
}

// handleMap serves /maps/{map}.svg and /maps/{map}.geojson.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	name, ext, _ := strings.Cut(chi.URLParam(r, "file"), ".")
	kind, ok := model.ParseMapKind(name)
	if !ok {
		http.Error(w, "unknown map", http.StatusNotFound)
		return
	}

	switch ext {
	case "svg":
		width, height, err := s.viewport(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		key := render.CacheKey(string(kind), "svg", width, height)
		s.cached(w, key, "image/svg+xml", s.atSize(width, height, func(sc *render.Scene) ([]byte, error) {
			return render.SVG(sc, kind)
		}))
	case "geojson":
		key := render.CacheKey(string(kind), "geojson", s.opts.Width, s.opts.Height)
		s.cached(w, key, "application/geo+json", s.atSize(s.opts.Width, s.opts.Height, func(sc *render.Scene) ([]byte, error) {
			return render.GeoJSON(sc, kind)
		}))
	default:
		http.Error(w, "unknown format", http.StatusNotFound)
	}
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	id, ext, _ := strings.Cut(chi.URLParam(r, "file"), ".")
	if ext != "svg" {
		http.Error(w, "unknown format", http.StatusNotFound)
		return
	}
	series, ok := s.atlas.Gini.Series(id)
	if !ok {
		http.Error(w, "no gini data", http.StatusNotFound)
		return
	}
	key := render.CacheKey("trend-"+model.JoinKey(id), "svg", render.TrendWidth.Points(), render.TrendHeight.Points())
	s.cached(w, key, "image/svg+xml", func() ([]byte, error) {
		var buf bytes.Buffer
		if err := render.WriteTrend(&buf, series, s.atlas.Gini.LatestYear()); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

func (s *Server) handleManifest(w http.ResponseWriter, _ *http.Request) {
	key := render.CacheKey("manifest", "yaml", s.opts.Width, s.opts.Height)
	s.cached(w, key, "application/yaml", s.atSize(s.opts.Width, s.opts.Height, func(sc *render.Scene) ([]byte, error) {
		var buf bytes.Buffer
		if err := render.NewManifest(sc).WriteYAML(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"towns":    s.atlas.Stats.Towns,
		"sessions": s.sessions.Len(),
		"cache":    s.cache.Stats(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	if !s.creates.Allow() {
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many new sessions"})
		return
	}
	sess, err := s.sessions.Create()
	if eris.Is(err, ErrSessionLimit) {
		zap.L().Warn("server: session limit reached", zap.Int("max", s.sessions.Max()))
		w.Header().Set("Retry-After", strconv.Itoa(max(int(s.sessions.TTL().Seconds()), 1)))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "session limit reached"})
		return
	}
	if err != nil {
		zap.L().Error("server: create session", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create session failed"})
		return
	}
	zap.L().Debug("server: session created", zap.String("session", sess.ID))
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":            sess.ID,
		"ttl_secs":      int(s.sessions.TTL().Seconds()),
		"shape_count":   len(s.atlas.Towns),
		"created":       sess.Created,
		"latest_year":   s.atlas.Gini.LatestYear(),
		"fallback_fill": s.atlas.Palette.Fallback,
	})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var ev interact.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		var tooLarge *http.MaxBytesError
		if eris.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := ev.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	out, err := s.sessions.Dispatch(id, ev)
	switch {
	case eris.Is(err, ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	case eris.Is(err, interact.ErrUnknownShape):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown shape"})
		return
	case err != nil:
		zap.L().Error("server: dispatch event", zap.String("session", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "dispatch failed"})
		return
	}

	s.metrics.events.WithLabelValues(string(ev.Map), string(ev.Kind)).Inc()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}
