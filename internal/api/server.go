// Package api exposes the scene store and SVG renderer over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/RainBoltz/v-network-graph/pkg/cache"
	"github.com/RainBoltz/v-network-graph/pkg/layout"
	"github.com/RainBoltz/v-network-graph/pkg/render/svg"
	"github.com/RainBoltz/v-network-graph/pkg/scene"
	"github.com/RainBoltz/v-network-graph/pkg/state"
	"github.com/RainBoltz/v-network-graph/pkg/store"
)

// maxBodyBytes caps scene upload size.
const maxBodyBytes = 8 << 20

// Server handles scene CRUD and rendering requests.
type Server struct {
	store store.Store
	cache cache.Cache
	log   *charmlog.Logger
	ttl   time.Duration
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *charmlog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithCacheTTL sets the rendered-artifact cache lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Server) { s.ttl = ttl }
}

// NewServer creates a server over a scene store and an artifact cache.
func NewServer(st store.Store, c cache.Cache, opts ...Option) *Server {
	s := &Server{
		store: st,
		cache: c,
		log:   charmlog.New(io.Discard),
		ttl:   time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/scenes", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/svg", s.handleRenderSVG)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// createRequest is the POST /scenes payload.
type createRequest struct {
	Name  string       `json:"name,omitempty"`
	Scene *scene.Scene `json:"scene"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode scene: %w", err))
		return
	}
	if req.Scene == nil {
		s.writeError(w, http.StatusBadRequest, errors.New("missing scene"))
		return
	}
	if err := req.Scene.Options.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	// A scene that cannot build a topology is rejected up front.
	if _, _, err := req.Scene.Build(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	rec := &store.Record{Name: req.Name, Scene: req.Scene}
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	sums, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if sums == nil {
		sums = []store.Summary{}
	}
	s.writeJSON(w, http.StatusOK, sums)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	sc := rec.Scene
	engine := r.URL.Query().Get("layout")
	if engine != "" {
		if err := layout.Apply(r.Context(), sc, layout.Options{Engine: engine}); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	sceneData, err := scene.MarshalScene(sc)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	key := cache.ArtifactKey("svg", sceneData)

	if data, ok, err := s.cache.Get(r.Context(), key); err == nil && ok {
		s.writeSVG(w, data, true)
		return
	} else if err != nil {
		s.log.Warn("artifact cache get failed", "err", err)
	}

	eng, err := state.FromScene(sc)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	data := svg.Render(sc, eng, svg.WithNodeLabels())

	if err := s.cache.Set(r.Context(), key, data, s.ttl); err != nil {
		s.log.Warn("artifact cache set failed", "err", err)
	}
	s.writeSVG(w, data, false)
}

func (s *Server) writeSVG(w http.ResponseWriter, data []byte, cached bool) {
	w.Header().Set("Content-Type", "image/svg+xml")
	if cached {
		w.Header().Set("X-Cache", "hit")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeError(w, http.StatusInternalServerError, err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		s.log.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "err", err)
	}
}
