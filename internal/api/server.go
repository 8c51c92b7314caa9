package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/cardpress/internal/articles"
	"github.com/dgallion1/cardpress/internal/config"
	"github.com/dgallion1/cardpress/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server is the HTTP API server for cardpress.
type Server struct {
	router       chi.Router
	articles     *articles.Service
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(svc *articles.Service, orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		articles:     svc,
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Route("/api/articles", func(r chi.Router) {
			r.Get("/", s.handleListArticles)
			r.Post("/", s.handleCreateArticle)
			r.Get("/{slug}", s.handleGetArticle)
			r.Put("/{slug}", s.handleUpdateArticle)
			r.Delete("/{slug}", s.handleDeleteArticle)
			r.Get("/{slug}/document", s.handleGetDocument)
			r.Put("/{slug}/document", s.handleSaveDocument)
		})

		r.Get("/api/documents/default", s.handleDefaultDocument)
		r.Post("/api/documents/render", s.handleRenderDocument)
		r.Post("/api/documents/parse", s.handleParseDocument)

		r.Get("/api/authors", s.handleListAuthors)
		r.Post("/api/authors", s.handleSaveAuthor)
		r.Get("/api/icons", s.handleListIcons)
		r.Post("/api/icons", s.handleSaveIcon)

		r.Post("/api/import", s.handleImport)
		r.Get("/api/import/{jobID}/status", s.handleImportStatus)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	depth := 0
	if s.orchestrator != nil {
		depth = s.orchestrator.QueueDepth()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "queue_depth": depth})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
