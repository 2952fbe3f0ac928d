package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/folio-api/folio/internal/auth"
	"github.com/folio-api/folio/internal/contacts"
	"github.com/folio-api/folio/internal/observability"
	"github.com/folio-api/folio/internal/platform/httpx"
	"github.com/folio-api/folio/internal/projects"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthHandler     *auth.Handler
	ProjectsHandler *projects.Handler
	ContactsHandler *contacts.Handler
	UploadDir       string
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router for the API server.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.OK(w, http.StatusOK, "Portfolio API is running", map[string]string{
			"health": "/api/health",
		})
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/admin", params.AuthHandler.MountRoutes)
	r.Route("/api/projects", params.ProjectsHandler.MountRoutes)
	r.Route("/api/contact", params.ContactsHandler.MountRoutes)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.UploadDir != "" {
		fileServer := http.StripPrefix("/uploads/projects/", http.FileServer(http.Dir(params.UploadDir)))
		r.Handle("/uploads/projects/*", uploadsCacheHandler(fileServer))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "Route not found")
	})

	return r
}

// uploadsCacheHandler wraps the upload file server with Cache-Control headers
// so project images are cached by browsers for an hour.
func uploadsCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
