package handlers

import (
	"net/http"

	"github.com/nkiryanov/portfolio/internal/handlers/middleware"
	"github.com/nkiryanov/portfolio/internal/handlers/render"
	"github.com/nkiryanov/portfolio/internal/logger"
)

const defaultServiceName = "portfolio"

type RouterOptions struct {
	// Reported by 'GET /'
	ServiceName string
	Version     string

	// Allowed CORS origin, '*' if empty
	CORSOrigin string

	// Max request body size in bytes, no limit if zero
	BodyLimit int64
}

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	projectService projectService,
	logger logger.Logger,
	opts RouterOptions,
) http.Handler {
	if opts.ServiceName == "" {
		opts.ServiceName = defaultServiceName
	}

	withAuth := middleware.AuthMiddleware(authService, logger)

	auth := NewAuth(authService, logger)
	projects := NewProject(projectService, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", auth.register)
	mux.HandleFunc("POST /api/auth/login", auth.login)
	mux.Handle("GET /api/auth/profile", withAuth(http.HandlerFunc(auth.profile)))

	mux.HandleFunc("GET /api/projects", projects.list)
	mux.HandleFunc("GET /api/projects/{id}", projects.get)
	mux.Handle("POST /api/projects", withAuth(http.HandlerFunc(projects.create)))
	mux.Handle("PUT /api/projects/{id}", withAuth(http.HandlerFunc(projects.update)))
	mux.Handle("DELETE /api/projects/{id}", withAuth(http.HandlerFunc(projects.delete)))

	mux.Handle("GET /{$}", handleInfo(opts))

	// Anything else, including known paths with unknown methods
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		render.NotFound(w, "Route not found")
	})

	return chain(mux,
		middleware.LoggerMiddleware(logger),
		middleware.RecovererMiddleware(logger),
		middleware.CORSMiddleware(opts.CORSOrigin),
		middleware.BodyLimitMiddleware(opts.BodyLimit),
	)
}
