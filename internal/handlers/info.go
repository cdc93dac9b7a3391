package handlers

import (
	"net/http"

	"github.com/nkiryanov/portfolio/internal/handlers/render"
)

type InfoResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func handleInfo(opts RouterOptions) http.HandlerFunc {
	info := InfoResponse{
		Name:    opts.ServiceName,
		Version: opts.Version,
		Endpoints: map[string]string{
			"register": "POST /api/auth/register",
			"login":    "POST /api/auth/login",
			"profile":  "GET /api/auth/profile",
			"projects": "GET|POST /api/projects",
			"project":  "GET|PUT|DELETE /api/projects/{id}",
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, info)
	}
}
