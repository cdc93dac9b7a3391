package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/portfolio/internal/apperrors"
	"github.com/nkiryanov/portfolio/internal/handlers/render"
	"github.com/nkiryanov/portfolio/internal/handlers/userctx"
	"github.com/nkiryanov/portfolio/internal/logger"
	"github.com/nkiryanov/portfolio/internal/models"
	"github.com/nkiryanov/portfolio/internal/service/project"
)

type projectService interface {
	Create(ctx context.Context, p models.Project, createdBy uuid.UUID) (models.Project, error)
	Get(ctx context.Context, id uuid.UUID) (models.Project, error)
	List(ctx context.Context, page int, limit int) ([]models.Project, models.Page, error)
	Update(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) (models.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProjectResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Images      []string   `json:"images"`
	Stack       []string   `json:"stack"`
	Tags        []string   `json:"tags"`
	Author      string     `json:"author"`
	DemoURL     string     `json:"demo_url"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newProjectResponse(p models.Project) ProjectResponse {
	res := ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Images:      nonNil(p.Images),
		Stack:       nonNil(p.Stack),
		Tags:        nonNil(p.Tags),
		Author:      p.Author,
		DemoURL:     p.DemoURL,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.CreatedBy != uuid.Nil {
		res.CreatedBy = &p.CreatedBy
	}
	return res
}

type PaginationResponse struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

type ProjectHandler struct {
	projectService projectService
	logger         logger.Logger
}

func NewProject(projectService projectService, l logger.Logger) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, logger: l}
}

func (h *ProjectHandler) list(w http.ResponseWriter, r *http.Request) {
	type ListQuery struct {
		Page  int `json:"page" validate:"min=1"`
		Limit int `json:"limit" validate:"min=1,max=100"`
	}
	type ListResponse struct {
		Projects   []ProjectResponse  `json:"projects"`
		Pagination PaginationResponse `json:"pagination"`
	}

	query := ListQuery{Page: 1, Limit: project.DefaultPageLimit}
	params := []struct {
		name string
		dst  *int
	}{
		{"page", &query.Page},
		{"limit", &query.Limit},
	}
	for _, param := range params {
		raw := r.URL.Query().Get(param.name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			render.ValidationError(w, "Query parameter '"+param.name+"' must be a positive integer")
			return
		}
		*param.dst = value
	}
	if err := render.Validate(w, query); err != nil {
		return
	}

	projects, page, err := h.projectService.List(r.Context(), query.Page, query.Limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res := ListResponse{
		Projects: make([]ProjectResponse, 0, len(projects)),
		Pagination: PaginationResponse{
			Total:      page.Total,
			Page:       page.Page,
			Limit:      page.Limit,
			TotalPages: page.TotalPages,
		},
	}
	for _, p := range projects {
		res.Projects = append(res.Projects, newProjectResponse(p))
	}

	render.JSON(w, res)
}

func (h *ProjectHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	p, err := h.projectService.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, struct {
		Project ProjectResponse `json:"project"`
	}{Project: newProjectResponse(p)})
}

type ProjectMutationResponse struct {
	Message string          `json:"message"`
	Project ProjectResponse `json:"project"`
}

func (h *ProjectHandler) create(w http.ResponseWriter, r *http.Request) {
	type CreateRequest struct {
		Title       string   `json:"title" validate:"required,notblank,max=255"`
		Description string   `json:"description"`
		Images      []string `json:"images"`
		Stack       []string `json:"stack"`
		Tags        []string `json:"tags"`
		Author      string   `json:"author" validate:"max=255"`
		DemoURL     string   `json:"demo_url" validate:"omitempty,url"`
	}

	identity, ok := userctx.FromContext(r.Context())
	if !ok {
		h.logger.Error("project create requested without identity in context")
		render.InternalError(w)
		return
	}

	data, err := render.BindAndValidate[CreateRequest](w, r)
	if err != nil {
		return
	}

	p, err := h.projectService.Create(r.Context(), models.Project{
		Title:       data.Title,
		Description: data.Description,
		Images:      data.Images,
		Stack:       data.Stack,
		Tags:        data.Tags,
		Author:      data.Author,
		DemoURL:     data.DemoURL,
	}, identity.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSONWithStatus(w, ProjectMutationResponse{
		Message: "Project created successfully",
		Project: newProjectResponse(p),
	}, http.StatusCreated)
}

func (h *ProjectHandler) update(w http.ResponseWriter, r *http.Request) {
	// Absent (or null) fields keep their values
	type UpdateRequest struct {
		Title       *string  `json:"title" validate:"omitnil,notblank,max=255"`
		Description *string  `json:"description"`
		Images      []string `json:"images"`
		Stack       []string `json:"stack"`
		Tags        []string `json:"tags"`
		Author      *string  `json:"author" validate:"omitnil,max=255"`
		DemoURL     *string  `json:"demo_url" validate:"omitnil,url_or_empty"`
	}

	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	data, err := render.BindAndValidate[UpdateRequest](w, r)
	if err != nil {
		return
	}

	p, err := h.projectService.Update(r.Context(), id, models.ProjectPatch{
		Title:       data.Title,
		Description: data.Description,
		Images:      data.Images,
		Stack:       data.Stack,
		Tags:        data.Tags,
		Author:      data.Author,
		DemoURL:     data.DemoURL,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, ProjectMutationResponse{
		Message: "Project updated successfully",
		Project: newProjectResponse(p),
	})
}

func (h *ProjectHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	if err := h.projectService.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, struct {
		Message string `json:"message"`
	}{Message: "Project deleted successfully"})
}

// Malformed id can't match any project, so it is 'not found' as well
func (h *ProjectHandler) projectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.NotFound(w, "Project not found")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ProjectHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperrors.ErrProjectNotFound):
		render.NotFound(w, "Project not found")
	case errors.Is(err, apperrors.ErrProjectTitleRequired):
		render.ValidationError(w, "Title is required")
	default:
		h.logger.Error("project request failed", "method", r.Method, "uri", r.RequestURI, "error", err)
		render.InternalError(w)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
