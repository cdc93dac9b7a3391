package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/portfolio/internal/apperrors"
	"github.com/nkiryanov/portfolio/internal/models"
	"github.com/nkiryanov/portfolio/internal/repository"
)

type ProjectRepo struct {
	DB DBTX
}

const projectColumns = `id, title, description, images, stack, tags, author, demo_url, created_by, active, created_at, updated_at`

const createProject = `-- name: CreateProject
INSERT INTO projects (id, title, description, images, stack, tags, author, demo_url, created_by, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10, $10)
RETURNING ` + projectColumns

func (r *ProjectRepo) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	rows, _ := r.DB.Query(ctx, createProject,
		uuid.New(),
		p.Title,
		p.Description,
		nonNil(p.Images),
		nonNil(p.Stack),
		nonNil(p.Tags),
		p.Author,
		p.DemoURL,
		nullableUUID(p.CreatedBy),
		now,
	)
	project, err := pgx.CollectOneRow(rows, rowToProject)
	if err != nil {
		return project, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

const getProject = `-- name: GetProject
SELECT ` + projectColumns + ` FROM projects
WHERE id = $1 AND active
`

func (r *ProjectRepo) GetProject(ctx context.Context, id uuid.UUID) (models.Project, error) {
	rows, _ := r.DB.Query(ctx, getProject, id)
	return collectProject(rows)
}

const listProjects = `-- name: ListProjects
SELECT ` + projectColumns + ` FROM projects
WHERE active
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2
`

const countProjects = `-- name: CountProjects
SELECT count(*) FROM projects WHERE active
`

func (r *ProjectRepo) ListProjects(ctx context.Context, opts repository.ListProjectsOpts) ([]models.Project, int, error) {
	var total int
	if err := r.DB.QueryRow(ctx, countProjects).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	rows, _ := r.DB.Query(ctx, listProjects, opts.Limit, opts.Offset)
	projects, err := pgx.CollectRows(rows, rowToProject)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return projects, total, nil
}

// NULL parameters keep column values as is
const updateProject = `-- name: UpdateProject
UPDATE projects
SET title       = COALESCE($2, title),
    description = COALESCE($3, description),
    images      = COALESCE($4, images),
    stack       = COALESCE($5, stack),
    tags        = COALESCE($6, tags),
    author      = COALESCE($7, author),
    demo_url    = COALESCE($8, demo_url),
    updated_at  = $9
WHERE id = $1 AND active
RETURNING ` + projectColumns

func (r *ProjectRepo) UpdateProject(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) (models.Project, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	rows, _ := r.DB.Query(ctx, updateProject,
		id,
		patch.Title,
		patch.Description,
		patch.Images, // nil slice is sent as NULL
		patch.Stack,
		patch.Tags,
		patch.Author,
		patch.DemoURL,
		now,
	)
	return collectProject(rows)
}

const deactivateProject = `-- name: DeactivateProject
UPDATE projects
SET active = FALSE, updated_at = $2
WHERE id = $1 AND active
`

func (r *ProjectRepo) DeactivateProject(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deactivateProject, id, time.Now().UTC().Truncate(time.Microsecond))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrProjectNotFound
	}

	return nil
}

func collectProject(rows pgx.Rows) (models.Project, error) {
	project, err := pgx.CollectOneRow(rows, rowToProject)

	switch {
	case err == nil:
		return project, nil
	case errors.Is(err, pgx.ErrNoRows):
		return project, apperrors.ErrProjectNotFound
	default:
		return project, fmt.Errorf("db error: %w", err)
	}
}

func rowToProject(row pgx.CollectableRow) (models.Project, error) {
	var (
		p         models.Project
		createdBy *uuid.UUID
	)

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Images,
		&p.Stack,
		&p.Tags,
		&p.Author,
		&p.DemoURL,
		&createdBy,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if createdBy != nil {
		p.CreatedBy = *createdBy
	}

	return p, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
