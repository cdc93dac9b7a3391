package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/portfolio/internal/apperrors"
	"github.com/nkiryanov/portfolio/internal/models"
	"github.com/nkiryanov/portfolio/internal/repository"
)

// ProjectRepo stores list fields (images, stack, tags) as JSON arrays in TEXT columns
type ProjectRepo struct {
	DB DBTX
}

const projectColumns = `id, title, description, images, stack, tags, author, demo_url, created_by, active, created_at, updated_at`

const createProject = `
INSERT INTO projects (` + projectColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (r *ProjectRepo) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	p.ID = uuid.New()
	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Images = nonNil(p.Images)
	p.Stack = nonNil(p.Stack)
	p.Tags = nonNil(p.Tags)

	_, err := r.DB.ExecContext(ctx, createProject,
		p.ID,
		p.Title,
		p.Description,
		encodeList(p.Images),
		encodeList(p.Stack),
		encodeList(p.Tags),
		p.Author,
		p.DemoURL,
		nullableUUID(p.CreatedBy),
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return models.Project{}, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

const getProject = `
SELECT ` + projectColumns + ` FROM projects
WHERE id = ? AND active
`

func (r *ProjectRepo) GetProject(ctx context.Context, id uuid.UUID) (models.Project, error) {
	return collectProject(r.DB.QueryRowContext(ctx, getProject, id))
}

func collectProject(row scanner) (models.Project, error) {
	p, err := scanProject(row)

	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, sql.ErrNoRows):
		return models.Project{}, apperrors.ErrProjectNotFound
	default:
		return models.Project{}, fmt.Errorf("db error: %w", err)
	}
}

const listProjects = `
SELECT ` + projectColumns + ` FROM projects
WHERE active
ORDER BY created_at DESC, id
LIMIT ? OFFSET ?
`

const countProjects = `SELECT count(*) FROM projects WHERE active`

func (r *ProjectRepo) ListProjects(ctx context.Context, opts repository.ListProjectsOpts) ([]models.Project, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, countProjects).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, listProjects, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	projects := make([]models.Project, 0, opts.Limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return projects, total, nil
}

// NULL parameters keep column values as is
const updateProject = `
UPDATE projects
SET title       = COALESCE(?, title),
    description = COALESCE(?, description),
    images      = COALESCE(?, images),
    stack       = COALESCE(?, stack),
    tags        = COALESCE(?, tags),
    author      = COALESCE(?, author),
    demo_url    = COALESCE(?, demo_url),
    updated_at  = ?
WHERE id = ? AND active
`

// Update and read back are one transaction: the row can't be deleted in between
func (r *ProjectRepo) UpdateProject(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) (p models.Project, err error) {
	err = atomic(ctx, r.DB, func(db DBTX) error {
		res, err := db.ExecContext(ctx, updateProject,
			patch.Title,
			patch.Description,
			patchList(patch.Images),
			patchList(patch.Stack),
			patchList(patch.Tags),
			patch.Author,
			patch.DemoURL,
			time.Now().UTC().Truncate(time.Microsecond),
			id,
		)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}

		p, err = collectProject(db.QueryRowContext(ctx, getProject, id))
		return err
	})

	return p, err
}

const deactivateProject = `
UPDATE projects
SET active = 0, updated_at = ?
WHERE id = ? AND active
`

func (r *ProjectRepo) DeactivateProject(ctx context.Context, id uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx, deactivateProject, time.Now().UTC().Truncate(time.Microsecond), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrProjectNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (models.Project, error) {
	var (
		p                   models.Project
		images, stack, tags string
		createdBy           sql.Null[uuid.UUID]
	)

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&images,
		&stack,
		&tags,
		&p.Author,
		&p.DemoURL,
		&createdBy,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return models.Project{}, err
	}

	if p.Images, err = decodeList(images); err != nil {
		return models.Project{}, err
	}
	if p.Stack, err = decodeList(stack); err != nil {
		return models.Project{}, err
	}
	if p.Tags, err = decodeList(tags); err != nil {
		return models.Project{}, err
	}

	if createdBy.Valid {
		p.CreatedBy = createdBy.V
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()

	return p, nil
}

func encodeList(s []string) string {
	b, _ := json.Marshal(nonNil(s)) // marshaling []string never fails
	return string(b)
}

// nil list means "leave as is" and becomes NULL
func patchList(s []string) *string {
	if s == nil {
		return nil
	}
	encoded := encodeList(s)
	return &encoded
}

func decodeList(raw string) ([]string, error) {
	list := []string{}
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("malformed list %q: %w", raw, err)
	}
	return list, nil
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
