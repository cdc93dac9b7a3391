package project

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/portfolio/internal/apperrors"
	"github.com/nkiryanov/portfolio/internal/models"
	"github.com/nkiryanov/portfolio/internal/repository"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type ProjectService struct {
	// Storage to access long term data
	storage repository.Storage
}

func NewService(storage repository.Storage) *ProjectService {
	return &ProjectService{
		storage: storage,
	}
}

// Create active project. Title is trimmed and required
func (s *ProjectService) Create(ctx context.Context, p models.Project, createdBy uuid.UUID) (models.Project, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return models.Project{}, apperrors.ErrProjectTitleRequired
	}
	p.CreatedBy = createdBy

	return s.storage.Project().CreateProject(ctx, p)
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (models.Project, error) {
	return s.storage.Project().GetProject(ctx, id)
}

// List page of active projects, newest first.
// Page is counted from 1; limit falls back to DefaultPageLimit and is capped by MaxPageLimit
func (s *ProjectService) List(ctx context.Context, page int, limit int) ([]models.Project, models.Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	limit = min(limit, MaxPageLimit)

	var (
		projects []models.Project
		total    int
	)
	pagination := models.NewPage(0, page, limit)

	// Count and page are read from one snapshot (storage transactions are REPEATABLE READ or stricter)
	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		var err error
		projects, total, err = tx.Project().ListProjects(ctx, repository.ListProjectsOpts{
			Limit:  limit,
			Offset: pagination.Offset(),
		})
		return err
	})
	if err != nil {
		return nil, models.Page{}, fmt.Errorf("can't list projects. Err: %w", err)
	}

	return projects, models.NewPage(total, page, limit), nil
}

// Update applies patch to active project. Title, if given, must not be blank
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) (models.Project, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.Project{}, apperrors.ErrProjectTitleRequired
		}
		patch.Title = &title
	}

	return s.storage.Project().UpdateProject(ctx, id, patch)
}

// Delete is soft: project becomes inactive and disappears from every read
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.storage.Project().DeactivateProject(ctx, id)
}
