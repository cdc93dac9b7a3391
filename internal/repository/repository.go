package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/portfolio/internal/models"
)

type UserRepo interface {
	// Create user
	// Uniqueness is guaranteed by the storage itself: on duplicate username has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, hashedPassword string) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

type ListProjectsOpts struct {
	Limit  int
	Offset int
}

type ProjectRepo interface {
	// Create project. ID, Active and timestamps are assigned by the repo
	CreateProject(ctx context.Context, p models.Project) (models.Project, error)

	// Get active project. Inactive or missing project: apperrors.ErrProjectNotFound
	GetProject(ctx context.Context, id uuid.UUID) (models.Project, error)

	// List active projects newest first and total count of active projects
	ListProjects(ctx context.Context, opts ListProjectsOpts) ([]models.Project, int, error)

	// Apply patch to active project and refresh updated_at
	// Inactive or missing project: apperrors.ErrProjectNotFound
	UpdateProject(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) (models.Project, error)

	// Mark active project inactive
	// Inactive or missing project: apperrors.ErrProjectNotFound
	DeactivateProject(ctx context.Context, id uuid.UUID) error
}

type Storage interface {
	User() UserRepo
	Project() ProjectRepo

	// Run fn in transaction: commit if fn returns nil, rollback otherwise
	// Reads inside fn see one snapshot: rows committed meanwhile by others are not visible
	InTx(ctx context.Context, fn func(Storage) error) error
}
