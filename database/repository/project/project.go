package projectRepo

import (
	"context"

	"qartelbot/models"
)

// ProjectRepository stores portfolio projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	// List returns projects oldest first.
	List(ctx context.Context) ([]models.Project, error)
	Delete(ctx context.Context, id string) error
}
