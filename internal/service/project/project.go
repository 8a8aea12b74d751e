package project

import (
	"context"
	"fmt"
	"log/slog"

	domainproject "github.com/alanyang/product-catalog/internal/domain/project"
	portproject "github.com/alanyang/product-catalog/internal/port/project"
)

type Service struct {
	repo portproject.Repository
}

func NewService(repo portproject.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, np domainproject.NewProject) (domainproject.Project, error) {
	if err := np.Validate(); err != nil {
		return domainproject.Project{}, err
	}

	created, err := s.repo.Create(ctx, np)
	if err != nil {
		return domainproject.Project{}, fmt.Errorf("create project: %w", err)
	}
	slog.InfoContext(ctx, "project created", "project_id", created.ID, "name", created.ProjectName)
	return created, nil
}

// List returns every live project, newest first.
func (s *Service) List(ctx context.Context) ([]domainproject.Project, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if projects == nil {
		projects = []domainproject.Project{}
	}
	return projects, nil
}
