package project

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgeventbus "github.com/alanyang/product-catalog/internal/adapter/postgres/eventbus"
	"github.com/alanyang/product-catalog/internal/domain/event"
	domainproject "github.com/alanyang/product-catalog/internal/domain/project"
	portproject "github.com/alanyang/product-catalog/internal/port/project"
)

var _ portproject.Repository = (*Repository)(nil)

const selectColumns = `id, period_month, velocity_pt, project_name, project_description, created_at, updated_at, deleted_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, np domainproject.NewProject) (domainproject.Project, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domainproject.Project{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx,
		`INSERT INTO projects (period_month, velocity_pt, project_name, project_description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+selectColumns,
		np.PeriodMonth, np.VelocityPt, np.ProjectName, np.ProjectDescription,
	)
	out, err := scanProject(row)
	if err != nil {
		return domainproject.Project{}, fmt.Errorf("insert project: %w", err)
	}

	if err := pgeventbus.Notify(ctx, tx, event.New(event.TypeProjectCreated, fmt.Sprint(out.ID))); err != nil {
		return domainproject.Project{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domainproject.Project{}, fmt.Errorf("commit project: %w", err)
	}
	return out, nil
}

func (r *Repository) List(ctx context.Context) ([]domainproject.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM projects WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []domainproject.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project rows: %w", err)
	}
	return projects, nil
}

func scanProject(row pgx.Row) (domainproject.Project, error) {
	var p domainproject.Project
	err := row.Scan(
		&p.ID, &p.PeriodMonth, &p.VelocityPt, &p.ProjectName, &p.ProjectDescription,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	return p, err
}
