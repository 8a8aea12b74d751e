package memory

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/alanyang/product-catalog/internal/domain/event"
	domainproject "github.com/alanyang/product-catalog/internal/domain/project"
	porteventbus "github.com/alanyang/product-catalog/internal/port/eventbus"
	portproject "github.com/alanyang/product-catalog/internal/port/project"
)

var _ portproject.Repository = (*ProjectRepository)(nil)

type ProjectRepository struct {
	mu     sync.RWMutex
	rows   []domainproject.Project
	nextID int64
	bus    porteventbus.EventBus
}

// NewProjectRepository returns an empty store. bus may be nil.
func NewProjectRepository(bus porteventbus.EventBus) *ProjectRepository {
	return &ProjectRepository{bus: bus}
}

func (r *ProjectRepository) Create(ctx context.Context, np domainproject.NewProject) (domainproject.Project, error) {
	now := time.Now().UTC()

	r.mu.Lock()
	r.nextID++
	p := domainproject.Project{
		ID:                 r.nextID,
		PeriodMonth:        np.PeriodMonth,
		VelocityPt:         np.VelocityPt,
		ProjectName:        np.ProjectName,
		ProjectDescription: np.ProjectDescription,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	r.rows = append(r.rows, p)
	r.mu.Unlock()

	if r.bus != nil {
		if err := r.bus.Publish(ctx, event.New(event.TypeProjectCreated, strconv.FormatInt(p.ID, 10))); err != nil {
			slog.ErrorContext(ctx, "failed to publish project event", "project_id", p.ID, "error", err)
		}
	}
	return p, nil
}

func (r *ProjectRepository) List(_ context.Context) ([]domainproject.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domainproject.Project, 0, len(r.rows))
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].DeletedAt == nil {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}
