package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alanyang/product-catalog/internal/domain/event"
	domainproduct "github.com/alanyang/product-catalog/internal/domain/product"
	porteventbus "github.com/alanyang/product-catalog/internal/port/eventbus"
	portproduct "github.com/alanyang/product-catalog/internal/port/product"
)

var _ portproduct.Repository = (*ProductRepository)(nil)

type storedProduct struct {
	p   domainproduct.Product
	seq uint64
}

// ProductRepository keeps products in a map. Like the Postgres schema it
// enforces name and SKU uniqueness on write, so races that slip past the
// use-case checks still fail with the duplicate errors.
type ProductRepository struct {
	mu    sync.RWMutex
	rows  map[uuid.UUID]storedProduct
	seq   uint64
	bus   porteventbus.EventBus
	clock func() time.Time
}

// NewProductRepository returns an empty store. bus may be nil.
func NewProductRepository(bus porteventbus.EventBus) *ProductRepository {
	return &ProductRepository{
		rows:  make(map[uuid.UUID]storedProduct),
		bus:   bus,
		clock: func() time.Time { return time.Now().UTC() },
	}
}

func (r *ProductRepository) FindAll(_ context.Context) ([]domainproduct.Product, error) {
	return r.filter(func(domainproduct.Product) bool { return true }), nil
}

func (r *ProductRepository) FindByID(_ context.Context, id uuid.UUID) (domainproduct.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	return row.p, ok, nil
}

func (r *ProductRepository) FindByName(_ context.Context, name string) (domainproduct.Product, bool, error) {
	return r.first(func(p domainproduct.Product) bool { return p.Name == name })
}

func (r *ProductRepository) FindBySKU(_ context.Context, sku string) (domainproduct.Product, bool, error) {
	return r.first(func(p domainproduct.Product) bool { return p.SKU != nil && *p.SKU == sku })
}

func (r *ProductRepository) FindByCategory(_ context.Context, category string) ([]domainproduct.Product, error) {
	return r.filter(func(p domainproduct.Product) bool {
		return p.Category != nil && *p.Category == category
	}), nil
}

func (r *ProductRepository) FindActive(_ context.Context) ([]domainproduct.Product, error) {
	return r.filter(func(p domainproduct.Product) bool { return p.IsActive }), nil
}

func (r *ProductRepository) Create(ctx context.Context, np domainproduct.NewProduct) (domainproduct.Product, error) {
	r.mu.Lock()
	if err := r.checkUnique(uuid.Nil, np.Name, np.SKU); err != nil {
		r.mu.Unlock()
		return domainproduct.Product{}, err
	}
	now := r.clock()
	p := domainproduct.Product{
		ID:          uuid.New(),
		Name:        np.Name,
		Description: np.Description,
		Price:       np.Price,
		Quantity:    np.Quantity,
		Category:    np.Category,
		SKU:         np.SKU,
		IsActive:    np.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.seq++
	r.rows[p.ID] = storedProduct{p: p, seq: r.seq}
	r.mu.Unlock()

	r.publish(ctx, event.TypeProductCreated, p.ID)
	return p, nil
}

func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, patch domainproduct.Patch) (domainproduct.Product, bool, error) {
	r.mu.Lock()
	row, ok := r.rows[id]
	if !ok {
		r.mu.Unlock()
		return domainproduct.Product{}, false, nil
	}
	next := patch.Apply(row.p)
	if err := r.checkUnique(id, next.Name, next.SKU); err != nil {
		r.mu.Unlock()
		return domainproduct.Product{}, false, err
	}
	next.UpdatedAt = r.clock()
	row.p = next
	r.rows[id] = row
	r.mu.Unlock()

	r.publish(ctx, event.TypeProductUpdated, id)
	return next, true, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	_, ok := r.rows[id]
	delete(r.rows, id)
	r.mu.Unlock()

	if ok {
		r.publish(ctx, event.TypeProductDeleted, id)
	}
	return ok, nil
}

func (r *ProductRepository) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rows[id]
	return ok, nil
}

func (r *ProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.rows)), nil
}

// checkUnique must be called with mu held. self is excluded from the scan.
// A name clash anywhere wins over an SKU clash.
func (r *ProductRepository) checkUnique(self uuid.UUID, name string, sku *string) error {
	for id, row := range r.rows {
		if id != self && row.p.Name == name {
			return domainproduct.ErrDuplicateName
		}
	}
	if sku == nil {
		return nil
	}
	for id, row := range r.rows {
		if id != self && row.p.SKU != nil && *row.p.SKU == *sku {
			return domainproduct.ErrDuplicateSKU
		}
	}
	return nil
}

func (r *ProductRepository) first(match func(domainproduct.Product) bool) (domainproduct.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, row := range r.rows {
		if match(row.p) {
			return row.p, true, nil
		}
	}
	return domainproduct.Product{}, false, nil
}

// filter returns matching products newest first.
func (r *ProductRepository) filter(match func(domainproduct.Product) bool) []domainproduct.Product {
	r.mu.RLock()
	rows := make([]storedProduct, 0, len(r.rows))
	for _, row := range r.rows {
		if match(row.p) {
			rows = append(rows, row)
		}
	}
	r.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })
	out := make([]domainproduct.Product, len(rows))
	for i, row := range rows {
		out[i] = row.p
	}
	return out
}

func (r *ProductRepository) publish(ctx context.Context, t event.Type, id uuid.UUID) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, event.New(t, id.String())); err != nil {
		slog.ErrorContext(ctx, "failed to publish product event", "type", t, "product_id", id, "error", err)
	}
}
