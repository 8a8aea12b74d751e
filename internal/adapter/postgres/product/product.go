package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	pgeventbus "github.com/alanyang/product-catalog/internal/adapter/postgres/eventbus"
	"github.com/alanyang/product-catalog/internal/domain/event"
	domainproduct "github.com/alanyang/product-catalog/internal/domain/product"
	portproduct "github.com/alanyang/product-catalog/internal/port/product"
)

var _ portproduct.Repository = (*Repository)(nil)

const (
	selectColumns = `id, name, description, price, quantity, category, sku, is_active, created_at, updated_at`

	uniqueViolation = "23505"
	nameConstraint  = "products_name_key"
	skuConstraint   = "products_sku_key"
)

// Repository stores products in Postgres. Every write runs in a transaction
// that also issues the matching change notification.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) FindAll(ctx context.Context) ([]domainproduct.Product, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM products ORDER BY created_at DESC`)
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (domainproduct.Product, bool, error) {
	return r.one(ctx, `SELECT `+selectColumns+` FROM products WHERE id = $1`, id)
}

func (r *Repository) FindByName(ctx context.Context, name string) (domainproduct.Product, bool, error) {
	return r.one(ctx, `SELECT `+selectColumns+` FROM products WHERE name = $1`, name)
}

func (r *Repository) FindBySKU(ctx context.Context, sku string) (domainproduct.Product, bool, error) {
	return r.one(ctx, `SELECT `+selectColumns+` FROM products WHERE sku = $1`, sku)
}

func (r *Repository) FindByCategory(ctx context.Context, category string) ([]domainproduct.Product, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM products WHERE category = $1 ORDER BY created_at DESC`, category)
}

func (r *Repository) FindActive(ctx context.Context) ([]domainproduct.Product, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM products WHERE is_active ORDER BY created_at DESC`)
}

func (r *Repository) Create(ctx context.Context, np domainproduct.NewProduct) (domainproduct.Product, error) {
	query := `
		INSERT INTO products (name, description, price, quantity, category, sku, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + selectColumns

	var created domainproduct.Product
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = scanProduct(tx.QueryRow(ctx, query,
			np.Name, np.Description, np.Price.Float64(), np.Quantity.Int(),
			np.Category, np.SKU, np.IsActive,
		))
		if err != nil {
			return err
		}
		return pgeventbus.Notify(ctx, tx, event.New(event.TypeProductCreated, created.ID.String()))
	})
	if err != nil {
		return domainproduct.Product{}, fmt.Errorf("inserting product: %w", mapError(err))
	}
	return created, nil
}

// Update writes only the fields set in patch. updated_at is always refreshed,
// so an empty patch still touches the row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, patch domainproduct.Patch) (domainproduct.Product, bool, error) {
	sets, args := buildSet(patch)
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), selectColumns)

	var (
		updated domainproduct.Product
		found   bool
	)
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = scanProduct(tx.QueryRow(ctx, query, args...))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return pgeventbus.Notify(ctx, tx, event.New(event.TypeProductUpdated, id.String()))
	})
	if err != nil {
		return domainproduct.Product{}, false, fmt.Errorf("updating product: %w", mapError(err))
	}
	if !found {
		return domainproduct.Product{}, false, nil
	}
	return updated, true, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		if !deleted {
			return nil
		}
		return pgeventbus.Notify(ctx, tx, event.New(event.TypeProductDeleted, id.String()))
	})
	if err != nil {
		return false, fmt.Errorf("deleting product: %w", err)
	}
	return deleted, nil
}

func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking product existence: %w", err)
	}
	return exists, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

func (r *Repository) one(ctx context.Context, query string, arg any) (domainproduct.Product, bool, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainproduct.Product{}, false, nil
		}
		return domainproduct.Product{}, false, fmt.Errorf("querying product: %w", err)
	}
	return p, true, nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domainproduct.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	products := []domainproduct.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}
	return products, nil
}

func (r *Repository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanProduct(row pgx.Row) (domainproduct.Product, error) {
	var (
		p        domainproduct.Product
		price    float64
		quantity int
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &price, &quantity,
		&p.Category, &p.SKU, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return domainproduct.Product{}, err
	}

	var err error
	if p.Price, err = domainproduct.NewPrice(price); err != nil {
		return domainproduct.Product{}, fmt.Errorf("product %s: %w", p.ID, err)
	}
	if p.Quantity, err = domainproduct.NewQuantity(quantity); err != nil {
		return domainproduct.Product{}, fmt.Errorf("product %s: %w", p.ID, err)
	}
	return p, nil
}

func buildSet(patch domainproduct.Patch) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if v, ok := patch.Name.Get(); ok {
		add("name", v)
	}
	if v, ok := patch.Description.Get(); ok {
		add("description", v)
	}
	if v, ok := patch.Price.Get(); ok {
		add("price", v.Float64())
	}
	if v, ok := patch.Quantity.Get(); ok {
		add("quantity", v.Int())
	}
	if v, ok := patch.Category.Get(); ok {
		add("category", v)
	}
	if v, ok := patch.SKU.Get(); ok {
		add("sku", v)
	}
	if v, ok := patch.IsActive.Get(); ok {
		add("is_active", v)
	}
	sets = append(sets, "updated_at = NOW()")
	return sets, args
}

// mapError turns unique violations into the domain duplicate errors.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case nameConstraint:
		return domainproduct.ErrDuplicateName
	case skuConstraint:
		return domainproduct.ErrDuplicateSKU
	}
	return err
}
