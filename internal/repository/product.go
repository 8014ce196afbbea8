package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodegamx/storefront/internal/domain/product"
)

const (
	productColumns = `id, name, description, price, image, style, origin, country`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products
		WHERE (cardinality($1::text[]) = 0 OR style = ANY($1))
		  AND (cardinality($2::text[]) = 0 OR origin = ANY($2))
		ORDER BY id`

	searchProductsSQL = `SELECT ` + productColumns + ` FROM products
		WHERE name ILIKE $1 OR style ILIKE $1 OR origin ILIKE $1 OR country ILIKE $1
		ORDER BY id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	insertProductSQL = `INSERT INTO products (name, description, price, image, style, origin, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns catalog products matching the filter, ordered by ID. Empty
// filter slices match everything.
func (r *ProductRepository) List(ctx context.Context, f product.Filter) ([]product.Product, error) {
	styles := f.Styles
	if styles == nil {
		styles = []string{}
	}
	origins := f.Origins
	if origins == nil {
		origins = []string{}
	}

	rows, err := r.pool.Query(ctx, listProductsSQL, styles, origins)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Search performs a case-insensitive substring match over name, style,
// origin, and country.
func (r *ProductRepository) Search(ctx context.Context, query string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, searchProductsSQL, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// Create inserts a catalog product and returns its generated ID.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertProductSQL,
		p.Name, p.Description, p.Price, p.Image, p.Style, p.Origin, p.Country,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating product %q: %w", p.Name, err)
	}
	p.ID = id
	return id, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Style, &p.Origin, &p.Country)
	return p, err
}
