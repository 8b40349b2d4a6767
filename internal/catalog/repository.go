package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/NidinaKoirala/artisan-market/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// ShortfallError reports the products whose live stock cannot cover the
// requested quantities.
type ShortfallError struct {
	ProductIDs []int64
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("insufficient stock for products %v", e.ProductIDs)
}

type Repository interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CheckStock(ctx context.Context, items []domain.LineItem) error
}

type pgRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &pgRepository{db: db}
}

func (r *pgRepository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, title, description, price, photo_url, category_id, stock, created_at
		FROM products
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *pgRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, title, description, price, photo_url, category_id, stock, created_at
		FROM products
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *pgRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

// CheckStock compares requested quantities against live stock for every
// item, in one query. An unknown product counts as a shortfall.
func (r *pgRepository) CheckStock(ctx context.Context, items []domain.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(items))
	wanted := make(map[int64]int, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
		wanted[item.ProductID] += item.Quantity
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, stock FROM products WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query stock: %w", err)
	}
	defer rows.Close()

	available := make(map[int64]int, len(items))
	for rows.Next() {
		var id int64
		var stock int
		if err := rows.Scan(&id, &stock); err != nil {
			return fmt.Errorf("failed to scan stock: %w", err)
		}
		available[id] = stock
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	var short []int64
	for id, want := range wanted {
		if available[id] < want {
			short = append(short, id)
		}
	}
	if len(short) > 0 {
		return &ShortfallError{ProductIDs: short}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	p := &domain.Product{}
	var price string
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&price,
		&p.PhotoURL,
		&p.CategoryID,
		&p.Stock,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	p.Price, err = parsePrice(price)
	if err != nil {
		return nil, fmt.Errorf("product %d has invalid price: %w", p.ID, err)
	}
	return p, nil
}
