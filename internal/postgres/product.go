package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/dvalin/aurum/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductStore implements store.ProductStore.
type ProductStore struct {
	pool *pgxpool.Pool
}

func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

var _ store.ProductStore = (*ProductStore)(nil)

var productFilterColumns = map[string]string{
	"category":    "category",
	"is_active":   "is_active",
	"name":        "name",
	"price_paise": "price_paise",
}

const productColumns = "id, name, description, category, price_paise, is_active, created_at, updated_at"

func (s *ProductStore) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO products (id, name, description, category, price_paise, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		product.ID, product.Name, product.Description, product.Category,
		product.PricePaise, product.IsActive,
	)
	if err := row.Scan(&product.CreatedAt, &product.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

func (s *ProductStore) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)
	return scanProduct(row)
}

func (s *ProductStore) Update(ctx context.Context, product *domain.Product) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, category = $4, price_paise = $5,
		    is_active = $6, updated_at = now()
		WHERE id = $1`,
		product.ID, product.Name, product.Description, product.Category,
		product.PricePaise, product.IsActive,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ProductStore) List(ctx context.Context, filters []store.Filter, limit, offset int) ([]domain.Product, error) {
	args := []any{}
	where, err := buildWhere(filters, productFilterColumns, &args)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + productColumns + " FROM products" + where + " ORDER BY created_at"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category,
		&p.PricePaise, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning product: %w", err)
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
