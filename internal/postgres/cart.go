package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/dvalin/aurum/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartStore implements store.CartStore. Cart lines are stored as a jsonb
// document on the cart row so a mutation is always a single-row write.
type CartStore struct {
	pool *pgxpool.Pool
}

func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

var _ store.CartStore = (*CartStore)(nil)

const cartColumns = `id, owner_key, items,
	subtotal_paise, tax_paise, shipping_paise, discount_paise, total_paise,
	expires_at, created_at, updated_at`

func (s *CartStore) Create(ctx context.Context, cart *domain.Cart) error {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}

	items, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("marshaling cart items: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO carts (id, owner_key, items,
			subtotal_paise, tax_paise, shipping_paise, discount_paise, total_paise,
			expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		cart.ID, cart.OwnerKey, items,
		cart.Totals.SubtotalPaise, cart.Totals.TaxPaise, cart.Totals.ShippingPaise,
		cart.Totals.DiscountPaise, cart.Totals.TotalPaise,
		cart.ExpiresAt,
	)
	if err := row.Scan(&cart.CreatedAt, &cart.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("inserting cart: %w", err)
	}
	return nil
}

func (s *CartStore) Get(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+cartColumns+" FROM carts WHERE id = $1", id)
	return scanCart(row)
}

func (s *CartStore) GetByOwner(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+cartColumns+" FROM carts WHERE owner_key = $1", ownerKey)
	return scanCart(row)
}

// Mutate runs fn inside a transaction holding the cart's row lock, so
// concurrent mutations of the same cart apply one after the other against
// fresh state.
func (s *CartStore) Mutate(ctx context.Context, id uuid.UUID, fn func(cart *domain.Cart) error) (*domain.Cart, error) {
	var result *domain.Cart

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			"SELECT "+cartColumns+" FROM carts WHERE id = $1 FOR UPDATE", id)
		cart, err := scanCart(row)
		if err != nil {
			return err
		}

		if err := fn(cart); err != nil {
			return err
		}

		items, err := json.Marshal(cart.Items)
		if err != nil {
			return fmt.Errorf("marshaling cart items: %w", err)
		}

		row = tx.QueryRow(ctx, `
			UPDATE carts
			SET items = $2,
			    subtotal_paise = $3, tax_paise = $4, shipping_paise = $5,
			    discount_paise = $6, total_paise = $7,
			    expires_at = $8, updated_at = now()
			WHERE id = $1
			RETURNING updated_at`,
			cart.ID, items,
			cart.Totals.SubtotalPaise, cart.Totals.TaxPaise, cart.Totals.ShippingPaise,
			cart.Totals.DiscountPaise, cart.Totals.TotalPaise,
			cart.ExpiresAt,
		)
		if err := row.Scan(&cart.UpdatedAt); err != nil {
			return fmt.Errorf("updating cart: %w", err)
		}

		result = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *CartStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM carts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var (
		c     domain.Cart
		items []byte
	)
	err := row.Scan(&c.ID, &c.OwnerKey, &items,
		&c.Totals.SubtotalPaise, &c.Totals.TaxPaise, &c.Totals.ShippingPaise,
		&c.Totals.DiscountPaise, &c.Totals.TotalPaise,
		&c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning cart: %w", err)
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &c.Items); err != nil {
			return nil, fmt.Errorf("unmarshaling cart items: %w", err)
		}
	}
	return &c, nil
}
