package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/dvalin/aurum/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderStore implements store.OrderStore. Item lines and address snapshots
// are jsonb documents: they are frozen at order creation and only ever read
// back whole.
type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

var _ store.OrderStore = (*OrderStore)(nil)

var orderFilterColumns = map[string]string{
	"status":         "status",
	"customer_id":    "customer_id",
	"payment_method": "payment_method",
	"created_at":     "created_at",
}

const orderColumns = `id, customer_id, customer_email, customer_phone,
	confirmation_number, payment_order_id, payment_id, payment_method, status,
	items, subtotal_paise, tax_paise, shipping_paise, discount_paise, total_paise,
	shipping_address, billing_address,
	tracking_number, estimated_delivery, created_at, updated_at`

func (s *OrderStore) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	shipping, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}
	billing, err := json.Marshal(order.BillingAddress)
	if err != nil {
		return fmt.Errorf("marshaling billing address: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO orders (id, customer_id, customer_email, customer_phone,
			confirmation_number, payment_order_id, payment_id, payment_method, status,
			items, subtotal_paise, tax_paise, shipping_paise, discount_paise, total_paise,
			shipping_address, billing_address, tracking_number, estimated_delivery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING created_at, updated_at`,
		order.ID, order.CustomerID, order.CustomerEmail, order.CustomerPhone,
		nullableString(order.ConfirmationNumber), order.PaymentOrderID, order.PaymentID,
		string(order.PaymentMethod), string(order.Status),
		items, order.Totals.SubtotalPaise, order.Totals.TaxPaise,
		order.Totals.ShippingPaise, order.Totals.DiscountPaise, order.Totals.TotalPaise,
		shipping, billing, order.TrackingNumber, nullableTime(order.EstimatedDelivery),
	)
	if err := row.Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

func (s *OrderStore) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	return scanOrder(row)
}

func (s *OrderStore) GetByConfirmationNumber(ctx context.Context, number string) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE confirmation_number = $1", number)
	return scanOrder(row)
}

func (s *OrderStore) GetByPaymentOrderID(ctx context.Context, paymentOrderID string) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE payment_order_id = $1", paymentOrderID)
	return scanOrder(row)
}

func (s *OrderStore) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.Order, error) {
	return s.List(ctx, []store.Filter{store.Eq("customer_id", customerID)}, limit, offset)
}

func (s *OrderStore) List(ctx context.Context, filters []store.Filter, limit, offset int) ([]domain.Order, error) {
	args := []any{}
	where, err := buildWhere(filters, orderFilterColumns, &args)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + orderColumns + " FROM orders" + where + " ORDER BY created_at DESC"
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
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// Transition is the compare-and-set write at the heart of the order state
// machine: the status moves only if the row still holds the expected value,
// and the companion columns land in the same statement.
func (s *OrderStore) Transition(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, update store.OrderUpdate) error {
	set := []string{"status = $3", "updated_at = now()"}
	args := []any{id, string(from), string(to)}

	appendSet := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.PaymentID != nil {
		appendSet("payment_id", *update.PaymentID)
	}
	if update.ConfirmationNumber != nil {
		appendSet("confirmation_number", *update.ConfirmationNumber)
	}
	if update.TrackingNumber != nil {
		appendSet("tracking_number", *update.TrackingNumber)
	}
	if update.EstimatedDelivery != nil {
		appendSet("estimated_delivery", *update.EstimatedDelivery)
	}

	query := "UPDATE orders SET " + strings.Join(set, ", ") +
		" WHERE id = $1 AND status = $2"

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("transitioning order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)", id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("checking order: %w", err)
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	return nil
}

func (s *OrderStore) UpdateShippingAddress(ctx context.Context, id uuid.UUID, address domain.Address) error {
	snapshot, err := json.Marshal(address)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET shipping_address = $2, updated_at = now()
		WHERE id = $1`,
		id, snapshot,
	)
	if err != nil {
		return fmt.Errorf("updating shipping address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *OrderStore) ConfirmationNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM orders WHERE confirmation_number = $1)", number,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking confirmation number: %w", err)
	}
	return exists, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                  domain.Order
		confirmationNumber *string
		estimatedDelivery  *time.Time
		items              []byte
		shipping           []byte
		billing            []byte
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.CustomerEmail, &o.CustomerPhone,
		&confirmationNumber, &o.PaymentOrderID, &o.PaymentID, &o.PaymentMethod, &o.Status,
		&items, &o.Totals.SubtotalPaise, &o.Totals.TaxPaise,
		&o.Totals.ShippingPaise, &o.Totals.DiscountPaise, &o.Totals.TotalPaise,
		&shipping, &billing,
		&o.TrackingNumber, &estimatedDelivery, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning order: %w", err)
	}

	if confirmationNumber != nil {
		o.ConfirmationNumber = *confirmationNumber
	}
	if estimatedDelivery != nil {
		o.EstimatedDelivery = *estimatedDelivery
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if err := json.Unmarshal(shipping, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshaling shipping address: %w", err)
	}
	if err := json.Unmarshal(billing, &o.BillingAddress); err != nil {
		return nil, fmt.Errorf("unmarshaling billing address: %w", err)
	}
	return &o, nil
}

// nullableString maps "" to NULL, keeping partial unique indexes honest.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
