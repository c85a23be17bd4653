package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/dvalin/aurum/internal/inventory"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InventoryLedger implements inventory.Ledger with single guarded UPDATE
// statements. Row-level locking in Postgres serializes concurrent writers on
// the same product, so the availability check and the quantity change are
// one atomic step.
type InventoryLedger struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewInventoryLedger(pool *pgxpool.Pool, logger *slog.Logger) *InventoryLedger {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryLedger{pool: pool, logger: logger}
}

var _ inventory.Ledger = (*InventoryLedger)(nil)

func (l *InventoryLedger) Reserve(ctx context.Context, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return inventory.ErrInvalidQuantity
	}

	tag, err := l.pool.Exec(ctx, `
		UPDATE inventory_records
		SET reserved_quantity = reserved_quantity + $2, updated_at = now()
		WHERE product_id = $1
		  AND stock_quantity - reserved_quantity >= $2`,
		productID, qty,
	)
	if err != nil {
		return fmt.Errorf("reserving stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return l.classifyMiss(ctx, productID, inventory.ErrInsufficientStock)
	}
	return nil
}

func (l *InventoryLedger) Confirm(ctx context.Context, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return inventory.ErrInvalidQuantity
	}

	tag, err := l.pool.Exec(ctx, `
		UPDATE inventory_records
		SET stock_quantity = stock_quantity - $2,
		    reserved_quantity = reserved_quantity - $2,
		    updated_at = now()
		WHERE product_id = $1
		  AND reserved_quantity >= $2
		  AND stock_quantity >= $2`,
		productID, qty,
	)
	if err != nil {
		return fmt.Errorf("confirming reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return l.classifyMiss(ctx, productID, inventory.ErrReservationMismatch)
	}
	return nil
}

func (l *InventoryLedger) Release(ctx context.Context, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return inventory.ErrInvalidQuantity
	}

	// GREATEST clamps the reservation at zero instead of going negative.
	// The CTE hands back the pre-update value so a clamp can be logged.
	row := l.pool.QueryRow(ctx, `
		WITH prev AS (
			SELECT reserved_quantity FROM inventory_records
			WHERE product_id = $1
			FOR UPDATE
		)
		UPDATE inventory_records r
		SET reserved_quantity = GREATEST(r.reserved_quantity - $2, 0),
		    updated_at = now()
		FROM prev
		WHERE r.product_id = $1
		RETURNING prev.reserved_quantity`,
		productID, qty,
	)

	var before int64
	if err := row.Scan(&before); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inventory.ErrNotTracked
		}
		return fmt.Errorf("releasing reservation: %w", err)
	}

	if before < qty {
		l.logger.Warn("inventory release exceeds reservation, clamping to zero",
			"product_id", productID,
			"reserved", before,
			"release_qty", qty,
		)
	}
	return nil
}

func (l *InventoryLedger) Restock(ctx context.Context, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return inventory.ErrInvalidQuantity
	}

	tag, err := l.pool.Exec(ctx, `
		UPDATE inventory_records
		SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE product_id = $1`,
		productID, qty,
	)
	if err != nil {
		return fmt.Errorf("restocking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return inventory.ErrNotTracked
	}
	return nil
}

func (l *InventoryLedger) Get(ctx context.Context, productID uuid.UUID) (domain.InventoryRecord, error) {
	row := l.pool.QueryRow(ctx, `
		SELECT product_id, stock_quantity, reserved_quantity, updated_at
		FROM inventory_records
		WHERE product_id = $1`,
		productID,
	)

	var rec domain.InventoryRecord
	err := row.Scan(&rec.ProductID, &rec.StockQuantity, &rec.ReservedQuantity, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.InventoryRecord{}, inventory.ErrNotTracked
	}
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("loading inventory record: %w", err)
	}
	return rec, nil
}

func (l *InventoryLedger) Put(ctx context.Context, productID uuid.UUID, stock int64) error {
	if stock < 0 {
		return inventory.ErrInvalidQuantity
	}

	_, err := l.pool.Exec(ctx, `
		INSERT INTO inventory_records (product_id, stock_quantity, reserved_quantity)
		VALUES ($1, $2, 0)
		ON CONFLICT (product_id)
		DO UPDATE SET stock_quantity = EXCLUDED.stock_quantity,
		              reserved_quantity = 0,
		              updated_at = now()`,
		productID, stock,
	)
	if err != nil {
		return fmt.Errorf("writing inventory record: %w", err)
	}
	return nil
}

// classifyMiss distinguishes a failed guard from a missing row after a
// guarded UPDATE touched nothing.
func (l *InventoryLedger) classifyMiss(ctx context.Context, productID uuid.UUID, guardErr error) error {
	var exists bool
	err := l.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM inventory_records WHERE product_id = $1)",
		productID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking inventory record: %w", err)
	}
	if !exists {
		return inventory.ErrNotTracked
	}
	return guardErr
}
