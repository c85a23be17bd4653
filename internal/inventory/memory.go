package inventory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/google/uuid"
)

// MemoryLedger is an in-process Ledger guarded by a mutex. It backs tests
// and single-instance development; production deployments use the Postgres
// ledger, which serializes per product at the database.
type MemoryLedger struct {
	mu      sync.Mutex
	records map[uuid.UUID]domain.InventoryRecord
	logger  *slog.Logger
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger(logger *slog.Logger) *MemoryLedger {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryLedger{
		records: make(map[uuid.UUID]domain.InventoryRecord),
		logger:  logger,
	}
}

// Compile-time check that MemoryLedger implements Ledger.
var _ Ledger = (*MemoryLedger)(nil)

func (l *MemoryLedger) Reserve(ctx context.Context, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[productID]
	if !ok {
		return ErrNotTracked
	}
	if rec.Available() < qty {
		return ErrInsufficientStock
	}

	rec.ReservedQuantity += qty
	rec.UpdatedAt = time.Now()
	l.records[productID] = rec
	return nil
}

func (l *MemoryLedger) Confirm(ctx context.Context, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[productID]
	if !ok {
		return ErrNotTracked
	}
	if rec.ReservedQuantity < qty || rec.StockQuantity < qty {
		return ErrReservationMismatch
	}

	rec.StockQuantity -= qty
	rec.ReservedQuantity -= qty
	rec.UpdatedAt = time.Now()
	l.records[productID] = rec
	return nil
}

func (l *MemoryLedger) Release(ctx context.Context, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[productID]
	if !ok {
		return ErrNotTracked
	}

	if rec.ReservedQuantity < qty {
		// Best-effort recovery path: clamp rather than go negative.
		l.logger.Warn("inventory release exceeds reservation, clamping to zero",
			"product_id", productID,
			"reserved", rec.ReservedQuantity,
			"release_qty", qty,
		)
		rec.ReservedQuantity = 0
	} else {
		rec.ReservedQuantity -= qty
	}

	rec.UpdatedAt = time.Now()
	l.records[productID] = rec
	return nil
}

func (l *MemoryLedger) Restock(ctx context.Context, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[productID]
	if !ok {
		return ErrNotTracked
	}

	rec.StockQuantity += qty
	rec.UpdatedAt = time.Now()
	l.records[productID] = rec
	return nil
}

func (l *MemoryLedger) Get(ctx context.Context, productID uuid.UUID) (domain.InventoryRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[productID]
	if !ok {
		return domain.InventoryRecord{}, ErrNotTracked
	}
	return rec, nil
}

func (l *MemoryLedger) Put(ctx context.Context, productID uuid.UUID, stock int64) error {
	if stock < 0 {
		return ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records[productID] = domain.InventoryRecord{
		ProductID:     productID,
		StockQuantity: stock,
		UpdatedAt:     time.Now(),
	}
	return nil
}
