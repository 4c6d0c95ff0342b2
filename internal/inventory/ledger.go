// Package inventory owns the product stock counters. Reserve and Release are
// the only code paths allowed to mutate stock_quantity.
package inventory

import (
	"context"
	"fmt"

	"flora-commerce/internal/errs"
	"flora-commerce/internal/models"

	"github.com/uptrace/bun"
)

type Ledger struct {
	Bun *bun.DB
}

func NewLedger(db *bun.DB) *Ledger {
	return &Ledger{Bun: db}
}

func (l *Ledger) Reserve(productID int64, quantity int) (int, error) {
	return Reserve(l.Bun, productID, quantity)
}

func (l *Ledger) Release(productID int64, quantity int) (int, error) {
	return Release(l.Bun, productID, quantity)
}

// Reserve atomically decrements a product's stock by quantity and returns the
// new balance. The check and the decrement are a single conditional UPDATE so
// two concurrent reservations for the last unit resolve to one winner.
// The idb argument lets checkout run the reservation inside its transaction.
func Reserve(idb bun.IDB, productID int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}

	res, err := idb.NewUpdate().
		Model((*models.Product)(nil)).
		Set("stock_quantity = stock_quantity - ?", quantity).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		Exec(context.Background())
	if err != nil {
		return 0, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		// Distinguish a missing product from a stock shortage.
		exists, err := idb.NewSelect().
			Model((*models.Product)(nil)).
			Where("id = ?", productID).
			Exists(context.Background())
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, fmt.Errorf("product %d: %w", productID, errs.ErrNotFound)
		}
		return 0, fmt.Errorf("product %d: %w", productID, errs.ErrInsufficientStock)
	}

	return balance(idb, productID)
}

// Release atomically returns quantity units to a product's stock.
func Release(idb bun.IDB, productID int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("release quantity must be positive, got %d", quantity)
	}

	res, err := idb.NewUpdate().
		Model((*models.Product)(nil)).
		Set("stock_quantity = stock_quantity + ?", quantity).
		Where("id = ?", productID).
		Exec(context.Background())
	if err != nil {
		return 0, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, fmt.Errorf("product %d: %w", productID, errs.ErrNotFound)
	}

	return balance(idb, productID)
}

func balance(idb bun.IDB, productID int64) (int, error) {
	var stock int
	err := idb.NewSelect().
		Model((*models.Product)(nil)).
		Column("stock_quantity").
		Where("id = ?", productID).
		Scan(context.Background(), &stock)
	if err != nil {
		return 0, err
	}
	return stock, nil
}
