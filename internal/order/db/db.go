package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"flora-commerce/internal/errs"
	"flora-commerce/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- CHECKOUT (transaction-scoped helpers) ----------------
//
// These take bun.IDB so the orchestrator can run them inside one transaction
// together with the inventory reservations.

// LoadCartWithItems fetches the user's cart with its lines and their products,
// in line-id order. Checkout iterates lines in exactly this order.
func LoadCartWithItems(idb bun.IDB, userID int64) (*models.Cart, error) {
	var cart models.Cart
	err := idb.NewSelect().
		Model(&cart).
		Relation("Items", func(q *bun.SelectQuery) *bun.SelectQuery {
			// Items.Product joins products into this query, so the bare
			// column would be ambiguous between cart_items.id and products.id.
			return q.Order("cart_item.id")
		}).
		Relation("Items.Product").
		Where("cart.user_id = ?", userID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cart for user %d: %w", userID, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// InsertOrder persists an order and its item snapshots.
func InsertOrder(idb bun.IDB, order *models.Order) error {
	if _, err := idb.NewInsert().Model(order).Exec(context.Background()); err != nil {
		return err
	}
	for _, item := range order.Items {
		item.OrderID = order.ID
	}
	if len(order.Items) > 0 {
		if _, err := idb.NewInsert().Model(&order.Items).Exec(context.Background()); err != nil {
			return err
		}
	}
	return nil
}

func ClearCartItems(idb bun.IDB, cartID int64) error {
	_, err := idb.NewDelete().
		Model((*models.CartItem)(nil)).
		Where("cart_id = ?", cartID).
		Exec(context.Background())
	return err
}

// ---------------- ORDERS ----------------

func (d *DB) GetOrderByID(id int64) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Relation("Items", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("id")
		}).
		Where("\"order\".id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) GetOrderByNumber(orderNumber string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Relation("Items", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("id")
		}).
		Where("order_number = ?", orderNumber).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", orderNumber, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) ListOrdersByUser(userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Relation("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (d *DB) ListAllOrders() ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Relation("Items").
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (d *DB) UpdateOrderStatus(id int64, status models.OrderStatus) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("status = ?", status).
		Set("updated_at = current_timestamp").
		Where("id = ?", id).
		Exec(context.Background())
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
	}
	return nil
}
