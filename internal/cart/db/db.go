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

// GetOrCreateCart returns the user's cart, creating an empty one on first
// access. The user_id unique constraint makes the create race-safe: a loser
// re-reads the winner's row.
func (d *DB) GetOrCreateCart(userID int64) (*models.Cart, error) {
	cart, err := d.getCart(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	fresh := &models.Cart{UserID: userID}
	_, err = d.Bun.NewInsert().Model(fresh).Exec(context.Background())
	if err != nil {
		// Concurrent first access; the other request created it.
		return d.getCart(userID)
	}
	fresh.Items = []*models.CartItem{}
	return fresh, nil
}

func (d *DB) getCart(userID int64) (*models.Cart, error) {
	var cart models.Cart
	err := d.Bun.NewSelect().
		Model(&cart).
		Relation("Items").
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

func (d *DB) GetItemByID(itemID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := d.Bun.NewSelect().
		Model(&item).
		Relation("Product").
		Where("cart_item.id = ?", itemID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cart item %d: %w", itemID, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *DB) GetItemByCartAndProduct(cartID, productID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := d.Bun.NewSelect().
		Model(&item).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *DB) InsertItem(item *models.CartItem) error {
	_, err := d.Bun.NewInsert().Model(item).Exec(context.Background())
	return err
}

func (d *DB) UpdateItemQuantity(itemID int64, quantity int) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.CartItem)(nil)).
		Set("quantity = ?", quantity).
		Where("id = ?", itemID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteItem(itemID int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.CartItem)(nil)).
		Where("id = ?", itemID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteItemsByCart(cartID int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.CartItem)(nil)).
		Where("cart_id = ?", cartID).
		Exec(context.Background())
	return err
}
