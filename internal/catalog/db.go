// Package catalog is the read boundary to the product catalog. Catalog CRUD
// itself lives outside this service; checkout, carts and event bookings only
// need lookups.
package catalog

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

func (d *DB) GetProduct(id int64) (*models.Product, error) {
	var product models.Product
	err := d.Bun.NewSelect().
		Model(&product).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (d *DB) ListActiveProducts() ([]models.Product, error) {
	var products []models.Product
	err := d.Bun.NewSelect().
		Model(&products).
		Where("active = ?", true).
		Order("name").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return products, nil
}
