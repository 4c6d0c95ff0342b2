package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"flora-commerce/internal/errs"
	"flora-commerce/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateDelivery(delivery *models.Delivery) error {
	_, err := d.Bun.NewInsert().Model(delivery).Exec(context.Background())
	return err
}

func (d *DB) UpdateDelivery(delivery *models.Delivery) error {
	_, err := d.Bun.NewUpdate().
		Model(delivery).
		WherePK().
		Exec(context.Background())
	return err
}

func (d *DB) GetByTracking(trackingNumber string) (*models.Delivery, error) {
	var delivery models.Delivery
	err := d.Bun.NewSelect().
		Model(&delivery).
		Where("tracking_number = ?", trackingNumber).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("delivery %s: %w", trackingNumber, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (d *DB) ListByOrder(orderID int64) ([]models.Delivery, error) {
	return d.list(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("order_id = ?", orderID)
	})
}

func (d *DB) ListByEvent(eventID int64) ([]models.Delivery, error) {
	return d.list(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("event_id = ?", eventID)
	})
}

func (d *DB) ListByStatus(status models.DeliveryStatus) ([]models.Delivery, error) {
	return d.list(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("status = ?", status)
	})
}

func (d *DB) ListByScheduledDate(date time.Time) ([]models.Delivery, error) {
	return d.list(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("scheduled_date = ?", date)
	})
}

func (d *DB) ListByScheduledDateRange(start, end time.Time) ([]models.Delivery, error) {
	return d.list(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("scheduled_date >= ? AND scheduled_date <= ?", start, end)
	})
}

func (d *DB) ListByCreatedDate(date time.Time) ([]models.Delivery, error) {
	next := date.AddDate(0, 0, 1)
	return d.list(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("created_at >= ? AND created_at < ?", date, next)
	})
}

// ListByUser joins through orders: the deliveries belonging to a user are the
// ones attached to that user's orders.
func (d *DB) ListByUser(userID int64) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	err := d.Bun.NewSelect().
		Model(&deliveries).
		Join("JOIN orders AS o ON o.id = delivery.order_id").
		Where("o.user_id = ?", userID).
		Order("delivery.scheduled_date DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return deliveries, nil
}

func (d *DB) ListAll() ([]models.Delivery, error) {
	return d.list(func(q *bun.SelectQuery) *bun.SelectQuery { return q })
}

func (d *DB) OrderExists(orderID int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Order)(nil)).
		Where("id = ?", orderID).
		Exists(context.Background())
}

func (d *DB) EventExists(eventID int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("id = ?", eventID).
		Exists(context.Background())
}

func (d *DB) list(apply func(*bun.SelectQuery) *bun.SelectQuery) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	q := d.Bun.NewSelect().
		Model(&deliveries).
		Order("scheduled_date DESC", "id")
	if err := apply(q).Scan(context.Background()); err != nil {
		return nil, err
	}
	return deliveries, nil
}
