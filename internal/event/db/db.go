package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"flora-commerce/internal/errs"
	"flora-commerce/internal/models"

	"github.com/lib/pq"
	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// InsertEvent persists a booking and its item snapshots. It takes bun.IDB so
// the service can run both inserts in one transaction.
func InsertEvent(idb bun.IDB, event *models.Event) error {
	if _, err := idb.NewInsert().Model(event).Exec(context.Background()); err != nil {
		return err
	}
	for _, item := range event.Items {
		item.EventID = event.ID
	}
	if len(event.Items) > 0 {
		if _, err := idb.NewInsert().Model(&event.Items).Exec(context.Background()); err != nil {
			return err
		}
	}
	return nil
}

// IsDuplicate reports whether err is a unique-constraint violation, for both
// the postgres driver and the sqlite driver used in tests.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

func (d *DB) GetEventByID(id int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Relation("Items", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("id")
		}).
		Where("event.id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) GetEventByNumber(eventNumber string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Relation("Items", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("id")
		}).
		Where("event_number = ?", eventNumber).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", eventNumber, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) ListEventsByUser(userID int64) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Relation("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) ListEventsByStatus(status models.EventStatus) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Relation("Items").
		Where("status = ?", status).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) ListAllEvents() ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Relation("Items").
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) UpdateEvent(event *models.Event) error {
	res, err := d.Bun.NewUpdate().
		Model(event).
		WherePK().
		Exec(context.Background())
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("event %d: %w", event.ID, errs.ErrNotFound)
	}
	return nil
}

// DeleteEvent removes a booking and its items in one transaction.
func (d *DB) DeleteEvent(id int64) error {
	return d.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.EventItem)(nil)).
			Where("event_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*models.Event)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("event %d: %w", id, errs.ErrNotFound)
		}
		return nil
	})
}
