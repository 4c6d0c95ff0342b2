// Package identity resolves pre-authenticated caller identifiers to user
// rows. Credential checks happen upstream; this is lookup only.
package identity

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

func (d *DB) GetUser(id int64) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ResolveSubject finds a user by email, falling back to username. This is the
// one place where the email-or-username fallback lives; everything downstream
// works with the resolved user id.
func (d *DB) ResolveSubject(subject string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("email = ?", subject).
		WhereOr("username = ?", subject).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", subject, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
