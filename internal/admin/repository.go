package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotAllowlisted = errors.New("user is not an administrator")

// Allowlist answers whether an authenticated identity may use the back office.
type Allowlist interface {
	Contains(ctx context.Context, userID uuid.UUID) (bool, error)
	Get(ctx context.Context, userID uuid.UUID) (*AdminUser, error)
}

type postgresAllowlist struct {
	db *pgxpool.Pool
}

func NewAllowlist(db *pgxpool.Pool) Allowlist {
	return &postgresAllowlist{db: db}
}

func (r *postgresAllowlist) Contains(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM admin_users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repository: failed to check admin allow-list for %s: %w", userID, err)
	}
	return exists, nil
}

func (r *postgresAllowlist) Get(ctx context.Context, userID uuid.UUID) (*AdminUser, error) {
	query := `SELECT id, email, name, role, created_at, updated_at FROM admin_users WHERE id = $1`

	var admin AdminUser
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&admin.ID, &admin.Email, &admin.Name, &admin.Role, &admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotAllowlisted
		}
		return nil, fmt.Errorf("repository: failed to select admin user %s: %w", userID, err)
	}
	return &admin, nil
}
