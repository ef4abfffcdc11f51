// README: Client store backed by PostgreSQL.
package client

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"transfers/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const clientColumns = `id, first_name, last_name, email, phone, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Client, error) {
	return scanClient(s.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, string(id)))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Client, error) {
	return scanClient(s.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE email = $1`, email))
}

// Upsert inserts c or, when the email is already known, refreshes the
// non-empty contact details and returns the existing row.
func (s *Store) Upsert(ctx context.Context, c *Client) (*Client, error) {
	return scanClient(s.db.QueryRow(ctx, `
        INSERT INTO clients (id, first_name, last_name, email, phone)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (email) DO UPDATE SET
            first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), clients.first_name),
            last_name  = COALESCE(NULLIF(EXCLUDED.last_name, ''), clients.last_name),
            phone      = COALESCE(NULLIF(EXCLUDED.phone, ''), clients.phone),
            updated_at = NOW()
        RETURNING `+clientColumns,
		string(c.ID), c.FirstName, c.LastName, c.Email, c.Phone,
	))
}
