// README: Pricing store backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"
	"strconv"
	"strings"

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

const entryColumns = `id, service_id, vehicle_type_id, pickup_location_id, destination_location_id,
       price_cents, currency, created_at, updated_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.ServiceID, &e.VehicleTypeID, &e.PickupLocationID, &e.DestinationLocationID,
		&e.Price.Amount, &e.Price.Currency, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Lookup returns the row stored for exactly this direction.
func (s *Store) Lookup(ctx context.Context, k Key) (*Entry, error) {
	return scanEntry(s.db.QueryRow(ctx, `
        SELECT `+entryColumns+`
        FROM pricing_entries
        WHERE service_id = $1 AND vehicle_type_id = $2
          AND pickup_location_id = $3 AND destination_location_id = $4`,
		string(k.ServiceID), string(k.VehicleTypeID), string(k.Pickup), string(k.Destination),
	))
}

func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	return scanEntry(s.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM pricing_entries WHERE id = $1`, id))
}

// listQuery builds the filtered SELECT with sequentially numbered placeholders.
func listQuery(f ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.ServiceID != "" {
		args = append(args, string(f.ServiceID))
		where = append(where, "service_id = $"+strconv.Itoa(len(args)))
	}
	if f.VehicleTypeID != "" {
		args = append(args, string(f.VehicleTypeID))
		where = append(where, "vehicle_type_id = $"+strconv.Itoa(len(args)))
	}
	q := `SELECT ` + entryColumns + ` FROM pricing_entries`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY service_id, vehicle_type_id, pickup_location_id, destination_location_id`
	return q, args
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]Entry, error) {
	q, args := listQuery(f)
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, e *Entry) error {
	return s.db.QueryRow(ctx, `
        INSERT INTO pricing_entries (
            service_id, vehicle_type_id, pickup_location_id, destination_location_id, price_cents, currency
        ) VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`,
		string(e.ServiceID), string(e.VehicleTypeID),
		string(e.PickupLocationID), string(e.DestinationLocationID),
		e.Price.Amount, e.Price.Currency,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// UpdatePrice returns ErrNotFound when the statement affected no row.
func (s *Store) UpdatePrice(ctx context.Context, id int64, price types.Money) (*Entry, error) {
	return scanEntry(s.db.QueryRow(ctx, `
        UPDATE pricing_entries
        SET price_cents = $1, currency = $2, updated_at = NOW()
        WHERE id = $3
        RETURNING `+entryColumns,
		price.Amount, price.Currency, id,
	))
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM pricing_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
