// README: Reservation store backed by PostgreSQL. Writes are single-row, last write wins.
package reservation

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

const reservationColumns = `
    id, client_id, service_id, vehicle_type_id, trip_date, trip_time,
    pickup_location, destination_location, passengers, baby_seats, booster_seats,
    meet_and_greet, sub_data, total_price_cents, currency, status, notes,
    created_at, updated_at`

func scanReservation(row pgx.Row) (*Reservation, error) {
	var r Reservation
	err := row.Scan(
		&r.ID, &r.ClientID, &r.ServiceID, &r.VehicleTypeID, &r.Date, &r.Time,
		&r.Pickup, &r.Destination, &r.Passengers, &r.BabySeats, &r.BoosterSeats,
		&r.MeetAndGreet, &r.SubData, &r.TotalPrice.Amount, &r.TotalPrice.Currency, &r.Status, &r.Notes,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) Create(ctx context.Context, r *Reservation) error {
	subData := r.SubData
	if subData == nil {
		subData = map[string]any{}
	}
	return s.db.QueryRow(ctx, `
        INSERT INTO reservations (
            id, client_id, service_id, vehicle_type_id, trip_date, trip_time,
            pickup_location, destination_location, passengers, baby_seats, booster_seats,
            meet_and_greet, sub_data, total_price_cents, currency, status, notes
        ) VALUES (
            $1, $2, $3, $4, $5, $6,
            $7, $8, $9, $10, $11,
            $12, $13, $14, $15, $16, $17
        )
        RETURNING created_at, updated_at`,
		string(r.ID), string(r.ClientID), string(r.ServiceID), string(r.VehicleTypeID), r.Date, r.Time,
		r.Pickup, r.Destination, r.Passengers, r.BabySeats, r.BoosterSeats,
		r.MeetAndGreet, subData, r.TotalPrice.Amount, r.TotalPrice.Currency, string(r.Status), r.Notes,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Reservation, error) {
	return scanReservation(s.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, string(id)))
}

// FindDuplicate returns the oldest reservation matching k, or ErrNotFound.
func (s *Store) FindDuplicate(ctx context.Context, k DuplicateKey) (*Reservation, error) {
	return scanReservation(s.db.QueryRow(ctx, `
        SELECT `+reservationColumns+`
        FROM reservations
        WHERE client_id = $1 AND service_id = $2 AND trip_date = $3
          AND trip_time = $4 AND pickup_location = $5
        ORDER BY created_at
        LIMIT 1`,
		string(k.ClientID), string(k.ServiceID), k.Date, k.Time, k.Pickup,
	))
}

func (s *Store) UpdateStatus(ctx context.Context, id types.ID, to Status) (*Reservation, error) {
	return scanReservation(s.db.QueryRow(ctx, `
        UPDATE reservations SET status = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING `+reservationColumns,
		string(to), string(id),
	))
}

func (s *Store) UpdateFields(ctx context.Context, id types.ID, p Patch) (*Reservation, error) {
	var cents *int64
	var currency *string
	if p.TotalPrice != nil {
		cents = &p.TotalPrice.Amount
		currency = &p.TotalPrice.Currency
	}
	return scanReservation(s.db.QueryRow(ctx, `
        UPDATE reservations SET
            trip_date            = COALESCE($1, trip_date),
            trip_time            = COALESCE($2, trip_time),
            pickup_location      = COALESCE($3, pickup_location),
            destination_location = COALESCE($4, destination_location),
            passengers           = COALESCE($5, passengers),
            baby_seats           = COALESCE($6, baby_seats),
            booster_seats        = COALESCE($7, booster_seats),
            meet_and_greet       = COALESCE($8, meet_and_greet),
            total_price_cents    = COALESCE($9, total_price_cents),
            currency             = COALESCE(NULLIF($10, ''), currency),
            notes                = COALESCE($11, notes),
            updated_at           = NOW()
        WHERE id = $12
        RETURNING `+reservationColumns,
		p.Date, p.Time, p.Pickup, p.Destination, p.Passengers, p.BabySeats, p.BoosterSeats,
		p.MeetAndGreet, cents, currency, p.Notes, string(id),
	))
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]Reservation, error) {
	var where []string
	var args []any
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if f.ClientID != "" {
		args = append(args, string(f.ClientID))
		where = append(where, "client_id = $"+strconv.Itoa(len(args)))
	}

	q := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO reservation_events (
            reservation_id, from_status, to_status, action, actor_type, actor_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(e.ReservationID), string(e.FromStatus), string(e.ToStatus),
		string(e.Action), e.ActorType, e.ActorID, e.CreatedAt,
	)
	return err
}

func (s *Store) Events(ctx context.Context, id types.ID) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, reservation_id, from_status, to_status, action, actor_type, actor_id, created_at
        FROM reservation_events
        WHERE reservation_id = $1
        ORDER BY created_at, id`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.ReservationID, &e.FromStatus, &e.ToStatus, &e.Action, &e.ActorType, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
