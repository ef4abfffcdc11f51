// README: Catalog store backed by PostgreSQL.
package catalog

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

func (s *Store) GetService(ctx context.Context, id types.ID) (*TransferService, error) {
	var svc TransferService
	err := s.db.QueryRow(ctx, `
        SELECT id, name, description, pricing_mode, active, created_at
        FROM services WHERE id = $1`, string(id),
	).Scan(&svc.ID, &svc.Name, &svc.Description, &svc.PricingMode, &svc.Active, &svc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *Store) ListServices(ctx context.Context, activeOnly bool) ([]TransferService, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, name, description, pricing_mode, active, created_at
        FROM services
        WHERE active OR NOT $1
        ORDER BY name`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransferService
	for rows.Next() {
		var svc TransferService
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.PricingMode, &svc.Active, &svc.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

func (s *Store) GetVehicleType(ctx context.Context, id types.ID) (*VehicleType, error) {
	var v VehicleType
	err := s.db.QueryRow(ctx, `
        SELECT id, name, description, capacity, created_at
        FROM vehicle_types WHERE id = $1`, string(id),
	).Scan(&v.ID, &v.Name, &v.Description, &v.Capacity, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVehicleTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) ListVehicleTypes(ctx context.Context) ([]VehicleType, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, description, capacity, created_at FROM vehicle_types ORDER BY capacity, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VehicleType
	for rows.Next() {
		var v VehicleType
		if err := rows.Scan(&v.ID, &v.Name, &v.Description, &v.Capacity, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) GetLocation(ctx context.Context, id types.ID) (*Location, error) {
	var l Location
	err := s.db.QueryRow(ctx, `SELECT id, name, created_at FROM locations WHERE id = $1`, string(id)).
		Scan(&l.ID, &l.Name, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, created_at FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) Fields(ctx context.Context, serviceID types.ID) (Schema, error) {
	rows, err := s.db.Query(ctx, `
        SELECT service_id, field_key, field_type, label, required, min_value, max_value,
               default_value, options, is_pickup, is_destination, field_order
        FROM service_fields
        WHERE service_id = $1
        ORDER BY field_order, field_key`, string(serviceID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out Schema
	for rows.Next() {
		var f Field
		if err := rows.Scan(
			&f.ServiceID, &f.Key, &f.Type, &f.Label, &f.Required, &f.Min, &f.Max,
			&f.Default, &f.Options, &f.IsPickup, &f.IsDestination, &f.Order,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ReplaceFields swaps the whole schema of a service in one transaction.
func (s *Store) ReplaceFields(ctx context.Context, serviceID types.ID, schema Schema) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM service_fields WHERE service_id = $1`, string(serviceID)); err != nil {
		return err
	}
	for _, f := range schema {
		options := f.Options
		if options == nil {
			options = []string{}
		}
		if _, err := tx.Exec(ctx, `
            INSERT INTO service_fields (
                service_id, field_key, field_type, label, required, min_value, max_value,
                default_value, options, is_pickup, is_destination, field_order
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			string(serviceID), f.Key, string(f.Type), f.Label, f.Required, f.Min, f.Max,
			f.Default, options, f.IsPickup, f.IsDestination, f.Order,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// UpdateFieldOrders persists the orders of two fields atomically.
func (s *Store) UpdateFieldOrders(ctx context.Context, serviceID types.ID, a, b Field) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, f := range []Field{a, b} {
		tag, err := tx.Exec(ctx, `
            UPDATE service_fields SET field_order = $1
            WHERE service_id = $2 AND field_key = $3`,
			f.Order, string(serviceID), f.Key)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrFieldNotFound
		}
	}
	return tx.Commit(ctx)
}
