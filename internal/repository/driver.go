package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/domain"
)

const (
	driverColumns          = `id, name, phone, status, vehicle, active`
	driverColumnsQualified = `c.id, c.name, c.phone, c.status, c.vehicle, c.active`
)

// DriverRepo represents driver repository.
type DriverRepo struct{ db *pgxpool.Pool }

// NewDriverRepo creates a new DriverRepo.
func NewDriverRepo(db *pgxpool.Pool) *DriverRepo { return &DriverRepo{db: db} }

// GetDriver returns driver by its ID.
func (r *DriverRepo) GetDriver(ctx context.Context, id int64) (*domain.Driver, error) {
	return getDriver(ctx, r.db, id, false)
}

// ListDrivers returns drivers ordered by id. If limit/offset are nil, returns the full list.
func (r *DriverRepo) ListDrivers(ctx context.Context, limit, offset *int) ([]domain.Driver, error) {
	q := `SELECT ` + driverColumns + ` FROM drivers ORDER BY id`
	args := make([]any, 0, 2)
	if limit != nil {
		q += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, *limit)
	}
	if offset != nil {
		q += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, *offset)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()
	capacity := 0
	if limit != nil && *limit > 0 {
		capacity = *limit
	}
	out := make([]domain.Driver, 0, capacity)
	for rows.Next() {
		var d domain.Driver
		if err := rows.Scan(driverDest(&d)...); err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CreateDriver creates a new driver.
func (r *DriverRepo) CreateDriver(ctx context.Context, d *domain.Driver) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO drivers(name, phone, status, vehicle, active) VALUES($1, $2, $3, $4, $5) RETURNING id`,
		d.Name, d.Phone, string(d.Status), string(d.Vehicle), d.Active).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, fmt.Errorf("phone %s: %w", d.Phone, apperr.ErrConflict)
		}
		return 0, fmt.Errorf("create driver: %w", err)
	}
	return id, nil
}

// UpdateDriverPartial applies a partial update to a driver and returns true if a row was affected.
func (r *DriverRepo) UpdateDriverPartial(ctx context.Context, u domain.PartialDriverUpdate) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE drivers
        SET
            name       = COALESCE($2, name),
            phone      = COALESCE($3, phone),
            status     = COALESCE($4, status),
            vehicle    = COALESCE($5, vehicle),
            updated_at = now()
        WHERE id = $1
    `, u.ID, u.Name, u.Phone, (*string)(u.Status), (*string)(u.Vehicle))
	if err != nil {
		if IsDuplicate(err) {
			return false, fmt.Errorf("driver %d: %w", u.ID, apperr.ErrConflict)
		}
		return false, fmt.Errorf("update driver %d: %w", u.ID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// DeactivateDriver clears the active flag, takes the driver offline and returns true if a row was affected.
func (r *DriverRepo) DeactivateDriver(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE drivers SET active = FALSE, status = $2, updated_at = now() WHERE id = $1
    `, id, string(domain.DriverOffline))
	if err != nil {
		return false, fmt.Errorf("deactivate driver %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

func getDriver(ctx context.Context, q querier, id int64, forUpdate bool) (*domain.Driver, error) {
	sql := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	var d domain.Driver
	if err := q.QueryRow(ctx, sql, id).Scan(driverDest(&d)...); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get driver %d: %w", id, err)
	}
	return &d, nil
}

func driverDest(d *domain.Driver) []any {
	return []any{&d.ID, &d.Name, &d.Phone, (*string)(&d.Status), (*string)(&d.Vehicle), &d.Active}
}
