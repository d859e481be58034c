package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/ports/deliverytx"
)

const deliveryColumns = `id, reference, customer_name, address, lat, lng, payment_type, amount_due, kind, status, driver_id, created_at, updated_at`

// loadStatuses are the statuses counted by ActiveLoad.
var loadStatuses = []string{
	string(domain.StatusAssigned),
	string(domain.StatusPickedUp),
	string(domain.StatusInTransit),
	string(domain.StatusRescheduled),
}

// DeliveryRepo represents delivery repository.
type DeliveryRepo struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// NewDeliveryRepo creates a new DeliveryRepo.
func NewDeliveryRepo(db *pgxpool.Pool) *DeliveryRepo {
	return &DeliveryRepo{db: db, now: time.Now}
}

// WithTx opens a transaction and executes fn within it.
func (r *DeliveryRepo) WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				panic(rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(&TxRepo{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetDeliveryByRef returns the delivery or nil if it does not exist.
func (r *DeliveryRepo) GetDeliveryByRef(ctx context.Context, ref string) (*domain.Delivery, error) {
	return getDeliveryByRef(ctx, r.db, ref, false)
}

// CreateDelivery inserts d as pending and fills its ID and timestamps.
func (r *DeliveryRepo) CreateDelivery(ctx context.Context, d *domain.Delivery) error {
	now := r.now().UTC()
	d.Status = domain.StatusPending
	d.DriverID = nil
	d.CreatedAt, d.UpdatedAt = now, now

	lat, lng := coordArgs(d.Location)
	err := r.db.QueryRow(ctx, `
        INSERT INTO deliveries (reference, customer_name, address, lat, lng, payment_type, amount_due, kind, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
        RETURNING id
    `, d.Reference, d.CustomerName, d.Address, lat, lng, string(d.PaymentType), d.AmountDue, string(d.Kind), string(d.Status), now,
	).Scan(&d.ID)
	if err != nil {
		if IsDuplicate(err) {
			return fmt.Errorf("delivery %s: %w", d.Reference, apperr.ErrConflict)
		}
		return fmt.Errorf("insert delivery %s: %w", d.Reference, err)
	}
	return nil
}

// ListHistory returns the events of a delivery in commit order.
func (r *DeliveryRepo) ListHistory(ctx context.Context, deliveryID int64) ([]domain.HistoryEvent, error) {
	rows, err := r.db.Query(ctx, `
        SELECT e.id, e.delivery_id, d.reference, e.seq, e.from_status, e.to_status, e.reason, e.actor_id, e.actor_role, e.driver_id, e.at
        FROM delivery_events e
        JOIN deliveries d ON d.id = e.delivery_id
        WHERE e.delivery_id = $1
        ORDER BY e.seq
    `, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("list history %d: %w", deliveryID, err)
	}
	defer rows.Close()

	out := make([]domain.HistoryEvent, 0)
	for rows.Next() {
		var (
			e        domain.HistoryEvent
			from, to string
			role     string
		)
		if err := rows.Scan(&e.ID, &e.DeliveryID, &e.Reference, &e.Seq, &from, &to, &e.Reason, &e.ActorID, &role, &e.DriverID, &e.At); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.FromStatus, e.ToStatus, e.ActorRole = domain.DeliveryStatus(from), domain.DeliveryStatus(to), domain.Role(role)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListDeliveries returns deliveries matching f ordered by id.
func (r *DeliveryRepo) ListDeliveries(ctx context.Context, f domain.DeliveryFilter) ([]domain.Delivery, error) {
	q := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE TRUE`
	args := make([]any, 0, 4)
	if f.Status != nil {
		args = append(args, string(*f.Status))
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.DriverID != nil {
		args = append(args, *f.DriverID)
		q += fmt.Sprintf(" AND driver_id = $%d", len(args))
	}
	q += " ORDER BY id"
	if f.Limit != nil {
		args = append(args, *f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset != nil {
		args = append(args, *f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return r.queryDeliveries(ctx, q, args...)
}

// ListUnassignedPending returns pending deliveries without a driver, oldest first.
func (r *DeliveryRepo) ListUnassignedPending(ctx context.Context) ([]domain.Delivery, error) {
	return r.queryDeliveries(ctx, `
        SELECT `+deliveryColumns+`
        FROM deliveries
        WHERE status = $1 AND driver_id IS NULL
        ORDER BY created_at, id
    `, string(domain.StatusPending))
}

// ListAssignableDrivers returns active online drivers with their current load, ordered by id.
func (r *DeliveryRepo) ListAssignableDrivers(ctx context.Context) ([]domain.DriverLoad, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+driverColumnsQualified+`,
            (SELECT COUNT(*) FROM deliveries d WHERE d.driver_id = c.id AND d.status = ANY($2)) AS load
        FROM drivers c
        WHERE c.active AND c.status = $1
        ORDER BY c.id
    `, string(domain.DriverOnline), loadStatuses)
	if err != nil {
		return nil, fmt.Errorf("list assignable drivers: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DriverLoad, 0)
	for rows.Next() {
		var (
			dl   domain.DriverLoad
			load int64
		)
		if err := rows.Scan(append(driverDest(&dl.Driver), &load)...); err != nil {
			return nil, fmt.Errorf("scan driver load: %w", err)
		}
		dl.Load = int(load)
		out = append(out, dl)
	}
	return out, rows.Err()
}

func (r *DeliveryRepo) queryDeliveries(ctx context.Context, q string, args ...any) ([]domain.Delivery, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Delivery, 0)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

// GetDeliveryByRef locks and returns the delivery row, or nil if it does not exist.
func (r *TxRepo) GetDeliveryByRef(ctx context.Context, ref string) (*domain.Delivery, error) {
	return getDeliveryByRef(ctx, r.tx, ref, true)
}

// GetDriver locks and returns the driver row, or nil if it does not exist.
func (r *TxRepo) GetDriver(ctx context.Context, id int64) (*domain.Driver, error) {
	return getDriver(ctx, r.tx, id, true)
}

// ActiveLoad counts the deliveries occupying the driver.
func (r *TxRepo) ActiveLoad(ctx context.Context, driverID int64) (int, error) {
	var n int64
	err := r.tx.QueryRow(ctx, `
        SELECT COUNT(*) FROM deliveries WHERE driver_id = $1 AND status = ANY($2)
    `, driverID, loadStatuses).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("active load of driver %d: %w", driverID, err)
	}
	return int(n), nil
}

// CompareAndSetStatus moves the delivery to next only if it is still in expected.
func (r *TxRepo) CompareAndSetStatus(ctx context.Context, id int64, expected, next domain.DeliveryStatus, driverID *int64, at time.Time) (bool, error) {
	ct, err := r.tx.Exec(ctx, `
        UPDATE deliveries
        SET status = $3, driver_id = $4, updated_at = $5
        WHERE id = $1 AND status = $2
    `, id, string(expected), string(next), driverID, at)
	if err != nil {
		return false, fmt.Errorf("update delivery %d status: %w", id, err)
	}
	return ct.RowsAffected() == 1, nil
}

// AppendEvent stores e with the next sequence number of its delivery.
// e.At is raised to the previous event's time so timestamps never run backwards.
func (r *TxRepo) AppendEvent(ctx context.Context, e *domain.HistoryEvent) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO delivery_events (id, delivery_id, seq, from_status, to_status, reason, actor_id, actor_role, driver_id, at)
        SELECT $1, $2, COALESCE(MAX(seq), 0) + 1, $3, $4, $5, $6, $7, $8,
               GREATEST($9::timestamptz, COALESCE(MAX(at), $9::timestamptz))
        FROM delivery_events
        WHERE delivery_id = $2
        RETURNING seq, at
    `, e.ID, e.DeliveryID, string(e.FromStatus), string(e.ToStatus), e.Reason, e.ActorID, string(e.ActorRole), e.DriverID, e.At,
	).Scan(&e.Seq, &e.At)
	if err != nil {
		return fmt.Errorf("append event for delivery %d: %w", e.DeliveryID, err)
	}
	e.At = e.At.UTC()
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getDeliveryByRef(ctx context.Context, q querier, ref string, forUpdate bool) (*domain.Delivery, error) {
	sql := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE reference = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	d, err := scanDelivery(q.QueryRow(ctx, sql, ref))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery %q: %w", ref, err)
	}
	return &d, nil
}

func scanDelivery(row pgx.Row) (domain.Delivery, error) {
	var (
		d                   domain.Delivery
		lat, lng            *float64
		payment, kind, stat string
	)
	err := row.Scan(&d.ID, &d.Reference, &d.CustomerName, &d.Address, &lat, &lng,
		&payment, &d.AmountDue, &kind, &stat, &d.DriverID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return domain.Delivery{}, err
	}
	d.PaymentType = domain.PaymentType(payment)
	d.Kind = domain.DeliveryKind(kind)
	d.Status = domain.DeliveryStatus(stat)
	if lat != nil && lng != nil {
		d.Location = &domain.Coordinate{Lat: *lat, Lng: *lng}
	}
	return d, nil
}

func coordArgs(c *domain.Coordinate) (lat, lng *float64) {
	if c == nil {
		return nil, nil
	}
	la, ln := c.Lat, c.Lng
	return &la, &ln
}
