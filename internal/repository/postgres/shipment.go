package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/repository"
)

type shipmentRepository struct {
	db *sql.DB
}

func NewShipmentRepository(db *sql.DB) repository.ShipmentRepository {
	return &shipmentRepository{db: db}
}

const shipmentColumns = `id, order_id, carrier, tracking_id, label_ref, cost_cents,
	tracking_status, last_checked_on, voided_on, created_on`

func scanShipment(row interface{ Scan(...any) error }) (*domain.Shipment, error) {
	s := &domain.Shipment{}
	err := row.Scan(&s.ID, &s.OrderID, &s.Carrier, &s.TrackingID, &s.LabelRef, &s.CostCents,
		&s.TrackingStatus, &s.LastCheckedOn, &s.VoidedOn, &s.CreatedOn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *shipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	query := `INSERT INTO shipments (order_id, carrier, tracking_id, label_ref, cost_cents, tracking_status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query, s.OrderID, s.Carrier, s.TrackingID, s.LabelRef, s.CostCents, s.TrackingStatus, time.Now()).Scan(&s.ID)
}

func (r *shipmentRepository) GetByOrderID(ctx context.Context, orderID int64) (*domain.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE order_id = $1`
	s, err := scanShipment(r.db.QueryRowContext(ctx, query, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *shipmentRepository) UpdateTrackingStatus(ctx context.Context, id int64, status domain.TrackingStatus, checkedAt time.Time) error {
	query := `UPDATE shipments SET tracking_status = $1, last_checked_on = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, checkedAt, id)
	return err
}

func (r *shipmentRepository) MarkVoided(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE shipments SET voided_on = $1 WHERE id = $2 AND voided_on IS NULL`
	_, err := r.db.ExecContext(ctx, query, at, id)
	return err
}

func (r *shipmentRepository) ListAwaitingScan(ctx context.Context) ([]domain.Shipment, error) {
	query := `SELECT s.id, s.order_id, s.carrier, s.tracking_id, s.label_ref, s.cost_cents,
	            s.tracking_status, s.last_checked_on, s.voided_on, s.created_on
	          FROM shipments s
	          JOIN sell_orders o ON o.id = s.order_id
	          WHERE s.voided_on IS NULL AND o.status IN ($1, $2)
	          ORDER BY s.last_checked_on NULLS FIRST`
	rows, err := r.db.QueryContext(ctx, query, domain.OrderStatusAwaitingDevice, domain.OrderStatusInTransit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shipments []domain.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, *s)
	}
	return shipments, rows.Err()
}
