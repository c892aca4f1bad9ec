package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Qasim374/freight-system/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const shipmentColumns = `id, client_id, mode, container_type, commodity, num_containers, weight_per_container,
	shipment_date, collection_address, status, selected_vendor_id, winning_quote_id, final_price,
	carrier_reference, sailing_date, created_at`

// ShipmentRepository is the data-access contract for quote requests and
// shipments. Every state change is a conditional write: the expected status
// is part of the WHERE clause, so concurrent callers can never double-apply
// a transition.
type ShipmentRepository interface {
	CreateShipment(ctx context.Context, clientID string, req models.ShipmentRequest) (*models.Shipment, error)
	GetShipment(ctx context.Context, shipmentID string) (*models.Shipment, error)
	GetClientShipments(ctx context.Context, clientID string, limit, offset int) ([]models.Shipment, error)
	ListByStatus(ctx context.Context, statuses []models.ShipmentStatus, limit, offset int) ([]models.Shipment, error)
	UpdateStatusIf(ctx context.Context, shipmentID string, expected []models.ShipmentStatus, next models.ShipmentStatus) (*models.Shipment, error)
	ApplySelection(ctx context.Context, shipmentID string, winner models.Bid, finalPrice float64) (bool, error)
	Book(ctx context.Context, shipmentID, carrierReference string, sailingDate time.Time) (*models.Shipment, error)
}

// PostgresShipmentRepository implements ShipmentRepository against Postgres.
type PostgresShipmentRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresShipmentRepository creates a new PostgresShipmentRepository.
func NewPostgresShipmentRepository(db *pgxpool.Pool) *PostgresShipmentRepository {
	return &PostgresShipmentRepository{DB: db}
}

// CreateShipment inserts a new quote request, open for bids.
func (r *PostgresShipmentRepository) CreateShipment(ctx context.Context, clientID string, req models.ShipmentRequest) (*models.Shipment, error) {
	newShipment := models.Shipment{
		ID:                 uuid.New().String(),
		ClientID:           clientID,
		Mode:               req.Mode,
		ContainerType:      req.ContainerType,
		Commodity:          req.Commodity,
		NumContainers:      req.NumContainers,
		WeightPerContainer: req.WeightPerContainer,
		ShipmentDate:       req.ShipmentDate,
		Status:             models.AwaitingBids,
		CreatedAt:          time.Now().UTC(),
	}
	if req.Mode == models.ModeExWorks {
		addr := req.CollectionAddress
		newShipment.CollectionAddress = &addr
	}

	insertQuery := `INSERT INTO shipment (id, client_id, mode, container_type, commodity, num_containers,
	                weight_per_container, shipment_date, collection_address, status, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		newShipment.ID,
		newShipment.ClientID,
		newShipment.Mode,
		newShipment.ContainerType,
		newShipment.Commodity,
		newShipment.NumContainers,
		newShipment.WeightPerContainer,
		newShipment.ShipmentDate,
		newShipment.CollectionAddress,
		newShipment.Status,
		newShipment.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &newShipment, nil
}

// GetShipment returns one shipment by id.
func (r *PostgresShipmentRepository) GetShipment(ctx context.Context, shipmentID string) (*models.Shipment, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipment WHERE id = $1`, shipmentID)
	shipment, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("shipment not found")
	}
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// GetClientShipments returns a client's quote requests, newest first.
func (r *PostgresShipmentRepository) GetClientShipments(ctx context.Context, clientID string, limit, offset int) ([]models.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipment WHERE client_id = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectShipments(rows)
}

// ListByStatus returns shipments whose status is in the given set.
func (r *PostgresShipmentRepository) ListByStatus(ctx context.Context, statuses []models.ShipmentStatus, limit, offset int) ([]models.Shipment, error) {
	statusStrs := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrs[i] = string(s)
	}

	query := `SELECT ` + shipmentColumns + ` FROM shipment WHERE status = ANY($1)
	          ORDER BY created_at LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, pq.Array(statusStrs), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectShipments(rows)
}

// UpdateStatusIf transitions a shipment only if its current status is one of
// the expected pre-states. A mismatch mutates nothing and reports the actual
// current status.
func (r *PostgresShipmentRepository) UpdateStatusIf(ctx context.Context, shipmentID string, expected []models.ShipmentStatus, next models.ShipmentStatus) (*models.Shipment, error) {
	expectedStrs := make([]string, len(expected))
	for i, s := range expected {
		expectedStrs[i] = string(s)
	}

	updateQuery := `UPDATE shipment SET status = $1 WHERE id = $2 AND status = ANY($3) RETURNING ` + shipmentColumns
	row := r.DB.QueryRow(ctx, updateQuery, next, shipmentID, pq.Array(expectedStrs))
	shipment, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.transitionMismatch(ctx, shipmentID, next)
	}
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// ApplySelection commits a winner in a single transaction: the shipment moves
// from awaiting_bids to client_review with the winner fields set, the winning
// bid becomes selected and all siblings rejected. Returns false without
// mutating anything if another caller already fired.
func (r *PostgresShipmentRepository) ApplySelection(ctx context.Context, shipmentID string, winner models.Bid, finalPrice float64) (bool, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	shipmentUpdate := `UPDATE shipment
	                   SET status = $1, selected_vendor_id = $2, winning_quote_id = $3, final_price = $4
	                   WHERE id = $5 AND status = $6`
	tag, err := tx.Exec(ctx, shipmentUpdate,
		models.ClientReview, winner.VendorID, winner.ID, finalPrice, shipmentID, models.AwaitingBids)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err = tx.Exec(ctx, `UPDATE bid SET status = $1 WHERE id = $2`, models.SelectedBid, winner.ID); err != nil {
		return false, err
	}
	if _, err = tx.Exec(ctx, `UPDATE bid SET status = $1 WHERE shipment_id = $2 AND id <> $3`,
		models.RejectedBid, shipmentID, winner.ID); err != nil {
		return false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Book finalizes a booking in one transaction: the shipment passes through
// the transitional booking status and lands on booked with the carrier
// reference and sailing date committed. The client_review guard makes the
// operation fail cleanly when the quote is not ready or already booked.
func (r *PostgresShipmentRepository) Book(ctx context.Context, shipmentID, carrierReference string, sailingDate time.Time) (*models.Shipment, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE shipment SET status = $1 WHERE id = $2 AND status = $3`,
		models.Booking, shipmentID, models.ClientReview)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, r.transitionMismatch(ctx, shipmentID, models.Booking)
	}

	bookQuery := `UPDATE shipment SET status = $1, carrier_reference = $2, sailing_date = $3
	              WHERE id = $4 AND status = $5 RETURNING ` + shipmentColumns
	row := tx.QueryRow(ctx, bookQuery, models.Booked, carrierReference, sailingDate, shipmentID, models.Booking)
	shipment, err := scanShipment(row)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return shipment, nil
}

// transitionMismatch distinguishes a missing shipment from a wrong-state one
// after a conditional update touched zero rows.
func (r *PostgresShipmentRepository) transitionMismatch(ctx context.Context, shipmentID string, attempted models.ShipmentStatus) error {
	var current models.ShipmentStatus
	err := r.DB.QueryRow(ctx, `SELECT status FROM shipment WHERE id = $1`, shipmentID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NewNotFound("shipment not found")
	}
	if err != nil {
		return err
	}
	return models.NewInvalidStateTransition(current, attempted)
}

func scanShipment(row pgx.Row) (*models.Shipment, error) {
	var s models.Shipment
	err := row.Scan(
		&s.ID,
		&s.ClientID,
		&s.Mode,
		&s.ContainerType,
		&s.Commodity,
		&s.NumContainers,
		&s.WeightPerContainer,
		&s.ShipmentDate,
		&s.CollectionAddress,
		&s.Status,
		&s.SelectedVendorID,
		&s.WinningBidID,
		&s.FinalPrice,
		&s.CarrierReference,
		&s.SailingDate,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectShipments(rows pgx.Rows) ([]models.Shipment, error) {
	var shipments []models.Shipment
	for rows.Next() {
		shipment, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, *shipment)
	}
	return shipments, rows.Err()
}
