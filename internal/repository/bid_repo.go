package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Qasim374/freight-system/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bidColumns = `id, shipment_id, vendor_id, cost_usd, carrier_name, sailing_date, status, created_at`

// BidRepository is the data-access contract for vendor bids. A vendor holds
// at most one bid per quote, enforced by a unique constraint; re-submission
// revises the existing row.
type BidRepository interface {
	UpsertBid(ctx context.Context, shipmentID, vendorID string, req models.BidRequest) (*models.Bid, error)
	GetBid(ctx context.Context, bidID string) (*models.Bid, error)
	GetShipmentBids(ctx context.Context, shipmentID string) ([]models.Bid, error)
	GetVendorBids(ctx context.Context, vendorID string, limit, offset int) ([]models.Bid, error)
}

// PostgresBidRepository implements BidRepository against Postgres.
type PostgresBidRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresBidRepository creates a new PostgresBidRepository.
func NewPostgresBidRepository(db *pgxpool.Pool) *PostgresBidRepository {
	return &PostgresBidRepository{DB: db}
}

// UpsertBid submits a new bid or revises the vendor's existing one. A revised
// bid returns to submitted status and its timestamp resets, so revision also
// moves the vendor to the back of the tie-break order. The bidding-open guard
// travels with the write: the insert only fires while the shipment is
// awaiting bids and the conflict update only touches bids still submitted, so
// a submission racing winner selection cannot rewrite a settled bid.
func (r *PostgresBidRepository) UpsertBid(ctx context.Context, shipmentID, vendorID string, req models.BidRequest) (*models.Bid, error) {
	query := `INSERT INTO bid (id, shipment_id, vendor_id, cost_usd, carrier_name, sailing_date, status, created_at)
	          SELECT $1, $2, $3, $4, $5, $6, $7, $8
	          WHERE EXISTS (SELECT 1 FROM shipment WHERE id = $2 AND status = $9)
	          ON CONFLICT (shipment_id, vendor_id) DO UPDATE
	          SET cost_usd = EXCLUDED.cost_usd, carrier_name = EXCLUDED.carrier_name,
	              sailing_date = EXCLUDED.sailing_date, status = EXCLUDED.status, created_at = EXCLUDED.created_at
	          WHERE bid.status = $7
	          RETURNING ` + bidColumns
	row := r.DB.QueryRow(
		ctx,
		query,
		uuid.New().String(),
		shipmentID,
		vendorID,
		req.CostUSD,
		req.CarrierName,
		req.SailingDate,
		models.SubmittedBid,
		time.Now().UTC(),
		models.AwaitingBids)
	bid, err := scanBid(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.biddingClosed(ctx, shipmentID)
	}
	if err != nil {
		return nil, err
	}
	return bid, nil
}

func (r *PostgresBidRepository) biddingClosed(ctx context.Context, shipmentID string) error {
	var current models.ShipmentStatus
	err := r.DB.QueryRow(ctx, `SELECT status FROM shipment WHERE id = $1`, shipmentID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NewNotFound("shipment not found")
	}
	if err != nil {
		return err
	}
	return models.NewForbidden("bidding is closed for this quote")
}

// GetBid returns one bid by id.
func (r *PostgresBidRepository) GetBid(ctx context.Context, bidID string) (*models.Bid, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+bidColumns+` FROM bid WHERE id = $1`, bidID)
	bid, err := scanBid(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("bid not found")
	}
	if err != nil {
		return nil, err
	}
	return bid, nil
}

// GetShipmentBids returns all bids against a quote, cheapest first with ties
// broken by earliest submission. The ordering is the selection order.
func (r *PostgresBidRepository) GetShipmentBids(ctx context.Context, shipmentID string) ([]models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bid WHERE shipment_id = $1 ORDER BY cost_usd, created_at`
	rows, err := r.DB.Query(ctx, query, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBids(rows)
}

// GetVendorBids returns a vendor's bids, newest first.
func (r *PostgresBidRepository) GetVendorBids(ctx context.Context, vendorID string, limit, offset int) ([]models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bid WHERE vendor_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, vendorID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBids(rows)
}

func scanBid(row pgx.Row) (*models.Bid, error) {
	var b models.Bid
	err := row.Scan(
		&b.ID,
		&b.ShipmentID,
		&b.VendorID,
		&b.CostUSD,
		&b.CarrierName,
		&b.SailingDate,
		&b.Status,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBids(rows pgx.Rows) ([]models.Bid, error) {
	var bids []models.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *bid)
	}
	return bids, rows.Err()
}
