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

const blColumns = `id, shipment_id, version, file_url, uploaded_by, approved, uploaded_at`

// BLRepository is the data-access contract for bills of lading. One draft and
// one final row per shipment, enforced by a unique constraint.
type BLRepository interface {
	UpsertBL(ctx context.Context, shipmentID string, version models.BLVersion, fileURL, uploadedBy string) (*models.BillOfLading, error)
	GetBL(ctx context.Context, shipmentID string, version models.BLVersion) (*models.BillOfLading, error)
	GetBLByID(ctx context.Context, blID string) (*models.BillOfLading, error)
	ApproveDraftBL(ctx context.Context, shipmentID string) (*models.Shipment, error)
}

// PostgresBLRepository implements BLRepository against Postgres.
type PostgresBLRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresBLRepository creates a new PostgresBLRepository.
func NewPostgresBLRepository(db *pgxpool.Pool) *PostgresBLRepository {
	return &PostgresBLRepository{DB: db}
}

// UpsertBL attaches a document for the given version, replacing any earlier
// upload. A replaced document drops back to unapproved.
func (r *PostgresBLRepository) UpsertBL(ctx context.Context, shipmentID string, version models.BLVersion, fileURL, uploadedBy string) (*models.BillOfLading, error) {
	query := `INSERT INTO bill_of_lading (id, shipment_id, version, file_url, uploaded_by, approved, uploaded_at)
	          VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	          ON CONFLICT (shipment_id, version) DO UPDATE
	          SET file_url = EXCLUDED.file_url, uploaded_by = EXCLUDED.uploaded_by,
	              approved = FALSE, uploaded_at = EXCLUDED.uploaded_at
	          RETURNING ` + blColumns
	row := r.DB.QueryRow(ctx, query, uuid.New().String(), shipmentID, version, fileURL, uploadedBy, time.Now().UTC())
	return scanBL(row)
}

// GetBL returns the shipment's BL row for one version.
func (r *PostgresBLRepository) GetBL(ctx context.Context, shipmentID string, version models.BLVersion) (*models.BillOfLading, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+blColumns+` FROM bill_of_lading WHERE shipment_id = $1 AND version = $2`,
		shipmentID, version)
	bl, err := scanBL(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("bill of lading not found")
	}
	if err != nil {
		return nil, err
	}
	return bl, nil
}

// GetBLByID returns one BL row by id.
func (r *PostgresBLRepository) GetBLByID(ctx context.Context, blID string) (*models.BillOfLading, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+blColumns+` FROM bill_of_lading WHERE id = $1`, blID)
	bl, err := scanBL(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("bill of lading not found")
	}
	if err != nil {
		return nil, err
	}
	return bl, nil
}

// ApproveDraftBL flips the draft document to approved and moves the shipment
// from draft_bl to final_bl in one transaction. The status guard rejects
// approval of anything but a shipment sitting on its draft.
func (r *PostgresBLRepository) ApproveDraftBL(ctx context.Context, shipmentID string) (*models.Shipment, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE bill_of_lading SET approved = TRUE WHERE shipment_id = $1 AND version = $2`,
		shipmentID, models.BLDraft)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, models.NewNotFound("no draft bill of lading to approve")
	}

	updateQuery := `UPDATE shipment SET status = $1 WHERE id = $2 AND status = $3 RETURNING ` + shipmentColumns
	row := tx.QueryRow(ctx, updateQuery, models.FinalBL, shipmentID, models.DraftBL)
	shipment, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		var current models.ShipmentStatus
		if scanErr := tx.QueryRow(ctx, `SELECT status FROM shipment WHERE id = $1`, shipmentID).Scan(&current); scanErr == nil {
			return nil, models.NewInvalidStateTransition(current, models.FinalBL)
		}
		return nil, models.NewNotFound("shipment not found")
	}
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return shipment, nil
}

func scanBL(row pgx.Row) (*models.BillOfLading, error) {
	var bl models.BillOfLading
	err := row.Scan(
		&bl.ID,
		&bl.ShipmentID,
		&bl.Version,
		&bl.FileURL,
		&bl.UploadedBy,
		&bl.Approved,
		&bl.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bl, nil
}
