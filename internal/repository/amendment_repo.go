package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Qasim374/freight-system/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const amendmentColumns = `id, bl_id, shipment_id, initiated_by, reason, extra_cost, delay_days, file_url,
	status, approved_by, vendor_reply_at, admin_review_at, client_response_at, created_at`

// rollbackFrom are the shipment states an accepted amendment may rewind to
// draft_bl from.
var rollbackFrom = []string{string(models.Booked), string(models.DraftBL), string(models.FinalBL)}

// AmendmentRepository is the data-access contract for the amendment
// negotiation. Transitions are optimistic: the expected pre-state travels in
// the WHERE clause, so two admins can never double-process one amendment.
type AmendmentRepository interface {
	CreateAmendment(ctx context.Context, amendment models.Amendment) (*models.Amendment, error)
	GetAmendment(ctx context.Context, amendmentID string) (*models.Amendment, error)
	GetShipmentAmendments(ctx context.Context, shipmentID string) ([]models.Amendment, error)
	VendorReply(ctx context.Context, amendmentID string, reply models.AmendmentReplyRequest) (*models.Amendment, error)
	Advance(ctx context.Context, amendmentID string, expected []models.AmendmentStatus, next models.AmendmentStatus, actor models.Identity) (*models.Amendment, error)
}

// PostgresAmendmentRepository implements AmendmentRepository against Postgres.
type PostgresAmendmentRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresAmendmentRepository creates a new PostgresAmendmentRepository.
func NewPostgresAmendmentRepository(db *pgxpool.Pool) *PostgresAmendmentRepository {
	return &PostgresAmendmentRepository{DB: db}
}

// CreateAmendment opens a new amendment unless one is still being negotiated
// for the same shipment. The WHERE NOT EXISTS guard plus a partial unique
// index keep the one-open-amendment invariant under races.
func (r *PostgresAmendmentRepository) CreateAmendment(ctx context.Context, amendment models.Amendment) (*models.Amendment, error) {
	amendment.ID = uuid.New().String()
	amendment.CreatedAt = time.Now().UTC()

	query := `INSERT INTO amendment (id, bl_id, shipment_id, initiated_by, reason, extra_cost, delay_days, file_url, status, created_at)
	          SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
	          WHERE NOT EXISTS (
	              SELECT 1 FROM amendment
	              WHERE shipment_id = $3 AND status NOT IN ($11, $12)
	          )
	          RETURNING ` + amendmentColumns
	row := r.DB.QueryRow(
		ctx,
		query,
		amendment.ID,
		amendment.BLID,
		amendment.ShipmentID,
		amendment.InitiatedBy,
		amendment.Reason,
		amendment.ExtraCost,
		amendment.DelayDays,
		amendment.FileURL,
		amendment.Status,
		amendment.CreatedAt,
		models.AmendmentAccepted,
		models.AmendmentRejected)
	created, err := scanAmendment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewAmendmentAlreadyOpen(amendment.ShipmentID)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// Lost the race against a concurrent create.
		return nil, models.NewAmendmentAlreadyOpen(amendment.ShipmentID)
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetAmendment returns one amendment by id.
func (r *PostgresAmendmentRepository) GetAmendment(ctx context.Context, amendmentID string) (*models.Amendment, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+amendmentColumns+` FROM amendment WHERE id = $1`, amendmentID)
	amendment, err := scanAmendment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("amendment not found")
	}
	if err != nil {
		return nil, err
	}
	return amendment, nil
}

// GetShipmentAmendments returns a shipment's amendments, newest first.
func (r *PostgresAmendmentRepository) GetShipmentAmendments(ctx context.Context, shipmentID string) ([]models.Amendment, error) {
	query := `SELECT ` + amendmentColumns + ` FROM amendment WHERE shipment_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.Query(ctx, query, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var amendments []models.Amendment
	for rows.Next() {
		amendment, err := scanAmendment(rows)
		if err != nil {
			return nil, err
		}
		amendments = append(amendments, *amendment)
	}
	return amendments, rows.Err()
}

// VendorReply records the vendor's cost/delay detail, moving the amendment
// from requested to vendor_replied.
func (r *PostgresAmendmentRepository) VendorReply(ctx context.Context, amendmentID string, reply models.AmendmentReplyRequest) (*models.Amendment, error) {
	query := `UPDATE amendment
	          SET status = $1, extra_cost = $2, delay_days = $3,
	              file_url = COALESCE(NULLIF($4, ''), file_url), vendor_reply_at = $5
	          WHERE id = $6 AND status = $7
	          RETURNING ` + amendmentColumns
	row := r.DB.QueryRow(ctx, query,
		models.AmendmentVendorReplied, reply.ExtraCost, reply.DelayDays, reply.FileURL,
		time.Now().UTC(), amendmentID, models.AmendmentRequested)
	amendment, err := scanAmendment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.stateMismatch(ctx, amendmentID, "reply")
	}
	if err != nil {
		return nil, err
	}
	return amendment, nil
}

// Advance moves an amendment to the next status only if its current status is
// one of the expected pre-states, stamping the acting party's timestamp. A
// transition to accepted additionally rolls the parent shipment back to
// draft_bl inside the same transaction, re-entering the BL approval loop.
func (r *PostgresAmendmentRepository) Advance(ctx context.Context, amendmentID string, expected []models.AmendmentStatus, next models.AmendmentStatus, actor models.Identity) (*models.Amendment, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	sets := []string{"status = $1"}
	args := []interface{}{next}
	argIndex := 2

	switch actor.Role {
	case models.RoleAdmin:
		sets = append(sets, fmt.Sprintf("admin_review_at = $%d", argIndex))
		args = append(args, now)
		argIndex++
	case models.RoleClient:
		sets = append(sets, fmt.Sprintf("client_response_at = $%d", argIndex))
		args = append(args, now)
		argIndex++
	}
	if next == models.AmendmentAccepted {
		sets = append(sets, fmt.Sprintf("approved_by = $%d", argIndex))
		args = append(args, actor.UserID)
		argIndex++
	}

	expectedStrs := make([]string, len(expected))
	for i, s := range expected {
		expectedStrs[i] = string(s)
	}
	query := fmt.Sprintf(`UPDATE amendment SET %s WHERE id = $%d AND status = ANY($%d) RETURNING %s`,
		strings.Join(sets, ", "), argIndex, argIndex+1, amendmentColumns)
	args = append(args, amendmentID, pq.Array(expectedStrs))

	row := tx.QueryRow(ctx, query, args...)
	amendment, err := scanAmendment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.stateMismatch(ctx, amendmentID, string(next))
	}
	if err != nil {
		return nil, err
	}

	if next == models.AmendmentAccepted {
		tag, err := tx.Exec(ctx, `UPDATE shipment SET status = $1 WHERE id = $2 AND status = ANY($3)`,
			models.DraftBL, amendment.ShipmentID, pq.Array(rollbackFrom))
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			var current models.ShipmentStatus
			if scanErr := tx.QueryRow(ctx, `SELECT status FROM shipment WHERE id = $1`, amendment.ShipmentID).Scan(&current); scanErr == nil {
				return nil, models.NewInvalidStateTransition(current, models.DraftBL)
			}
			return nil, models.NewNotFound("shipment not found")
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return amendment, nil
}

func (r *PostgresAmendmentRepository) stateMismatch(ctx context.Context, amendmentID, action string) error {
	var current models.AmendmentStatus
	err := r.DB.QueryRow(ctx, `SELECT status FROM amendment WHERE id = $1`, amendmentID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NewNotFound("amendment not found")
	}
	if err != nil {
		return err
	}
	return models.NewInvalidAmendmentState(current, action)
}

func scanAmendment(row pgx.Row) (*models.Amendment, error) {
	var a models.Amendment
	err := row.Scan(
		&a.ID,
		&a.BLID,
		&a.ShipmentID,
		&a.InitiatedBy,
		&a.Reason,
		&a.ExtraCost,
		&a.DelayDays,
		&a.FileURL,
		&a.Status,
		&a.ApprovedBy,
		&a.VendorReplyAt,
		&a.AdminReviewAt,
		&a.ClientResponseAt,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
