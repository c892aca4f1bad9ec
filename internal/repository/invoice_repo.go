package repository

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Qasim374/freight-system/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const invoiceColumns = `id, shipment_id, amount, type, status, due_date, proof_url, created_at`

// payableStatuses are the states an invoice may be marked paid from.
var payableStatuses = []string{string(models.Unpaid), string(models.AwaitingVerification)}

// InvoiceRepository is the data-access contract for billing records. Status
// moves strictly forward; there is no rollback out of paid.
type InvoiceRepository interface {
	CreateInvoice(ctx context.Context, req models.InvoiceRequest) (*models.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error)
	GetShipmentInvoices(ctx context.Context, shipmentID string) ([]models.Invoice, error)
	AttachProof(ctx context.Context, invoiceID, proofURL string) (*models.Invoice, error)
	MarkPaid(ctx context.Context, invoiceID string) (*models.Invoice, error)
}

// PostgresInvoiceRepository implements InvoiceRepository against Postgres.
type PostgresInvoiceRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresInvoiceRepository creates a new PostgresInvoiceRepository.
func NewPostgresInvoiceRepository(db *pgxpool.Pool) *PostgresInvoiceRepository {
	return &PostgresInvoiceRepository{DB: db}
}

// CreateInvoice inserts a new unpaid invoice.
func (r *PostgresInvoiceRepository) CreateInvoice(ctx context.Context, req models.InvoiceRequest) (*models.Invoice, error) {
	newInvoice := models.Invoice{
		ID:         uuid.New().String(),
		ShipmentID: req.ShipmentID,
		Amount:     req.Amount,
		Type:       req.Type,
		Status:     models.Unpaid,
		DueDate:    req.DueDate,
		CreatedAt:  time.Now().UTC(),
	}
	insertQuery := `INSERT INTO invoice (id, shipment_id, amount, type, status, due_date, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		newInvoice.ID,
		newInvoice.ShipmentID,
		newInvoice.Amount,
		newInvoice.Type,
		newInvoice.Status,
		newInvoice.DueDate,
		newInvoice.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &newInvoice, nil
}

// GetInvoice returns one invoice by id.
func (r *PostgresInvoiceRepository) GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoice WHERE id = $1`, invoiceID)
	invoice, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("invoice not found")
	}
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// GetShipmentInvoices returns a shipment's invoices, newest first.
func (r *PostgresInvoiceRepository) GetShipmentInvoices(ctx context.Context, shipmentID string) ([]models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoice WHERE shipment_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.Query(ctx, query, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *invoice)
	}
	return invoices, rows.Err()
}

// AttachProof records an uploaded payment proof, moving the invoice from
// unpaid to awaiting_verification.
func (r *PostgresInvoiceRepository) AttachProof(ctx context.Context, invoiceID, proofURL string) (*models.Invoice, error) {
	query := `UPDATE invoice SET status = $1, proof_url = $2 WHERE id = $3 AND status = $4 RETURNING ` + invoiceColumns
	row := r.DB.QueryRow(ctx, query, models.AwaitingVerification, proofURL, invoiceID, models.Unpaid)
	invoice, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.stateMismatch(ctx, invoiceID, "attach proof")
	}
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// MarkPaid settles an invoice from unpaid or awaiting_verification. The
// unpaid path is the admin force-pay.
func (r *PostgresInvoiceRepository) MarkPaid(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	query := `UPDATE invoice SET status = $1 WHERE id = $2 AND status = ANY($3) RETURNING ` + invoiceColumns
	row := r.DB.QueryRow(ctx, query, models.Paid, invoiceID, pq.Array(payableStatuses))
	invoice, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.stateMismatch(ctx, invoiceID, "mark paid")
	}
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *PostgresInvoiceRepository) stateMismatch(ctx context.Context, invoiceID, action string) error {
	var current models.InvoiceStatus
	err := r.DB.QueryRow(ctx, `SELECT status FROM invoice WHERE id = $1`, invoiceID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NewNotFound("invoice not found")
	}
	if err != nil {
		return err
	}
	return models.NewErrorResponse(http.StatusConflict, models.KindInvalidState, "cannot "+action+" for invoice in status "+string(current))
}

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(
		&inv.ID,
		&inv.ShipmentID,
		&inv.Amount,
		&inv.Type,
		&inv.Status,
		&inv.DueDate,
		&inv.ProofURL,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
