package services

import (
	"context"
	"time"

	"github.com/Qasim374/freight-system/internal/models"
	"github.com/Qasim374/freight-system/internal/repository"
)

// InvoiceService is the payment status tracker: unpaid invoices collect a
// payment proof and an admin settles them.
type InvoiceService struct {
	Invoices  repository.InvoiceRepository
	Shipments repository.ShipmentRepository
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(invoices repository.InvoiceRepository, shipments repository.ShipmentRepository) *InvoiceService {
	return &InvoiceService{Invoices: invoices, Shipments: shipments}
}

// Create raises an invoice against a shipment.
func (s *InvoiceService) Create(ctx context.Context, req models.InvoiceRequest) (*models.Invoice, error) {
	if req.ShipmentID == "" || req.Amount <= 0 {
		return nil, models.NewValidationError("shipmentId and a positive amount are required")
	}
	if req.Type != models.ClientInvoice && req.Type != models.VendorInvoice {
		return nil, models.NewValidationError("type must be 'client' or 'vendor'")
	}
	if req.DueDate.IsZero() {
		req.DueDate = time.Now().UTC().AddDate(0, 0, 30)
	}

	if _, err := s.Shipments.GetShipment(ctx, req.ShipmentID); err != nil {
		return nil, err
	}

	return s.Invoices.CreateInvoice(ctx, req)
}

// AttachProof records a payment proof uploaded by the billed party, moving
// the invoice to awaiting_verification. Client invoices accept proof from
// the shipment's client, vendor invoices from the assigned vendor.
func (s *InvoiceService) AttachProof(ctx context.Context, invoiceID string, ident models.Identity, proofURL string) (*models.Invoice, error) {
	if proofURL == "" {
		return nil, models.NewValidationError("fileUrl is required")
	}

	invoice, err := s.Invoices.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	shipment, err := s.Shipments.GetShipment(ctx, invoice.ShipmentID)
	if err != nil {
		return nil, err
	}

	switch invoice.Type {
	case models.ClientInvoice:
		if ident.Role != models.RoleClient || shipment.ClientID != ident.UserID {
			return nil, models.NewForbidden("only the billed client may upload payment proof")
		}
	case models.VendorInvoice:
		if ident.Role != models.RoleVendor || shipment.SelectedVendorID == nil || *shipment.SelectedVendorID != ident.UserID {
			return nil, models.NewForbidden("only the billed vendor may upload payment proof")
		}
	}

	return s.Invoices.AttachProof(ctx, invoiceID, proofURL)
}

// MarkPaid settles an invoice on the broker's say-so, from unpaid or
// awaiting_verification.
func (s *InvoiceService) MarkPaid(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	return s.Invoices.MarkPaid(ctx, invoiceID)
}

// GetShipmentInvoices returns a shipment's invoices for any of its parties.
func (s *InvoiceService) GetShipmentInvoices(ctx context.Context, shipmentID string, ident models.Identity) ([]models.Invoice, error) {
	shipment, err := s.Shipments.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := RequireParty(shipment, ident); err != nil {
		return nil, err
	}
	return s.Invoices.GetShipmentInvoices(ctx, shipmentID)
}
