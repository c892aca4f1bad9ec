package services

import (
	"context"

	"github.com/Qasim374/freight-system/internal/models"
	"github.com/Qasim374/freight-system/internal/repository"
)

// BLService owns the bill-of-lading leg of the shipment lifecycle: vendor
// uploads and client approval.
type BLService struct {
	BLs       repository.BLRepository
	Shipments repository.ShipmentRepository
}

// NewBLService creates a new BLService.
func NewBLService(bls repository.BLRepository, shipments repository.ShipmentRepository) *BLService {
	return &BLService{BLs: bls, Shipments: shipments}
}

// UploadBL attaches a BL document on behalf of the winning vendor. The first
// draft upload moves the shipment from booked to draft_bl; re-uploads while
// in draft_bl replace the document. A final document may only be attached
// once the draft has been approved.
func (s *BLService) UploadBL(ctx context.Context, vendorID string, req models.BLUploadRequest) (*models.BillOfLading, error) {
	if req.ShipmentID == "" || req.FileURL == "" {
		return nil, models.NewValidationError("shipmentId and fileUrl are required")
	}
	if req.Version != models.BLDraft && req.Version != models.BLFinal {
		return nil, models.NewValidationError("version must be 'draft' or 'final'")
	}

	shipment, err := s.Shipments.GetShipment(ctx, req.ShipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.SelectedVendorID == nil || *shipment.SelectedVendorID != vendorID {
		return nil, models.NewForbidden("only the winning vendor may upload a bill of lading")
	}

	switch req.Version {
	case models.BLDraft:
		if shipment.Status == models.Booked {
			if _, err := s.Shipments.UpdateStatusIf(ctx, req.ShipmentID,
				[]models.ShipmentStatus{models.Booked}, models.DraftBL); err != nil {
				return nil, err
			}
		} else if shipment.Status != models.DraftBL {
			return nil, models.NewInvalidStateTransition(shipment.Status, models.DraftBL)
		}
	case models.BLFinal:
		if shipment.Status != models.FinalBL {
			return nil, models.NewInvalidStateTransition(shipment.Status, models.FinalBL)
		}
	}

	return s.BLs.UpsertBL(ctx, req.ShipmentID, req.Version, req.FileURL, vendorID)
}

// ApproveBL records the client's approval of the draft BL, moving the
// shipment to final_bl.
func (s *BLService) ApproveBL(ctx context.Context, shipmentID, clientID string) (*models.Shipment, error) {
	shipment, err := s.Shipments.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.ClientID != clientID {
		return nil, models.NewForbidden("only the requesting client may approve the bill of lading")
	}

	return s.BLs.ApproveDraftBL(ctx, shipmentID)
}
