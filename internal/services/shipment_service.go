package services

import (
	"context"
	"time"

	"github.com/Qasim374/freight-system/internal/models"
	"github.com/Qasim374/freight-system/internal/repository"
	"github.com/Qasim374/freight-system/internal/utils"
)

// ShipmentService validates and serves quote requests.
type ShipmentService struct {
	Shipments repository.ShipmentRepository
}

// NewShipmentService creates a new ShipmentService.
func NewShipmentService(shipments repository.ShipmentRepository) *ShipmentService {
	return &ShipmentService{Shipments: shipments}
}

// CreateShipment validates and creates a new quote request, open for bids.
func (s *ShipmentService) CreateShipment(ctx context.Context, clientID string, req models.ShipmentRequest) (*models.Shipment, error) {
	if req.ContainerType == "" || req.Commodity == "" || req.NumContainers <= 0 {
		return nil, models.NewValidationError("missing required fields: containerType, commodity, numContainers")
	}

	if req.Mode != models.ModeExWorks && req.Mode != models.ModeFOB {
		return nil, models.NewValidationError("invalid mode, must be 'Ex-Works' or 'FOB'")
	}
	if req.Mode == models.ModeExWorks && req.CollectionAddress == "" {
		return nil, models.NewValidationError("collectionAddress is required for Ex-Works shipments")
	}

	if req.ShipmentDate.IsZero() || !req.ShipmentDate.After(time.Now().UTC()) {
		return nil, models.NewValidationError("shipmentDate must be in the future")
	}

	return s.Shipments.CreateShipment(ctx, clientID, req)
}

// GetShipment returns one shipment, enforcing that the caller is a party to
// it: the owning client, the selected vendor, or the broker.
func (s *ShipmentService) GetShipment(ctx context.Context, shipmentID string, ident models.Identity) (*models.Shipment, error) {
	shipment, err := s.Shipments.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := RequireParty(shipment, ident); err != nil {
		return nil, err
	}
	return shipment, nil
}

// GetClientShipments returns a client's quote requests.
func (s *ShipmentService) GetClientShipments(ctx context.Context, clientID, limitStr, offsetStr string) ([]models.Shipment, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.Shipments.GetClientShipments(ctx, clientID, limit, offset)
}

// RequireParty checks that the caller has standing on a shipment.
func RequireParty(shipment *models.Shipment, ident models.Identity) error {
	switch ident.Role {
	case models.RoleAdmin, models.RoleSystem:
		return nil
	case models.RoleClient:
		if shipment.ClientID == ident.UserID {
			return nil
		}
	case models.RoleVendor:
		if shipment.SelectedVendorID != nil && *shipment.SelectedVendorID == ident.UserID {
			return nil
		}
	}
	return models.NewForbidden("you are not a party to this shipment")
}
