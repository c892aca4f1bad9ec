package services

import (
	"context"
	"time"

	"github.com/Qasim374/freight-system/internal/models"
	"github.com/Qasim374/freight-system/internal/repository"
	"github.com/Qasim374/freight-system/internal/utils"
)

// BidService validates and records vendor bids.
type BidService struct {
	Bids      repository.BidRepository
	Shipments repository.ShipmentRepository
}

// NewBidService creates a new BidService.
func NewBidService(bids repository.BidRepository, shipments repository.ShipmentRepository) *BidService {
	return &BidService{Bids: bids, Shipments: shipments}
}

// CreateBid submits or revises a vendor's offer against a quote. Bidding is
// only open while the shipment is awaiting bids; afterwards the door is shut
// regardless of how the quote resolved.
func (s *BidService) CreateBid(ctx context.Context, quoteID, vendorID string, req models.BidRequest) (*models.Bid, error) {
	if req.CostUSD <= 0 {
		return nil, models.NewValidationError("costUsd must be positive")
	}
	if req.CarrierName == "" {
		return nil, models.NewValidationError("carrierName is required")
	}
	if req.SailingDate.IsZero() || !req.SailingDate.After(time.Now().UTC()) {
		return nil, models.NewValidationError("sailingDate must be in the future")
	}

	shipment, err := s.Shipments.GetShipment(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if shipment.Status != models.AwaitingBids {
		return nil, models.NewForbidden("bidding is closed for this quote")
	}

	return s.Bids.UpsertBid(ctx, quoteID, vendorID, req)
}

// GetVendorBids returns a vendor's own bids.
func (s *BidService) GetVendorBids(ctx context.Context, vendorID, limitStr, offsetStr string) ([]models.Bid, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.Bids.GetVendorBids(ctx, vendorID, limit, offset)
}

// GetShipmentBids returns all bids against a quote, for the broker.
func (s *BidService) GetShipmentBids(ctx context.Context, quoteID string) ([]models.Bid, error) {
	if _, err := s.Shipments.GetShipment(ctx, quoteID); err != nil {
		return nil, err
	}
	return s.Bids.GetShipmentBids(ctx, quoteID)
}
