package services

import (
	"context"
	"strings"

	"github.com/Qasim374/freight-system/internal/models"
	"github.com/Qasim374/freight-system/internal/repository"
)

const carrierReferencePrefix = "FRT-"

// BookingService is the booking finalizer: it commits the winning bid into
// the shipment record and issues the carrier reference.
type BookingService struct {
	Shipments repository.ShipmentRepository
	Bids      repository.BidRepository
}

// NewBookingService creates a new BookingService.
func NewBookingService(shipments repository.ShipmentRepository, bids repository.BidRepository) *BookingService {
	return &BookingService{Shipments: shipments, Bids: bids}
}

// Book confirms a quote on behalf of its owning client. Preconditions: the
// shipment is in client_review with a winning bid set. The winning bid's
// sailing date is copied over and the carrier reference generated; the
// repository moves the shipment through booking to booked in one transaction.
func (s *BookingService) Book(ctx context.Context, quoteID, clientID string) (*models.Shipment, error) {
	shipment, err := s.Shipments.GetShipment(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if shipment.ClientID != clientID {
		return nil, models.NewForbidden("only the requesting client may book this quote")
	}
	if shipment.Status != models.ClientReview {
		return nil, models.NewNotReady("quote is not ready to book, winner selection has not completed")
	}
	if shipment.WinningBidID == nil {
		return nil, models.NewNotReady("no winning quote has been selected")
	}

	winner, err := s.Bids.GetBid(ctx, *shipment.WinningBidID)
	if err != nil {
		return nil, err
	}

	return s.Shipments.Book(ctx, quoteID, CarrierReference(quoteID), winner.SailingDate)
}

// CarrierReference derives the booking reference from the quote id:
// prefix plus the truncated id, uppercased.
func CarrierReference(quoteID string) string {
	ref := strings.ReplaceAll(quoteID, "-", "")
	if len(ref) > 8 {
		ref = ref[:8]
	}
	return carrierReferencePrefix + strings.ToUpper(ref)
}
