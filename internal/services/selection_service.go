package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Qasim374/freight-system/internal/models"
	"github.com/Qasim374/freight-system/internal/repository"
	"github.com/Qasim374/freight-system/internal/router/config"
	"github.com/Qasim374/freight-system/internal/utils"
)

// SelectionService is the winner selection engine. It evaluates a quote's
// bids against the count and time thresholds, picks the cheapest offer and
// commits the marked-up price. Evaluation is idempotent: the first caller to
// pass the awaiting_bids guard wins, everyone else observes the result.
type SelectionService struct {
	Shipments repository.ShipmentRepository
	Bids      repository.BidRepository

	MarkupRate float64
	MarkupMin  float64
	MarkupMax  float64
	MinBids    int
	BidWindow  time.Duration

	// Now is the clock; replaced in tests.
	Now func() time.Time
}

// NewSelectionService creates a new SelectionService from configuration.
func NewSelectionService(shipments repository.ShipmentRepository, bids repository.BidRepository, cfg config.Config) *SelectionService {
	return &SelectionService{
		Shipments:  shipments,
		Bids:       bids,
		MarkupRate: cfg.MarkupRate,
		MarkupMin:  cfg.MarkupMin,
		MarkupMax:  cfg.MarkupMax,
		MinBids:    cfg.MinBidsForSelection,
		BidWindow:  time.Duration(cfg.BidWindowHours) * time.Hour,
		Now:        time.Now,
	}
}

// Evaluate checks whether selection should fire for a quote and fires it if
// so. Selection fires only while the quote is awaiting bids and either the
// bid count threshold or the bidding deadline has been reached. Before the
// threshold it returns a pending result with the remaining time; after a
// previous firing it returns the committed result unchanged.
func (s *SelectionService) Evaluate(ctx context.Context, quoteID string) (*models.SelectionResult, error) {
	shipment, err := s.Shipments.GetShipment(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	bids, err := s.Bids.GetShipmentBids(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if shipment.Status != models.AwaitingBids {
		return s.resultFor(shipment, len(bids)), nil
	}

	now := s.Now().UTC()
	deadline := shipment.CreatedAt.Add(s.BidWindow)
	if len(bids) < s.MinBids && now.Before(deadline) {
		result := s.resultFor(shipment, len(bids))
		result.TimeRemaining = int64(deadline.Sub(now).Seconds())
		return result, nil
	}

	if len(bids) == 0 {
		// Deadline passed with nothing to select; the quote stays open.
		return s.resultFor(shipment, 0), nil
	}

	// Bids arrive ordered by cost then submission time, so the winner is the
	// first entry: lowest cost, ties broken by earliest submission.
	winner := bids[0]
	return s.commit(ctx, quoteID, winner, s.MarkupRate)
}

// Override is the admin's manual selection: a specific bid and an optional
// markup override, validated against the configured bounds. A zero markup
// falls back to the default rate.
func (s *SelectionService) Override(ctx context.Context, quoteID, bidID string, markupRate float64) (*models.SelectionResult, error) {
	if markupRate == 0 {
		markupRate = s.MarkupRate
	}
	if markupRate < s.MarkupMin || markupRate > s.MarkupMax {
		return nil, models.NewValidationError(
			fmt.Sprintf("markup rate must be between %.2f and %.2f", s.MarkupMin, s.MarkupMax))
	}

	if _, err := s.Shipments.GetShipment(ctx, quoteID); err != nil {
		return nil, err
	}

	winner, err := s.Bids.GetBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if winner.ShipmentID != quoteID {
		return nil, models.NewValidationError("bid does not belong to this quote")
	}

	return s.commit(ctx, quoteID, *winner, markupRate)
}

// commit applies the selection transactionally. A lost race is not an error:
// the committed outcome is re-read and returned as-is.
func (s *SelectionService) commit(ctx context.Context, quoteID string, winner models.Bid, markupRate float64) (*models.SelectionResult, error) {
	finalPrice := utils.RoundMoney(winner.CostUSD * (1 + markupRate))

	if _, err := s.Shipments.ApplySelection(ctx, quoteID, winner, finalPrice); err != nil {
		return nil, err
	}

	shipment, err := s.Shipments.GetShipment(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	bids, err := s.Bids.GetShipmentBids(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return s.resultFor(shipment, len(bids)), nil
}

// resultFor shapes the client-facing view of a quote's selection state.
func (s *SelectionService) resultFor(shipment *models.Shipment, bidCount int) *models.SelectionResult {
	return &models.SelectionResult{
		QuoteID:          shipment.ID,
		Status:           shipment.Status,
		BidCount:         bidCount,
		CanBook:          shipment.Status == models.ClientReview && shipment.WinningBidID != nil,
		FinalPrice:       shipment.FinalPrice,
		SelectedVendorID: shipment.SelectedVendorID,
	}
}
