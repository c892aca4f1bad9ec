package services

import (
	"context"
	"fmt"
	"log"

	"github.com/Qasim374/freight-system/internal/models"
	"github.com/Qasim374/freight-system/internal/repository"
)

// Carrier tracking events, in sailing order.
const (
	EventInTransit = "in_transit"
	EventSailed    = "sailed"
	EventDelivered = "delivered"
)

// trackingTransitions maps a carrier event onto the shipment status it
// drives toward. The expected pre-states come from the transition table, so
// tracking goes through the same conditional-write contract as every
// user-triggered action; an out-of-order event simply fails its guard.
var trackingTransitions = map[string]models.ShipmentStatus{
	EventInTransit: models.InTransit,
	EventSailed:    models.Sailed,
	EventDelivered: models.Delivered,
}

// CarrierClient is the external carrier-tracking integration. StatusOf
// returns the latest tracking event for a booking reference, or an empty
// string when nothing new is known.
type CarrierClient interface {
	StatusOf(ctx context.Context, carrierReference string) (string, error)
}

// NoopCarrierClient is the stub wired in until a live tracking feed exists.
// It never reports progress, so shipments advance only via ApplyEvent.
type NoopCarrierClient struct{}

func (NoopCarrierClient) StatusOf(ctx context.Context, carrierReference string) (string, error) {
	return "", nil
}

// SweepResult summarises one tracking sweep over the active fleet.
type SweepResult struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// TrackingService consumes carrier events and advances shipments through the
// carriage stages.
type TrackingService struct {
	Shipments repository.ShipmentRepository
	Carrier   CarrierClient
	Logger    *log.Logger
}

// NewTrackingService creates a new TrackingService.
func NewTrackingService(shipments repository.ShipmentRepository, carrier CarrierClient, logger *log.Logger) *TrackingService {
	return &TrackingService{Shipments: shipments, Carrier: carrier, Logger: logger}
}

// ApplyEvent applies one carrier event to one shipment through the standard
// transition guard.
func (s *TrackingService) ApplyEvent(ctx context.Context, shipmentID, event string) (*models.Shipment, error) {
	next, ok := trackingTransitions[event]
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("unknown tracking event: %s", event))
	}
	return s.Shipments.UpdateStatusIf(ctx, shipmentID, models.TransitionsInto(next), next)
}

// Sweep polls the carrier for every active shipment and applies whatever it
// reports. The sweep is best-effort: a failure on one shipment is logged and
// counted, and the sweep continues to the next.
func (s *TrackingService) Sweep(ctx context.Context) (*SweepResult, error) {
	active := []models.ShipmentStatus{models.FinalBL, models.InTransit, models.Sailed}
	shipments, err := s.Shipments.ListByStatus(ctx, active, 50, 0)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	for _, shipment := range shipments {
		if shipment.CarrierReference == nil {
			continue
		}
		result.Checked++

		event, err := s.Carrier.StatusOf(ctx, *shipment.CarrierReference)
		if err != nil {
			s.Logger.Printf("tracking sweep: carrier lookup failed for shipment %s: %v", shipment.ID, err)
			result.Failed++
			continue
		}
		if event == "" || string(shipment.Status) == event {
			continue
		}

		if _, err := s.ApplyEvent(ctx, shipment.ID, event); err != nil {
			s.Logger.Printf("tracking sweep: could not apply event %s to shipment %s: %v", event, shipment.ID, err)
			result.Failed++
			continue
		}
		result.Updated++
	}
	return result, nil
}
