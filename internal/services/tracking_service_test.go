package services

import (
	"context"
	"io"
	"log"
	"net/http"
	"testing"
	"time"

	"github.com/Qasim374/freight-system/internal/models"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func seedTrackedShipment(repo *fakeRepo, id string, status models.ShipmentStatus) *models.Shipment {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	shipment := repo.seedShipment(id, "client-1", status, created)
	ref := "FRT-" + id
	shipment.CarrierReference = &ref
	return shipment
}

func TestApplyEventAdvancesInOrder(t *testing.T) {
	repo := newFakeRepo()
	seedTrackedShipment(repo, "ship-1", models.FinalBL)

	svc := NewTrackingService(repo, NoopCarrierClient{}, discardLogger())

	for _, step := range []struct {
		event string
		want  models.ShipmentStatus
	}{
		{EventInTransit, models.InTransit},
		{EventSailed, models.Sailed},
		{EventDelivered, models.Delivered},
	} {
		shipment, err := svc.ApplyEvent(context.Background(), "ship-1", step.event)
		if err != nil {
			t.Fatalf("event %s: unexpected error: %v", step.event, err)
		}
		if shipment.Status != step.want {
			t.Errorf("event %s: expected status %s, got %s", step.event, step.want, shipment.Status)
		}
	}
}

func TestApplyEventSkipsInTransit(t *testing.T) {
	repo := newFakeRepo()
	seedTrackedShipment(repo, "ship-1", models.FinalBL)

	svc := NewTrackingService(repo, NoopCarrierClient{}, discardLogger())
	shipment, err := svc.ApplyEvent(context.Background(), "ship-1", EventSailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shipment.Status != models.Sailed {
		t.Errorf("expected sailing straight from final_bl to be allowed, got %s", shipment.Status)
	}
}

func TestApplyEventOutOfOrder(t *testing.T) {
	repo := newFakeRepo()
	seedTrackedShipment(repo, "ship-1", models.FinalBL)

	svc := NewTrackingService(repo, NoopCarrierClient{}, discardLogger())
	_, err := svc.ApplyEvent(context.Background(), "ship-1", EventDelivered)
	if status, kind := errKind(err); status != http.StatusConflict || kind != models.KindInvalidState {
		t.Errorf("expected invalid_state for an out-of-order event, got %v %q (%v)", status, kind, err)
	}
}

func TestApplyEventUnknown(t *testing.T) {
	repo := newFakeRepo()
	seedTrackedShipment(repo, "ship-1", models.FinalBL)

	svc := NewTrackingService(repo, NoopCarrierClient{}, discardLogger())
	_, err := svc.ApplyEvent(context.Background(), "ship-1", "teleported")
	if status, _ := errKind(err); status != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown event, got %v (%v)", status, err)
	}
}

func TestSweepAppliesCarrierEvents(t *testing.T) {
	repo := newFakeRepo()
	seedTrackedShipment(repo, "ship-1", models.FinalBL)
	seedTrackedShipment(repo, "ship-2", models.InTransit)
	seedTrackedShipment(repo, "ship-3", models.Sailed)

	carrier := scriptedCarrier{events: map[string]string{
		"FRT-ship-1": EventInTransit,
		"FRT-ship-2": EventSailed,
		"FRT-ship-3": EventSailed, // no change
	}}

	svc := NewTrackingService(repo, carrier, discardLogger())
	result, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Checked != 3 {
		t.Errorf("expected 3 shipments checked, got %d", result.Checked)
	}
	if result.Updated != 2 {
		t.Errorf("expected 2 shipments updated, got %d", result.Updated)
	}
	if repo.shipments["ship-1"].Status != models.InTransit {
		t.Errorf("expected ship-1 in transit, got %s", repo.shipments["ship-1"].Status)
	}
	if repo.shipments["ship-2"].Status != models.Sailed {
		t.Errorf("expected ship-2 sailed, got %s", repo.shipments["ship-2"].Status)
	}
	if repo.shipments["ship-3"].Status != models.Sailed {
		t.Errorf("expected ship-3 untouched, got %s", repo.shipments["ship-3"].Status)
	}
}

func TestSweepContinuesPastFailures(t *testing.T) {
	repo := newFakeRepo()
	seedTrackedShipment(repo, "ship-1", models.FinalBL)
	seedTrackedShipment(repo, "ship-2", models.FinalBL)

	carrier := scriptedCarrier{events: map[string]string{
		"FRT-ship-1": "fail",
		"FRT-ship-2": EventInTransit,
	}}

	svc := NewTrackingService(repo, carrier, discardLogger())
	result, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", result.Failed)
	}
	if result.Updated != 1 {
		t.Errorf("expected the sweep to continue past the failure, got %d updated", result.Updated)
	}
	if repo.shipments["ship-2"].Status != models.InTransit {
		t.Errorf("expected ship-2 in transit, got %s", repo.shipments["ship-2"].Status)
	}
}

func TestSweepSkipsUnreferencedShipments(t *testing.T) {
	repo := newFakeRepo()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.seedShipment("ship-1", "client-1", models.FinalBL, created)

	svc := NewTrackingService(repo, NoopCarrierClient{}, discardLogger())
	result, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Checked != 0 {
		t.Errorf("expected shipments without a carrier reference to be skipped, got %d checked", result.Checked)
	}
}
