package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Qasim374/freight-system/internal/models"
)

func validShipmentRequest() models.ShipmentRequest {
	return models.ShipmentRequest{
		Mode:               models.ModeFOB,
		ContainerType:      "40ft",
		Commodity:          "electronics",
		NumContainers:      2,
		WeightPerContainer: 18000,
		ShipmentDate:       time.Now().UTC().AddDate(0, 1, 0),
	}
}

func TestCreateShipment(t *testing.T) {
	repo := newFakeRepo()
	svc := NewShipmentService(repo)

	shipment, err := svc.CreateShipment(context.Background(), "client-1", validShipmentRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shipment.Status != models.AwaitingBids {
		t.Errorf("expected new quote to await bids, got %s", shipment.Status)
	}
	if shipment.ClientID != "client-1" {
		t.Errorf("expected clientId client-1, got %s", shipment.ClientID)
	}
}

func TestCreateShipmentValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ShipmentRequest)
	}{
		{"missing container type", func(r *models.ShipmentRequest) { r.ContainerType = "" }},
		{"missing commodity", func(r *models.ShipmentRequest) { r.Commodity = "" }},
		{"zero containers", func(r *models.ShipmentRequest) { r.NumContainers = 0 }},
		{"unknown mode", func(r *models.ShipmentRequest) { r.Mode = "CIF" }},
		{"past shipment date", func(r *models.ShipmentRequest) { r.ShipmentDate = time.Now().UTC().AddDate(0, 0, -1) }},
		{"ex-works without collection address", func(r *models.ShipmentRequest) { r.Mode = models.ModeExWorks }},
	}

	repo := newFakeRepo()
	svc := NewShipmentService(repo)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validShipmentRequest()
			tt.mutate(&req)
			_, err := svc.CreateShipment(context.Background(), "client-1", req)
			if status, kind := errKind(err); status != http.StatusBadRequest || kind != models.KindValidation {
				t.Errorf("expected validation error, got %v %q (%v)", status, kind, err)
			}
		})
	}
}

func TestCreateShipmentExWorks(t *testing.T) {
	repo := newFakeRepo()
	svc := NewShipmentService(repo)

	req := validShipmentRequest()
	req.Mode = models.ModeExWorks
	req.CollectionAddress = "12 Industrial Estate, Lahore"

	shipment, err := svc.CreateShipment(context.Background(), "client-1", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shipment.CollectionAddress == nil || *shipment.CollectionAddress != req.CollectionAddress {
		t.Errorf("expected collection address to persist, got %v", shipment.CollectionAddress)
	}
}

func TestGetShipmentPartyCheck(t *testing.T) {
	repo := newFakeRepo()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	shipment := repo.seedShipment("ship-1", "client-1", models.Booked, created)
	vendorID := "vendor-a"
	shipment.SelectedVendorID = &vendorID

	svc := NewShipmentService(repo)

	tests := []struct {
		name       string
		ident      models.Identity
		wantStatus int
	}{
		{"owning client", models.Identity{UserID: "client-1", Role: models.RoleClient}, 0},
		{"selected vendor", models.Identity{UserID: "vendor-a", Role: models.RoleVendor}, 0},
		{"admin", models.Identity{UserID: "admin-1", Role: models.RoleAdmin}, 0},
		{"foreign client", models.Identity{UserID: "client-2", Role: models.RoleClient}, http.StatusForbidden},
		{"losing vendor", models.Identity{UserID: "vendor-b", Role: models.RoleVendor}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetShipment(context.Background(), "ship-1", tt.ident)
			status, _ := errKind(err)
			if status != tt.wantStatus {
				t.Errorf("expected status %d, got %d (%v)", tt.wantStatus, status, err)
			}
		})
	}
}
