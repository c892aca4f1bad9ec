package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Qasim374/freight-system/internal/models"
	"github.com/Qasim374/freight-system/internal/services"
	"github.com/Qasim374/freight-system/internal/utils"
)

// TrackingHandler serves the carrier tracking surface.
type TrackingHandler struct {
	Service *services.TrackingService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(service *services.TrackingService, logger *log.Logger, timeout time.Duration) *TrackingHandler {
	return &TrackingHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// Sweep handles a scheduled pass over active shipments.
func (h *TrackingHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	if _, ok := utils.RequireRole(w, r, models.RoleSystem, models.RoleAdmin); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	result, err := h.Service.Sweep(ctx)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "tracking sweep failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Println(err)
	}
}

// ApplyEvent handles a single carrier milestone for one shipment.
func (h *TrackingHandler) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	if _, ok := utils.RequireRole(w, r, models.RoleSystem, models.RoleAdmin); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	shipmentID := r.PathValue("shipmentId")

	var eventReq struct {
		Event string `json:"event"`
	}
	if err := json.NewDecoder(r.Body).Decode(&eventReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	shipment, err := h.Service.ApplyEvent(ctx, shipmentID, eventReq.Event)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to apply tracking event")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(shipment); err != nil {
		h.Logger.Println(err)
	}
}
