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

// ShipmentHandler serves the client-facing quote lifecycle: creation,
// selection results and booking.
type ShipmentHandler struct {
	Service   *services.ShipmentService
	Selection *services.SelectionService
	Booking   *services.BookingService
	Logger    *log.Logger
	Timeout   time.Duration
}

// NewShipmentHandler creates a new ShipmentHandler.
func NewShipmentHandler(service *services.ShipmentService, selection *services.SelectionService, booking *services.BookingService, logger *log.Logger, timeout time.Duration) *ShipmentHandler {
	return &ShipmentHandler{
		Service:   service,
		Selection: selection,
		Booking:   booking,
		Logger:    logger,
		Timeout:   timeout,
	}
}

// CreateQuote handles quote request creation.
func (h *ShipmentHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleClient)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var shipmentReq models.ShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&shipmentReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	shipment, err := h.Service.CreateShipment(ctx, ident.UserID, shipmentReq)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to create quote request")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(shipment); err != nil {
		h.Logger.Println(err)
	}
}

// GetMyQuotes handles listing the caller's own quote requests.
func (h *ShipmentHandler) GetMyQuotes(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleClient)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	shipments, err := h.Service.GetClientShipments(ctx, ident.UserID, limitStr, offsetStr)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch quote requests")
		return
	}

	if len(shipments) == 0 {
		utils.SendErrorResponse(w, http.StatusNotFound, "no quote requests found for this client")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(shipments); err != nil {
		h.Logger.Println(err)
	}
}

// GetQuote handles fetching one quote request.
func (h *ShipmentHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleClient, models.RoleVendor, models.RoleAdmin)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	quoteID := r.PathValue("quoteId")

	shipment, err := h.Service.GetShipment(ctx, quoteID, ident)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch quote request")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(shipment); err != nil {
		h.Logger.Println(err)
	}
}

// GetQuoteResult handles the selection-result poll. Reading the result also
// evaluates the winner selection engine, so the 48h deadline needs no timer.
func (h *ShipmentHandler) GetQuoteResult(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleClient, models.RoleAdmin, models.RoleSystem)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	quoteID := r.PathValue("quoteId")

	shipment, err := h.Service.GetShipment(ctx, quoteID, ident)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch quote request")
		return
	}

	result, err := h.Selection.Evaluate(ctx, shipment.ID)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to evaluate winner selection")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Println(err)
	}
}

// BookQuote handles the client's booking confirmation.
func (h *ShipmentHandler) BookQuote(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleClient)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	quoteID := r.PathValue("quoteId")

	shipment, err := h.Booking.Book(ctx, quoteID, ident.UserID)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to book quote")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(shipment); err != nil {
		h.Logger.Println(err)
	}
}

// AdminSelect handles the broker's manual winner selection with an optional
// markup override.
func (h *ShipmentHandler) AdminSelect(w http.ResponseWriter, r *http.Request) {
	if _, ok := utils.RequireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	quoteID := r.PathValue("quoteId")

	var selectReq struct {
		BidID      string  `json:"bidId"`
		MarkupRate float64 `json:"markupRate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&selectReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if selectReq.BidID == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "bidId is required")
		return
	}

	result, err := h.Selection.Override(ctx, quoteID, selectReq.BidID, selectReq.MarkupRate)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to apply manual selection")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Println(err)
	}
}
