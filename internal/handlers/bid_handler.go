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

// BidHandler serves the vendor bidding surface.
type BidHandler struct {
	Service *services.BidService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewBidHandler creates a new BidHandler.
func NewBidHandler(service *services.BidService, logger *log.Logger, timeout time.Duration) *BidHandler {
	return &BidHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateBid handles a vendor submitting or revising a bid against a quote.
func (h *BidHandler) CreateBid(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleVendor)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	quoteID := r.PathValue("quoteId")

	var bidReq models.BidRequest
	if err := json.NewDecoder(r.Body).Decode(&bidReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newBid, err := h.Service.CreateBid(ctx, quoteID, ident.UserID, bidReq)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to create bid")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(newBid); err != nil {
		h.Logger.Println(err)
	}
}

// GetMyBids handles listing the vendor's own bids.
func (h *BidHandler) GetMyBids(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleVendor)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	bids, err := h.Service.GetVendorBids(ctx, ident.UserID, limitStr, offsetStr)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to retrieve bids")
		return
	}

	if len(bids) == 0 {
		utils.SendErrorResponse(w, http.StatusNotFound, "no bids found for this vendor")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(bids); err != nil {
		h.Logger.Println(err)
	}
}

// GetQuoteBids handles the broker's view of all bids against a quote.
func (h *BidHandler) GetQuoteBids(w http.ResponseWriter, r *http.Request) {
	if _, ok := utils.RequireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	quoteID := r.PathValue("quoteId")

	bids, err := h.Service.GetShipmentBids(ctx, quoteID)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to retrieve bids for quote")
		return
	}

	if len(bids) == 0 {
		utils.SendErrorResponse(w, http.StatusNotFound, "no bids found for the specified quote")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(bids); err != nil {
		h.Logger.Println(err)
	}
}
