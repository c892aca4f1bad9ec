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

// BLHandler serves the bill-of-lading leg: vendor uploads and client
// approval.
type BLHandler struct {
	Service *services.BLService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewBLHandler creates a new BLHandler.
func NewBLHandler(service *services.BLService, logger *log.Logger, timeout time.Duration) *BLHandler {
	return &BLHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// UploadBL handles a vendor attaching a BL document. The file itself goes to
// external storage first; this endpoint only records the returned URL.
func (h *BLHandler) UploadBL(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleVendor)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var uploadReq models.BLUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&uploadReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bl, err := h.Service.UploadBL(ctx, ident.UserID, uploadReq)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to upload bill of lading")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(bl); err != nil {
		h.Logger.Println(err)
	}
}

// ApproveBL handles the client approving the draft BL.
func (h *BLHandler) ApproveBL(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleClient)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	shipmentID := r.PathValue("shipmentId")

	shipment, err := h.Service.ApproveBL(ctx, shipmentID, ident.UserID)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to approve bill of lading")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(shipment); err != nil {
		h.Logger.Println(err)
	}
}
