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

// AmendmentHandler serves the amendment negotiation surface.
type AmendmentHandler struct {
	Service *services.AmendmentService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewAmendmentHandler creates a new AmendmentHandler.
func NewAmendmentHandler(service *services.AmendmentService, logger *log.Logger, timeout time.Duration) *AmendmentHandler {
	return &AmendmentHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateAmendment handles a vendor or the broker opening an amendment
// against a bill of lading.
func (h *AmendmentHandler) CreateAmendment(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleVendor, models.RoleAdmin)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var amendmentReq models.AmendmentRequest
	if err := json.NewDecoder(r.Body).Decode(&amendmentReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amendment, err := h.Service.Create(ctx, ident, amendmentReq)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to create amendment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(amendment); err != nil {
		h.Logger.Println(err)
	}
}

// VendorReply handles the vendor supplying cost/delay detail on a requested
// amendment.
func (h *AmendmentHandler) VendorReply(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleVendor)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	amendmentID := r.PathValue("amendmentId")

	var replyReq models.AmendmentReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&replyReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amendment, err := h.Service.VendorReply(ctx, amendmentID, ident.UserID, replyReq)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to record vendor reply")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(amendment); err != nil {
		h.Logger.Println(err)
	}
}

// AdminAction handles the broker's decision on an amendment.
func (h *AmendmentHandler) AdminAction(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var actionReq struct {
		AmendmentID string `json:"amendmentId"`
		Action      string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&actionReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if actionReq.AmendmentID == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "amendmentId is required")
		return
	}

	amendment, err := h.Service.AdminAction(ctx, actionReq.AmendmentID, ident.UserID, actionReq.Action)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to apply amendment decision")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(amendment); err != nil {
		h.Logger.Println(err)
	}
}

// ClientRespond handles the client accepting or canceling a pushed
// amendment.
func (h *AmendmentHandler) ClientRespond(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleClient)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	amendmentID := r.PathValue("amendmentId")

	var respondReq struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&respondReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amendment, err := h.Service.ClientRespond(ctx, amendmentID, ident.UserID, respondReq.Action)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to record client response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(amendment); err != nil {
		h.Logger.Println(err)
	}
}

// GetShipmentAmendments handles listing a shipment's amendments.
func (h *AmendmentHandler) GetShipmentAmendments(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleClient, models.RoleVendor, models.RoleAdmin)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	shipmentID := r.PathValue("shipmentId")

	amendments, err := h.Service.GetShipmentAmendments(ctx, shipmentID, ident)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch amendments")
		return
	}

	if len(amendments) == 0 {
		utils.SendErrorResponse(w, http.StatusNotFound, "no amendments found for this shipment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(amendments); err != nil {
		h.Logger.Println(err)
	}
}
