package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Qasim374/freight-system/internal/models"
	"github.com/Qasim374/freight-system/internal/services"
	"github.com/Qasim374/freight-system/internal/utils"
)

// InvoiceHandler serves the payment reconciliation surface.
type InvoiceHandler struct {
	Service *services.InvoiceService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(service *services.InvoiceService, logger *log.Logger, timeout time.Duration) *InvoiceHandler {
	return &InvoiceHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateInvoice handles the broker raising an invoice.
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	if _, ok := utils.RequireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var invoiceReq models.InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&invoiceReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	invoice, err := h.Service.Create(ctx, invoiceReq)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to create invoice")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(invoice); err != nil {
		h.Logger.Println(err)
	}
}

// AdminUpdate handles the broker settling an invoice.
func (h *InvoiceHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := utils.RequireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var updateReq struct {
		InvoiceID string `json:"invoiceId"`
		Action    string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if updateReq.InvoiceID == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invoiceId is required")
		return
	}
	if updateReq.Action != "paid" {
		utils.SendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("unsupported action: %s", updateReq.Action))
		return
	}

	invoice, err := h.Service.MarkPaid(ctx, updateReq.InvoiceID)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to update invoice")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(invoice); err != nil {
		h.Logger.Println(err)
	}
}

// AttachProof handles a billed party uploading payment proof.
func (h *InvoiceHandler) AttachProof(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleClient, models.RoleVendor)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	invoiceID := r.PathValue("invoiceId")

	var proofReq struct {
		FileURL string `json:"fileUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&proofReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	invoice, err := h.Service.AttachProof(ctx, invoiceID, ident, proofReq.FileURL)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to attach payment proof")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(invoice); err != nil {
		h.Logger.Println(err)
	}
}

// GetShipmentInvoices handles listing a shipment's invoices.
func (h *InvoiceHandler) GetShipmentInvoices(w http.ResponseWriter, r *http.Request) {
	ident, ok := utils.RequireRole(w, r, models.RoleClient, models.RoleVendor, models.RoleAdmin)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	shipmentID := r.PathValue("shipmentId")

	invoices, err := h.Service.GetShipmentInvoices(ctx, shipmentID, ident)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch invoices")
		return
	}

	if len(invoices) == 0 {
		utils.SendErrorResponse(w, http.StatusNotFound, "no invoices found for this shipment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(invoices); err != nil {
		h.Logger.Println(err)
	}
}
