package models

import "time"

type (
	InvoiceType   string // Which side of the brokerage the invoice bills
	InvoiceStatus string // Payment state
)

const (
	ClientInvoice InvoiceType = "client"
	VendorInvoice InvoiceType = "vendor"

	Unpaid               InvoiceStatus = "unpaid"
	AwaitingVerification InvoiceStatus = "awaiting_verification" // Proof uploaded, admin check pending
	Paid                 InvoiceStatus = "paid"                   // Terminal
)

// Invoice is a billing record for one shipment party.
type Invoice struct {
	ID         string        `json:"id"`
	ShipmentID string        `json:"shipmentId"`
	Amount     float64       `json:"amount"`
	Type       InvoiceType   `json:"type"`
	Status     InvoiceStatus `json:"status"`
	DueDate    time.Time     `json:"dueDate"`
	ProofURL   *string       `json:"proofUrl,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// InvoiceRequest represents the admin payload for raising an invoice.
type InvoiceRequest struct {
	ShipmentID string      `json:"shipmentId"`
	Amount     float64     `json:"amount"`
	Type       InvoiceType `json:"type"`
	DueDate    time.Time   `json:"dueDate"`
}
