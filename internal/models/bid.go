package models

import "time"

type BidStatus string // Status of a vendor's offer

const (
	SubmittedBid BidStatus = "submitted" // Offer is live while bidding is open
	SelectedBid  BidStatus = "selected"  // Offer won the quote
	RejectedBid  BidStatus = "rejected"  // Offer lost to a sibling
)

// Bid represents one vendor's priced offer against a quote request.
// A vendor holds at most one bid per quote; re-submitting revises it.
type Bid struct {
	ID          string    `json:"id"`
	ShipmentID  string    `json:"quoteRequestId"`
	VendorID    string    `json:"vendorId"`
	CostUSD     float64   `json:"costUsd"`
	CarrierName string    `json:"carrierName"`
	SailingDate time.Time `json:"sailingDate"`
	Status      BidStatus `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BidRequest represents the vendor payload for submitting or revising a bid.
type BidRequest struct {
	CostUSD     float64   `json:"costUsd"`
	CarrierName string    `json:"carrierName"`
	SailingDate time.Time `json:"sailingDate"`
}
