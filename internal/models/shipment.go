package models

import "time"

type (
	ShipmentMode   string // Incoterm under which the cargo is offered
	ShipmentStatus string // Stage of the quote-to-delivery lifecycle
)

const (
	ModeExWorks ShipmentMode = "Ex-Works"
	ModeFOB     ShipmentMode = "FOB"

	AwaitingBids ShipmentStatus = "awaiting_bids" // Quote open for vendor bids
	ClientReview ShipmentStatus = "client_review" // Winner selected, price shown to client
	Booking      ShipmentStatus = "booking"       // Transitional, inside the booking transaction
	Booked       ShipmentStatus = "booked"        // Vendor committed, carrier reference issued
	DraftBL      ShipmentStatus = "draft_bl"      // Draft bill of lading uploaded
	FinalBL      ShipmentStatus = "final_bl"      // Draft approved by client
	InTransit    ShipmentStatus = "in_transit"    // Cargo loaded / underway
	Sailed       ShipmentStatus = "sailed"        // Vessel departed
	Delivered    ShipmentStatus = "delivered"     // Terminal
)

// ValidShipmentTransitions is the authoritative forward transition table.
// The only backward edge is the amendment rollback into draft_bl.
var ValidShipmentTransitions = map[ShipmentStatus][]ShipmentStatus{
	AwaitingBids: {ClientReview},
	ClientReview: {Booking},
	Booking:      {Booked},
	Booked:       {DraftBL},
	DraftBL:      {FinalBL, DraftBL},
	FinalBL:      {InTransit, Sailed, DraftBL},
	InTransit:    {Sailed},
	Sailed:       {Delivered},
	Delivered:    {},
}

// CanTransition reports whether from -> to is a legal shipment transition.
func CanTransition(from, to ShipmentStatus) bool {
	for _, next := range ValidShipmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionsInto returns every status that may move directly into to. It is
// the expected-status set for a conditional write targeting to.
func TransitionsInto(to ShipmentStatus) []ShipmentStatus {
	var from []ShipmentStatus
	for status := range ValidShipmentTransitions {
		if CanTransition(status, to) {
			from = append(from, status)
		}
	}
	return from
}

// Shipment represents one client's quote request and its progress through
// bidding, booking and carriage. Nullable fields are set as the lifecycle
// advances and never cleared.
type Shipment struct {
	ID                 string         `json:"id"`
	ClientID           string         `json:"clientId"`
	Mode               ShipmentMode   `json:"mode"`
	ContainerType      string         `json:"containerType"`
	Commodity          string         `json:"commodity"`
	NumContainers      int            `json:"numContainers"`
	WeightPerContainer float64        `json:"weightPerContainer,omitempty"`
	ShipmentDate       time.Time      `json:"shipmentDate"`
	CollectionAddress  *string        `json:"collectionAddress,omitempty"`
	Status             ShipmentStatus `json:"status"`
	SelectedVendorID   *string        `json:"selectedVendorId,omitempty"`
	WinningBidID       *string        `json:"winningQuoteId,omitempty"`
	FinalPrice         *float64       `json:"finalPrice,omitempty"`
	CarrierReference   *string        `json:"carrierReference,omitempty"`
	SailingDate        *time.Time     `json:"sailingDate,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
}

// ShipmentRequest represents the client payload for creating a quote request.
type ShipmentRequest struct {
	Mode               ShipmentMode `json:"mode"`
	ContainerType      string       `json:"containerType"`
	Commodity          string       `json:"commodity"`
	NumContainers      int          `json:"numContainers"`
	WeightPerContainer float64      `json:"weightPerContainer,omitempty"`
	ShipmentDate       time.Time    `json:"shipmentDate"`
	CollectionAddress  string       `json:"collectionAddress,omitempty"`
}

// SelectionResult is the client-facing outcome of a winner-selection evaluation.
// While the bidding window is open it carries the countdown; after firing it
// carries the marked-up price.
type SelectionResult struct {
	QuoteID          string         `json:"quoteId"`
	Status           ShipmentStatus `json:"status"`
	BidCount         int            `json:"bidCount"`
	CanBook          bool           `json:"canBook"`
	FinalPrice       *float64       `json:"finalPrice,omitempty"`
	SelectedVendorID *string        `json:"selectedVendorId,omitempty"`
	TimeRemaining    int64          `json:"timeRemainingSeconds"`
}
