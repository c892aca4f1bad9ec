package models

import "time"

type AmendmentStatus string // Stage of the amendment negotiation

const (
	AmendmentRequested     AmendmentStatus = "requested"      // Opened by the vendor, detail pending
	AmendmentVendorReplied AmendmentStatus = "vendor_replied" // Vendor supplied cost/delay detail
	AmendmentAdminReview   AmendmentStatus = "admin_review"   // Under broker review
	AmendmentClientReview  AmendmentStatus = "client_review"  // Pushed to the client for sign-off
	AmendmentAccepted      AmendmentStatus = "accepted"       // Terminal; shipment rolls back to draft_bl
	AmendmentRejected      AmendmentStatus = "rejected"       // Terminal; shipment untouched
)

// TerminalAmendment reports whether a status ends the negotiation.
func TerminalAmendment(s AmendmentStatus) bool {
	return s == AmendmentAccepted || s == AmendmentRejected
}

// ValidAmendmentTransitions documents the negotiation's forward steps. The
// repository guards are narrower than this table on purpose: which pre-states
// an actor may advance from depends on who is acting, so services pass their
// own expected sets rather than deriving them here.
var ValidAmendmentTransitions = map[AmendmentStatus][]AmendmentStatus{
	AmendmentRequested:     {AmendmentVendorReplied},
	AmendmentVendorReplied: {AmendmentAccepted, AmendmentRejected, AmendmentClientReview},
	AmendmentAdminReview:   {AmendmentAccepted, AmendmentRejected, AmendmentClientReview},
	AmendmentClientReview:  {AmendmentAccepted, AmendmentRejected},
	AmendmentAccepted:      {},
	AmendmentRejected:      {},
}

// Amendment is a proposed post-booking change to cost or schedule, tied to a
// bill of lading and requiring multi-party sign-off. At most one non-terminal
// amendment exists per shipment.
type Amendment struct {
	ID               string          `json:"id"`
	BLID             string          `json:"blId"`
	ShipmentID       string          `json:"shipmentId"`
	InitiatedBy      Role            `json:"initiatedBy"`
	Reason           string          `json:"reason"`
	ExtraCost        float64         `json:"extraCost"`
	DelayDays        int             `json:"delayDays"`
	FileURL          *string         `json:"fileUrl,omitempty"`
	Status           AmendmentStatus `json:"status"`
	ApprovedBy       *string         `json:"approvedBy,omitempty"`
	VendorReplyAt    *time.Time      `json:"vendorReplyAt,omitempty"`
	AdminReviewAt    *time.Time      `json:"adminReviewAt,omitempty"`
	ClientResponseAt *time.Time      `json:"clientResponseAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// AmendmentRequest represents the payload for opening an amendment.
type AmendmentRequest struct {
	BLID      string  `json:"blId"`
	Reason    string  `json:"reason"`
	ExtraCost float64 `json:"extraCost"`
	DelayDays int     `json:"delayDays"`
	FileURL   string  `json:"fileUrl,omitempty"`
}

// AmendmentReplyRequest represents the vendor's cost/delay detail.
type AmendmentReplyRequest struct {
	ExtraCost float64 `json:"extraCost"`
	DelayDays int     `json:"delayDays"`
	FileURL   string  `json:"fileUrl,omitempty"`
}

// AmendmentView is an amendment as exposed to callers, with the marked-up
// client cost computed from the configured markup rate.
type AmendmentView struct {
	Amendment
	TotalCost float64 `json:"totalCost"`
}
