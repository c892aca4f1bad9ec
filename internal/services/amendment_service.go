package services

import (
	"context"
	"fmt"

	"github.com/Qasim374/freight-system/internal/models"
	"github.com/Qasim374/freight-system/internal/repository"
	"github.com/Qasim374/freight-system/internal/utils"
)

// postBookingStatuses are the shipment states an amendment may be opened in.
var postBookingStatuses = map[models.ShipmentStatus]bool{
	models.Booked:  true,
	models.DraftBL: true,
	models.FinalBL: true,
}

// AmendmentService drives the amendment negotiation: vendor or admin opens a
// change request against a BL, the broker reviews it, and the client signs
// off. Acceptance rolls the shipment back to draft_bl to re-enter the BL
// approval loop.
type AmendmentService struct {
	Amendments repository.AmendmentRepository
	BLs        repository.BLRepository
	Shipments  repository.ShipmentRepository
	MarkupRate float64
}

// NewAmendmentService creates a new AmendmentService.
func NewAmendmentService(amendments repository.AmendmentRepository, bls repository.BLRepository, shipments repository.ShipmentRepository, markupRate float64) *AmendmentService {
	return &AmendmentService{Amendments: amendments, BLs: bls, Shipments: shipments, MarkupRate: markupRate}
}

// Create opens an amendment against a bill of lading. Vendor-initiated
// amendments start at requested and must come from the assigned vendor;
// admin-initiated ones skip the vendor round and start at admin_review.
// Only one amendment may be under negotiation per shipment.
func (s *AmendmentService) Create(ctx context.Context, ident models.Identity, req models.AmendmentRequest) (*models.AmendmentView, error) {
	if req.BLID == "" || req.Reason == "" {
		return nil, models.NewValidationError("blId and reason are required")
	}
	if req.ExtraCost < 0 || req.DelayDays < 0 {
		return nil, models.NewValidationError("extraCost and delayDays must not be negative")
	}

	bl, err := s.BLs.GetBLByID(ctx, req.BLID)
	if err != nil {
		return nil, err
	}
	shipment, err := s.Shipments.GetShipment(ctx, bl.ShipmentID)
	if err != nil {
		return nil, err
	}
	if !postBookingStatuses[shipment.Status] {
		return nil, models.NewNotReady(fmt.Sprintf("amendments cannot be opened while the shipment is %s", shipment.Status))
	}

	amendment := models.Amendment{
		BLID:        bl.ID,
		ShipmentID:  shipment.ID,
		InitiatedBy: ident.Role,
		Reason:      req.Reason,
		ExtraCost:   req.ExtraCost,
		DelayDays:   req.DelayDays,
	}
	if req.FileURL != "" {
		fileURL := req.FileURL
		amendment.FileURL = &fileURL
	}

	switch ident.Role {
	case models.RoleVendor:
		if shipment.SelectedVendorID == nil || *shipment.SelectedVendorID != ident.UserID {
			return nil, models.NewForbidden("only the assigned vendor may open an amendment")
		}
		amendment.Status = models.AmendmentRequested
	case models.RoleAdmin:
		amendment.Status = models.AmendmentAdminReview
	default:
		return nil, models.NewForbidden("only the vendor or the broker may open an amendment")
	}

	created, err := s.Amendments.CreateAmendment(ctx, amendment)
	if err != nil {
		return nil, err
	}
	return s.view(created), nil
}

// VendorReply records the assigned vendor's cost/delay detail on a requested
// amendment.
func (s *AmendmentService) VendorReply(ctx context.Context, amendmentID, vendorID string, reply models.AmendmentReplyRequest) (*models.AmendmentView, error) {
	if reply.ExtraCost < 0 || reply.DelayDays < 0 {
		return nil, models.NewValidationError("extraCost and delayDays must not be negative")
	}

	amendment, err := s.Amendments.GetAmendment(ctx, amendmentID)
	if err != nil {
		return nil, err
	}
	shipment, err := s.Shipments.GetShipment(ctx, amendment.ShipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.SelectedVendorID == nil || *shipment.SelectedVendorID != vendorID {
		return nil, models.NewForbidden("only the assigned vendor may reply to this amendment")
	}

	updated, err := s.Amendments.VendorReply(ctx, amendmentID, reply)
	if err != nil {
		return nil, err
	}
	return s.view(updated), nil
}

// AdminAction applies the broker's decision: approve or reject settle the
// amendment directly, push hands it to the client for sign-off. Valid from
// vendor_replied or admin_review; the pre-state travels with the write, so a
// second admin acting on the same amendment gets InvalidAmendmentState.
func (s *AmendmentService) AdminAction(ctx context.Context, amendmentID, adminID, action string) (*models.AmendmentView, error) {
	var next models.AmendmentStatus
	switch action {
	case "approve":
		next = models.AmendmentAccepted
	case "reject":
		next = models.AmendmentRejected
	case "push":
		next = models.AmendmentClientReview
	default:
		return nil, models.NewValidationError("action must be 'approve', 'reject' or 'push'")
	}

	expected := []models.AmendmentStatus{models.AmendmentVendorReplied, models.AmendmentAdminReview}
	updated, err := s.Amendments.Advance(ctx, amendmentID, expected, next,
		models.Identity{UserID: adminID, Role: models.RoleAdmin})
	if err != nil {
		return nil, err
	}
	return s.view(updated), nil
}

// ClientRespond applies the client's verdict on a pushed amendment: accept
// settles it and rolls the shipment back to draft_bl, cancel settles it as
// rejected and leaves the shipment alone.
func (s *AmendmentService) ClientRespond(ctx context.Context, amendmentID, clientID, action string) (*models.AmendmentView, error) {
	var next models.AmendmentStatus
	switch action {
	case "accept":
		next = models.AmendmentAccepted
	case "cancel":
		next = models.AmendmentRejected
	default:
		return nil, models.NewValidationError("action must be 'accept' or 'cancel'")
	}

	amendment, err := s.Amendments.GetAmendment(ctx, amendmentID)
	if err != nil {
		return nil, err
	}
	shipment, err := s.Shipments.GetShipment(ctx, amendment.ShipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.ClientID != clientID {
		return nil, models.NewForbidden("only the requesting client may respond to this amendment")
	}

	expected := []models.AmendmentStatus{models.AmendmentClientReview}
	updated, err := s.Amendments.Advance(ctx, amendmentID, expected, next,
		models.Identity{UserID: clientID, Role: models.RoleClient})
	if err != nil {
		return nil, err
	}
	return s.view(updated), nil
}

// GetShipmentAmendments returns a shipment's amendments for any of its
// parties.
func (s *AmendmentService) GetShipmentAmendments(ctx context.Context, shipmentID string, ident models.Identity) ([]models.AmendmentView, error) {
	shipment, err := s.Shipments.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := RequireParty(shipment, ident); err != nil {
		return nil, err
	}

	amendments, err := s.Amendments.GetShipmentAmendments(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	views := make([]models.AmendmentView, 0, len(amendments))
	for i := range amendments {
		views = append(views, *s.view(&amendments[i]))
	}
	return views, nil
}

// view attaches the marked-up client cost to an amendment.
func (s *AmendmentService) view(a *models.Amendment) *models.AmendmentView {
	return &models.AmendmentView{
		Amendment: *a,
		TotalCost: utils.RoundMoney(a.ExtraCost * (1 + s.MarkupRate)),
	}
}
