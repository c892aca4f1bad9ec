package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/Qasim374/freight-system/internal/models"
)

// fakeRepo is an in-memory stand-in for the Postgres repositories. It keeps
// the same conditional-write contract: status guards are checked before a
// write, and a mismatch produces the same typed errors the real layer does.
type fakeRepo struct {
	shipments  map[string]*models.Shipment
	bids       map[string]*models.Bid
	bls        map[string]*models.BillOfLading
	amendments map[string]*models.Amendment
	invoices   map[string]*models.Invoice
	seq        int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		shipments:  make(map[string]*models.Shipment),
		bids:       make(map[string]*models.Bid),
		bls:        make(map[string]*models.BillOfLading),
		amendments: make(map[string]*models.Amendment),
		invoices:   make(map[string]*models.Invoice),
	}
}

func (f *fakeRepo) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

// seedShipment drops a shipment straight into storage in the given status.
func (f *fakeRepo) seedShipment(id, clientID string, status models.ShipmentStatus, createdAt time.Time) *models.Shipment {
	s := &models.Shipment{
		ID:            id,
		ClientID:      clientID,
		Mode:          models.ModeFOB,
		ContainerType: "40ft",
		Commodity:     "electronics",
		NumContainers: 2,
		ShipmentDate:  createdAt.AddDate(0, 1, 0),
		Status:        status,
		CreatedAt:     createdAt,
	}
	f.shipments[id] = s
	return s
}

func (f *fakeRepo) seedBid(id, shipmentID, vendorID string, cost float64, createdAt time.Time) *models.Bid {
	b := &models.Bid{
		ID:          id,
		ShipmentID:  shipmentID,
		VendorID:    vendorID,
		CostUSD:     cost,
		CarrierName: "Maersk",
		SailingDate: createdAt.AddDate(0, 1, 0),
		Status:      models.SubmittedBid,
		CreatedAt:   createdAt,
	}
	f.bids[id] = b
	return b
}

func (f *fakeRepo) seedBL(id, shipmentID string, version models.BLVersion, uploadedBy string) *models.BillOfLading {
	bl := &models.BillOfLading{
		ID:         id,
		ShipmentID: shipmentID,
		Version:    version,
		FileURL:    "https://files.example.com/" + id + ".pdf",
		UploadedBy: uploadedBy,
		UploadedAt: time.Now().UTC(),
	}
	f.bls[id] = bl
	return bl
}

func shipmentCopy(s *models.Shipment) *models.Shipment {
	c := *s
	return &c
}

// ShipmentRepository

func (f *fakeRepo) CreateShipment(ctx context.Context, clientID string, req models.ShipmentRequest) (*models.Shipment, error) {
	s := &models.Shipment{
		ID:                 f.nextID("ship"),
		ClientID:           clientID,
		Mode:               req.Mode,
		ContainerType:      req.ContainerType,
		Commodity:          req.Commodity,
		NumContainers:      req.NumContainers,
		WeightPerContainer: req.WeightPerContainer,
		ShipmentDate:       req.ShipmentDate,
		Status:             models.AwaitingBids,
		CreatedAt:          time.Now().UTC(),
	}
	if req.CollectionAddress != "" {
		addr := req.CollectionAddress
		s.CollectionAddress = &addr
	}
	f.shipments[s.ID] = s
	return shipmentCopy(s), nil
}

func (f *fakeRepo) GetShipment(ctx context.Context, shipmentID string) (*models.Shipment, error) {
	s, ok := f.shipments[shipmentID]
	if !ok {
		return nil, models.NewNotFound("shipment not found")
	}
	return shipmentCopy(s), nil
}

func (f *fakeRepo) GetClientShipments(ctx context.Context, clientID string, limit, offset int) ([]models.Shipment, error) {
	var out []models.Shipment
	for _, s := range f.shipments {
		if s.ClientID == clientID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByStatus(ctx context.Context, statuses []models.ShipmentStatus, limit, offset int) ([]models.Shipment, error) {
	wanted := make(map[models.ShipmentStatus]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}
	var out []models.Shipment
	for _, s := range f.shipments {
		if wanted[s.Status] {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) UpdateStatusIf(ctx context.Context, shipmentID string, expected []models.ShipmentStatus, next models.ShipmentStatus) (*models.Shipment, error) {
	s, ok := f.shipments[shipmentID]
	if !ok {
		return nil, models.NewNotFound("shipment not found")
	}
	for _, st := range expected {
		if s.Status == st {
			s.Status = next
			return shipmentCopy(s), nil
		}
	}
	return nil, models.NewInvalidStateTransition(s.Status, next)
}

func (f *fakeRepo) ApplySelection(ctx context.Context, shipmentID string, winner models.Bid, finalPrice float64) (bool, error) {
	s, ok := f.shipments[shipmentID]
	if !ok {
		return false, models.NewNotFound("shipment not found")
	}
	if s.Status != models.AwaitingBids {
		return false, nil
	}
	s.Status = models.ClientReview
	vendorID, bidID, price := winner.VendorID, winner.ID, finalPrice
	s.SelectedVendorID = &vendorID
	s.WinningBidID = &bidID
	s.FinalPrice = &price
	for _, b := range f.bids {
		if b.ShipmentID != shipmentID {
			continue
		}
		if b.ID == winner.ID {
			b.Status = models.SelectedBid
		} else {
			b.Status = models.RejectedBid
		}
	}
	return true, nil
}

func (f *fakeRepo) Book(ctx context.Context, shipmentID, carrierReference string, sailingDate time.Time) (*models.Shipment, error) {
	s, ok := f.shipments[shipmentID]
	if !ok {
		return nil, models.NewNotFound("shipment not found")
	}
	if s.Status != models.ClientReview {
		return nil, models.NewInvalidStateTransition(s.Status, models.Booking)
	}
	s.Status = models.Booked
	s.CarrierReference = &carrierReference
	sd := sailingDate
	s.SailingDate = &sd
	return shipmentCopy(s), nil
}

// BidRepository

func (f *fakeRepo) UpsertBid(ctx context.Context, shipmentID, vendorID string, req models.BidRequest) (*models.Bid, error) {
	s, ok := f.shipments[shipmentID]
	if !ok {
		return nil, models.NewNotFound("shipment not found")
	}
	if s.Status != models.AwaitingBids {
		return nil, models.NewForbidden("bidding is closed for this quote")
	}
	for _, b := range f.bids {
		if b.ShipmentID == shipmentID && b.VendorID == vendorID {
			if b.Status != models.SubmittedBid {
				return nil, models.NewForbidden("bidding is closed for this quote")
			}
			b.CostUSD = req.CostUSD
			b.CarrierName = req.CarrierName
			b.SailingDate = req.SailingDate
			b.Status = models.SubmittedBid
			b.CreatedAt = time.Now().UTC()
			c := *b
			return &c, nil
		}
	}
	b := &models.Bid{
		ID:          f.nextID("bid"),
		ShipmentID:  shipmentID,
		VendorID:    vendorID,
		CostUSD:     req.CostUSD,
		CarrierName: req.CarrierName,
		SailingDate: req.SailingDate,
		Status:      models.SubmittedBid,
		CreatedAt:   time.Now().UTC(),
	}
	f.bids[b.ID] = b
	c := *b
	return &c, nil
}

func (f *fakeRepo) GetBid(ctx context.Context, bidID string) (*models.Bid, error) {
	b, ok := f.bids[bidID]
	if !ok {
		return nil, models.NewNotFound("bid not found")
	}
	c := *b
	return &c, nil
}

func (f *fakeRepo) GetShipmentBids(ctx context.Context, shipmentID string) ([]models.Bid, error) {
	var out []models.Bid
	for _, b := range f.bids {
		if b.ShipmentID == shipmentID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CostUSD != out[j].CostUSD {
			return out[i].CostUSD < out[j].CostUSD
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeRepo) GetVendorBids(ctx context.Context, vendorID string, limit, offset int) ([]models.Bid, error) {
	var out []models.Bid
	for _, b := range f.bids {
		if b.VendorID == vendorID {
			out = append(out, *b)
		}
	}
	return out, nil
}

// BLRepository

func (f *fakeRepo) UpsertBL(ctx context.Context, shipmentID string, version models.BLVersion, fileURL, uploadedBy string) (*models.BillOfLading, error) {
	for _, bl := range f.bls {
		if bl.ShipmentID == shipmentID && bl.Version == version {
			bl.FileURL = fileURL
			bl.UploadedBy = uploadedBy
			bl.Approved = false
			bl.UploadedAt = time.Now().UTC()
			c := *bl
			return &c, nil
		}
	}
	bl := &models.BillOfLading{
		ID:         f.nextID("bl"),
		ShipmentID: shipmentID,
		Version:    version,
		FileURL:    fileURL,
		UploadedBy: uploadedBy,
		UploadedAt: time.Now().UTC(),
	}
	f.bls[bl.ID] = bl
	c := *bl
	return &c, nil
}

func (f *fakeRepo) GetBL(ctx context.Context, shipmentID string, version models.BLVersion) (*models.BillOfLading, error) {
	for _, bl := range f.bls {
		if bl.ShipmentID == shipmentID && bl.Version == version {
			c := *bl
			return &c, nil
		}
	}
	return nil, models.NewNotFound("bill of lading not found")
}

func (f *fakeRepo) GetBLByID(ctx context.Context, blID string) (*models.BillOfLading, error) {
	bl, ok := f.bls[blID]
	if !ok {
		return nil, models.NewNotFound("bill of lading not found")
	}
	c := *bl
	return &c, nil
}

func (f *fakeRepo) ApproveDraftBL(ctx context.Context, shipmentID string) (*models.Shipment, error) {
	var draft *models.BillOfLading
	for _, bl := range f.bls {
		if bl.ShipmentID == shipmentID && bl.Version == models.BLDraft {
			draft = bl
		}
	}
	if draft == nil {
		return nil, models.NewNotFound("no draft bill of lading to approve")
	}
	s, ok := f.shipments[shipmentID]
	if !ok {
		return nil, models.NewNotFound("shipment not found")
	}
	if s.Status != models.DraftBL {
		return nil, models.NewInvalidStateTransition(s.Status, models.FinalBL)
	}
	draft.Approved = true
	s.Status = models.FinalBL
	return shipmentCopy(s), nil
}

// AmendmentRepository

func (f *fakeRepo) CreateAmendment(ctx context.Context, amendment models.Amendment) (*models.Amendment, error) {
	for _, a := range f.amendments {
		if a.ShipmentID == amendment.ShipmentID && !models.TerminalAmendment(a.Status) {
			return nil, models.NewAmendmentAlreadyOpen(amendment.ShipmentID)
		}
	}
	amendment.ID = f.nextID("amd")
	amendment.CreatedAt = time.Now().UTC()
	stored := amendment
	f.amendments[stored.ID] = &stored
	c := stored
	return &c, nil
}

func (f *fakeRepo) GetAmendment(ctx context.Context, amendmentID string) (*models.Amendment, error) {
	a, ok := f.amendments[amendmentID]
	if !ok {
		return nil, models.NewNotFound("amendment not found")
	}
	c := *a
	return &c, nil
}

func (f *fakeRepo) GetShipmentAmendments(ctx context.Context, shipmentID string) ([]models.Amendment, error) {
	var out []models.Amendment
	for _, a := range f.amendments {
		if a.ShipmentID == shipmentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeRepo) VendorReply(ctx context.Context, amendmentID string, reply models.AmendmentReplyRequest) (*models.Amendment, error) {
	a, ok := f.amendments[amendmentID]
	if !ok {
		return nil, models.NewNotFound("amendment not found")
	}
	if a.Status != models.AmendmentRequested {
		return nil, models.NewInvalidAmendmentState(a.Status, "reply")
	}
	a.Status = models.AmendmentVendorReplied
	a.ExtraCost = reply.ExtraCost
	a.DelayDays = reply.DelayDays
	if reply.FileURL != "" {
		fileURL := reply.FileURL
		a.FileURL = &fileURL
	}
	now := time.Now().UTC()
	a.VendorReplyAt = &now
	c := *a
	return &c, nil
}

func (f *fakeRepo) Advance(ctx context.Context, amendmentID string, expected []models.AmendmentStatus, next models.AmendmentStatus, actor models.Identity) (*models.Amendment, error) {
	a, ok := f.amendments[amendmentID]
	if !ok {
		return nil, models.NewNotFound("amendment not found")
	}
	matched := false
	for _, st := range expected {
		if a.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		return nil, models.NewInvalidAmendmentState(a.Status, string(next))
	}
	a.Status = next
	now := time.Now().UTC()
	switch actor.Role {
	case models.RoleAdmin:
		a.AdminReviewAt = &now
	case models.RoleClient:
		a.ClientResponseAt = &now
	}
	if next == models.AmendmentAccepted {
		actorID := actor.UserID
		a.ApprovedBy = &actorID
		s, ok := f.shipments[a.ShipmentID]
		if !ok {
			return nil, models.NewNotFound("shipment not found")
		}
		switch s.Status {
		case models.Booked, models.DraftBL, models.FinalBL:
			s.Status = models.DraftBL
		default:
			return nil, models.NewInvalidStateTransition(s.Status, models.DraftBL)
		}
	}
	c := *a
	return &c, nil
}

// InvoiceRepository

func (f *fakeRepo) CreateInvoice(ctx context.Context, req models.InvoiceRequest) (*models.Invoice, error) {
	inv := &models.Invoice{
		ID:         f.nextID("inv"),
		ShipmentID: req.ShipmentID,
		Amount:     req.Amount,
		Type:       req.Type,
		Status:     models.Unpaid,
		DueDate:    req.DueDate,
		CreatedAt:  time.Now().UTC(),
	}
	f.invoices[inv.ID] = inv
	c := *inv
	return &c, nil
}

func (f *fakeRepo) GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, models.NewNotFound("invoice not found")
	}
	c := *inv
	return &c, nil
}

func (f *fakeRepo) GetShipmentInvoices(ctx context.Context, shipmentID string) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, inv := range f.invoices {
		if inv.ShipmentID == shipmentID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeRepo) AttachProof(ctx context.Context, invoiceID, proofURL string) (*models.Invoice, error) {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, models.NewNotFound("invoice not found")
	}
	if inv.Status != models.Unpaid {
		return nil, models.NewErrorResponse(http.StatusConflict, models.KindInvalidState,
			"cannot attach proof for invoice in status "+string(inv.Status))
	}
	inv.Status = models.AwaitingVerification
	url := proofURL
	inv.ProofURL = &url
	c := *inv
	return &c, nil
}

func (f *fakeRepo) MarkPaid(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, models.NewNotFound("invoice not found")
	}
	if inv.Status != models.Unpaid && inv.Status != models.AwaitingVerification {
		return nil, models.NewErrorResponse(http.StatusConflict, models.KindInvalidState,
			"cannot mark paid for invoice in status "+string(inv.Status))
	}
	inv.Status = models.Paid
	c := *inv
	return &c, nil
}

// scriptedCarrier replays a fixed event per carrier reference; an entry of
// "fail" reports a lookup error instead.
type scriptedCarrier struct {
	events map[string]string
}

func (c scriptedCarrier) StatusOf(ctx context.Context, carrierReference string) (string, error) {
	event, ok := c.events[carrierReference]
	if !ok {
		return "", nil
	}
	if event == "fail" {
		return "", fmt.Errorf("carrier lookup timed out")
	}
	return event, nil
}

// errKind digs the machine-readable kind and status out of a service error.
func errKind(err error) (int, string) {
	var resp *models.ErrorResponse
	if !errors.As(err, &resp) {
		return 0, ""
	}
	return resp.StatusCode, resp.Kind
}
