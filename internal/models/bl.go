package models

import "time"

type BLVersion string // Issue stage of a bill of lading

const (
	BLDraft BLVersion = "draft"
	BLFinal BLVersion = "final"
)

// BillOfLading is a document record bound to a shipment and a version.
// At most one draft and one final row exist per shipment.
type BillOfLading struct {
	ID         string    `json:"id"`
	ShipmentID string    `json:"shipmentId"`
	Version    BLVersion `json:"version"`
	FileURL    string    `json:"fileUrl"`
	UploadedBy string    `json:"uploadedBy"`
	Approved   bool      `json:"approved"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// BLUploadRequest represents the vendor payload for attaching a BL document.
// The file itself lives in external storage; only the URL is persisted.
type BLUploadRequest struct {
	ShipmentID string    `json:"shipmentId"`
	Version    BLVersion `json:"version"`
	FileURL    string    `json:"fileUrl"`
}
