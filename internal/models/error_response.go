package models

import (
	"fmt"
	"net/http"
)

// Error kinds exposed to callers alongside the HTTP status.
const (
	KindValidation         = "validation"
	KindUnauthorized       = "unauthorized"
	KindForbidden          = "forbidden"
	KindNotFound           = "not_found"
	KindInvalidState       = "invalid_state"
	KindNotReady           = "not_ready"
	KindConflict           = "conflict"
	KindStorageUnavailable = "storage_unavailable"
	KindExternal           = "external"
)

// ErrorResponse describes a structured error with a kind and message.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Kind       string `json:"kind"`
	Message    string `json:"reason"`
}

// NewErrorResponse creates a new error with a status code, kind and message.
func NewErrorResponse(statusCode int, kind, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Kind:       kind,
		Message:    message,
	}
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// NewValidationError reports malformed or missing input.
func NewValidationError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, KindValidation, message)
}

// NewUnauthorized reports a missing or unresolvable identity.
func NewUnauthorized(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusUnauthorized, KindUnauthorized, message)
}

// NewForbidden reports a role or ownership mismatch.
func NewForbidden(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusForbidden, KindForbidden, message)
}

// NewNotFound reports an absent entity.
func NewNotFound(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, KindNotFound, message)
}

// NewInvalidStateTransition reports a shipment action against the wrong
// current status. The caller must re-fetch state before retrying.
func NewInvalidStateTransition(current ShipmentStatus, attempted ShipmentStatus) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, KindInvalidState,
		fmt.Sprintf("cannot transition shipment from %s to %s", current, attempted))
}

// NewInvalidAmendmentState reports an amendment action against the wrong
// current status.
func NewInvalidAmendmentState(current AmendmentStatus, action string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, KindInvalidState,
		fmt.Sprintf("amendment action %q is not valid in status %s", action, current))
}

// NewNotReady reports a precondition not yet met.
func NewNotReady(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, KindNotReady, message)
}

// NewAmendmentAlreadyOpen reports an attempt to open a second amendment while
// one is still being negotiated for the same shipment.
func NewAmendmentAlreadyOpen(shipmentID string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, KindConflict,
		fmt.Sprintf("an amendment is already open for shipment %s", shipmentID))
}

// NewStorageUnavailable reports an unreachable persistent store. Safe to retry
// with backoff; conditional writes guarantee no partial state was exposed.
func NewStorageUnavailable() *ErrorResponse {
	return NewErrorResponse(http.StatusServiceUnavailable, KindStorageUnavailable, "storage unavailable, retry later")
}
