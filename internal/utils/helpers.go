package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/Qasim374/freight-system/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
)

// SendErrorResponse sends an error as JSON.
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := models.ErrorResponse{
		StatusCode: statusCode,
		Kind:       kindForStatus(statusCode),
		Message:    message,
	}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Println(err)
	}
}

// HandleServiceError maps a service error onto the HTTP response: typed
// errors keep their status and kind, storage connectivity failures become
// 503, anything else falls back to 500 with the given message.
func HandleServiceError(w http.ResponseWriter, logger *log.Logger, err error, fallback string) {
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		logger.Println(err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(errorResponse.StatusCode)
		if encErr := json.NewEncoder(w).Encode(errorResponse); encErr != nil {
			logger.Println(encErr)
		}
		return
	}
	if IsStorageUnavailable(err) {
		logger.Println(err)
		SendErrorResponse(w, http.StatusServiceUnavailable, "storage unavailable, retry later")
		return
	}
	logger.Println(err)
	SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

// IsStorageUnavailable reports whether an error indicates the persistent
// store is unreachable rather than a bad request.
func IsStorageUnavailable(err error) bool {
	var connectErr *pgconn.ConnectError
	var netErr net.Error
	return errors.As(err, &connectErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded)
}

// ParseLimitOffset parses limit and offset query parameters.
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 50 {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [0:50]")
		}
	} else {
		limit = 5
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	} else {
		offset = 0
	}

	return limit, offset, nil
}

// IdentityFromRequest extracts the pre-resolved caller identity from the
// X-User-Id and X-User-Role headers set by the upstream auth layer.
func IdentityFromRequest(r *http.Request) (models.Identity, error) {
	userID := r.Header.Get("X-User-Id")
	role := models.Role(r.Header.Get("X-User-Role"))

	if userID == "" || role == "" {
		return models.Identity{}, models.NewUnauthorized("missing identity headers")
	}
	switch role {
	case models.RoleClient, models.RoleVendor, models.RoleAdmin, models.RoleSystem:
	default:
		return models.Identity{}, models.NewUnauthorized(fmt.Sprintf("unknown role: %s", role))
	}
	return models.Identity{UserID: userID, Role: role}, nil
}

// RequireRole resolves the caller identity and enforces an allowed role,
// writing the error response itself on failure.
func RequireRole(w http.ResponseWriter, r *http.Request, roles ...models.Role) (models.Identity, bool) {
	ident, err := IdentityFromRequest(r)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
			return models.Identity{}, false
		}
		SendErrorResponse(w, http.StatusUnauthorized, "unauthorized")
		return models.Identity{}, false
	}
	for _, role := range roles {
		if ident.Role == role {
			return ident, true
		}
	}
	SendErrorResponse(w, http.StatusForbidden, fmt.Sprintf("role %s is not allowed to perform this action", ident.Role))
	return models.Identity{}, false
}

// RoundMoney rounds to two decimal places.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func kindForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return models.KindValidation
	case http.StatusUnauthorized:
		return models.KindUnauthorized
	case http.StatusForbidden:
		return models.KindForbidden
	case http.StatusNotFound:
		return models.KindNotFound
	case http.StatusConflict:
		return models.KindInvalidState
	case http.StatusServiceUnavailable:
		return models.KindStorageUnavailable
	default:
		return "internal"
	}
}
