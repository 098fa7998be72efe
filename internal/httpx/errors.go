package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/carpetline/orderflow/internal/orders"
	"github.com/carpetline/orderflow/internal/payments"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto the API contract: conflicts 409,
// missing resources 404, ownership violations 403.
func writeError(w http.ResponseWriter, err error) {
	var insufficient *orders.InsufficientStockError
	if errors.As(err, &insufficient) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":     "INSUFFICIENT_STOCK",
			"message":   insufficient.Error(),
			"sku":       insufficient.SKU,
			"requested": insufficient.Requested,
			"available": insufficient.Available,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	var orderNotFound *orders.NotFoundError
	var paymentNotFound *payments.NotFoundError
	if errors.As(err, &orderNotFound) || errors.As(err, &paymentNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "NOT_FOUND", "message": err.Error()})
		return
	}

	var invalidState *orders.InvalidStateError
	var notRefundable *payments.NotRefundableError
	if errors.As(err, &invalidState) || errors.As(err, &notRefundable) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "INVALID_ORDER_STATE", "message": err.Error()})
		return
	}

	var unauthorized *orders.UnauthorizedError
	if errors.As(err, &unauthorized) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "FORBIDDEN", "message": err.Error()})
		return
	}

	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "INTERNAL", "message": err.Error()})
}
