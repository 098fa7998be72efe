package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carpetline/orderflow/internal/orders"
	"github.com/carpetline/orderflow/internal/payments"
)

func TestWriteError_Mapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantTag  string
	}{
		{
			name:     "insufficient stock is a conflict",
			err:      &orders.InsufficientStockError{SKU: "SKU-A", Requested: 3, Available: 1},
			wantCode: http.StatusConflict,
			wantTag:  "INSUFFICIENT_STOCK",
		},
		{
			name:     "order not found",
			err:      &orders.NotFoundError{OrderID: "ORD-x"},
			wantCode: http.StatusNotFound,
			wantTag:  "NOT_FOUND",
		},
		{
			name:     "payment not found",
			err:      &payments.NotFoundError{OrderID: "ORD-x"},
			wantCode: http.StatusNotFound,
			wantTag:  "NOT_FOUND",
		},
		{
			name:     "invalid order state is a conflict",
			err:      &orders.InvalidStateError{OrderID: "ORD-x", Actual: orders.StatusCancelled, Expected: "RESERVED"},
			wantCode: http.StatusConflict,
			wantTag:  "INVALID_ORDER_STATE",
		},
		{
			name:     "unrefundable payment is a conflict",
			err:      &payments.NotRefundableError{OrderID: "ORD-x", Status: payments.StatusPending},
			wantCode: http.StatusConflict,
			wantTag:  "INVALID_ORDER_STATE",
		},
		{
			name:     "unauthorized is forbidden",
			err:      &orders.UnauthorizedError{Requester: "mallory@example.com", Resource: "order ORD-x"},
			wantCode: http.StatusForbidden,
			wantTag:  "FORBIDDEN",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, c.err)

			assert.Equal(t, c.wantCode, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, c.wantTag, body["error"])
		})
	}
}

func TestWriteError_InsufficientStockDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &orders.InsufficientStockError{SKU: "RUG-12345", Requested: 5, Available: 2})

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "RUG-12345", body["sku"])
	assert.EqualValues(t, 5, body["requested"])
	assert.EqualValues(t, 2, body["available"])
}
