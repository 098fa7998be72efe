package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carpetline/orderflow/internal/payments"
)

type PaymentsHandler struct {
	Processor *payments.Processor
}

type SubmitPaymentReq struct {
	OrderID string  `json:"order_id"`
	Method  string  `json:"payment_method"` // "CARD", "WECHAT_QR", "ALIPAY_QR"
	Amount  float64 `json:"amount"`
}

type RefundReq struct {
	Reason string `json:"reason"`
}

type UpdatePaymentReq struct {
	Status *payments.Status `json:"status,omitempty"`
	Method *string          `json:"payment_method,omitempty"`
	Amount *float64         `json:"amount,omitempty"`
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Post("/payments/submit", h.submit)
	r.Get("/payments/status/{orderId}", h.status)
	r.Post("/payments/{orderId}/refund", h.refund)
	r.Patch("/payments/{orderId}", h.update)
}

func (h *PaymentsHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.OrderID == "" || req.Method == "" || req.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Processor.Submit(ctx, req.OrderID, req.Method, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *PaymentsHandler) status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rec, err := h.Processor.Status(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *PaymentsHandler) refund(w http.ResponseWriter, r *http.Request) {
	var req RefundReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Processor.Refund(ctx, chi.URLParam(r, "orderId"), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *PaymentsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Processor.Update(ctx, chi.URLParam(r, "orderId"), payments.UpdateRequest{
		Status: req.Status,
		Method: req.Method,
		Amount: req.Amount,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
