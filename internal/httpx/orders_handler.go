package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carpetline/orderflow/internal/orders"
)

type OrdersHandler struct {
	Saga *orders.Saga
}

type CreateOrderReq struct {
	CustomerEmail string            `json:"customer_email"`
	Items         []orders.LineItem `json:"items"`
}

type UpdateAddressReq struct {
	RequesterEmail string         `json:"requester_email"`
	Address        orders.Address `json:"address"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.history)
	r.Get("/orders/{orderId}", h.getOrder)
	r.Post("/orders/{orderId}/cancel", h.cancelOrder)
	r.Put("/orders/{orderId}/shipping-address", h.updateAddress)
	r.Get("/orders/{orderId}/events", h.events)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.CustomerEmail == "" || len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}
	for _, it := range req.Items {
		if it.SKU == "" || it.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid line item"})
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Saga.Create(ctx, req.CustomerEmail, req.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.Saga.Get(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Saga.Cancel(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) updateAddress(w http.ResponseWriter, r *http.Request) {
	var req UpdateAddressReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.RequesterEmail == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing requester_email"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Saga.UpdateShippingAddress(ctx, chi.URLParam(r, "orderId"), req.RequesterEmail, req.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) history(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("customer_email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing customer_email"})
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size == 0 {
		size = 20
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Saga.History(ctx, email, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) events(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	evs, err := h.Saga.Events(ctx, chi.URLParam(r, "orderId"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}
