package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carpetline/orderflow/internal/stock"
)

type InventoryHandler struct {
	Ledger stock.Ledger
}

type InventoryStatus struct {
	SKU                           string `json:"sku"`
	AvailableQuantity             int    `json:"available_quantity"`
	EstimatedDeliveryBusinessDays int    `json:"estimated_delivery_business_days"`
	EstimatedDeliveryText         string `json:"estimated_delivery_text"`
	Notes                         string `json:"notes"`
}

func (h *InventoryHandler) Register(r *chi.Mux) {
	r.Get("/inventory/check", h.check)
}

func (h *InventoryHandler) check(w http.ResponseWriter, r *http.Request) {
	sku := r.URL.Query().Get("sku")
	if sku == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing sku"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	qty, err := h.Ledger.Available(ctx, sku)
	if err != nil && !errors.Is(err, stock.ErrUnknownSKU) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, InventoryStatus{
		SKU:                           sku,
		AvailableQuantity:             qty,
		EstimatedDeliveryBusinessDays: 15,
		EstimatedDeliveryText:         "approximately 15 business days",
		Notes:                         "Ships via sea freight from our overseas warehouse.",
	})
}
