package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/devie/nexaflow-crm/internal/currency"
)

type CurrencyHandler struct {
	Converter *currency.Converter
}

func (h *CurrencyHandler) Supported(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"currencies": currency.Supported,
	})
}

func (h *CurrencyHandler) Rates(w http.ResponseWriter, r *http.Request) {
	base := strings.TrimSpace(strings.ToUpper(r.URL.Query().Get("base")))
	if base == "" {
		base = "USD"
	}
	if len(base) != 3 {
		http.Error(w, "invalid base", http.StatusBadRequest)
		return
	}

	rates := h.Converter.GetRates(r.Context(), base)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"base":  base,
		"rates": rates,
	})
}
