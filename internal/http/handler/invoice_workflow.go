package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/devie/nexaflow-crm/internal/auth"
	"github.com/devie/nexaflow-crm/internal/invoice"
	"github.com/devie/nexaflow-crm/internal/mail"

	"github.com/go-chi/chi/v5"
)

// InvoiceWorkflowHandler exposes preview/pdf/send, line items and the
// unauthenticated open-tracking pixel.
type InvoiceWorkflowHandler struct {
	Svc *invoice.Service
}

func invoiceID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *InvoiceWorkflowHandler) Preview(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	html, err := h.Svc.Preview(r.Context(), uid, id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (h *InvoiceWorkflowHandler) PDF(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	filename, data, err := h.Svc.PDF(r.Context(), uid, id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

func (h *InvoiceWorkflowHandler) Send(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	toEmail := strings.TrimSpace(r.URL.Query().Get("to_email"))
	mode := strings.TrimSpace(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = invoice.ModeEmailOnly
	}
	if mode != invoice.ModePDFOnly && (toEmail == "" || !strings.Contains(toEmail, "@")) {
		http.Error(w, "invalid to_email", http.StatusBadRequest)
		return
	}

	res, err := h.Svc.Send(r.Context(), uid, id, toEmail, mode)
	if err != nil {
		switch {
		case errors.Is(err, invoice.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, invoice.ErrInvalidMode):
			http.Error(w, "invalid mode", http.StatusBadRequest)
		case errors.Is(err, mail.ErrNotConfigured):
			http.Error(w, "mail transport not configured", http.StatusInternalServerError)
		case errors.Is(err, invoice.ErrDelivery):
			http.Error(w, "failed to send email", http.StatusInternalServerError)
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	if res.PDF != nil {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="`+res.Filename+`"`)
		_, _ = w.Write(res.PDF)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"invoice_number": res.InvoiceNumber,
		"message":        res.Message,
	})
}

// TrackOpen never errors and never leaks whether the token matched; email
// clients just need their pixel.
func (h *InvoiceWorkflowHandler) TrackOpen(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	h.Svc.RecordOpen(r.Context(), token)

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(invoice.PixelGIF)
}

type lineItemDTO struct {
	ID          uint64  `json:"id"`
	InvoiceID   uint64  `json:"invoice_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

func toLineItemDTO(it invoice.InvoiceLineItem) lineItemDTO {
	return lineItemDTO{
		ID:          it.ID,
		InvoiceID:   it.InvoiceID,
		Description: it.Description,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		Total:       it.Total,
	}
}

type lineItemReq struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

func (h *InvoiceWorkflowHandler) AddLineItem(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	var req lineItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		http.Error(w, "description required", http.StatusBadRequest)
		return
	}
	if req.Quantity <= 0 {
		http.Error(w, "quantity must be > 0", http.StatusBadRequest)
		return
	}
	if req.UnitPrice < 0 {
		http.Error(w, "unit_price must be >= 0", http.StatusBadRequest)
		return
	}

	item, err := h.Svc.AddLineItem(r.Context(), uid, id, req.Description, req.Quantity, req.UnitPrice)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toLineItemDTO(*item))
}

func (h *InvoiceWorkflowHandler) ListLineItems(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := invoiceID(w, r)
	if !ok {
		return
	}

	if _, err := h.Svc.GetOwned(r.Context(), uid, id); err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	items, err := h.Svc.LineItems(r.Context(), id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]lineItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, toLineItemDTO(it))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *InvoiceWorkflowHandler) RemoveLineItem(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, ok := invoiceID(w, r)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	if err := h.Svc.RemoveLineItem(r.Context(), uid, id, itemID); err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
