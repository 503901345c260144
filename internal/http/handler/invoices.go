package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devie/nexaflow-crm/internal/auth"
	"github.com/devie/nexaflow-crm/internal/dates"
	"github.com/devie/nexaflow-crm/internal/invoice"
	"github.com/devie/nexaflow-crm/internal/project"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type InvoiceHandler struct {
	DB *gorm.DB
}

type invoiceDTO struct {
	ID            uint64     `json:"id"`
	ProjectID     uint64     `json:"project_id"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"`
	DueDate       string     `json:"due_date"`
	Currency      string     `json:"currency"`
	InvoiceNumber *string    `json:"invoice_number"`
	Title         string     `json:"title"`
	Notes         string     `json:"notes"`
	SentAt        *time.Time `json:"sent_at"`
	SentToEmail   string     `json:"sent_to_email"`
	OpenedAt      *time.Time `json:"opened_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toInvoiceDTO(inv invoice.Invoice) invoiceDTO {
	return invoiceDTO{
		ID:            inv.ID,
		ProjectID:     inv.ProjectID,
		Amount:        inv.Amount,
		Status:        inv.Status,
		DueDate:       inv.DueDate,
		Currency:      inv.Currency,
		InvoiceNumber: inv.InvoiceNumber,
		Title:         inv.Title,
		Notes:         inv.Notes,
		SentAt:        inv.SentAt,
		SentToEmail:   inv.SentToEmail,
		OpenedAt:      inv.OpenedAt,
		CreatedAt:     inv.CreatedAt,
	}
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	q := h.DB.
		Joins("JOIN projects ON projects.id = invoices.project_id").
		Where("projects.user_id = ?", uid)
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		q = q.Where("invoices.status = ?", status)
	}

	page, pageSize := pagination(r)

	var rows []invoice.Invoice
	if err := q.Order("invoices.created_at desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]invoiceDTO, 0, len(rows))
	for _, inv := range rows {
		out = append(out, toInvoiceDTO(inv))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

type invoiceReq struct {
	ProjectID *uint64  `json:"project_id"`
	Amount    *float64 `json:"amount"`
	Status    *string  `json:"status"`
	DueDate   *string  `json:"due_date"`
	Currency  *string  `json:"currency"`
	Title     *string  `json:"title"`
	Notes     *string  `json:"notes"`
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req invoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.ProjectID == nil {
		http.Error(w, "project_id required", http.StatusBadRequest)
		return
	}
	if req.Amount == nil || *req.Amount <= 0 {
		http.Error(w, "amount must be > 0", http.StatusBadRequest)
		return
	}

	var p project.Project
	if err := h.DB.Where("id = ? AND user_id = ?", *req.ProjectID, uid).First(&p).Error; err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	inv := invoice.Invoice{ProjectID: p.ID, Amount: *req.Amount, Status: invoice.StatusUnpaid, Currency: "USD"}
	if msg := applyInvoice(req, &inv); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if err := h.DB.Create(&inv).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toInvoiceDTO(inv))
}

func applyInvoice(req invoiceReq, inv *invoice.Invoice) string {
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return "amount must be > 0"
		}
		inv.Amount = *req.Amount
	}
	if req.Status != nil {
		if !invoice.ValidStatus(*req.Status) {
			return "invalid status"
		}
		inv.Status = *req.Status
	}
	if req.DueDate != nil {
		if !dates.Valid(*req.DueDate) {
			return "invalid due_date (YYYY-MM-DD)"
		}
		inv.DueDate = *req.DueDate
	}
	if req.Currency != nil {
		ccy := strings.TrimSpace(strings.ToUpper(*req.Currency))
		if len(ccy) != 3 {
			return "invalid currency"
		}
		inv.Currency = ccy
	}
	if req.Title != nil {
		inv.Title = strings.TrimSpace(*req.Title)
	}
	if req.Notes != nil {
		inv.Notes = *req.Notes
	}
	return ""
}

func (h *InvoiceHandler) getOwned(w http.ResponseWriter, r *http.Request) (*invoice.Invoice, bool) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	var inv invoice.Invoice
	err = h.DB.
		Joins("JOIN projects ON projects.id = invoices.project_id").
		Where("invoices.id = ? AND projects.user_id = ?", id, uid).
		First(&inv).Error
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil, false
	}
	return &inv, true
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.getOwned(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toInvoiceDTO(*inv))
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	var req invoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if msg := applyInvoice(req, inv); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if err := h.DB.Save(inv).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toInvoiceDTO(*inv))
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`delete from invoice_line_items where invoice_id = ?`, inv.ID).Error; err != nil {
			return err
		}
		return tx.Delete(inv).Error
	})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
