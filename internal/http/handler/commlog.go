package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devie/nexaflow-crm/internal/auth"
	"github.com/devie/nexaflow-crm/internal/commlog"
	"github.com/devie/nexaflow-crm/internal/contact"
	"github.com/devie/nexaflow-crm/internal/invoice"
	"github.com/devie/nexaflow-crm/internal/project"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type CommLogHandler struct {
	DB *gorm.DB
}

type logEntryDTO struct {
	ID        uint64    `json:"id"`
	ContactID *uint64   `json:"contact_id"`
	ProjectID *uint64   `json:"project_id"`
	InvoiceID *uint64   `json:"invoice_id"`
	Type      string    `json:"type"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

func toLogEntryDTO(e commlog.Entry) logEntryDTO {
	return logEntryDTO{
		ID:        e.ID,
		ContactID: e.ContactID,
		ProjectID: e.ProjectID,
		InvoiceID: e.InvoiceID,
		Type:      e.Type,
		Summary:   e.Summary,
		CreatedAt: e.CreatedAt,
	}
}

type createLogReq struct {
	ContactID *uint64 `json:"contact_id"`
	ProjectID *uint64 `json:"project_id"`
	InvoiceID *uint64 `json:"invoice_id"`
	Type      string  `json:"type"`
	Summary   string  `json:"summary"`
}

func (h *CommLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req createLogReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Type = strings.TrimSpace(req.Type)
	if req.Type == "" {
		http.Error(w, "type required", http.StatusBadRequest)
		return
	}

	// Loose links, but still owner-scoped when present.
	if req.ContactID != nil {
		var c contact.Contact
		if err := h.DB.Where("id = ? AND user_id = ?", *req.ContactID, uid).First(&c).Error; err != nil {
			http.Error(w, "contact not found", http.StatusNotFound)
			return
		}
	}
	if req.ProjectID != nil {
		var p project.Project
		if err := h.DB.Where("id = ? AND user_id = ?", *req.ProjectID, uid).First(&p).Error; err != nil {
			http.Error(w, "project not found", http.StatusNotFound)
			return
		}
	}
	if req.InvoiceID != nil {
		var inv invoice.Invoice
		err := h.DB.
			Joins("JOIN projects ON projects.id = invoices.project_id").
			Where("invoices.id = ? AND projects.user_id = ?", *req.InvoiceID, uid).
			First(&inv).Error
		if err != nil {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}
	}

	e := commlog.Entry{
		UserID:    uid,
		ContactID: req.ContactID,
		ProjectID: req.ProjectID,
		InvoiceID: req.InvoiceID,
		Type:      req.Type,
		Summary:   req.Summary,
	}
	if err := h.DB.Create(&e).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toLogEntryDTO(e))
}

// ContactHistory lists log entries linked to one owned contact.
func (h *CommLogHandler) ContactHistory(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	cid, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var c contact.Contact
	if err := h.DB.Where("id = ? AND user_id = ?", cid, uid).First(&c).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	h.history(w, "contact_id = ? AND user_id = ?", cid, uid)
}

// ProjectHistory lists log entries linked to one owned project.
func (h *CommLogHandler) ProjectHistory(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	pid, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var p project.Project
	if err := h.DB.Where("id = ? AND user_id = ?", pid, uid).First(&p).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	h.history(w, "project_id = ? AND user_id = ?", pid, uid)
}

func (h *CommLogHandler) history(w http.ResponseWriter, cond string, args ...any) {
	var rows []commlog.Entry
	if err := h.DB.Where(cond, args...).Order("created_at desc").Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]logEntryDTO, 0, len(rows))
	for _, e := range rows {
		out = append(out, toLogEntryDTO(e))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
