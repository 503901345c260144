package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devie/nexaflow-crm/internal/auth"
	"github.com/devie/nexaflow-crm/internal/contact"
	"github.com/devie/nexaflow-crm/internal/dates"
	"github.com/devie/nexaflow-crm/internal/project"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	DB      *gorm.DB
	Summary *project.SummaryService
}

type projectDTO struct {
	ID          uint64    `json:"id"`
	ContactID   *uint64   `json:"contact_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Value       float64   `json:"value"`
	Budget      float64   `json:"budget"`
	ActualCost  float64   `json:"actual_cost"`
	Currency    string    `json:"currency"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProjectDTO(p project.Project) projectDTO {
	return projectDTO{
		ID:          p.ID,
		ContactID:   p.ContactID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		Value:       p.Value,
		Budget:      p.Budget,
		ActualCost:  p.ActualCost,
		Currency:    p.Currency,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		CreatedAt:   p.CreatedAt,
	}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	q := h.DB.Where("user_id = ?", uid)
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		q = q.Where("status = ?", status)
	}

	page, pageSize := pagination(r)

	var rows []project.Project
	if err := q.Order("created_at desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]projectDTO, 0, len(rows))
	for _, p := range rows {
		out = append(out, toProjectDTO(p))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

type projectReq struct {
	ContactID   *uint64  `json:"contact_id"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Value       *float64 `json:"value"`
	Budget      *float64 `json:"budget"`
	ActualCost  *float64 `json:"actual_cost"`
	Currency    *string  `json:"currency"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
}

// apply copies the non-nil request fields onto p, validating as it goes.
// Returns a client-facing message on invalid input.
func (h *ProjectHandler) apply(uid uint64, req projectReq, p *project.Project) string {
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			return "title required"
		}
		p.Title = t
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Status != nil {
		if !project.ValidStatus(*req.Status) {
			return "invalid status"
		}
		p.Status = *req.Status
	}
	if req.Value != nil {
		if *req.Value < 0 {
			return "value must be >= 0"
		}
		p.Value = *req.Value
	}
	if req.Budget != nil {
		if *req.Budget < 0 {
			return "budget must be >= 0"
		}
		p.Budget = *req.Budget
	}
	if req.ActualCost != nil {
		if *req.ActualCost < 0 {
			return "actual_cost must be >= 0"
		}
		p.ActualCost = *req.ActualCost
	}
	if req.Currency != nil {
		ccy := strings.TrimSpace(strings.ToUpper(*req.Currency))
		if len(ccy) != 3 {
			return "invalid currency"
		}
		p.Currency = ccy
	}
	if req.StartDate != nil {
		if !dates.Valid(*req.StartDate) {
			return "invalid start_date (YYYY-MM-DD)"
		}
		p.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		if !dates.Valid(*req.EndDate) {
			return "invalid end_date (YYYY-MM-DD)"
		}
		p.EndDate = *req.EndDate
	}
	if req.ContactID != nil {
		var c contact.Contact
		if err := h.DB.Where("id = ? AND user_id = ?", *req.ContactID, uid).First(&c).Error; err != nil {
			return "contact not found"
		}
		p.ContactID = req.ContactID
	}
	return ""
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req projectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Title == nil {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	p := project.Project{UserID: uid, Status: project.StatusActive, Currency: "USD"}
	if msg := h.apply(uid, req, &p); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if err := h.DB.Create(&p).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toProjectDTO(p))
}

func (h *ProjectHandler) getOwned(w http.ResponseWriter, r *http.Request) (*project.Project, bool) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	var p project.Project
	if err := h.DB.Where("id = ? AND user_id = ?", id, uid).First(&p).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil, false
	}
	return &p, true
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.getOwned(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toProjectDTO(*p))
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	p, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	var req projectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if msg := h.apply(uid, req, p); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if err := h.DB.Save(p).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toProjectDTO(*p))
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	// Children first: invoices (and their line items), assignments,
	// milestones all belong to the project.
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`delete from invoice_line_items where invoice_id in (select id from invoices where project_id = ?)`, p.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`delete from invoices where project_id = ?`, p.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`delete from project_contacts where project_id = ?`, p.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`delete from milestones where project_id = ?`, p.ID).Error; err != nil {
			return err
		}
		return tx.Delete(p).Error
	})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	sum, err := h.Summary.Summarize(r.Context(), uid, id)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sum)
}

func pagination(r *http.Request) (page, pageSize int) {
	page, pageSize = 1, 50
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v >= 1 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v >= 1 && v <= 100 {
		pageSize = v
	}
	return page, pageSize
}
