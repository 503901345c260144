package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devie/nexaflow-crm/internal/auth"
	"github.com/devie/nexaflow-crm/internal/dates"
	"github.com/devie/nexaflow-crm/internal/project"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type MilestoneHandler struct {
	DB *gorm.DB
}

type milestoneDTO struct {
	ID          uint64     `json:"id"`
	ProjectID   uint64     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     string     `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toMilestoneDTO(m project.Milestone) milestoneDTO {
	return milestoneDTO{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		Title:       m.Title,
		Description: m.Description,
		DueDate:     m.DueDate,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
	}
}

// ownedProject resolves the {id} route param to a project owned by the
// caller, writing the error response itself on failure.
func ownedProject(db *gorm.DB, w http.ResponseWriter, r *http.Request) (*project.Project, bool) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	var p project.Project
	if err := db.Where("id = ? AND user_id = ?", id, uid).First(&p).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil, false
	}
	return &p, true
}

func (h *MilestoneHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := ownedProject(h.DB, w, r)
	if !ok {
		return
	}

	var rows []project.Milestone
	if err := h.DB.Where("project_id = ?", p.ID).Order("due_date asc").Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]milestoneDTO, 0, len(rows))
	for _, m := range rows {
		out = append(out, toMilestoneDTO(m))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

type milestoneReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
}

func (h *MilestoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := ownedProject(h.DB, w, r)
	if !ok {
		return
	}

	var req milestoneReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	m := project.Milestone{ProjectID: p.ID, Title: strings.TrimSpace(*req.Title)}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.DueDate != nil {
		if !dates.Valid(*req.DueDate) {
			http.Error(w, "invalid due_date (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		m.DueDate = *req.DueDate
	}

	if err := h.DB.Create(&m).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toMilestoneDTO(m))
}

func (h *MilestoneHandler) getOwned(w http.ResponseWriter, r *http.Request) (*project.Milestone, bool) {
	p, ok := ownedProject(h.DB, w, r)
	if !ok {
		return nil, false
	}

	mid, err := strconv.ParseUint(chi.URLParam(r, "milestoneID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid milestone id", http.StatusBadRequest)
		return nil, false
	}

	var m project.Milestone
	if err := h.DB.Where("id = ? AND project_id = ?", mid, p.ID).First(&m).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil, false
	}
	return &m, true
}

func (h *MilestoneHandler) Update(w http.ResponseWriter, r *http.Request) {
	m, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	var req milestoneReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		m.Title = t
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.DueDate != nil {
		if !dates.Valid(*req.DueDate) {
			http.Error(w, "invalid due_date (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		m.DueDate = *req.DueDate
	}

	if err := h.DB.Save(m).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toMilestoneDTO(*m))
}

func (h *MilestoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	m, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	if err := h.DB.Delete(m).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Complete toggles completion: done milestones revert to incomplete.
func (h *MilestoneHandler) Complete(w http.ResponseWriter, r *http.Request) {
	m, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	if m.CompletedAt != nil {
		m.CompletedAt = nil
	} else {
		now := time.Now().UTC()
		m.CompletedAt = &now
	}

	if err := h.DB.Model(&project.Milestone{}).Where("id = ?", m.ID).
		Update("completed_at", m.CompletedAt).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toMilestoneDTO(*m))
}
