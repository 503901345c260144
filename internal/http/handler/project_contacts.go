package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/devie/nexaflow-crm/internal/auth"
	"github.com/devie/nexaflow-crm/internal/contact"
	"github.com/devie/nexaflow-crm/internal/project"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type ProjectContactHandler struct {
	DB *gorm.DB
}

type assignmentDTO struct {
	ID           uint64    `json:"id"`
	ProjectID    uint64    `json:"project_id"`
	ContactID    uint64    `json:"contact_id"`
	Role         string    `json:"role"`
	ContactName  string    `json:"contact_name"`
	ContactEmail string    `json:"contact_email"`
	CreatedAt    time.Time `json:"created_at"`
}

func (h *ProjectContactHandler) enrich(pc project.ProjectContact) assignmentDTO {
	dto := assignmentDTO{
		ID:        pc.ID,
		ProjectID: pc.ProjectID,
		ContactID: pc.ContactID,
		Role:      pc.Role,
		CreatedAt: pc.CreatedAt,
	}
	var c contact.Contact
	if err := h.DB.First(&c, pc.ContactID).Error; err == nil {
		dto.ContactName = c.Name
		dto.ContactEmail = c.Email
	}
	return dto
}

type assignReq struct {
	ContactID uint64 `json:"contact_id"`
	Role      string `json:"role"`
}

func (h *ProjectContactHandler) Assign(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	p, ok := ownedProject(h.DB, w, r)
	if !ok {
		return
	}

	var req assignReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = project.RoleTeamMember
	}
	if !project.ValidRole(req.Role) {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}

	var c contact.Contact
	if err := h.DB.Where("id = ? AND user_id = ?", req.ContactID, uid).First(&c).Error; err != nil {
		http.Error(w, "contact not found", http.StatusNotFound)
		return
	}

	var existing project.ProjectContact
	err := h.DB.Where("project_id = ? AND contact_id = ?", p.ID, req.ContactID).First(&existing).Error
	if err == nil {
		http.Error(w, "contact already assigned to this project", http.StatusConflict)
		return
	}

	pc := project.ProjectContact{ProjectID: p.ID, ContactID: req.ContactID, Role: req.Role}
	if err := h.DB.Create(&pc).Error; err != nil {
		// unique (project_id, contact_id) index catches the race
		http.Error(w, "contact already assigned to this project", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(h.enrich(pc))
}

func (h *ProjectContactHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := ownedProject(h.DB, w, r)
	if !ok {
		return
	}

	var pcs []project.ProjectContact
	if err := h.DB.Where("project_id = ?", p.ID).Order("id asc").Find(&pcs).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]assignmentDTO, 0, len(pcs))
	for _, pc := range pcs {
		out = append(out, h.enrich(pc))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *ProjectContactHandler) getAssignment(w http.ResponseWriter, r *http.Request) (*project.ProjectContact, bool) {
	p, ok := ownedProject(h.DB, w, r)
	if !ok {
		return nil, false
	}

	cid, err := strconv.ParseUint(chi.URLParam(r, "contactID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid contact id", http.StatusBadRequest)
		return nil, false
	}

	var pc project.ProjectContact
	if err := h.DB.Where("project_id = ? AND contact_id = ?", p.ID, cid).First(&pc).Error; err != nil {
		http.Error(w, "assignment not found", http.StatusNotFound)
		return nil, false
	}
	return &pc, true
}

type roleReq struct {
	Role string `json:"role"`
}

func (h *ProjectContactHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	pc, ok := h.getAssignment(w, r)
	if !ok {
		return
	}

	var req roleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if !project.ValidRole(req.Role) {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}

	pc.Role = req.Role
	if err := h.DB.Model(&project.ProjectContact{}).Where("id = ?", pc.ID).
		Update("role", req.Role).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.enrich(*pc))
}

func (h *ProjectContactHandler) Remove(w http.ResponseWriter, r *http.Request) {
	pc, ok := h.getAssignment(w, r)
	if !ok {
		return
	}

	if err := h.DB.Delete(pc).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ContactProjects lists a contact's assignments across projects.
func (h *ProjectContactHandler) ContactProjects(w http.ResponseWriter, r *http.Request) {
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

	var pcs []project.ProjectContact
	if err := h.DB.Where("contact_id = ?", cid).Order("id asc").Find(&pcs).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]assignmentDTO, 0, len(pcs))
	for _, pc := range pcs {
		out = append(out, h.enrich(pc))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
