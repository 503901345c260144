package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devie/nexaflow-crm/internal/auth"
	"github.com/devie/nexaflow-crm/internal/contact"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ContactHandler struct {
	DB *gorm.DB
}

type contactDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Tags      []string  `json:"tags"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func toContactDTO(c contact.Contact) contactDTO {
	return contactDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Tags:      []string(c.Tags),
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	}
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	q := h.DB.Where("user_id = ?", uid)
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}

	var rows []contact.Contact
	if err := q.Order("created_at desc").Find(&rows).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]contactDTO, 0, len(rows))
	for _, c := range rows {
		out = append(out, toContactDTO(c))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

type contactReq struct {
	Name    *string   `json:"name"`
	Email   *string   `json:"email"`
	Phone   *string   `json:"phone"`
	Company *string   `json:"company"`
	Tags    *[]string `json:"tags"`
	Notes   *string   `json:"notes"`
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req contactReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	c := contact.Contact{UserID: uid, Name: strings.TrimSpace(*req.Name), Tags: pq.StringArray{}}
	if req.Email != nil {
		c.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Company != nil {
		c.Company = strings.TrimSpace(*req.Company)
	}
	if req.Tags != nil {
		c.Tags = pq.StringArray(*req.Tags)
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}

	if err := h.DB.Create(&c).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toContactDTO(c))
}

func (h *ContactHandler) getOwned(w http.ResponseWriter, r *http.Request) (*contact.Contact, bool) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	var c contact.Contact
	if err := h.DB.Where("id = ? AND user_id = ?", id, uid).First(&c).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil, false
	}
	return &c, true
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.getOwned(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toContactDTO(*c))
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	var req contactReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		c.Name = name
	}
	if req.Email != nil {
		c.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Company != nil {
		c.Company = strings.TrimSpace(*req.Company)
	}
	if req.Tags != nil {
		c.Tags = pq.StringArray(*req.Tags)
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}

	if err := h.DB.Save(c).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toContactDTO(*c))
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.getOwned(w, r)
	if !ok {
		return
	}

	// Assignments referencing this contact go with it; the join rows make
	// no sense without the contact side.
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`delete from project_contacts where contact_id = ?`, c.ID).Error; err != nil {
			return err
		}
		return tx.Delete(c).Error
	})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
