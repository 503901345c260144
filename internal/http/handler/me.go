package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/devie/nexaflow-crm/internal/auth"

	"gorm.io/gorm"
)

type MeHandler struct {
	DB *gorm.DB
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var u auth.User
	if err := h.DB.First(&u, uid).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":                 u.ID,
		"email":              u.Email,
		"name":               u.Name,
		"preferred_currency": u.PreferredCurrency,
	})
}

type updateMeReq struct {
	Name              *string `json:"name"`
	PreferredCurrency *string `json:"preferred_currency"`
}

func (h *MeHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req updateMeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		updates["name"] = name
	}
	if req.PreferredCurrency != nil {
		ccy := strings.TrimSpace(strings.ToUpper(*req.PreferredCurrency))
		if len(ccy) != 3 {
			http.Error(w, "invalid preferred_currency", http.StatusBadRequest)
			return
		}
		updates["preferred_currency"] = ccy
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&auth.User{}).Where("id = ?", uid).Updates(updates).Error; err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
	}

	h.Me(w, r)
}
