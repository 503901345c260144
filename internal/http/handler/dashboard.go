package handler

import (
	"encoding/json"
	"net/http"

	"github.com/devie/nexaflow-crm/internal/auth"
	"github.com/devie/nexaflow-crm/internal/dashboard"

	"gorm.io/gorm"
)

type DashboardHandler struct {
	DB  *gorm.DB
	Svc *dashboard.Service
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var u auth.User
	if err := h.DB.First(&u, uid).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	stats, err := h.Svc.Stats(r.Context(), uid, u.PreferredCurrency)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}
