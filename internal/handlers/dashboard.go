package handlers

import (
	"net/http"

	"github.com/vortexease/backoffice/internal/httpx"
	"github.com/vortexease/backoffice/internal/services"
)

type DashboardHandler struct{ Svc *services.DashboardService }

func NewDashboardHandler(svc *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Svc: svc}
}

func (h *DashboardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/dashboard", h.show)
}

func (h *DashboardHandler) show(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	d, err := h.Svc.Build()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}
