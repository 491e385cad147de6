package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/vortexease/backoffice/internal/httpx"
	"github.com/vortexease/backoffice/internal/models"
	"github.com/vortexease/backoffice/internal/services"
	"github.com/vortexease/backoffice/internal/validation"
)

type PricingHandler struct{ Svc *services.PricingService }

func NewPricingHandler(svc *services.PricingService) *PricingHandler {
	return &PricingHandler{Svc: svc}
}

func (h *PricingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/pricing", h.collection)
	mux.HandleFunc("/pricing/lookup", h.lookup)
}

func (h *PricingHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.Svc.List()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
	case http.MethodPost:
		h.set(w, r)
	default:
		methodNotAllowed(w, "GET,POST")
	}
}

func (h *PricingHandler) set(w http.ResponseWriter, r *http.Request) {
	var in struct {
		VisaType string          `json:"visa_type"`
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
	}
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("visa_type", in.VisaType, v)
	if in.VisaType != "" && !models.ValidVisaType(in.VisaType) {
		v["visa_type"] = "invalid_choice"
	}
	validation.Positive("amount", in.Amount, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p, err := h.Svc.Set(in.VisaType, in.Amount, in.Currency)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// lookup returns the effective price for a visa type, falling back to the
// static defaults when nothing is configured.
func (h *PricingHandler) lookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	vt := r.URL.Query().Get("visa_type")
	if vt == "" || !models.ValidVisaType(vt) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"visa_type": "invalid_choice"})
		return
	}
	price, err := h.Svc.PriceFor(vt)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"visa_type": vt, "price": price})
}
