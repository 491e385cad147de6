package handlers

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/vortexease/backoffice/internal/httpx"
	"github.com/vortexease/backoffice/internal/models"
	"github.com/vortexease/backoffice/internal/pdf"
	"github.com/vortexease/backoffice/internal/services"
	"github.com/vortexease/backoffice/internal/validation"
)

type InvoiceHandler struct{ Svc *services.InvoiceService }

func NewInvoiceHandler(svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Svc: svc}
}

func (h *InvoiceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/invoices", h.collection)
	mux.HandleFunc("/invoices/get", h.get)
	mux.HandleFunc("/invoices/applications/add", h.attach)
	mux.HandleFunc("/invoices/applications/remove", h.detach)
	mux.HandleFunc("/invoices/send", h.send)
	mux.HandleFunc("/invoices/status", h.setStatus)
	mux.HandleFunc("/invoices/pdf", h.renderPDF)
	mux.HandleFunc("/invoices/available-applications", h.available)
}

func (h *InvoiceHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, "GET,POST")
	}
}

func (h *InvoiceHandler) list(w http.ResponseWriter, r *http.Request) {
	clientID, _ := queryID(r, "client_id")
	invoices, err := h.Svc.List(clientID, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "total": len(invoices)})
}

func (h *InvoiceHandler) create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ClientID       uint            `json:"client_id"`
		InvoiceDate    string          `json:"invoice_date"`
		DueDate        string          `json:"due_date"`
		Discount       decimal.Decimal `json:"discount"`
		TaxRate        decimal.Decimal `json:"tax_rate"`
		Currency       string          `json:"currency"`
		Notes          string          `json:"notes"`
		ApplicationIDs []uint          `json:"application_ids"`
	}
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if in.ClientID == 0 {
		v["client_id"] = "required"
	}
	validation.Required("due_date", in.DueDate, v)
	validation.NonNegative("discount", in.Discount, v)
	validation.NonNegative("tax_rate", in.TaxRate, v)

	input := services.CreateInput{
		ClientID:       in.ClientID,
		Discount:       in.Discount,
		TaxRate:        in.TaxRate,
		Currency:       in.Currency,
		Notes:          in.Notes,
		ApplicationIDs: in.ApplicationIDs,
	}
	if in.InvoiceDate != "" {
		t, err := parseDate(in.InvoiceDate)
		if err != nil {
			v["invoice_date"] = "invalid_date"
		} else {
			input.InvoiceDate = t
		}
	}
	if in.DueDate != "" {
		t, err := parseDate(in.DueDate)
		if err != nil {
			v["due_date"] = "invalid_date"
		} else {
			input.DueDate = t
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	inv, err := h.Svc.Create(input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	id, ok := queryID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	inv, err := h.Svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

type invoiceApplicationInput struct {
	InvoiceID     uint `json:"invoice_id"`
	ApplicationID uint `json:"application_id"`
}

func decodePair(w http.ResponseWriter, r *http.Request) (invoiceApplicationInput, bool) {
	var in invoiceApplicationInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return in, false
	}
	v := validation.Violations{}
	if in.InvoiceID == 0 {
		v["invoice_id"] = "required"
	}
	if in.ApplicationID == 0 {
		v["application_id"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return in, false
	}
	return in, true
}

// attach and detach answer with the refreshed invoice so the caller can
// update totals without a second round trip.
func (h *InvoiceHandler) attach(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	in, ok := decodePair(w, r)
	if !ok {
		return
	}
	inv, err := h.Svc.Attach(in.InvoiceID, in.ApplicationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) detach(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	in, ok := decodePair(w, r)
	if !ok {
		return
	}
	inv, err := h.Svc.Detach(in.InvoiceID, in.ApplicationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var in struct {
		ID uint `json:"id"`
	}
	if err := httpx.Decode(r, &in); err != nil || in.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	inv, err := h.Svc.Send(in.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var in struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if in.ID == 0 || in.Status == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed",
			validation.Violations{"id": "required", "status": "required"})
		return
	}
	inv, err := h.Svc.SetStatus(in.ID, models.InvoiceStatus(in.Status))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) renderPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	id, ok := queryID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	inv, err := h.Svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	body, err := pdf.RenderInvoice(inv)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_render_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", inv.InvoiceNumber+".pdf"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		_ = err
	}
}

func (h *InvoiceHandler) available(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	id, ok := queryID(r, "invoice_id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	apps, err := h.Svc.AvailableApplications(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": apps, "total": len(apps)})
}
