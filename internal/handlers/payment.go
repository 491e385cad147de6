package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/vortexease/backoffice/internal/httpx"
	"github.com/vortexease/backoffice/internal/models"
	"github.com/vortexease/backoffice/internal/services"
	"github.com/vortexease/backoffice/internal/validation"
)

type PaymentHandler struct{ Svc *services.PaymentService }

func NewPaymentHandler(svc *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Svc: svc}
}

func (h *PaymentHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/payments", h.collection)
	mux.HandleFunc("/payments/get", h.get)
	mux.HandleFunc("/payments/status", h.setStatus)
}

func (h *PaymentHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, "GET,POST")
	}
}

func (h *PaymentHandler) list(w http.ResponseWriter, r *http.Request) {
	clientID, _ := queryID(r, "client_id")
	payments, err := h.Svc.List(clientID, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": payments, "total": len(payments)})
}

func (h *PaymentHandler) create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ClientID          uint            `json:"client_id"`
		VisaApplicationID *uint           `json:"visa_application_id"`
		Amount            decimal.Decimal `json:"amount"`
		Currency          string          `json:"currency"`
		Discount          decimal.Decimal `json:"discount"`
		DiscountType      string          `json:"discount_type"`
		PaymentMethod     string          `json:"payment_method"`
		TransactionID     string          `json:"transaction_id"`
		Notes             string          `json:"notes"`
	}
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if in.ClientID == 0 {
		v["client_id"] = "required"
	}
	validation.Positive("amount", in.Amount, v)
	validation.NonNegative("discount", in.Discount, v)
	validation.MaxDecimal("discount", in.Discount, in.Amount, v)
	validation.OneOf("discount_type", in.DiscountType,
		[]string{models.DiscountReferral, models.DiscountGeneral, models.DiscountSale}, v)
	validation.OneOf("payment_method", in.PaymentMethod,
		[]string{models.PaymentMethodBankTransfer, models.PaymentMethodCreditCard, models.PaymentMethodDebitCard,
			models.PaymentMethodCash, models.PaymentMethodOnline, models.PaymentMethodOther}, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p := models.Payment{
		ClientID:          in.ClientID,
		VisaApplicationID: in.VisaApplicationID,
		Amount:            in.Amount,
		Currency:          in.Currency,
		Discount:          in.Discount,
		DiscountType:      in.DiscountType,
		PaymentMethod:     in.PaymentMethod,
		TransactionID:     in.TransactionID,
		Notes:             in.Notes,
	}
	if p.Currency == "" {
		p.Currency = "GBP"
	}
	if err := h.Svc.Create(&p); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *PaymentHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	id, ok := queryID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	p, err := h.Svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) setStatus(w http.ResponseWriter, r *http.Request) {
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
	v := validation.Violations{}
	if in.ID == 0 {
		v["id"] = "required"
	}
	validation.Required("status", in.Status, v)
	validation.OneOf("status", in.Status,
		[]string{models.PaymentStatusPending, models.PaymentStatusRequested, models.PaymentStatusReceived, models.PaymentStatusRefunded}, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p, err := h.Svc.SetStatus(in.ID, in.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
