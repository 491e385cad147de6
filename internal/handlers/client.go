package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/vortexease/backoffice/internal/httpx"
	"github.com/vortexease/backoffice/internal/models"
	"github.com/vortexease/backoffice/internal/services"
	"github.com/vortexease/backoffice/internal/validation"
)

type ClientHandler struct{ Svc *services.ClientService }

func NewClientHandler(svc *services.ClientService) *ClientHandler { return &ClientHandler{Svc: svc} }

func (h *ClientHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/clients", h.collection)
	mux.HandleFunc("/clients/get", h.get)
	mux.HandleFunc("/clients/update", h.update)
	mux.HandleFunc("/clients/delete", h.delete)
}

type clientInput struct {
	FirstName              string `json:"first_name"`
	LastName               string `json:"last_name"`
	Email                  string `json:"email"`
	Phone                  string `json:"phone"`
	DateOfBirth            string `json:"date_of_birth"`
	Gender                 string `json:"gender"`
	PassportNumber         string `json:"passport_number"`
	Nationality            string `json:"nationality"`
	CountryOfResidence     string `json:"country_of_residence"`
	PreferredContactMethod string `json:"preferred_contact_method"`
	LeadSource             string `json:"lead_source"`
	Notes                  string `json:"notes"`
}

func (in *clientInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("first_name", in.FirstName, v)
	validation.Required("last_name", in.LastName, v)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.Required("phone", in.Phone, v)
	validation.Required("passport_number", in.PassportNumber, v)
	validation.Required("nationality", in.Nationality, v)
	validation.Required("country_of_residence", in.CountryOfResidence, v)
	validation.OneOf("gender", in.Gender, []string{"male", "female", "other"}, v)
	validation.OneOf("preferred_contact_method", in.PreferredContactMethod,
		[]string{models.ContactEmail, models.ContactPhone, models.ContactWhatsApp, models.ContactSMS}, v)
	validation.OneOf("lead_source", in.LeadSource,
		[]string{models.LeadWebsite, models.LeadReferral, models.LeadSocialMedia, models.LeadAdvertisement, models.LeadWalkIn, models.LeadOther}, v)
	if in.DateOfBirth != "" {
		if _, err := parseDate(in.DateOfBirth); err != nil {
			v["date_of_birth"] = "invalid_date"
		}
	}
	return v
}

func (in *clientInput) apply(c *models.Client) {
	c.FirstName = strings.TrimSpace(in.FirstName)
	c.LastName = strings.TrimSpace(in.LastName)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = strings.TrimSpace(in.Phone)
	c.PassportNumber = strings.TrimSpace(in.PassportNumber)
	c.Nationality = strings.TrimSpace(in.Nationality)
	c.CountryOfResidence = strings.TrimSpace(in.CountryOfResidence)
	c.Notes = in.Notes
	if in.Gender != "" {
		c.Gender = in.Gender
	}
	if in.PreferredContactMethod != "" {
		c.PreferredContactMethod = in.PreferredContactMethod
	}
	if in.LeadSource != "" {
		c.LeadSource = in.LeadSource
	}
	if in.DateOfBirth != "" {
		if t, err := parseDate(in.DateOfBirth); err == nil {
			c.DateOfBirth = &t
		}
	}
}

func (h *ClientHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, "GET,POST")
	}
}

func (h *ClientHandler) list(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Svc.List(r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": len(clients)})
}

func (h *ClientHandler) create(w http.ResponseWriter, r *http.Request) {
	var in clientInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var c models.Client
	in.apply(&c)
	if err := h.Svc.Create(&c); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *ClientHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	id, ok := queryID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	c, err := h.Svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var in struct {
		ID uint `json:"id"`
		clientInput
	}
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if in.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c, err := h.Svc.Get(in.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	in.apply(c)
	if err := h.Svc.Update(c); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ClientHandler) delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.Svc.Delete(in.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": in.ID, "deleted_at": time.Now().UTC()})
}
