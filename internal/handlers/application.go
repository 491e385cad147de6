package handlers

import (
	"net/http"

	"github.com/vortexease/backoffice/internal/httpx"
	"github.com/vortexease/backoffice/internal/models"
	"github.com/vortexease/backoffice/internal/services"
	"github.com/vortexease/backoffice/internal/stage"
	"github.com/vortexease/backoffice/internal/validation"
)

type ApplicationHandler struct{ Svc *services.ApplicationService }

func NewApplicationHandler(svc *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{Svc: svc}
}

func (h *ApplicationHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/applications", h.collection)
	mux.HandleFunc("/applications/get", h.get)
	mux.HandleFunc("/applications/stage", h.updateStage)
}

func (h *ApplicationHandler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, "GET,POST")
	}
}

func (h *ApplicationHandler) list(w http.ResponseWriter, r *http.Request) {
	clientID, _ := queryID(r, "client_id")
	apps, err := h.Svc.List(clientID, r.URL.Query().Get("stage"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": apps, "total": len(apps)})
}

func (h *ApplicationHandler) create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ClientID                 uint   `json:"client_id"`
		VisaType                 string `json:"visa_type"`
		AppointmentSearchEmail   string `json:"appointment_search_email"`
		AppointmentSearchWebsite string `json:"appointment_search_website"`
		AssignedAgent            string `json:"assigned_agent"`
		Notes                    string `json:"notes"`
	}
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if in.ClientID == 0 {
		v["client_id"] = "required"
	}
	validation.Required("visa_type", in.VisaType, v)
	if in.VisaType != "" && !models.ValidVisaType(in.VisaType) {
		v["visa_type"] = "invalid_choice"
	}
	validation.Email("appointment_search_email", in.AppointmentSearchEmail, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	a := models.VisaApplication{
		ClientID:                 in.ClientID,
		VisaType:                 in.VisaType,
		AppointmentSearchEmail:   in.AppointmentSearchEmail,
		AppointmentSearchWebsite: in.AppointmentSearchWebsite,
		AssignedAgent:            in.AssignedAgent,
		Notes:                    in.Notes,
	}
	if err := h.Svc.Create(&a); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

func (h *ApplicationHandler) get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	id, ok := queryID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	a, err := h.Svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *ApplicationHandler) updateStage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var in struct {
		ID                  uint    `json:"id"`
		Stage               string  `json:"stage"`
		AppointmentDate     *string `json:"appointment_date"`
		AppointmentLocation *string `json:"appointment_location"`
		Decision            *string `json:"decision"`
		DecisionDate        *string `json:"decision_date"`
		DecisionNotes       *string `json:"decision_notes"`
	}
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if in.ID == 0 {
		v["id"] = "required"
	}
	validation.Required("stage", in.Stage, v)
	if in.Stage != "" && !stage.Valid(stage.Stage(in.Stage)) {
		v["stage"] = "invalid_choice"
	}
	if in.Decision != nil && *in.Decision != "" {
		validation.OneOf("decision", *in.Decision, []string{models.DecisionApproved, models.DecisionRejected}, v)
	}
	ch := services.StageChange{
		Stage:               stage.Stage(in.Stage),
		AppointmentLocation: in.AppointmentLocation,
		Decision:            in.Decision,
		DecisionNotes:       in.DecisionNotes,
	}
	if in.AppointmentDate != nil {
		t, err := parseDate(*in.AppointmentDate)
		if err != nil {
			v["appointment_date"] = "invalid_date"
		} else {
			ch.AppointmentDate = &t
		}
	}
	if in.DecisionDate != nil {
		t, err := parseDate(*in.DecisionDate)
		if err != nil {
			v["decision_date"] = "invalid_date"
		} else {
			ch.DecisionDate = &t
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	a, err := h.Svc.UpdateStage(in.ID, ch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}
