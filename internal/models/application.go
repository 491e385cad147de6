package models

import "time"

// Decision outcomes for a visa application.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// VisaApplication tracks one visa process for a client. A client holds at
// most one application per visa type.
type VisaApplication struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ApplicationID string `gorm:"size:64;uniqueIndex" json:"application_id"` // generated reference, e.g. SRA25123099

	ClientID uint   `gorm:"not null;index;index:idx_client_visa_type,unique,priority:1" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"-"`

	VisaType string `gorm:"size:20;not null;index;index:idx_client_visa_type,unique,priority:2" json:"visa_type"`
	Stage    string `gorm:"size:30;not null;default:'initial';index" json:"stage"`

	// Appointment search (stage appointment_searching)
	AppointmentSearchEmail   string `gorm:"size:255" json:"appointment_search_email,omitempty"`
	AppointmentSearchWebsite string `gorm:"size:500" json:"appointment_search_website,omitempty"`

	// Appointment (required once stage is appointment_scheduled)
	AppointmentDate     *time.Time `gorm:"index" json:"appointment_date,omitempty"`
	AppointmentLocation string     `gorm:"size:255" json:"appointment_location,omitempty"`

	// Decision (required once stage is decision_received)
	Decision      string     `gorm:"size:20;index" json:"decision,omitempty"`
	DecisionDate  *time.Time `json:"decision_date,omitempty"`
	DecisionNotes string     `gorm:"type:text" json:"decision_notes,omitempty"`

	AssignedAgent string `gorm:"size:100" json:"assigned_agent,omitempty"`
	Notes         string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Decided reports whether the application carries a terminal outcome.
func (a *VisaApplication) Decided() bool {
	return a.Decision == DecisionApproved || a.Decision == DecisionRejected
}
