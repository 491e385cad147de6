package models

import "time"

// Client status values.
const (
	ClientStatusNew      = "new"
	ClientStatusPrevious = "previous"
)

// Visa types handled by the agency.
const (
	VisaTypeSchengen = "schengen"
	VisaTypeUS       = "us"
	VisaTypeUK       = "uk"
	VisaTypeAU       = "au"
	VisaTypeNZ       = "nz"
)

// VisaTypes lists the supported visa types.
func VisaTypes() []string {
	return []string{VisaTypeSchengen, VisaTypeUS, VisaTypeUK, VisaTypeAU, VisaTypeNZ}
}

// ValidVisaType reports whether vt is a supported visa type.
func ValidVisaType(vt string) bool {
	for _, v := range VisaTypes() {
		if v == vt {
			return true
		}
	}
	return false
}

// Preferred contact methods.
const (
	ContactEmail    = "email"
	ContactPhone    = "phone"
	ContactWhatsApp = "whatsapp"
	ContactSMS      = "sms"
)

// Lead sources.
const (
	LeadWebsite       = "website"
	LeadReferral      = "referral"
	LeadSocialMedia   = "social_media"
	LeadAdvertisement = "advertisement"
	LeadWalkIn        = "walk_in"
	LeadOther         = "other"
)

// Client is a visa applicant managed by the agency.
type Client struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ClientID string `gorm:"size:32;uniqueIndex" json:"client_id"` // generated reference, e.g. RA25123099

	// Personal information
	FirstName   string     `gorm:"size:100;not null" json:"first_name"`
	LastName    string     `gorm:"size:100;not null" json:"last_name"`
	Email       string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Phone       string     `gorm:"size:20;not null" json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      string     `gorm:"size:10;not null;default:'other'" json:"gender"` // male, female, other

	// Passport information
	PassportNumber string `gorm:"size:50;not null;uniqueIndex" json:"passport_number"`

	// Location
	Nationality        string `gorm:"size:100;not null" json:"nationality"`
	CountryOfResidence string `gorm:"size:100;not null" json:"country_of_residence"`

	// Contact and lead information
	PreferredContactMethod string `gorm:"size:20;not null;default:'email'" json:"preferred_contact_method"`
	LeadSource             string `gorm:"size:50;not null;default:'website'" json:"lead_source"`

	// Status
	ClientStatus string `gorm:"size:20;not null;default:'new';index" json:"client_status"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	Applications []VisaApplication `gorm:"foreignKey:ClientID" json:"applications,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns "First Last".
func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}
