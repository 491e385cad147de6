package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pricing holds the active price for one visa type. At most one active row
// exists per visa type; lookups fall back to static defaults when none does.
type Pricing struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	VisaType  string          `gorm:"size:20;not null;uniqueIndex" json:"visa_type"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency  string          `gorm:"size:3;not null;default:'GBP'" json:"currency"`
	IsActive  bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DefaultPrice is the static fallback used when no active pricing row
// matches a visa type: schengen 125, everything else 150.
func DefaultPrice(visaType string) decimal.Decimal {
	if visaType == VisaTypeSchengen {
		return decimal.NewFromInt(125)
	}
	return decimal.NewFromInt(150)
}
