package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusRequested = "requested"
	PaymentStatusReceived  = "received"
	PaymentStatusRefunded  = "refunded"
)

// Payment methods.
const (
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCreditCard   = "credit_card"
	PaymentMethodDebitCard    = "debit_card"
	PaymentMethodCash         = "cash"
	PaymentMethodOnline       = "online_payment"
	PaymentMethodOther        = "other"
)

// Discount types. A non-zero discount always carries one of these.
const (
	DiscountReferral = "referral"
	DiscountGeneral  = "general"
	DiscountSale     = "sale"
)

// Payment records money received from (or requested of) a client, optionally
// tied to one visa application.
type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint   `gorm:"not null;index" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"-"`

	VisaApplicationID *uint            `gorm:"index" json:"visa_application_id,omitempty"`
	VisaApplication   *VisaApplication `gorm:"foreignKey:VisaApplicationID" json:"-"`

	Amount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency string          `gorm:"size:3;not null;default:'GBP'" json:"currency"`

	Discount     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	DiscountType string          `gorm:"size:20" json:"discount_type,omitempty"`

	PaymentStatus string `gorm:"size:20;not null;default:'pending';index" json:"payment_status"`
	PaymentMethod string `gorm:"size:20" json:"payment_method,omitempty"`

	PaymentRequestedDate *time.Time `json:"payment_requested_date,omitempty"`
	PaymentReceivedDate  *time.Time `gorm:"index" json:"payment_received_date,omitempty"`

	TransactionID string `gorm:"size:100" json:"transaction_id,omitempty"`
	Notes         string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a reference for payments recorded without a bank
// transaction id.
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.TransactionID == "" {
		p.TransactionID = uuid.NewString()
	}
	return nil
}

// FinalAmount is the amount after discount, floored at zero.
func (p *Payment) FinalAmount() decimal.Decimal {
	final := p.Amount.Sub(p.Discount)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}
