package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the billing state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// ValidInvoiceStatus reports whether s is a known status.
func ValidInvoiceStatus(s InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Invoice bills a client for one or more visa applications. Totals are
// derived fields, recomputed whenever the attached set, discount, or tax
// rate changes.
type Invoice struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// InvoiceID is the generated reference (e.g. USRA-25123099-1231);
	// InvoiceNumber is the per-year accounting sequence (INV-2025-0001).
	InvoiceID     string `gorm:"size:96;uniqueIndex" json:"invoice_id"`
	InvoiceNumber string `gorm:"size:50;uniqueIndex" json:"invoice_number"`

	ClientID uint   `gorm:"not null;index" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"-"`

	InvoiceDate time.Time `gorm:"not null;index" json:"invoice_date"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`

	Subtotal    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal"`
	Discount    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"tax_amount"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	Currency    string          `gorm:"size:3;not null;default:'GBP'" json:"currency"`

	Status InvoiceStatus `gorm:"size:20;not null;default:'draft';index" json:"status"`

	PaymentID *uint    `json:"payment_id,omitempty"`
	Payment   *Payment `gorm:"foreignKey:PaymentID" json:"-"`

	Notes    string     `gorm:"type:text" json:"notes,omitempty"`
	SentDate *time.Time `json:"sent_date,omitempty"`
	PaidDate *time.Time `json:"paid_date,omitempty"`

	Applications []InvoiceApplication `gorm:"foreignKey:InvoiceID" json:"applications,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvoiceApplication links an invoice to a visa application, snapshotting
// the unit price at attach time so later pricing changes never rewrite
// historical invoices.
type InvoiceApplication struct {
	ID uint `gorm:"primaryKey" json:"id"`

	InvoiceID uint `gorm:"not null;index;index:idx_invoice_application,unique,priority:1" json:"invoice_id"`

	VisaApplicationID uint            `gorm:"not null;index;index:idx_invoice_application,unique,priority:2" json:"visa_application_id"`
	VisaApplication   VisaApplication `gorm:"foreignKey:VisaApplicationID" json:"visa_application"`

	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`

	CreatedAt time.Time `json:"created_at"`
}
