package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vortexease/backoffice/internal/billing"
	"github.com/vortexease/backoffice/internal/ids"
	"github.com/vortexease/backoffice/internal/models"
)

var (
	ErrAlreadyAttached         = errors.New("application_already_attached")
	ErrNotAttached             = errors.New("application_not_attached")
	ErrClientMismatch          = errors.New("application_client_mismatch")
	ErrInvalidStatus           = errors.New("invalid_invoice_status")
	ErrDiscountExceedsSubtotal = errors.New("discount_exceeds_subtotal")
)

// InvoiceService owns invoice numbering, application attachment with price
// snapshots, and total recomputation.
type InvoiceService struct {
	DB      *gorm.DB
	Pricing *PricingService
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{DB: db, Pricing: NewPricingService(db)}
}

// CreateInput is the invoice creation payload. ApplicationIDs may be empty;
// applications can be attached later.
type CreateInput struct {
	ClientID       uint
	InvoiceDate    time.Time
	DueDate        time.Time
	Discount       decimal.Decimal
	TaxRate        decimal.Decimal
	Currency       string
	Notes          string
	ApplicationIDs []uint
}

// Create builds a new invoice: per-year accounting number, generated
// reference from the attached visa types, price snapshots, computed totals.
func (s *InvoiceService) Create(in CreateInput) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, in.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if in.InvoiceDate.IsZero() {
			in.InvoiceDate = time.Now()
		}
		if in.Currency == "" {
			in.Currency = "GBP"
		}

		var apps []models.VisaApplication
		if len(in.ApplicationIDs) > 0 {
			if err := tx.Where("id IN ?", in.ApplicationIDs).Find(&apps).Error; err != nil {
				return err
			}
			if len(apps) != len(in.ApplicationIDs) {
				return ErrNotFound
			}
			for _, a := range apps {
				if a.ClientID != in.ClientID {
					return ErrClientMismatch
				}
			}
		}

		number, err := nextInvoiceNumber(tx, in.InvoiceDate.Year())
		if err != nil {
			return err
		}

		visaTypes := make([]string, 0, len(apps))
		for _, a := range apps {
			visaTypes = append(visaTypes, a.VisaType)
		}
		ref, err := ids.InvoiceID(visaTypes, client.FirstName, client.LastName,
			in.InvoiceDate, in.DueDate, invoiceCodeExists(tx, 0))
		if err != nil {
			return err
		}

		inv = models.Invoice{
			InvoiceID:     ref,
			InvoiceNumber: number,
			ClientID:      in.ClientID,
			InvoiceDate:   in.InvoiceDate,
			DueDate:       in.DueDate,
			Discount:      in.Discount,
			TaxRate:       in.TaxRate,
			Currency:      in.Currency,
			Status:        models.InvoiceStatusDraft,
			Notes:         in.Notes,
		}
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		for _, a := range apps {
			price, err := s.priceFor(tx, a.VisaType)
			if err != nil {
				return err
			}
			ia := models.InvoiceApplication{InvoiceID: inv.ID, VisaApplicationID: a.ID, UnitPrice: price}
			if err := tx.Create(&ia).Error; err != nil {
				return err
			}
		}
		return s.recompute(tx, &inv)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(inv.ID)
}

// nextInvoiceNumber returns the next free number in the per-year sequence
// INV-<year>-0001. Numbers are assigned once and never reused.
func nextInvoiceNumber(tx *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("INV-%d-", year)
	var last models.Invoice
	err := tx.Where("invoice_number LIKE ?", prefix+"%").
		Order("invoice_number DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return prefix + "0001", nil
	}
	if err != nil {
		return "", err
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(last.InvoiceNumber, prefix))
	if err != nil {
		return "", fmt.Errorf("malformed invoice number %q: %w", last.InvoiceNumber, err)
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

// invoiceCodeExists checks reference uniqueness, ignoring the invoice being
// renumbered so an unchanged base is not treated as a collision.
func invoiceCodeExists(tx *gorm.DB, selfID uint) ids.ExistsFunc {
	return func(code string) (bool, error) {
		q := tx.Model(&models.Invoice{}).Where("invoice_id = ?", code)
		if selfID != 0 {
			q = q.Where("id <> ?", selfID)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

func (s *InvoiceService) Get(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.DB.Preload("Client").Preload("Applications").
		Preload("Applications.VisaApplication").First(&inv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &inv, err
}

// List returns invoices, optionally filtered by client and status.
func (s *InvoiceService) List(clientID uint, status string) ([]models.Invoice, error) {
	q := s.DB.Preload("Client").Order("created_at DESC")
	if clientID != 0 {
		q = q.Where("client_id = ?", clientID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Invoice
	return out, q.Find(&out).Error
}

// Attach links an application to the invoice, snapshotting the current price
// for its visa type. Totals and the generated reference are refreshed.
func (s *InvoiceService) Attach(invoiceID, applicationID uint) (*models.Invoice, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		inv, app, err := s.loadPair(tx, invoiceID, applicationID)
		if err != nil {
			return err
		}
		if app.ClientID != inv.ClientID {
			return ErrClientMismatch
		}
		var n int64
		if err := tx.Model(&models.InvoiceApplication{}).
			Where("invoice_id = ? AND visa_application_id = ?", invoiceID, applicationID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyAttached
		}
		price, err := s.priceFor(tx, app.VisaType)
		if err != nil {
			return err
		}
		ia := models.InvoiceApplication{InvoiceID: invoiceID, VisaApplicationID: applicationID, UnitPrice: price}
		if err := tx.Create(&ia).Error; err != nil {
			return err
		}
		if err := s.refreshReference(tx, inv); err != nil {
			return err
		}
		return s.recompute(tx, inv)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(invoiceID)
}

// Detach removes an application from the invoice and refreshes totals and
// the generated reference. The price snapshot is discarded with the link.
func (s *InvoiceService) Detach(invoiceID, applicationID uint) (*models.Invoice, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		inv, _, err := s.loadPair(tx, invoiceID, applicationID)
		if err != nil {
			return err
		}
		res := tx.Where("invoice_id = ? AND visa_application_id = ?", invoiceID, applicationID).
			Delete(&models.InvoiceApplication{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotAttached
		}
		if err := s.refreshReference(tx, inv); err != nil {
			return err
		}
		return s.recompute(tx, inv)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(invoiceID)
}

func (s *InvoiceService) loadPair(tx *gorm.DB, invoiceID, applicationID uint) (*models.Invoice, *models.VisaApplication, error) {
	var inv models.Invoice
	if err := tx.First(&inv, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	var app models.VisaApplication
	if err := tx.First(&app, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return &inv, &app, nil
}

func (s *InvoiceService) priceFor(tx *gorm.DB, visaType string) (decimal.Decimal, error) {
	var p models.Pricing
	err := tx.Where("visa_type = ? AND is_active = ?", visaType, true).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultPrice(visaType), nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return p.Amount, nil
}

// refreshReference regenerates the invoice reference when the attached visa
// type set no longer matches the stored one. The accounting number never
// changes.
func (s *InvoiceService) refreshReference(tx *gorm.DB, inv *models.Invoice) error {
	var client models.Client
	if err := tx.First(&client, inv.ClientID).Error; err != nil {
		return err
	}
	var visaTypes []string
	if err := tx.Model(&models.InvoiceApplication{}).
		Joins("JOIN visa_applications ON visa_applications.id = invoice_applications.visa_application_id").
		Where("invoice_applications.invoice_id = ?", inv.ID).
		Pluck("visa_applications.visa_type", &visaTypes).Error; err != nil {
		return err
	}
	base := ids.InvoiceBase(visaTypes, client.FirstName, client.LastName, inv.InvoiceDate, inv.DueDate)
	if inv.InvoiceID == base || strings.HasPrefix(inv.InvoiceID, base+"-") {
		return nil
	}
	ref, err := ids.InvoiceID(visaTypes, client.FirstName, client.LastName,
		inv.InvoiceDate, inv.DueDate, invoiceCodeExists(tx, inv.ID))
	if err != nil {
		return err
	}
	inv.InvoiceID = ref
	return tx.Model(inv).Update("invoice_id", ref).Error
}

// recompute recalculates subtotal, tax and total from the current snapshot
// prices and persists them on the invoice. The totals calculator does not
// clamp, so the discount is checked against the subtotal here; a create or
// detach that would leave the discount above the subtotal rolls back.
func (s *InvoiceService) recompute(tx *gorm.DB, inv *models.Invoice) error {
	var links []models.InvoiceApplication
	if err := tx.Where("invoice_id = ?", inv.ID).Find(&links).Error; err != nil {
		return err
	}
	prices := make([]decimal.Decimal, 0, len(links))
	for _, l := range links {
		prices = append(prices, l.UnitPrice)
	}
	subtotal, taxAmount, total := billing.Totals(prices, inv.Discount, inv.TaxRate)
	if inv.Discount.GreaterThan(subtotal) {
		return ErrDiscountExceedsSubtotal
	}
	inv.Subtotal, inv.TaxAmount, inv.TotalAmount = subtotal, taxAmount, total
	return tx.Model(inv).Updates(map[string]any{
		"subtotal":     subtotal,
		"tax_amount":   taxAmount,
		"total_amount": total,
	}).Error
}

// Send marks the invoice sent and stamps sent_date on the first send.
func (s *InvoiceService) Send(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.DB.First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	now := time.Now()
	inv.Status = models.InvoiceStatusSent
	if inv.SentDate == nil {
		inv.SentDate = &now
	}
	if err := s.DB.Save(&inv).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// SetStatus moves the invoice to a new status, stamping paid_date when it
// becomes paid.
func (s *InvoiceService) SetStatus(id uint, status models.InvoiceStatus) (*models.Invoice, error) {
	if !models.ValidInvoiceStatus(status) {
		return nil, ErrInvalidStatus
	}
	var inv models.Invoice
	if err := s.DB.First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	now := time.Now()
	switch status {
	case models.InvoiceStatusSent:
		if inv.SentDate == nil {
			inv.SentDate = &now
		}
	case models.InvoiceStatusPaid:
		if inv.PaidDate == nil {
			inv.PaidDate = &now
		}
	}
	inv.Status = status
	if err := s.DB.Save(&inv).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// AvailableApplication pairs an unattached application with the price it
// would be billed at today.
type AvailableApplication struct {
	Application models.VisaApplication `json:"application"`
	Price       decimal.Decimal        `json:"price"`
}

// AvailableApplications lists the invoice client's applications not yet on
// the invoice, each with its current price.
func (s *InvoiceService) AvailableApplications(invoiceID uint) ([]AvailableApplication, error) {
	var inv models.Invoice
	if err := s.DB.First(&inv, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var attached []uint
	if err := s.DB.Model(&models.InvoiceApplication{}).
		Where("invoice_id = ?", invoiceID).
		Pluck("visa_application_id", &attached).Error; err != nil {
		return nil, err
	}
	q := s.DB.Where("client_id = ?", inv.ClientID)
	if len(attached) > 0 {
		q = q.Where("id NOT IN ?", attached)
	}
	var apps []models.VisaApplication
	if err := q.Order("created_at").Find(&apps).Error; err != nil {
		return nil, err
	}
	out := make([]AvailableApplication, 0, len(apps))
	for _, a := range apps {
		price, err := s.priceFor(s.DB, a.VisaType)
		if err != nil {
			return nil, err
		}
		out = append(out, AvailableApplication{Application: a, Price: price})
	}
	return out, nil
}
