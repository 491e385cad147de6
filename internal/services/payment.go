package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vortexease/backoffice/internal/models"
)

var (
	ErrDiscountTypeRequired = errors.New("discount_type_required")
	ErrDiscountTypeNoAmount = errors.New("discount_type_without_amount")
	ErrDiscountTooLarge     = errors.New("discount_exceeds_amount")
)

// PaymentService records payments and their status changes.
type PaymentService struct{ DB *gorm.DB }

func NewPaymentService(db *gorm.DB) *PaymentService { return &PaymentService{DB: db} }

// validateDiscount enforces the pairing rule: a non-zero discount always
// carries a type, a type never appears without a discount, and the discount
// never exceeds the amount.
func validateDiscount(p *models.Payment) error {
	if p.Discount.IsPositive() && p.DiscountType == "" {
		return ErrDiscountTypeRequired
	}
	if !p.Discount.IsPositive() && p.DiscountType != "" {
		return ErrDiscountTypeNoAmount
	}
	if p.Discount.GreaterThan(p.Amount) {
		return ErrDiscountTooLarge
	}
	return nil
}

func (s *PaymentService) Create(p *models.Payment) error {
	if err := validateDiscount(p); err != nil {
		return err
	}
	var client models.Client
	if err := s.DB.First(&client, p.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if p.VisaApplicationID != nil {
		var a models.VisaApplication
		if err := s.DB.First(&a, *p.VisaApplicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = models.PaymentStatusPending
	}
	return s.DB.Create(p).Error
}

func (s *PaymentService) Get(id uint) (*models.Payment, error) {
	var p models.Payment
	err := s.DB.Preload("Client").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &p, err
}

// List returns payments, optionally filtered by client and status.
func (s *PaymentService) List(clientID uint, status string) ([]models.Payment, error) {
	q := s.DB.Order("created_at DESC")
	if clientID != 0 {
		q = q.Where("client_id = ?", clientID)
	}
	if status != "" {
		q = q.Where("payment_status = ?", status)
	}
	var out []models.Payment
	return out, q.Find(&out).Error
}

// SetStatus moves a payment to a new status, stamping the requested or
// received date on the matching transitions.
func (s *PaymentService) SetStatus(id uint, status string) (*models.Payment, error) {
	var p models.Payment
	if err := s.DB.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	now := time.Now()
	switch status {
	case models.PaymentStatusRequested:
		if p.PaymentRequestedDate == nil {
			p.PaymentRequestedDate = &now
		}
	case models.PaymentStatusReceived:
		if p.PaymentReceivedDate == nil {
			p.PaymentReceivedDate = &now
		}
	}
	p.PaymentStatus = status
	if err := s.DB.Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
