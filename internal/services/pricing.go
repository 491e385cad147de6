package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vortexease/backoffice/internal/models"
)

// PricingService resolves the current price for a visa type. Lookups fall
// back to static defaults so billing never blocks on missing configuration.
type PricingService struct{ DB *gorm.DB }

func NewPricingService(db *gorm.DB) *PricingService { return &PricingService{DB: db} }

// PriceFor returns the active price for a visa type, or the static default
// when no active row exists.
func (s *PricingService) PriceFor(visaType string) (decimal.Decimal, error) {
	var p models.Pricing
	err := s.DB.Where("visa_type = ? AND is_active = ?", visaType, true).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultPrice(visaType), nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return p.Amount, nil
}

// Set upserts the active price for a visa type.
func (s *PricingService) Set(visaType string, amount decimal.Decimal, currency string) (*models.Pricing, error) {
	if currency == "" {
		currency = "GBP"
	}
	var p models.Pricing
	err := s.DB.Where("visa_type = ?", visaType).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = models.Pricing{VisaType: visaType, Amount: amount, Currency: currency, IsActive: true}
		return &p, s.DB.Create(&p).Error
	}
	if err != nil {
		return nil, err
	}
	p.Amount = amount
	p.Currency = currency
	p.IsActive = true
	return &p, s.DB.Save(&p).Error
}

func (s *PricingService) List() ([]models.Pricing, error) {
	var out []models.Pricing
	return out, s.DB.Order("visa_type").Find(&out).Error
}
