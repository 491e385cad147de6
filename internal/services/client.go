package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vortexease/backoffice/internal/ids"
	"github.com/vortexease/backoffice/internal/models"
)

var (
	ErrNotFound      = errors.New("not_found")
	ErrEmailTaken    = errors.New("email_taken")
	ErrPassportTaken = errors.New("passport_taken")
)

// ClientService owns client lifecycle: reference generation on create and
// an explicit cascade on delete.
type ClientService struct{ DB *gorm.DB }

func NewClientService(db *gorm.DB) *ClientService { return &ClientService{DB: db} }

// Create persists a new client, generating its reference inside the same
// transaction so a concurrent create cannot claim the same code.
func (s *ClientService) Create(c *models.Client) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := checkClientUnique(tx, 0, c.Email, c.PassportNumber); err != nil {
			return err
		}
		code, err := ids.ClientID(c.FirstName, c.LastName, time.Now(), clientCodeExists(tx))
		if err != nil {
			return err
		}
		c.ClientID = code
		if c.ClientStatus == "" {
			c.ClientStatus = models.ClientStatusNew
		}
		return tx.Create(c).Error
	})
}

// checkClientUnique reports whether another client already owns the email or
// passport number. selfID excludes the client being updated.
func checkClientUnique(tx *gorm.DB, selfID uint, email, passport string) error {
	var n int64
	q := tx.Model(&models.Client{}).Where("email = ?", email)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrEmailTaken
	}
	q = tx.Model(&models.Client{}).Where("passport_number = ?", passport)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrPassportTaken
	}
	return nil
}

func clientCodeExists(tx *gorm.DB) ids.ExistsFunc {
	return func(code string) (bool, error) {
		var n int64
		if err := tx.Model(&models.Client{}).Where("client_id = ?", code).Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

func (s *ClientService) Get(id uint) (*models.Client, error) {
	var c models.Client
	err := s.DB.Preload("Applications").First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &c, err
}

// List returns clients, optionally filtered by status, newest first.
func (s *ClientService) List(status string) ([]models.Client, error) {
	q := s.DB.Order("created_at DESC")
	if status != "" {
		q = q.Where("client_status = ?", status)
	}
	var out []models.Client
	return out, q.Find(&out).Error
}

// Update saves mutable fields. The generated reference is never rewritten.
func (s *ClientService) Update(c *models.Client) error {
	var existing models.Client
	if err := s.DB.First(&existing, c.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := checkClientUnique(s.DB, c.ID, c.Email, c.PassportNumber); err != nil {
		return err
	}
	c.ClientID = existing.ClientID
	return s.DB.Omit(clause.Associations).Save(c).Error
}

// Delete removes the client and everything hanging off it. The cascade is
// explicit so it behaves the same on sqlite and postgres.
func (s *ClientService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var c models.Client
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var invoiceIDs []uint
		if err := tx.Model(&models.Invoice{}).Where("client_id = ?", id).Pluck("id", &invoiceIDs).Error; err != nil {
			return err
		}
		if len(invoiceIDs) > 0 {
			if err := tx.Where("invoice_id IN ?", invoiceIDs).Delete(&models.InvoiceApplication{}).Error; err != nil {
				return err
			}
			if err := tx.Where("client_id = ?", id).Delete(&models.Invoice{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.VisaApplication{}).Error; err != nil {
			return err
		}
		return tx.Delete(&c).Error
	})
}
