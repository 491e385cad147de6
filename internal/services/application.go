package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vortexease/backoffice/internal/ids"
	"github.com/vortexease/backoffice/internal/models"
	"github.com/vortexease/backoffice/internal/stage"
)

var (
	ErrDuplicateApplication = errors.New("duplicate_application")
	ErrInvalidTransition    = errors.New("invalid_stage_transition")
)

// MissingFieldsError reports a stage change rejected because required
// fields are absent.
type MissingFieldsError struct{ Fields []string }

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %v", e.Fields)
}

// ApplicationService tracks visa applications through their lifecycle.
type ApplicationService struct{ DB *gorm.DB }

func NewApplicationService(db *gorm.DB) *ApplicationService {
	return &ApplicationService{DB: db}
}

// Create opens a new application for a client. A client holds at most one
// application per visa type.
func (s *ApplicationService) Create(a *models.VisaApplication) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, a.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var n int64
		if err := tx.Model(&models.VisaApplication{}).
			Where("client_id = ? AND visa_type = ?", a.ClientID, a.VisaType).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateApplication
		}
		code, err := ids.ApplicationID(a.VisaType, client.FirstName, client.LastName, time.Now(), applicationCodeExists(tx))
		if err != nil {
			return err
		}
		a.ApplicationID = code
		if a.Stage == "" {
			a.Stage = string(stage.Initial)
		}
		return tx.Create(a).Error
	})
}

func applicationCodeExists(tx *gorm.DB) ids.ExistsFunc {
	return func(code string) (bool, error) {
		var n int64
		if err := tx.Model(&models.VisaApplication{}).Where("application_id = ?", code).Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

func (s *ApplicationService) Get(id uint) (*models.VisaApplication, error) {
	var a models.VisaApplication
	err := s.DB.Preload("Client").First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &a, err
}

// List returns applications, optionally filtered by client and stage.
func (s *ApplicationService) List(clientID uint, stageFilter string) ([]models.VisaApplication, error) {
	q := s.DB.Preload("Client").Order("created_at DESC")
	if clientID != 0 {
		q = q.Where("client_id = ?", clientID)
	}
	if stageFilter != "" {
		q = q.Where("stage = ?", stageFilter)
	}
	var out []models.VisaApplication
	return out, q.Find(&out).Error
}

// StageChange carries the stage transition payload. Nil pointers leave the
// corresponding application field untouched.
type StageChange struct {
	Stage               stage.Stage
	AppointmentDate     *time.Time
	AppointmentLocation *string
	Decision            *string
	DecisionDate        *time.Time
	DecisionNotes       *string
}

// UpdateStage validates the transition against the lifecycle table, enforces
// the target stage's required fields, and applies the decision side effect:
// a decided application flips its client to previous.
func (s *ApplicationService) UpdateStage(id uint, ch StageChange) (*models.VisaApplication, error) {
	var a models.VisaApplication
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !stage.Valid(ch.Stage) || !stage.CanTransition(stage.Stage(a.Stage), ch.Stage) {
			return ErrInvalidTransition
		}

		if ch.AppointmentDate != nil {
			a.AppointmentDate = ch.AppointmentDate
		}
		if ch.AppointmentLocation != nil {
			a.AppointmentLocation = *ch.AppointmentLocation
		}
		if ch.Decision != nil {
			a.Decision = *ch.Decision
		}
		if ch.DecisionDate != nil {
			a.DecisionDate = ch.DecisionDate
		}
		if ch.DecisionNotes != nil {
			a.DecisionNotes = *ch.DecisionNotes
		}

		if missing := missingFields(&a, ch.Stage); len(missing) > 0 {
			return &MissingFieldsError{Fields: missing}
		}

		a.Stage = string(ch.Stage)
		if err := tx.Save(&a).Error; err != nil {
			return err
		}

		if ch.Stage == stage.DecisionReceived && a.Decided() {
			if err := tx.Model(&models.Client{}).Where("id = ?", a.ClientID).
				Update("client_status", models.ClientStatusPrevious).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func missingFields(a *models.VisaApplication, target stage.Stage) []string {
	var missing []string
	for _, f := range stage.RequiredFields(target) {
		switch f {
		case stage.FieldAppointmentDate:
			if a.AppointmentDate == nil {
				missing = append(missing, f)
			}
		case stage.FieldAppointmentLocation:
			if a.AppointmentLocation == "" {
				missing = append(missing, f)
			}
		case stage.FieldDecision:
			if a.Decision == "" {
				missing = append(missing, f)
			}
		case stage.FieldDecisionDate:
			if a.DecisionDate == nil {
				missing = append(missing, f)
			}
		}
	}
	return missing
}
