package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vortexease/backoffice/internal/models"
	"github.com/vortexease/backoffice/internal/stage"
)

// DashboardService aggregates the figures shown on the back-office landing
// page. Monetary sums run over decimals in Go rather than SQL so sqlite and
// postgres agree to the penny.
type DashboardService struct{ DB *gorm.DB }

func NewDashboardService(db *gorm.DB) *DashboardService { return &DashboardService{DB: db} }

type VisaTypeStats struct {
	Total       int64           `json:"total"`
	Approved    int64           `json:"approved"`
	Rejected    int64           `json:"rejected"`
	SuccessRate decimal.Decimal `json:"success_rate"`
}

type Dashboard struct {
	InvoicesByStatus    map[string]int64 `json:"invoices_by_status"`
	TotalInvoiced       decimal.Decimal  `json:"total_invoiced"`
	TotalReceived       decimal.Decimal  `json:"total_received"`
	Outstanding         decimal.Decimal  `json:"outstanding"`
	CollectionRate      decimal.Decimal  `json:"collection_rate"`
	ClientsByStatus     map[string]int64 `json:"clients_by_status"`
	ApplicationsByStage map[string]int64 `json:"applications_by_stage"`

	OverallSuccessRate decimal.Decimal          `json:"overall_success_rate"`
	ByVisaType         map[string]VisaTypeStats `json:"by_visa_type"`
}

// Build computes the full dashboard in one pass.
func (s *DashboardService) Build() (*Dashboard, error) {
	d := &Dashboard{
		InvoicesByStatus:    map[string]int64{},
		ClientsByStatus:     map[string]int64{},
		ApplicationsByStage: map[string]int64{},
		ByVisaType:          map[string]VisaTypeStats{},
		TotalInvoiced:       decimal.Zero,
		TotalReceived:       decimal.Zero,
	}

	type statusCount struct {
		Key   string
		Count int64
	}
	var rows []statusCount
	if err := s.DB.Model(&models.Invoice{}).
		Select("status AS key, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		d.InvoicesByStatus[r.Key] = r.Count
	}

	var invoices []models.Invoice
	if err := s.DB.Where("status <> ?", models.InvoiceStatusCancelled).Find(&invoices).Error; err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		d.TotalInvoiced = d.TotalInvoiced.Add(inv.TotalAmount)
	}

	var received []models.Payment
	if err := s.DB.Where("payment_status = ?", models.PaymentStatusReceived).Find(&received).Error; err != nil {
		return nil, err
	}
	for _, p := range received {
		d.TotalReceived = d.TotalReceived.Add(p.FinalAmount())
	}

	d.Outstanding = d.TotalInvoiced.Sub(d.TotalReceived)
	if d.TotalInvoiced.IsPositive() {
		d.CollectionRate = d.TotalReceived.Div(d.TotalInvoiced).Mul(decimal.NewFromInt(100)).Round(1)
	} else {
		d.CollectionRate = decimal.Zero
	}

	rows = rows[:0]
	if err := s.DB.Model(&models.Client{}).
		Select("client_status AS key, COUNT(*) AS count").Group("client_status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		d.ClientsByStatus[r.Key] = r.Count
	}

	// Every stage appears, zero counts included, so the UI table is stable.
	for _, st := range stage.All() {
		d.ApplicationsByStage[string(st)] = 0
	}
	rows = rows[:0]
	if err := s.DB.Model(&models.VisaApplication{}).
		Select("stage AS key, COUNT(*) AS count").Group("stage").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		d.ApplicationsByStage[r.Key] = r.Count
	}

	var overallApproved, overallDecided int64
	for _, vt := range models.VisaTypes() {
		var stats VisaTypeStats
		if err := s.DB.Model(&models.VisaApplication{}).
			Where("visa_type = ?", vt).Count(&stats.Total).Error; err != nil {
			return nil, err
		}
		if err := s.DB.Model(&models.VisaApplication{}).
			Where("visa_type = ? AND decision = ?", vt, models.DecisionApproved).
			Count(&stats.Approved).Error; err != nil {
			return nil, err
		}
		if err := s.DB.Model(&models.VisaApplication{}).
			Where("visa_type = ? AND decision = ?", vt, models.DecisionRejected).
			Count(&stats.Rejected).Error; err != nil {
			return nil, err
		}
		stats.SuccessRate = successRate(stats.Approved, stats.Approved+stats.Rejected)
		d.ByVisaType[vt] = stats
		overallApproved += stats.Approved
		overallDecided += stats.Approved + stats.Rejected
	}
	d.OverallSuccessRate = successRate(overallApproved, overallDecided)
	return d, nil
}

func successRate(approved, decided int64) decimal.Decimal {
	if decided == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(approved).
		Div(decimal.NewFromInt(decided)).
		Mul(decimal.NewFromInt(100)).Round(1)
}
