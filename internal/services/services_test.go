package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vortexease/backoffice/internal/models"
	"github.com/vortexease/backoffice/internal/stage"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Client{}, &models.VisaApplication{}, &models.Payment{},
		&models.Pricing{}, &models.Invoice{}, &models.InvoiceApplication{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedClient(t *testing.T, db *gorm.DB, first, last, email, passport string) *models.Client {
	t.Helper()
	c := &models.Client{
		FirstName: first, LastName: last,
		Email: email, Phone: "07000000000",
		PassportNumber: passport,
		Nationality:    "Pakistani", CountryOfResidence: "United Kingdom",
		PreferredContactMethod: models.ContactEmail,
		LeadSource:             models.LeadWebsite,
	}
	if err := NewClientService(db).Create(c); err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}

func seedApplication(t *testing.T, db *gorm.DB, clientID uint, visaType string) *models.VisaApplication {
	t.Helper()
	a := &models.VisaApplication{ClientID: clientID, VisaType: visaType}
	if err := NewApplicationService(db).Create(a); err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return a
}

func TestClientCreateAssignsReference(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	if c.ClientID == "" {
		t.Fatal("expected generated client reference")
	}
	if c.ClientStatus != models.ClientStatusNew {
		t.Fatalf("expected new status got %s", c.ClientStatus)
	}
	// Second client with the same initials on the same day gets a suffix.
	c2 := seedClient(t, db, "Rashid", "Ahmed", "rashid@example.com", "CD1234567")
	if c2.ClientID == c.ClientID {
		t.Fatal("expected distinct references")
	}
	if c2.ClientID != c.ClientID+"01" {
		t.Fatalf("expected suffixed reference %s01 got %s", c.ClientID, c2.ClientID)
	}
}

func TestClientUpdateKeepsReference(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	ref := c.ClientID
	c.Phone = "07111111111"
	c.ClientID = "TAMPERED"
	if err := NewClientService(db).Update(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	var got models.Client
	if err := db.First(&got, c.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.ClientID != ref {
		t.Fatalf("reference rewritten: %s", got.ClientID)
	}
	if got.Phone != "07111111111" {
		t.Fatalf("phone not updated: %s", got.Phone)
	}
}

func TestClientUniqueEmailAndPassport(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewClientService(db)
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")

	dup := &models.Client{
		FirstName: "Imran", LastName: "Khan",
		Email: "rizwan@example.com", Phone: "07000000001",
		PassportNumber: "EF1234567",
		Nationality:    "Pakistani", CountryOfResidence: "United Kingdom",
	}
	if err := svc.Create(dup); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken got %v", err)
	}
	dup.Email = "imran@example.com"
	dup.PassportNumber = "AB1234567"
	if err := svc.Create(dup); !errors.Is(err, ErrPassportTaken) {
		t.Fatalf("expected ErrPassportTaken got %v", err)
	}
	dup.PassportNumber = "EF1234567"
	if err := svc.Create(dup); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Updating a client onto another client's email is rejected; saving it
	// with its own email untouched is not.
	dup.Email = "rizwan@example.com"
	if err := svc.Update(dup); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken on update got %v", err)
	}
	c.Phone = "07222222222"
	if err := svc.Update(c); err != nil {
		t.Fatalf("self update: %v", err)
	}
}

func TestClientDeleteCascades(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	app := seedApplication(t, db, c.ID, models.VisaTypeSchengen)
	pay := &models.Payment{ClientID: c.ID, Amount: decimal.NewFromInt(100)}
	if err := NewPaymentService(db).Create(pay); err != nil {
		t.Fatalf("payment: %v", err)
	}
	inv, err := NewInvoiceService(db).Create(CreateInput{
		ClientID: c.ID, DueDate: time.Now().AddDate(0, 1, 0), ApplicationIDs: []uint{app.ID},
	})
	if err != nil {
		t.Fatalf("invoice: %v", err)
	}

	if err := NewClientService(db).Delete(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, check := range []struct {
		model any
		where string
		arg   uint
	}{
		{&models.VisaApplication{}, "client_id = ?", c.ID},
		{&models.Payment{}, "client_id = ?", c.ID},
		{&models.Invoice{}, "client_id = ?", c.ID},
		{&models.InvoiceApplication{}, "invoice_id = ?", inv.ID},
	} {
		var n int64
		if err := db.Model(check.model).Where(check.where, check.arg).Count(&n).Error; err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Fatalf("expected cascade to remove %T rows, %d left", check.model, n)
		}
	}
}

func TestApplicationDuplicateVisaTypeRejected(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	seedApplication(t, db, c.ID, models.VisaTypeSchengen)
	err := NewApplicationService(db).Create(&models.VisaApplication{ClientID: c.ID, VisaType: models.VisaTypeSchengen})
	if !errors.Is(err, ErrDuplicateApplication) {
		t.Fatalf("expected ErrDuplicateApplication got %v", err)
	}
	// A different visa type for the same client is fine.
	seedApplication(t, db, c.ID, models.VisaTypeUS)
}

func TestApplicationReferencePrefix(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	a := seedApplication(t, db, c.ID, models.VisaTypeSchengen)
	if a.ApplicationID == "" || a.ApplicationID[0] != 'S' {
		t.Fatalf("expected S-prefixed reference got %q", a.ApplicationID)
	}
	if a.Stage != string(stage.Initial) {
		t.Fatalf("expected initial stage got %s", a.Stage)
	}
}

func TestStageTransitionRejectsSkips(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	a := seedApplication(t, db, c.ID, models.VisaTypeSchengen)
	svc := NewApplicationService(db)

	if _, err := svc.UpdateStage(a.ID, StageChange{Stage: stage.PaymentReceived}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition got %v", err)
	}
	if _, err := svc.UpdateStage(a.ID, StageChange{Stage: stage.DocumentCollected}); err != nil {
		t.Fatalf("valid step rejected: %v", err)
	}
	// Backward is not allowed.
	if _, err := svc.UpdateStage(a.ID, StageChange{Stage: stage.Initial}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition got %v", err)
	}
}

func advance(t *testing.T, svc *ApplicationService, id uint, changes ...StageChange) *models.VisaApplication {
	t.Helper()
	var a *models.VisaApplication
	var err error
	for _, ch := range changes {
		a, err = svc.UpdateStage(id, ch)
		if err != nil {
			t.Fatalf("advance to %s: %v", ch.Stage, err)
		}
	}
	return a
}

func TestStageScheduledRequiresAppointmentFields(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	a := seedApplication(t, db, c.ID, models.VisaTypeSchengen)
	svc := NewApplicationService(db)
	advance(t, svc, a.ID,
		StageChange{Stage: stage.DocumentCollected},
		StageChange{Stage: stage.PaymentRequested},
		StageChange{Stage: stage.PaymentReceived},
	)

	_, err := svc.UpdateStage(a.ID, StageChange{Stage: stage.AppointmentScheduled})
	var mf *MissingFieldsError
	if !errors.As(err, &mf) {
		t.Fatalf("expected MissingFieldsError got %v", err)
	}
	if len(mf.Fields) != 2 {
		t.Fatalf("expected two missing fields got %v", mf.Fields)
	}

	when := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	loc := "London Visa Centre"
	got, err := svc.UpdateStage(a.ID, StageChange{
		Stage:               stage.AppointmentScheduled,
		AppointmentDate:     &when,
		AppointmentLocation: &loc,
	})
	if err != nil {
		t.Fatalf("scheduled with fields: %v", err)
	}
	if got.Stage != string(stage.AppointmentScheduled) {
		t.Fatalf("stage = %s", got.Stage)
	}
}

func TestDecisionFlipsClientToPrevious(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	a := seedApplication(t, db, c.ID, models.VisaTypeSchengen)
	svc := NewApplicationService(db)
	when := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	loc := "London Visa Centre"
	decision := models.DecisionApproved
	decided := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	advance(t, svc, a.ID,
		StageChange{Stage: stage.DocumentCollected},
		StageChange{Stage: stage.PaymentRequested},
		StageChange{Stage: stage.PaymentReceived},
		StageChange{Stage: stage.AppointmentScheduled, AppointmentDate: &when, AppointmentLocation: &loc},
		StageChange{Stage: stage.AppointmentAttended},
		StageChange{Stage: stage.WaitingForDecision},
		StageChange{Stage: stage.DecisionReceived, Decision: &decision, DecisionDate: &decided},
	)

	var got models.Client
	if err := db.First(&got, c.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.ClientStatus != models.ClientStatusPrevious {
		t.Fatalf("expected previous client status got %s", got.ClientStatus)
	}
	// Terminal: nothing follows decision_received.
	if _, err := svc.UpdateStage(a.ID, StageChange{Stage: stage.Initial}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition got %v", err)
	}
}

func TestPaymentDiscountRules(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	svc := NewPaymentService(db)

	err := svc.Create(&models.Payment{ClientID: c.ID, Amount: decimal.NewFromInt(100), Discount: decimal.NewFromInt(10)})
	if !errors.Is(err, ErrDiscountTypeRequired) {
		t.Fatalf("expected ErrDiscountTypeRequired got %v", err)
	}
	err = svc.Create(&models.Payment{ClientID: c.ID, Amount: decimal.NewFromInt(100), DiscountType: models.DiscountReferral})
	if !errors.Is(err, ErrDiscountTypeNoAmount) {
		t.Fatalf("expected ErrDiscountTypeNoAmount got %v", err)
	}
	err = svc.Create(&models.Payment{ClientID: c.ID, Amount: decimal.NewFromInt(100), Discount: decimal.NewFromInt(150), DiscountType: models.DiscountSale})
	if !errors.Is(err, ErrDiscountTooLarge) {
		t.Fatalf("expected ErrDiscountTooLarge got %v", err)
	}

	p := &models.Payment{ClientID: c.ID, Amount: decimal.NewFromInt(100), Discount: decimal.NewFromInt(10), DiscountType: models.DiscountReferral}
	if err := svc.Create(p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.TransactionID == "" {
		t.Fatal("expected generated transaction id")
	}
	if p.FinalAmount().String() != "90" {
		t.Fatalf("final amount = %s", p.FinalAmount().String())
	}
}

func TestPaymentStatusStampsDates(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	svc := NewPaymentService(db)
	p := &models.Payment{ClientID: c.ID, Amount: decimal.NewFromInt(125)}
	if err := svc.Create(p); err != nil {
		t.Fatal(err)
	}
	got, err := svc.SetStatus(p.ID, models.PaymentStatusReceived)
	if err != nil {
		t.Fatal(err)
	}
	if got.PaymentReceivedDate == nil {
		t.Fatal("expected received date stamped")
	}
}

func TestPricingFallback(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewPricingService(db)

	price, err := svc.PriceFor(models.VisaTypeSchengen)
	if err != nil {
		t.Fatal(err)
	}
	if price.String() != "125" {
		t.Fatalf("schengen fallback = %s", price.String())
	}
	price, err = svc.PriceFor(models.VisaTypeUS)
	if err != nil {
		t.Fatal(err)
	}
	if price.String() != "150" {
		t.Fatalf("us fallback = %s", price.String())
	}

	if _, err := svc.Set(models.VisaTypeSchengen, decimal.NewFromInt(140), "GBP"); err != nil {
		t.Fatal(err)
	}
	price, err = svc.PriceFor(models.VisaTypeSchengen)
	if err != nil {
		t.Fatal(err)
	}
	if price.String() != "140" {
		t.Fatalf("configured price = %s", price.String())
	}
}

func TestInvoiceNumberSequencePerYear(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	svc := NewInvoiceService(db)
	due := time.Now().AddDate(0, 1, 0)

	year := time.Now().Year()
	first, err := svc.Create(CreateInput{ClientID: c.ID, DueDate: due})
	if err != nil {
		t.Fatal(err)
	}
	want := fmt.Sprintf("INV-%d-0001", year)
	if first.InvoiceNumber != want {
		t.Fatalf("invoice number = %s want %s", first.InvoiceNumber, want)
	}
	second, err := svc.Create(CreateInput{ClientID: c.ID, DueDate: due.AddDate(0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	want = fmt.Sprintf("INV-%d-0002", year)
	if second.InvoiceNumber != want {
		t.Fatalf("invoice number = %s want %s", second.InvoiceNumber, want)
	}
}

func TestInvoiceAttachSnapshotAndRecompute(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	appS := seedApplication(t, db, c.ID, models.VisaTypeSchengen)
	appU := seedApplication(t, db, c.ID, models.VisaTypeUS)
	svc := NewInvoiceService(db)

	inv, err := svc.Create(CreateInput{ClientID: c.ID, DueDate: time.Now().AddDate(0, 1, 0)})
	if err != nil {
		t.Fatal(err)
	}
	if inv.TotalAmount.String() != "0" {
		t.Fatalf("empty invoice total = %s", inv.TotalAmount.String())
	}

	inv, err = svc.Attach(inv.ID, appS.ID)
	if err != nil {
		t.Fatal(err)
	}
	if inv.Subtotal.String() != "125" {
		t.Fatalf("subtotal after schengen = %s", inv.Subtotal.String())
	}
	inv, err = svc.Attach(inv.ID, appU.ID)
	if err != nil {
		t.Fatal(err)
	}
	if inv.Subtotal.String() != "275" {
		t.Fatalf("subtotal after both = %s", inv.Subtotal.String())
	}
	if inv.TotalAmount.String() != "275" {
		t.Fatalf("total = %s", inv.TotalAmount.String())
	}

	// Attaching twice is rejected.
	if _, err := svc.Attach(inv.ID, appS.ID); !errors.Is(err, ErrAlreadyAttached) {
		t.Fatalf("expected ErrAlreadyAttached got %v", err)
	}

	// Later price changes must not rewrite the snapshot.
	if _, err := NewPricingService(db).Set(models.VisaTypeSchengen, decimal.NewFromInt(999), "GBP"); err != nil {
		t.Fatal(err)
	}
	inv, err = svc.Get(inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if inv.Subtotal.String() != "275" {
		t.Fatalf("snapshot drifted: subtotal = %s", inv.Subtotal.String())
	}

	inv, err = svc.Detach(inv.ID, appU.ID)
	if err != nil {
		t.Fatal(err)
	}
	if inv.Subtotal.String() != "125" {
		t.Fatalf("subtotal after detach = %s", inv.Subtotal.String())
	}
	if _, err := svc.Detach(inv.ID, appU.ID); !errors.Is(err, ErrNotAttached) {
		t.Fatalf("expected ErrNotAttached got %v", err)
	}
}

func TestInvoiceReferenceTracksApplicationSet(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	appS := seedApplication(t, db, c.ID, models.VisaTypeSchengen)
	appU := seedApplication(t, db, c.ID, models.VisaTypeUS)
	svc := NewInvoiceService(db)

	invDate := time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC)
	due := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	inv, err := svc.Create(CreateInput{
		ClientID: c.ID, InvoiceDate: invDate, DueDate: due,
		ApplicationIDs: []uint{appU.ID, appS.ID},
	})
	if err != nil {
		t.Fatal(err)
	}
	if inv.InvoiceID != "USRA-25123099-1231" {
		t.Fatalf("invoice reference = %s", inv.InvoiceID)
	}

	inv, err = svc.Detach(inv.ID, appU.ID)
	if err != nil {
		t.Fatal(err)
	}
	if inv.InvoiceID != "SRA-25123099-1231" {
		t.Fatalf("reference after detach = %s", inv.InvoiceID)
	}
	number := inv.InvoiceNumber

	// Re-attaching restores the original reference; the accounting number
	// never changes.
	inv, err = svc.Attach(inv.ID, appU.ID)
	if err != nil {
		t.Fatal(err)
	}
	if inv.InvoiceID != "USRA-25123099-1231" {
		t.Fatalf("reference after re-attach = %s", inv.InvoiceID)
	}
	if inv.InvoiceNumber != number {
		t.Fatalf("accounting number changed: %s", inv.InvoiceNumber)
	}
}

func TestInvoiceDiscountAndTax(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	app := seedApplication(t, db, c.ID, models.VisaTypeUS)
	svc := NewInvoiceService(db)

	inv, err := svc.Create(CreateInput{
		ClientID: c.ID, DueDate: time.Now().AddDate(0, 1, 0),
		Discount: decimal.NewFromInt(10), TaxRate: decimal.NewFromInt(20),
		ApplicationIDs: []uint{app.ID},
	})
	if err != nil {
		t.Fatal(err)
	}
	if inv.Subtotal.String() != "150" {
		t.Fatalf("subtotal = %s", inv.Subtotal.String())
	}
	if inv.TaxAmount.String() != "28" {
		t.Fatalf("tax = %s", inv.TaxAmount.String())
	}
	if inv.TotalAmount.String() != "168" {
		t.Fatalf("total = %s", inv.TotalAmount.String())
	}
}

func TestInvoiceDiscountCannotExceedSubtotal(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	us := seedApplication(t, db, c.ID, models.VisaTypeUS)
	sch := seedApplication(t, db, c.ID, models.VisaTypeSchengen)
	svc := NewInvoiceService(db)

	// Discount above the subtotal of the attached applications is rejected
	// outright and nothing is persisted.
	_, err := svc.Create(CreateInput{
		ClientID: c.ID, DueDate: time.Now().AddDate(0, 1, 0),
		Discount:       decimal.NewFromInt(500),
		ApplicationIDs: []uint{us.ID},
	})
	if !errors.Is(err, ErrDiscountExceedsSubtotal) {
		t.Fatalf("expected ErrDiscountExceedsSubtotal got %v", err)
	}
	var n int64
	if err := db.Model(&models.Invoice{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("invoice persisted despite oversized discount: %d rows", n)
	}

	// us + schengen = 275, discount 200 is fine; detaching the us
	// application would leave 125 under the discount, so the detach rolls
	// back and the invoice keeps both applications.
	inv, err := svc.Create(CreateInput{
		ClientID: c.ID, DueDate: time.Now().AddDate(0, 1, 0),
		Discount:       decimal.NewFromInt(200),
		ApplicationIDs: []uint{us.ID, sch.ID},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Detach(inv.ID, us.ID); !errors.Is(err, ErrDiscountExceedsSubtotal) {
		t.Fatalf("expected ErrDiscountExceedsSubtotal got %v", err)
	}
	got, err := svc.Get(inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Applications) != 2 {
		t.Fatalf("detach not rolled back: %d applications", len(got.Applications))
	}
	if got.TotalAmount.String() != "75" {
		t.Fatalf("total drifted: %s", got.TotalAmount.String())
	}
}

func TestInvoiceSendAndStatus(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	svc := NewInvoiceService(db)
	inv, err := svc.Create(CreateInput{ClientID: c.ID, DueDate: time.Now().AddDate(0, 1, 0)})
	if err != nil {
		t.Fatal(err)
	}

	sent, err := svc.Send(inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sent.Status != models.InvoiceStatusSent || sent.SentDate == nil {
		t.Fatalf("send did not stamp: status=%s", sent.Status)
	}
	firstSent := *sent.SentDate

	// A second send keeps the original sent date.
	sent, err = svc.Send(inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !sent.SentDate.Equal(firstSent) {
		t.Fatal("sent date rewritten on re-send")
	}

	paid, err := svc.SetStatus(inv.ID, models.InvoiceStatusPaid)
	if err != nil {
		t.Fatal(err)
	}
	if paid.PaidDate == nil {
		t.Fatal("expected paid date stamped")
	}
	if _, err := svc.SetStatus(inv.ID, "bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus got %v", err)
	}
}

func TestAvailableApplications(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	appS := seedApplication(t, db, c.ID, models.VisaTypeSchengen)
	appU := seedApplication(t, db, c.ID, models.VisaTypeUS)
	// Another client's application must never show up.
	other := seedClient(t, db, "Omar", "Khan", "omar@example.com", "EF1234567")
	seedApplication(t, db, other.ID, models.VisaTypeUS)

	svc := NewInvoiceService(db)
	inv, err := svc.Create(CreateInput{
		ClientID: c.ID, DueDate: time.Now().AddDate(0, 1, 0), ApplicationIDs: []uint{appS.ID},
	})
	if err != nil {
		t.Fatal(err)
	}
	avail, err := svc.AvailableApplications(inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(avail) != 1 {
		t.Fatalf("expected 1 available application got %d", len(avail))
	}
	if avail[0].Application.ID != appU.ID {
		t.Fatalf("wrong application offered: %d", avail[0].Application.ID)
	}
	if avail[0].Price.String() != "150" {
		t.Fatalf("offered price = %s", avail[0].Price.String())
	}
}

func TestDashboardAggregation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	c := seedClient(t, db, "Rizwan", "Ali", "rizwan@example.com", "AB1234567")
	appS := seedApplication(t, db, c.ID, models.VisaTypeSchengen)
	seedApplication(t, db, c.ID, models.VisaTypeUS)

	paySvc := NewPaymentService(db)
	p := &models.Payment{ClientID: c.ID, Amount: decimal.NewFromInt(125), Discount: decimal.NewFromInt(25), DiscountType: models.DiscountReferral}
	if err := paySvc.Create(p); err != nil {
		t.Fatal(err)
	}
	if _, err := paySvc.SetStatus(p.ID, models.PaymentStatusReceived); err != nil {
		t.Fatal(err)
	}

	invSvc := NewInvoiceService(db)
	if _, err := invSvc.Create(CreateInput{
		ClientID: c.ID, DueDate: time.Now().AddDate(0, 1, 0), ApplicationIDs: []uint{appS.ID},
	}); err != nil {
		t.Fatal(err)
	}

	// Decide the schengen application so success rates move.
	appSvc := NewApplicationService(db)
	when := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	loc := "London Visa Centre"
	decision := models.DecisionApproved
	decided := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	advance(t, appSvc, appS.ID,
		StageChange{Stage: stage.DocumentCollected},
		StageChange{Stage: stage.PaymentRequested},
		StageChange{Stage: stage.PaymentReceived},
		StageChange{Stage: stage.AppointmentScheduled, AppointmentDate: &when, AppointmentLocation: &loc},
		StageChange{Stage: stage.AppointmentAttended},
		StageChange{Stage: stage.WaitingForDecision},
		StageChange{Stage: stage.DecisionReceived, Decision: &decision, DecisionDate: &decided},
	)

	d, err := NewDashboardService(db).Build()
	if err != nil {
		t.Fatal(err)
	}
	if d.InvoicesByStatus["draft"] != 1 {
		t.Fatalf("draft invoices = %d", d.InvoicesByStatus["draft"])
	}
	if d.TotalInvoiced.String() != "125" {
		t.Fatalf("total invoiced = %s", d.TotalInvoiced.String())
	}
	if d.TotalReceived.String() != "100" {
		t.Fatalf("total received = %s", d.TotalReceived.String())
	}
	if d.Outstanding.String() != "25" {
		t.Fatalf("outstanding = %s", d.Outstanding.String())
	}
	if d.CollectionRate.String() != "80" {
		t.Fatalf("collection rate = %s", d.CollectionRate.String())
	}
	if d.ClientsByStatus[models.ClientStatusPrevious] != 1 {
		t.Fatalf("previous clients = %d", d.ClientsByStatus[models.ClientStatusPrevious])
	}
	if d.ApplicationsByStage["decision_received"] != 1 || d.ApplicationsByStage["initial"] != 1 {
		t.Fatalf("stage counts = %v", d.ApplicationsByStage)
	}
	if d.OverallSuccessRate.String() != "100" {
		t.Fatalf("overall success rate = %s", d.OverallSuccessRate.String())
	}
	if d.ByVisaType[models.VisaTypeSchengen].SuccessRate.String() != "100" {
		t.Fatalf("schengen success rate = %s", d.ByVisaType[models.VisaTypeSchengen].SuccessRate.String())
	}
	if d.ByVisaType[models.VisaTypeUS].SuccessRate.String() != "0" {
		t.Fatalf("us success rate = %s", d.ByVisaType[models.VisaTypeUS].SuccessRate.String())
	}
}
