package db

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vortexease/backoffice/internal/models"
)

func TestSeedIdempotent(t *testing.T) {
	d, err := gorm.Open(sqlite.Open("file:seed_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.AutoMigrate(&models.Pricing{}); err != nil {
		t.Fatal(err)
	}
	Seed(d)
	Seed(d)
	var count int64
	d.Model(&models.Pricing{}).Count(&count)
	if count != 5 {
		t.Fatalf("expected 5 pricing rows got %d", count)
	}
	var schengen models.Pricing
	if err := d.Where("visa_type = ?", models.VisaTypeSchengen).First(&schengen).Error; err != nil {
		t.Fatal(err)
	}
	if schengen.Amount.String() != "125" {
		t.Fatalf("schengen baseline price = %s", schengen.Amount.String())
	}
	// Idempotency: the baseline must not duplicate
	var c int64
	d.Model(&models.Pricing{}).Where("visa_type = ?", models.VisaTypeUS).Count(&c)
	if c != 1 {
		t.Fatalf("us pricing duplicated or missing: %d", c)
	}
}

func TestNormalizeDSN(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  postgres://u:p@h:5432/db?sslmode=disable  ", "postgres://u:p@h:5432/db?sslmode=disable"},
		{"host=localhost user=app dbname=backoffice", "host=localhost user=app dbname=backoffice sslmode=disable"},
		{"host=localhost  user=app   dbname=backoffice sslmode=require", "host=localhost user=app dbname=backoffice sslmode=require"},
		{"file:dev.db?cache=shared", "file:dev.db?cache=shared"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeDSN(c.in); got != c.want {
			t.Errorf("NormalizeDSN(%q) = %q want %q", c.in, got, c.want)
		}
	}
}
