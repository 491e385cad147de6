package db

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vortexease/backoffice/internal/models"
)

// ConnectAndMigrate opens the database and brings the schema up to date.
// sqlite: DSNs (and file::memory: style ones) use the sqlite driver, which
// keeps local development and CI self-contained; everything else goes to
// postgres with a short retry loop so the app survives a slow DB start.
func ConnectAndMigrate(dsn string) (*gorm.DB, error) {
	dsn = NormalizeDSN(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check environment configuration")
	}
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel), TranslateError: true}

	var db *gorm.DB
	var err error
	if isSQLite(dsn) {
		db, err = gorm.Open(sqlite.Open(strings.TrimPrefix(dsn, "sqlite:")), cfg)
	} else {
		for i := 0; i < 10; i++ {
			db, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			fmt.Println("Retrying DB connection...", err)
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	fmt.Println("[DB] Using DSN:", masked)

	// MIGRATIONS=1 runs the versioned SQL migrations via golang-migrate;
	// otherwise AutoMigrate keeps the dev loop simple.
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if isSQLite(dsn) {
			return nil, errors.New("sql migrations require a postgres DSN")
		}
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	for _, table := range []string{"users", "clients", "visa_applications", "invoices"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		Seed(db)
	}
	return db, nil
}

// AutoMigrate applies the GORM schema for every model.
func AutoMigrate(db *gorm.DB) error {
	toMigrate := []interface{}{
		&models.User{}, &models.Client{}, &models.VisaApplication{},
		&models.Payment{}, &models.Pricing{}, &models.Invoice{}, &models.InvoiceApplication{},
	}
	for _, m := range toMigrate {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// Seed inserts the baseline pricing rows once. Safe to run repeatedly.
func Seed(db *gorm.DB) {
	basePricing := []models.Pricing{
		{VisaType: models.VisaTypeSchengen, Amount: decimal.NewFromInt(125), Currency: "GBP"},
		{VisaType: models.VisaTypeUS, Amount: decimal.NewFromInt(150), Currency: "GBP"},
		{VisaType: models.VisaTypeUK, Amount: decimal.NewFromInt(150), Currency: "GBP"},
		{VisaType: models.VisaTypeAU, Amount: decimal.NewFromInt(150), Currency: "GBP"},
		{VisaType: models.VisaTypeNZ, Amount: decimal.NewFromInt(150), Currency: "GBP"},
	}
	for _, p := range basePricing {
		p.IsActive = true
		var existing models.Pricing
		if err := db.Where("visa_type = ?", p.VisaType).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&p)
		}
	}
}

func isSQLite(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "sqlite:") || strings.HasPrefix(lower, "file:") || lower == ":memory:"
}

// runSQLMigrations executes migrations in ./migrations using the golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
