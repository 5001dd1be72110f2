package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance
var DB *gorm.DB

// Connect opens the record store. A postgres:// DSN selects the PostgreSQL
// driver; anything else is treated as a SQLite file path.
func Connect(dsn string, logLevel logger.LogLevel) error {
	var err error

	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		DB, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		DB, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established")
	return nil
}

// AutoMigrate runs database migrations
func AutoMigrate() error {
	log.Println("Running database migrations...")

	err := DB.AutoMigrate(
		&Patient{},
		&TelemetrySample{},
		&Alert{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// InitializeDefaults seeds the patient roster on first run so the simulator
// and dashboard have known patients to work with.
func InitializeDefaults() error {
	return SeedPatients(DB)
}

// SeedPatients creates the default patient records if the table is empty.
func SeedPatients(db *gorm.DB) error {
	var count int64
	db.Model(&Patient{}).Count(&count)
	if count > 0 {
		return nil
	}

	patients := []Patient{
		{ID: "P001", Name: "John Doe", Age: 65, MedicalHistory: "Hypertension, Type 2 Diabetes"},
		{ID: "P002", Name: "Jane Smith", Age: 72, MedicalHistory: "Arrhythmia"},
		{ID: "P003", Name: "Bob Wilson", Age: 58, MedicalHistory: "None"},
	}
	if err := db.Create(&patients).Error; err != nil {
		return fmt.Errorf("failed to seed patients: %w", err)
	}

	log.Printf("Seeded %d default patients", len(patients))
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// Close closes the database connection
func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
