package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mpelletier/facturio/internal/models"
	"github.com/mpelletier/facturio/internal/session"
)

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		NowFunc:     func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}
	configurePool(sqlDB)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the schema for every entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.Customer{},
		&models.Product{},
		&models.Invoice{},
		&models.InvoiceLine{},
		&models.User{},
	)
}

// Seed guarantees the singleton company row and the first-boot admin
// credential. Creating the well-known admin account is security relevant,
// so it is logged at WARN level for operators.
func Seed(db *gorm.DB, sessions *session.Manager, adminUser, adminPassword string, log *slog.Logger) error {
	var companyCount int64
	if err := db.Model(&models.Company{}).Count(&companyCount).Error; err != nil {
		return fmt.Errorf("counting company rows: %w", err)
	}
	if companyCount == 0 {
		if err := db.Create(&models.Company{}).Error; err != nil {
			return fmt.Errorf("seeding company profile: %w", err)
		}
		log.Info("seeded default company profile")
	}

	var user models.User
	err := db.Order("id ASC").First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("looking up admin user: %w", err)
	}

	admin := models.User{
		Username:     adminUser,
		PasswordHash: sessions.HashPassword(adminPassword),
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seeding admin user: %w", err)
	}
	log.Warn("created default admin account with the well-known initial password, change it",
		"username", adminUser)
	return nil
}
