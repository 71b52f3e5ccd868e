package store

import (
	"context"
	"fmt"
	"testing"

	"autostock/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens a fresh in-memory database per test. The DSN is unique so
// parallel tests don't share state, and the pool is pinned to one connection
// so every session sees the same in-memory instance.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Plan{},
		&model.Business{},
		&model.User{},
		&model.Product{},
		&model.Sale{},
		&model.Notification{},
	))
	return db
}

func createTestPlan(t *testing.T, db *gorm.DB, durationDays int) *model.Plan {
	t.Helper()
	plan := model.Plan{
		Name:         "Basic",
		Description:  "Entry plan",
		Price:        decimal.NewFromFloat(29.99),
		DurationDays: durationDays,
	}
	require.NoError(t, db.Create(&plan).Error)
	return &plan
}

func createTestBusiness(t *testing.T, db *gorm.DB, name, status string) *model.Business {
	t.Helper()
	business := model.Business{
		Name:               name,
		Owner:              "Owner of " + name,
		SubscriptionStatus: status,
	}
	require.NoError(t, db.Create(&business).Error)
	return &business
}

func createTestUser(t *testing.T, db *gorm.DB, username, password, role string, businessID *uint) *model.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	user := model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		BusinessID:   businessID,
		Status:       model.UserActive,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestProduct(t *testing.T, db *gorm.DB, businessID uint, code string, price float64, quantity int) *model.Product {
	t.Helper()
	product := model.Product{
		BusinessID: businessID,
		Code:       code,
		Name:       "Tire " + code,
		Category:   "tires",
		Price:      decimal.NewFromFloat(price),
		Quantity:   quantity,
		Supplier:   "Acme Rubber",
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func testContext() context.Context {
	return context.Background()
}
