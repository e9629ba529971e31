package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"dealership_app_echo/internal/models"
	"dealership_app_echo/internal/repository"
)

// setupTestDB opens a fresh in-memory sqlite database per test so they can
// run in parallel without sharing state.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	// ":memory:" is per-connection; one connection keeps every query and
	// goroutine on the same database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Contract{},
		&models.Invoice{},
		&models.Payment{},
	))
	return db
}

func setupTestRepo(t *testing.T) repository.ContractRepository {
	t.Helper()
	return repository.NewGormContractRepository(setupTestDB(t))
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func testContractService(repo repository.ContractRepository, at time.Time) *ContractService {
	svc := NewContractService(repo, nil, zerolog.Nop())
	svc.now = fixedClock(at)
	return svc
}

func testLedgerService(repo repository.ContractRepository, at time.Time) *LedgerService {
	svc := NewLedgerService(repo, nil, zerolog.Nop())
	svc.now = fixedClock(at)
	return svc
}
