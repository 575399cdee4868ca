// Package testutil provides an isolated in-memory database and seed helpers
// for service and repository tests.
package testutil

import (
	"testing"

	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/phone"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh in-memory database with the full schema. Every
// call returns an isolated database, so tests never share state.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")

	// A single connection keeps every statement on the same :memory: store
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&domain.Admin{},
		&domain.Team{},
		&domain.TeamMember{},
		&domain.Lead{},
		&domain.LeadNote{},
		&domain.Status{},
		&domain.Source{},
		&domain.UTMSource{},
		&domain.Lot{},
		&domain.LotAmountChange{},
		&domain.SuccessfulLead{},
		&domain.LeadHistory{},
		&domain.Action{},
	)
	require.NoError(t, err, "failed to migrate test schema")

	return db
}

// CreateTestAdmin seeds an active admin account. The password is always
// "password123".
func CreateTestAdmin(t *testing.T, db *gorm.DB, login string, role domain.AdminRole, team string) *domain.Admin {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	admin := &domain.Admin{
		Login:        login,
		PasswordHash: string(hash),
		Name:         login,
		Role:         role,
		Team:         team,
		IsActive:     true,
	}
	require.NoError(t, db.Create(admin).Error)
	return admin
}

// CreateTestLead seeds a lead assigned to the given login
func CreateTestLead(t *testing.T, db *gorm.DB, name, phoneNumber, assignedTo string) *domain.Lead {
	t.Helper()

	lead := &domain.Lead{
		Name:            name,
		Phone:           phoneNumber,
		NormalizedPhone: phone.Normalize(phoneNumber),
		AssignedTo:      assignedTo,
		Status:          domain.DefaultLeadStatus,
	}
	require.NoError(t, db.Create(lead).Error)
	return lead
}
