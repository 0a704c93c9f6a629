package database

import (
	"errors"
	"fmt"

	"github.com/CobrasOrg/auth-service/internal/domain"
	"github.com/CobrasOrg/auth-service/internal/security"

	"gorm.io/gorm"
)

type demoAccount struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	UserType domain.UserType
	Locality string
}

var demoAccounts = []demoAccount{
	{
		Name:     "Demo Owner",
		Email:    "owner@example.com",
		Password: "OwnerDemo1",
		Phone:    "5550000001",
		Address:  "12 Demo Street",
		UserType: domain.UserTypeOwner,
	},
	{
		Name:     "Demo Clinic",
		Email:    "clinic@example.com",
		Password: "ClinicDemo1",
		Phone:    "5550000002",
		Address:  "34 Demo Avenue",
		UserType: domain.UserTypeClinic,
		Locality: "Downtown",
	},
}

type SeedReport struct {
	CreatedUsers int  `json:"created_users"`
	Noop         bool `json:"noop"`
}

// Seed creates the demo accounts when they are missing. Existing
// accounts are left untouched, so seeding is safe to rerun.
func Seed(db *gorm.DB) (*SeedReport, error) {
	report := &SeedReport{}
	for _, acc := range demoAccounts {
		var existing domain.User
		err := db.Where("email = ?", acc.Email).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("seed lookup %s: %w", acc.Email, err)
		}

		hash, err := security.HashPassword(acc.Password)
		if err != nil {
			return nil, fmt.Errorf("seed hash %s: %w", acc.Email, err)
		}
		user := domain.User{
			Name:         acc.Name,
			Email:        acc.Email,
			Phone:        acc.Phone,
			Address:      acc.Address,
			PasswordHash: hash,
			UserType:     acc.UserType,
		}
		if acc.UserType == domain.UserTypeClinic {
			locality := acc.Locality
			user.Locality = &locality
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("seed create %s: %w", acc.Email, err)
		}
		report.CreatedUsers++
	}
	report.Noop = report.CreatedUsers == 0
	return report, nil
}
