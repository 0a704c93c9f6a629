package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserType string

const (
	UserTypeOwner  UserType = "owner"
	UserTypeClinic UserType = "clinic"
)

func (t UserType) Valid() bool {
	return t == UserTypeOwner || t == UserTypeClinic
}

// User is the credential record shared by both roles. Locality is only
// populated for clinics; serialization keeps it out of owner payloads.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Phone        string    `gorm:"size:32;not null" json:"phone"`
	Address      string    `gorm:"size:512;not null" json:"address"`
	PasswordHash string    `gorm:"size:1024;not null" json:"-"`
	UserType     UserType  `gorm:"size:16;not null;index:idx_users_user_type" json:"userType"`
	Locality     *string   `gorm:"size:255" json:"locality,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
