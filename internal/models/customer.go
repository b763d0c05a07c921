package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is the storefront-side account record. Login carries the identity
// provider's UID once linked; the unique index on it is what serializes
// concurrent create attempts for the same UID.
type Customer struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Login          string         `gorm:"uniqueIndex;not null" json:"login"`
	Email          string         `json:"email"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	HashedPassword string         `json:"-"`
	ResetTokenHash string         `json:"-"`
	ProviderUID    string         `json:"provider_uid"`
	ProviderID     string         `json:"provider_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Customer) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ApplyRemoteProfile writes through the canonical profile fields from the
// provider record. The caller decides the email value (primary-entry rules
// live with the profile type).
func (c *Customer) ApplyRemoteProfile(profile *RemoteProfile, email string) {
	c.Email = email
	c.FirstName = profile.FirstName
	c.LastName = profile.LastName
	c.ProviderUID = profile.UID
	c.ProviderID = profile.ID
}
