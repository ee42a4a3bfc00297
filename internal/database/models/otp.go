package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TempUserOTP is the single outstanding one-time passcode for an email address
type TempUserOTP struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	OTP       string    `gorm:"column:otp;not null" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides the table name
func (TempUserOTP) TableName() string {
	return "temp_user_otp"
}

func (o *TempUserOTP) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.Email = NormalizeEmail(o.Email)
	return nil
}

// ExpiresAt returns the moment the code stops being accepted
func (o *TempUserOTP) ExpiresAt(ttl time.Duration) time.Time {
	return o.CreatedAt.Add(ttl)
}

// IsExpired reports whether the code is older than ttl at now
func (o *TempUserOTP) IsExpired(ttl time.Duration, now time.Time) bool {
	return !now.Before(o.ExpiresAt(ttl))
}

func (o *TempUserOTP) String() string {
	return fmt.Sprintf("<TempUserOTP(id=%s, email=%q)>", o.ID, o.Email)
}
