package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailSetting holds the outgoing mail account of a user
type EmailSetting struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	EmailType   EmailType `gorm:"type:varchar(16);not null;default:SMTP" json:"email_type"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Password    string    `gorm:"not null" json:"-"`
	Host        string    `gorm:"not null" json:"host"`
	Port        int       `gorm:"not null" json:"port"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	IsAdminMail bool      `gorm:"not null;default:false" json:"is_admin_mail"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:fk_email_setting_user_id,OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name
func (EmailSetting) TableName() string {
	return "email_settings"
}

func (s *EmailSetting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.EmailType == "" {
		s.EmailType = EmailTypeSMTP
	}
	if !s.EmailType.IsValid() {
		return fmt.Errorf("invalid email type %q", s.EmailType)
	}
	s.Email = NormalizeEmail(s.Email)
	return nil
}

// Address returns host:port
func (s *EmailSetting) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *EmailSetting) String() string {
	return fmt.Sprintf("<EmailSetting(id=%s, email=%q)>", s.ID, s.Email)
}
