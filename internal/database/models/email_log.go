package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailLog records an email sent on behalf of SendBy to User. Both references
// are cleared, not cascaded, when the user goes away.
type EmailLog struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       *uuid.UUID  `gorm:"type:uuid;index" json:"user_id,omitempty"`
	SendByID     *uuid.UUID  `gorm:"type:uuid;index" json:"send_by_id,omitempty"`
	Recipient    string      `gorm:"not null" json:"recipient"`
	Subject      string      `gorm:"not null" json:"subject"`
	Status       EmailStatus `gorm:"type:varchar(16);not null" json:"status"`
	ErrorMessage *string     `json:"error_message,omitempty"`
	CreatedAt    time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	User   *User `gorm:"foreignKey:UserID" json:"-"`
	SendBy *User `gorm:"foreignKey:SendByID" json:"-"`
}

// TableName overrides the table name
func (EmailLog) TableName() string {
	return "email_logs"
}

func (l *EmailLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = EmailStatusPending
	}
	return nil
}

func (l *EmailLog) String() string {
	return fmt.Sprintf("<EmailLog(id=%s, recipient=%q, status=%s)>", l.ID, l.Recipient, l.Status)
}
