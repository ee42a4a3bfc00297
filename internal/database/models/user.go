package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User represents an account. Profile and EmailSetting are owned by the user
// and removed with it; email logs only reference it.
//
// Zero values of defaulted columns take the column default on create, so an
// inactive account is written with Update after Create.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	FirstName   string    `gorm:"not null" json:"first_name"`
	LastName    string    `gorm:"not null" json:"last_name"`
	Role        UserRole  `gorm:"type:varchar(16);not null;default:USER" json:"role"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"is_superuser"`
	IsDeleted   bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Profile       *Profile      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	EmailSetting  *EmailSetting `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"email_setting,omitempty"`
	SentEmailLogs []EmailLog    `gorm:"foreignKey:SendByID;constraint:OnDelete:SET NULL" json:"-"`
	EmailLogs     []EmailLog    `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns the identifier and defaults that the caller left empty
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if !u.Role.IsValid() {
		return fmt.Errorf("invalid user role %q", u.Role)
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// SetPassword stores the bcrypt hash of plain
func (u *User) SetPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword reports whether plain matches the stored hash
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

func (u *User) String() string {
	return fmt.Sprintf("<User(id=%s, email=%q)>", u.ID, u.Email)
}

// NormalizeEmail is the canonical form used for every unique email column
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
