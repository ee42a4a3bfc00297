package models

// UserRole is the coarse authorization role stored on every user
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// EmailType selects how an EmailSetting delivers mail
type EmailType string

const (
	EmailTypeSMTP  EmailType = "SMTP"
	EmailTypeOther EmailType = "OTHER"
)

func (t EmailType) IsValid() bool {
	switch t {
	case EmailTypeSMTP, EmailTypeOther:
		return true
	}
	return false
}

// EmailStatus tracks the delivery state of an EmailLog entry
type EmailStatus string

const (
	EmailStatusPending EmailStatus = "PENDING"
	EmailStatusSent    EmailStatus = "SENT"
	EmailStatusFailed  EmailStatus = "FAILED"
)

func (s EmailStatus) IsValid() bool {
	switch s {
	case EmailStatusPending, EmailStatusSent, EmailStatusFailed:
		return true
	}
	return false
}
