package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Repository errors
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrOTPNotFound          = errors.New("otp not found")
	ErrEmailSettingNotFound = errors.New("email setting not found")
	ErrEmailLogNotFound     = errors.New("email log not found")
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrDuplicateRecord      = errors.New("record violates a unique constraint")
	ErrForeignKeyViolation  = errors.New("referenced record does not exist")
)

// translateError maps driver and gorm errors onto repository errors. notFound
// is returned for gorm.ErrRecordNotFound and duplicate for unique violations.
func translateError(err, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case isDuplicateKey(err):
		return duplicate
	case isForeignKeyViolation(err):
		return ErrForeignKeyViolation
	}
	return err
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Not every driver error code is translated by gorm
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

// Pagination normalizes a 1-based page and a page size into an offset/limit pair
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}
