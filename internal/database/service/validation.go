package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
)

// Validator checks service inputs against their `validate` tags
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the domain enum rules registered
func NewValidator() *Validator {
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
	v.register()
	return v
}

func (v *Validator) register() {
	v.validate.RegisterValidation("userrole", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).IsValid()
	})
	v.validate.RegisterValidation("emailtype", func(fl validator.FieldLevel) bool {
		return models.EmailType(strings.ToUpper(fl.Field().String())).IsValid()
	})
}

// Struct validates s, returning an ErrValidation wrapped error naming the failing fields
func (v *Validator) Struct(s interface{}) error {
	return wrapValidation(v.validate.Struct(s))
}

// Var validates a single value against tag
func (v *Validator) Var(field string, value interface{}, tag string) error {
	if err := v.validate.Var(value, tag); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("%w: %s failed on '%s'", ErrValidation, field, fieldErrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, ", "))
}
