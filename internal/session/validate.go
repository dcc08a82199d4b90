package session

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9 ().\-]+$`)

// newValidator registers the "phone" rule used by domain.Contact.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return validPhone(fl.Field().String())
	})
	return v
}

func validPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

func validateFlight(f domain.Flight) error {
	var reasons []string
	if f.ID == 0 {
		reasons = append(reasons, "identifier is required")
	}
	if f.PriceCents <= 0 {
		reasons = append(reasons, "fare amount is required")
	}
	if f.Currency == "" {
		reasons = append(reasons, "currency is required")
	}
	if len(reasons) > 0 {
		return &InvalidFlightError{Reasons: reasons}
	}
	return nil
}

func (m *Manager) validatePassengers(passengers []domain.Passenger) error {
	verr := &ValidationError{}
	if len(passengers) == 0 {
		verr.add("passengers", "at least one passenger is required")
		return verr
	}
	now := m.now()
	for i, p := range passengers {
		prefix := fmt.Sprintf("passengers[%d]", i)
		collect(verr, prefix, m.validate.Struct(p))
		if !p.DateOfBirth.IsZero() && p.DateOfBirth.After(now) {
			verr.add(prefix+".date_of_birth", "must not be in the future")
		}
	}
	return verr.orNil()
}

func (m *Manager) validateContact(c domain.Contact) error {
	verr := &ValidationError{}
	collect(verr, "contact", m.validate.Struct(c))
	return verr.orNil()
}

// collect flattens validator output into field violations.
func collect(verr *ValidationError, prefix string, err error) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add(prefix, err.Error())
		return
	}
	for _, fe := range fieldErrs {
		verr.add(prefix+"."+jsonName(fe.Field()), describe(fe))
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

func jsonName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isFuture(t, now time.Time) bool {
	return t.After(now)
}
