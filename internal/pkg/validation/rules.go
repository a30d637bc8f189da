package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/campusdesk/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Enrollment numbers are 6 to 15 uppercase letters or digits, e.g. 21CS1042
	EnrollmentPattern = `^[A-Z0-9]{6,15}$`

	PasswordMinLength = 8

	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email      *regexp.Regexp
	Enrollment *regexp.Regexp
}{
	Email:      regexp.MustCompile(EmailPattern),
	Enrollment: regexp.MustCompile(EnrollmentPattern),
}

// StringValidation checks one string against optional length and pattern rules
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Required && v.Value == "" {
		return false
	}

	// Skip other validations for empty optional values
	if !v.Required && v.Value == "" {
		return true
	}

	if v.MinLen > 0 && len([]rune(v.Value)) < v.MinLen {
		return false
	}

	if v.MaxLen > 0 && len([]rune(v.Value)) > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}

// NormalizeEmail lower-cases and trims an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeEnrollmentNumber upper-cases and trims an enrollment number
func NormalizeEnrollmentNumber(enrollment string) string {
	return strings.ToUpper(strings.TrimSpace(enrollment))
}

// ValidateEmail checks an already normalized address
func ValidateEmail(email string) error {
	if !NewStringValidation(email).WithPattern(CompiledPatterns.Email).Validate() {
		return apperrors.ErrInvalidEmail
	}
	return nil
}

// ValidatePassword requires PasswordMinLength characters with at least one letter and one digit
func ValidatePassword(password string) error {
	if !NewStringValidation(password).WithMinLength(PasswordMinLength).Validate() {
		return fmt.Errorf("%w: password must be at least %d characters long", apperrors.ErrInvalidPassword, PasswordMinLength)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("%w: password must contain at least one letter and one digit", apperrors.ErrInvalidPassword)
	}
	return nil
}

// ValidateEnrollmentNumber checks an already normalized enrollment number
func ValidateEnrollmentNumber(enrollment string) error {
	if !NewStringValidation(enrollment).WithPattern(CompiledPatterns.Enrollment).Validate() {
		return apperrors.ErrInvalidEnrollmentNumber
	}
	return nil
}

// ValidateName checks a display name
func ValidateName(field, name string) error {
	if !NewStringValidation(strings.TrimSpace(name)).WithMinLength(NameMinLength).WithMaxLength(NameMaxLength).Validate() {
		return apperrors.NewValidationError(field, fmt.Sprintf("%s must be between %d and %d characters", field, NameMinLength, NameMaxLength))
	}
	return nil
}

// RegisterValidators adds the "enrollment" and "password" binding tags to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

// Register adds the custom tags to v
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("enrollment", func(fl validator.FieldLevel) bool {
		return ValidateEnrollmentNumber(NormalizeEnrollmentNumber(fl.Field().String())) == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String()) == nil
	})
}
