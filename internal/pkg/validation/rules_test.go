package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusdesk/internal/pkg/apperrors"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"abc12345", true},
		{"short1", false},
		{"allletters", false},
		{"12345678", false},
		{"pässwort1", true},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, apperrors.ErrInvalidPassword))
			}
		})
	}
}

func TestValidateEmailAndEnrollment(t *testing.T) {
	assert.NoError(t, ValidateEmail(NormalizeEmail("  Asha.K@Campus.EDU ")))
	assert.Error(t, ValidateEmail("not-an-email"))

	assert.NoError(t, ValidateEnrollmentNumber(NormalizeEnrollmentNumber(" 21cs1042 ")))
	assert.True(t, errors.Is(ValidateEnrollmentNumber("21-CS"), apperrors.ErrInvalidEnrollmentNumber))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("fullName", "Asha Kumar"))
	assert.Error(t, ValidateName("fullName", "A"))
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	type signup struct {
		Enrollment string `validate:"enrollment"`
		Password   string `validate:"password"`
	}
	assert.NoError(t, v.Struct(signup{Enrollment: "21CS1042", Password: "abc12345"}))
	assert.Error(t, v.Struct(signup{Enrollment: "x", Password: "abc12345"}))
	assert.Error(t, v.Struct(signup{Enrollment: "21CS1042", Password: "abc"}))
}
