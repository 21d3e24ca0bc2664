package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordValidator_ValidateEmail(t *testing.T) {
	validator := NewPasswordValidator()

	tests := []struct {
		name        string
		email       string
		expectedErr string
	}{
		{name: "valid", email: "ann@example.com"},
		{name: "valid with plus", email: "ann+tide@example.com"},
		{name: "empty", email: "", expectedErr: "email is required"},
		{name: "no at sign", email: "ann.example.com", expectedErr: "email is malformed"},
		{name: "display name form", email: "Ann <ann@example.com>", expectedErr: "email is malformed"},
		{name: "too long", email: strings.Repeat("a", 250) + "@x.io", expectedErr: "email must be at most 254 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateEmail(tt.email)
			if tt.expectedErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.expectedErr)
		})
	}
}

func TestPasswordValidator_ValidatePassword(t *testing.T) {
	validator := NewPasswordValidator()

	tests := []struct {
		name        string
		password    string
		expectedErr string
	}{
		{name: "valid", password: "hunter2pass"},
		{name: "too short", password: "ab1", expectedErr: "password must be at least 8 characters"},
		{name: "too long", password: strings.Repeat("a1", 37), expectedErr: "password must be at most 72 bytes"},
		{name: "no digit", password: "onlyletters", expectedErr: "password must contain at least one digit"},
		{name: "no letter", password: "1234567890", expectedErr: "password must contain at least one letter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePassword(tt.password)
			if tt.expectedErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.expectedErr)
		})
	}
}

func TestPasswordValidator_ValidateRegister(t *testing.T) {
	validator := NewPasswordValidator()

	assert.NoError(t, validator.ValidateRegister("ann@example.com", "hunter2pass"))
	assert.ErrorContains(t, validator.ValidateRegister("bad", "hunter2pass"), "email validation failed")
	assert.ErrorContains(t, validator.ValidateRegister("ann@example.com", "x"), "password validation failed")
}
