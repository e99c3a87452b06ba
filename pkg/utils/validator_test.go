package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "warehouse-manager/pkg/errors"
)

type signup struct {
	Username string `json:"username" validate:"required,min=3,max=80,username"`
	Email    string `json:"email" validate:"required,email"`
	Kind     string `json:"type" validate:"omitempty,warehouse_type"`
	Method   string `json:"method" validate:"omitempty,area_method"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(signup{Username: "alice_01", Email: "a@x.com", Kind: "open", Method: "map"}))

	err := ValidateStruct(signup{Username: "al ice", Email: "nope", Kind: "half", Method: "guess"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Message, "username may only contain")
	assert.Contains(t, appErr.Message, "email must be a valid email address")
	assert.Contains(t, appErr.Message, "type must be 'open' or 'closed'")
	assert.Contains(t, appErr.Message, "method must be 'map' or 'manual'")
}

func TestValidateStruct_Required(t *testing.T) {
	err := ValidateStruct(signup{})
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "username is required; email is required", appErr.Message)
}

func TestValidateStruct_MaxBytes(t *testing.T) {
	type secret struct {
		Password string `json:"password" validate:"required,maxbytes=72"`
	}

	require.NoError(t, ValidateStruct(secret{Password: strings.Repeat("a", 72)}))
	require.NoError(t, ValidateStruct(secret{Password: strings.Repeat("ş", 36)}))

	err := ValidateStruct(secret{Password: strings.Repeat("ş", 40)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "password must be at most 72 bytes", appErr.Message)
}
