package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Ishan-Karpe/ShelfSense/internal/errors"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"userName" validate:"required,min=2,max=50"`
}

func TestValidatePasses(t *testing.T) {
	v := New()
	require.NoError(t, v.Validate(sample{Email: "a@b.com", Name: "Ishan"}))
}

func TestValidateUsesJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(sample{Email: "not-an-email", Name: "x"})
	require.Error(t, err)

	var appErr *apperrors.Error
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)

	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a valid email address", details["email"])
	assert.Equal(t, "must be at least 2 characters", details["userName"])
}
