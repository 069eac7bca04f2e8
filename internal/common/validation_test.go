package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("  Alice_01 "))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername("bad name"))
	assert.Equal(t, "alice_01", NormalizeUsername("  Alice_01 "))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("Alice@Example.com"))
	assert.Error(t, ValidateEmail("bademail"))
	assert.Error(t, ValidateEmail(""))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret1"))
	assert.Error(t, ValidatePassword("short"))
}

func TestRequireFields(t *testing.T) {
	assert.NoError(t, RequireFields(map[string]string{"title": "x"}))

	err := RequireFields(map[string]string{"title": " ", "description": "", "name": "ok"})
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindValidation, e.Kind)
	assert.Equal(t, []string{"description is required", "title is required"}, e.Errors)
}
