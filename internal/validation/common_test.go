/*-------------------------------------------------------------------------
 *
 * common_test.go
 *    Tests for common validation functions
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/validation/common_test.go
 *
 *-------------------------------------------------------------------------
 */

package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("value", "field"))
	assert.Error(t, ValidateRequired("", "field"))
}

func TestValidateMaxLength(t *testing.T) {
	assert.NoError(t, ValidateMaxLength("abc", "field", 3))
	assert.Error(t, ValidateMaxLength("abcd", "field", 3))
}

func TestValidateUUIDRequired(t *testing.T) {
	want := uuid.New()
	got, err := ValidateUUIDRequired(want.String(), "form_id")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ValidateUUIDRequired("", "form_id")
	assert.Error(t, err)

	_, err = ValidateUUIDRequired("not-a-uuid", "form_id")
	assert.Error(t, err)
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://example.com/hook", "url"))
	assert.NoError(t, ValidateURL("http://localhost:3000/hook", "url"))

	assert.Error(t, ValidateURL("", "url"))
	assert.Error(t, ValidateURL("ftp://example.com", "url"))
	assert.Error(t, ValidateURL("/relative/path", "url"))
	assert.Error(t, ValidateURL("javascript:alert(1)", "url"))
}

func TestReadAndValidateBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader("hello"))
	body, err := ReadAndValidateBody(r, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), body)
}

func TestReadAndValidateBodyTooLarge(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 11)))
	_, err := ReadAndValidateBody(r, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum")
}
