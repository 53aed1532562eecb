/*-------------------------------------------------------------------------
 *
 * submission_handlers_test.go
 *    Tests for submission required-field validation
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/api/submission_handlers_test.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/formgen/server/internal/forms"
)

func testSchema() *forms.FormSchema {
	return &forms.FormSchema{
		Title: "Application",
		Fields: []forms.FormField{
			{ID: "f-name", Name: "name", Label: "Name", Type: forms.FieldText, Required: true},
			{ID: "f-email", Name: "email", Label: "Email", Type: forms.FieldEmail, Required: true},
			{ID: "f-phone", Name: "phone", Label: "Phone", Type: forms.FieldPhone},
			{ID: "f-resume", Name: "resume", Label: "Resume", Type: forms.FieldFile, Required: true},
		},
	}
}

func TestComputeMissingFields(t *testing.T) {
	missing := computeMissingFields(testSchema(), nil, map[string]interface{}{
		"name": "Ada",
	}, nil)
	assert.Equal(t, []string{"Email", "Resume"}, missing)
}

func TestComputeMissingFieldsAllPresent(t *testing.T) {
	missing := computeMissingFields(testSchema(), nil, map[string]interface{}{
		"name":  "Ada",
		"email": "ada@example.com",
	}, map[string]string{"f-resume": "https://cdn.example.com/resume.pdf"})
	assert.Empty(t, missing)
}

func TestComputeMissingFieldsEmptyStringIsMissing(t *testing.T) {
	missing := computeMissingFields(testSchema(), nil, map[string]interface{}{
		"name":  "",
		"email": nil,
	}, map[string]string{"f-resume": "url"})
	assert.Equal(t, []string{"Name", "Email"}, missing)
}

func TestComputeMissingFieldsHiddenRequiredSkipped(t *testing.T) {
	rules := []forms.ConditionalRule{{
		ID:             "r1",
		FieldID:        "f-phone",
		Condition:      forms.CondEquals,
		Value:          forms.StringValue("none"),
		Action:         forms.ActionHide,
		TargetFieldIDs: []string{"f-email"},
	}}

	/* Email is required but hidden by the matched rule */
	missing := computeMissingFields(testSchema(), rules, map[string]interface{}{
		"name":  "Ada",
		"phone": "none",
	}, map[string]string{"f-resume": "url"})
	assert.Empty(t, missing)
}

func TestComputeMissingFieldsRuleRequired(t *testing.T) {
	rules := []forms.ConditionalRule{{
		ID:             "r1",
		FieldID:        "f-name",
		Condition:      forms.CondEquals,
		Value:          forms.StringValue("Ada"),
		Action:         forms.ActionRequire,
		TargetFieldIDs: []string{"f-phone"},
	}}

	/* Phone is optional in the schema but required by the matched rule */
	missing := computeMissingFields(testSchema(), rules, map[string]interface{}{
		"name":  "Ada",
		"email": "ada@example.com",
	}, map[string]string{"f-resume": "url"})
	assert.Equal(t, []string{"Phone"}, missing)
}

func TestComputeMissingFieldsFileSatisfiedByUploadOnly(t *testing.T) {
	missing := computeMissingFields(testSchema(), nil, map[string]interface{}{
		"name":  "Ada",
		"email": "ada@example.com",
	}, map[string]string{"f-other": "url"})
	assert.Equal(t, []string{"Resume"}, missing)
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/forms?page=3&limit=10", nil)
	page, limit, offset := parsePagination(r)
	assert.Equal(t, 3, page)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)
}

func TestParsePaginationDefaultsAndClamps(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/forms", nil)
	page, limit, offset := parsePagination(r)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	r = httptest.NewRequest("GET", "/api/v1/forms?page=-1&limit=500", nil)
	page, limit, _ = parsePagination(r)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
}
