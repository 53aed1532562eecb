/*-------------------------------------------------------------------------
 *
 * types.go
 *    Form schema types for FormGen
 *
 * Defines the public JSON shapes for form schemas, fields, webhooks,
 * themes, email notifications, and conditional rules. These shapes are
 * consumed by the web UI and must remain stable.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/forms/types.go
 *
 *-------------------------------------------------------------------------
 */

package forms

/* FieldType enumerates the supported form field types */
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldNumber   FieldType = "number"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
	FieldDate     FieldType = "date"
	FieldFile     FieldType = "file"
	FieldImage    FieldType = "image"
	FieldURL      FieldType = "url"
	FieldPhone    FieldType = "phone"
)

/* FieldTypes lists every valid field type in declaration order */
var FieldTypes = []FieldType{
	FieldText, FieldEmail, FieldNumber, FieldTextarea, FieldSelect,
	FieldCheckbox, FieldRadio, FieldDate, FieldFile, FieldImage,
	FieldURL, FieldPhone,
}

/* ValidFieldType reports whether t is a known field type */
func ValidFieldType(t FieldType) bool {
	for _, ft := range FieldTypes {
		if t == ft {
			return true
		}
	}
	return false
}

/* FieldValidation holds optional per-field validation constraints */
type FieldValidation struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Message   string   `json:"message,omitempty"`
}

/* FieldOption is one choice of a select/radio/checkbox field */
type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

/* FormField is a single field within a form schema.
 * ID is unique within the schema; Name is the submission key. */
type FormField struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Label       string           `json:"label"`
	Type        FieldType        `json:"type"`
	Placeholder string           `json:"placeholder,omitempty"`
	Required    bool             `json:"required"`
	Validation  *FieldValidation `json:"validation,omitempty"`
	Options     []FieldOption    `json:"options,omitempty"`
	Accept      string           `json:"accept,omitempty"`
}

/* FormPage groups fields for multi-page forms */
type FormPage struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Fields []FormField `json:"fields"`
}

/* FormSchema is the ordered field layout of a form */
type FormSchema struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Fields      []FormField `json:"fields"`
	Pages       []FormPage  `json:"pages,omitempty"`
}

/* FieldIDs returns the schema's field IDs in layout order */
func (s *FormSchema) FieldIDs() []string {
	ids := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		ids[i] = f.ID
	}
	return ids
}

/* FieldNames returns the schema's submission keys in layout order */
func (s *FormSchema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

/* EmailNotification configures owner notifications on submission */
type EmailNotification struct {
	Enabled          bool     `json:"enabled"`
	Recipients       []string `json:"recipients"`
	Subject          string   `json:"subject"`
	IncludeResponses bool     `json:"includeResponses"`
}

/* Webhook is a user-configured delivery endpoint attached to a form */
type Webhook struct {
	ID      string   `json:"id"`
	URL     string   `json:"url"`
	Secret  string   `json:"secret"`
	Events  []string `json:"events"`
	Enabled bool     `json:"enabled"`
}

/* Theme holds presentation overrides for the public form page */
type Theme struct {
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	FontFamily     string `json:"fontFamily,omitempty"`
	LogoURL        string `json:"logoUrl,omitempty"`
	CustomCSS      string `json:"customCSS,omitempty"`
}

/* Condition enumerates rule trigger comparisons */
type Condition string

const (
	CondEquals      Condition = "equals"
	CondNotEquals   Condition = "notEquals"
	CondContains    Condition = "contains"
	CondGreaterThan Condition = "greaterThan"
	CondLessThan    Condition = "lessThan"
)

/* Action enumerates rule effects on target fields */
type Action string

const (
	ActionShow      Action = "show"
	ActionHide      Action = "hide"
	ActionRequire   Action = "require"
	ActionUnrequire Action = "unrequire"
)

/* ConditionalRule describes visibility/required logic: when the trigger
 * field's value satisfies the condition, the action is applied to every
 * target field. Rules are evaluated strictly in list order. */
type ConditionalRule struct {
	ID             string    `json:"id"`
	FieldID        string    `json:"fieldId"`
	Condition      Condition `json:"condition"`
	Value          RuleValue `json:"value"`
	Action         Action    `json:"action"`
	TargetFieldIDs []string  `json:"targetFieldIds"`
}
