/*-------------------------------------------------------------------------
 *
 * jsonb.go
 *    JSONB column wrappers for FormGen models
 *
 * Schemas, webhooks, rules, and themes are stored as jsonb so the
 * persisted shapes match the public API contract byte for byte, and
 * array ordering (field lists, rule lists, targetFieldIds) survives a
 * round trip exactly.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/db/jsonb.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/formgen/server/internal/forms"
)

func jsonbScan(src interface{}, dst interface{}) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	default:
		return fmt.Errorf("jsonb scan failed: unsupported source type %T", src)
	}
}

/* JSONBMap stores an arbitrary JSON object */
type JSONBMap map[string]interface{}

func (m JSONBMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *JSONBMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	return jsonbScan(src, m)
}

/* StringMapJSONB stores a string-to-string JSON object */
type StringMapJSONB map[string]string

func (m StringMapJSONB) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *StringMapJSONB) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	return jsonbScan(src, m)
}

/* SchemaJSONB stores a form schema */
type SchemaJSONB struct {
	forms.FormSchema
}

func (s SchemaJSONB) Value() (driver.Value, error) {
	return json.Marshal(s.FormSchema)
}

func (s *SchemaJSONB) Scan(src interface{}) error {
	return jsonbScan(src, &s.FormSchema)
}

/* WebhookListJSONB stores a form's webhook configurations */
type WebhookListJSONB []forms.Webhook

func (w WebhookListJSONB) Value() (driver.Value, error) {
	if w == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]forms.Webhook(w))
}

func (w *WebhookListJSONB) Scan(src interface{}) error {
	if src == nil {
		*w = nil
		return nil
	}
	return jsonbScan(src, (*[]forms.Webhook)(w))
}

/* RuleListJSONB stores a form's conditional rules */
type RuleListJSONB []forms.ConditionalRule

func (r RuleListJSONB) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]forms.ConditionalRule(r))
}

func (r *RuleListJSONB) Scan(src interface{}) error {
	if src == nil {
		*r = nil
		return nil
	}
	return jsonbScan(src, (*[]forms.ConditionalRule)(r))
}

/* ThemeJSONB stores an optional form theme */
type ThemeJSONB struct {
	V *forms.Theme
}

func (t ThemeJSONB) Value() (driver.Value, error) {
	if t.V == nil {
		return nil, nil
	}
	return json.Marshal(t.V)
}

func (t *ThemeJSONB) Scan(src interface{}) error {
	if src == nil {
		t.V = nil
		return nil
	}
	t.V = &forms.Theme{}
	return jsonbScan(src, t.V)
}

/* EmailJSONB stores an optional email notification config */
type EmailJSONB struct {
	V *forms.EmailNotification
}

func (e EmailJSONB) Value() (driver.Value, error) {
	if e.V == nil {
		return nil, nil
	}
	return json.Marshal(e.V)
}

func (e *EmailJSONB) Scan(src interface{}) error {
	if src == nil {
		e.V = nil
		return nil
	}
	e.V = &forms.EmailNotification{}
	return jsonbScan(src, e.V)
}
