/*-------------------------------------------------------------------------
 *
 * models.go
 *    Database models for FormGen
 *
 * Defines row structures for forms, submissions, and webhook delivery
 * logs.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/db/models.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Form struct {
	ID                 uuid.UUID        `db:"id"`
	UserID             uuid.UUID        `db:"user_id"`
	Title              string           `db:"title"`
	Description        string           `db:"description"`
	Prompt             string           `db:"prompt"`
	Schema             SchemaJSONB      `db:"form_schema"`
	Summary            string           `db:"summary"`
	Purpose            string           `db:"purpose"`
	FieldTypes         pq.StringArray   `db:"field_types"`
	IsPublic           bool             `db:"is_public"`
	SubmissionCount    int              `db:"submission_count"`
	IsTemplate         bool             `db:"is_template"`
	SourceFormID       *uuid.UUID       `db:"source_form_id"`
	EmailNotifications EmailJSONB       `db:"email_notifications"`
	Webhooks           WebhookListJSONB `db:"webhooks"`
	Theme              ThemeJSONB       `db:"theme"`
	ConditionalRules   RuleListJSONB    `db:"conditional_rules"`
	CreatedAt          time.Time        `db:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at"`
}

type Submission struct {
	ID          uuid.UUID      `db:"id"`
	FormID      uuid.UUID      `db:"form_id"`
	UserID      uuid.UUID      `db:"user_id"`
	Responses   JSONBMap       `db:"responses"`
	ImageURLs   StringMapJSONB `db:"image_urls"`
	Metadata    JSONBMap       `db:"metadata"`
	SubmittedAt time.Time      `db:"submitted_at"`
}

/* WebhookLog is one row per delivery attempt sequence. It is append-only:
 * rows are written once, after the sequence reaches a terminal state. */
type WebhookLog struct {
	ID            uuid.UUID `db:"id"`
	WebhookID     string    `db:"webhook_id"`
	FormID        uuid.UUID `db:"form_id"`
	Event         string    `db:"event"`
	Status        string    `db:"status"`
	Attempts      int       `db:"attempts"`
	StatusCode    *int      `db:"status_code"`
	ResponseBody  *string   `db:"response_body"`
	ErrorMessage  *string   `db:"error_message"`
	LastAttemptAt time.Time `db:"last_attempt_at"`
	CreatedAt     time.Time `db:"created_at"`
}

/* FormContextRow is the metadata-only hydration shape used by semantic
 * retrieval. Full schemas are never selected here to bound payload size. */
type FormContextRow struct {
	ID         uuid.UUID      `db:"id"`
	Title      string         `db:"title"`
	Summary    string         `db:"summary"`
	Purpose    string         `db:"purpose"`
	FieldNames pq.StringArray `db:"field_names"`
}
