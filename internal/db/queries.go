/*-------------------------------------------------------------------------
 *
 * queries.go
 *    Database queries for FormGen forms
 *
 * Provides database query functions for forms: creation, retrieval,
 * listing, duplication, templates, and the semantic-search hydration
 * and keyword-fallback queries.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/db/queries.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

/* Form queries */
const (
	createFormQuery = `
		INSERT INTO formgen.forms
		(user_id, title, description, prompt, form_schema, summary, purpose, field_types,
		 is_public, is_template, source_form_id, email_notifications, webhooks, theme, conditional_rules)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10, $11, $12::jsonb, $13::jsonb, $14::jsonb, $15::jsonb)
		RETURNING id, submission_count, created_at, updated_at`

	getFormByIDQuery = `SELECT * FROM formgen.forms WHERE id = $1`

	listFormsByUserQuery = `
		SELECT * FROM formgen.forms
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	countFormsByUserQuery = `SELECT COUNT(*) FROM formgen.forms WHERE user_id = $1`

	updateFormQuery = `
		UPDATE formgen.forms
		SET title = $2, description = $3, form_schema = $4::jsonb, is_public = $5,
			email_notifications = $6::jsonb, webhooks = $7::jsonb, theme = $8::jsonb,
			conditional_rules = $9::jsonb, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	deleteFormQuery = `DELETE FROM formgen.forms WHERE id = $1`

	setTemplateFlagQuery = `
		UPDATE formgen.forms SET is_template = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING is_template`

	listTemplatesQuery = `
		SELECT * FROM formgen.forms
		WHERE is_template = true AND is_public = true
		AND ($1::text IS NULL OR purpose = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	countTemplatesQuery = `
		SELECT COUNT(*) FROM formgen.forms
		WHERE is_template = true AND is_public = true
		AND ($1::text IS NULL OR purpose = $1)`

	incrementSubmissionCountQuery = `
		UPDATE formgen.forms SET submission_count = submission_count + 1
		WHERE id = $1
		RETURNING submission_count`

	getFormContextsQuery = `
		SELECT id, title, summary, purpose,
			ARRAY(SELECT jsonb_array_elements(form_schema->'fields')->>'name') AS field_names
		FROM formgen.forms
		WHERE id = ANY($1)`

	searchFormsByKeywordsQuery = `
		SELECT id, title, summary, purpose,
			ARRAY(SELECT jsonb_array_elements(form_schema->'fields')->>'name') AS field_names
		FROM formgen.forms
		WHERE user_id = $1
		AND to_tsvector('english', title || ' ' || description || ' ' || summary)
			@@ plainto_tsquery('english', $2)
		ORDER BY created_at DESC
		LIMIT $3`
)

type Queries struct {
	DB       *sqlx.DB
	connInfo func() string
}

func NewQueries(db *sqlx.DB) *Queries {
	return &Queries{
		DB: db,
		connInfo: func() string {
			return "unknown database connection"
		},
	}
}

/* SetConnInfoFunc sets a function to retrieve connection info for error messages */
func (q *Queries) SetConnInfoFunc(fn func() string) {
	q.connInfo = fn
}

func (q *Queries) getConnInfoString() string {
	if q.connInfo != nil {
		return q.connInfo()
	}
	return "unknown database connection"
}

/* formatQueryError formats a detailed query error message */
func (q *Queries) formatQueryError(operation, table string, paramCount int, err error) error {
	return fmt.Errorf("query execution failed on %s: operation=%s, table=%s, param_count=%d, error=%w",
		q.getConnInfoString(), operation, table, paramCount, err)
}

/* Form methods */

func (q *Queries) CreateForm(ctx context.Context, form *Form) error {
	params := []interface{}{
		form.UserID, form.Title, form.Description, form.Prompt, form.Schema,
		form.Summary, form.Purpose, form.FieldTypes, form.IsPublic, form.IsTemplate,
		form.SourceFormID, form.EmailNotifications, form.Webhooks, form.Theme,
		form.ConditionalRules,
	}
	row := q.DB.QueryRowxContext(ctx, createFormQuery, params...)
	if err := row.Scan(&form.ID, &form.SubmissionCount, &form.CreatedAt, &form.UpdatedAt); err != nil {
		return q.formatQueryError("INSERT", "formgen.forms", len(params), err)
	}
	return nil
}

func (q *Queries) GetFormByID(ctx context.Context, id uuid.UUID) (*Form, error) {
	var form Form
	err := q.DB.GetContext(ctx, &form, getFormByIDQuery, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("form not found on %s: form_id='%s', table='formgen.forms', error=%w",
			q.getConnInfoString(), id.String(), err)
	}
	if err != nil {
		return nil, q.formatQueryError("SELECT", "formgen.forms", 1, err)
	}
	return &form, nil
}

func (q *Queries) ListFormsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Form, error) {
	var out []Form
	err := q.DB.SelectContext(ctx, &out, listFormsByUserQuery, userID, limit, offset)
	if err != nil {
		return nil, q.formatQueryError("SELECT", "formgen.forms", 3, err)
	}
	return out, nil
}

func (q *Queries) CountFormsByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := q.DB.GetContext(ctx, &count, countFormsByUserQuery, userID); err != nil {
		return 0, q.formatQueryError("SELECT", "formgen.forms", 1, err)
	}
	return count, nil
}

func (q *Queries) UpdateForm(ctx context.Context, form *Form) error {
	params := []interface{}{
		form.ID, form.Title, form.Description, form.Schema, form.IsPublic,
		form.EmailNotifications, form.Webhooks, form.Theme, form.ConditionalRules,
	}
	row := q.DB.QueryRowxContext(ctx, updateFormQuery, params...)
	if err := row.Scan(&form.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("form not found on %s: form_id='%s', table='formgen.forms', error=%w",
				q.getConnInfoString(), form.ID.String(), err)
		}
		return q.formatQueryError("UPDATE", "formgen.forms", len(params), err)
	}
	return nil
}

func (q *Queries) DeleteForm(ctx context.Context, id uuid.UUID) error {
	result, err := q.DB.ExecContext(ctx, deleteFormQuery, id)
	if err != nil {
		return q.formatQueryError("DELETE", "formgen.forms", 1, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("form not found on %s: form_id='%s', table='formgen.forms', error=%w",
			q.getConnInfoString(), id.String(), sql.ErrNoRows)
	}
	return nil
}

func (q *Queries) SetTemplateFlag(ctx context.Context, id uuid.UUID, isTemplate bool) (bool, error) {
	var flag bool
	err := q.DB.GetContext(ctx, &flag, setTemplateFlagQuery, id, isTemplate)
	if err != nil {
		return false, q.formatQueryError("UPDATE", "formgen.forms", 2, err)
	}
	return flag, nil
}

func (q *Queries) ListTemplates(ctx context.Context, purpose *string, limit, offset int) ([]Form, error) {
	var out []Form
	err := q.DB.SelectContext(ctx, &out, listTemplatesQuery, purpose, limit, offset)
	if err != nil {
		return nil, q.formatQueryError("SELECT", "formgen.forms", 3, err)
	}
	return out, nil
}

func (q *Queries) CountTemplates(ctx context.Context, purpose *string) (int, error) {
	var count int
	if err := q.DB.GetContext(ctx, &count, countTemplatesQuery, purpose); err != nil {
		return 0, q.formatQueryError("SELECT", "formgen.forms", 1, err)
	}
	return count, nil
}

/* IncrementSubmissionCount atomically bumps a form's submission counter */
func (q *Queries) IncrementSubmissionCount(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	if err := q.DB.GetContext(ctx, &count, incrementSubmissionCountQuery, id); err != nil {
		return 0, q.formatQueryError("UPDATE", "formgen.forms", 1, err)
	}
	return count, nil
}

/* GetFormContexts hydrates retrieval matches with title/summary/purpose
 * and field names only */
func (q *Queries) GetFormContexts(ctx context.Context, ids []uuid.UUID) ([]FormContextRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}
	var rows []FormContextRow
	err := q.DB.SelectContext(ctx, &rows, getFormContextsQuery, pq.Array(idStrs))
	if err != nil {
		return nil, q.formatQueryError("SELECT", "formgen.forms", 1, err)
	}
	return rows, nil
}

/* SearchFormsByKeywords is the full-text fallback used when the vector
 * backend is unavailable */
func (q *Queries) SearchFormsByKeywords(ctx context.Context, userID uuid.UUID, query string, limit int) ([]FormContextRow, error) {
	var rows []FormContextRow
	err := q.DB.SelectContext(ctx, &rows, searchFormsByKeywordsQuery, userID, query, limit)
	if err != nil {
		return nil, q.formatQueryError("SELECT", "formgen.forms", 3, err)
	}
	return rows, nil
}
