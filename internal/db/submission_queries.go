/*-------------------------------------------------------------------------
 *
 * submission_queries.go
 *    Database queries for form submissions
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/db/submission_queries.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const (
	createSubmissionQuery = `
		INSERT INTO formgen.submissions (form_id, user_id, responses, image_urls, metadata)
		VALUES ($1, $2, $3::jsonb, $4::jsonb, $5::jsonb)
		RETURNING id, submitted_at`

	getSubmissionByIDQuery = `SELECT * FROM formgen.submissions WHERE id = $1`

	listSubmissionsByFormQuery = `
		SELECT * FROM formgen.submissions
		WHERE form_id = $1
		ORDER BY submitted_at DESC
		LIMIT $2 OFFSET $3`

	countSubmissionsByFormQuery = `SELECT COUNT(*) FROM formgen.submissions WHERE form_id = $1`
)

func (q *Queries) CreateSubmission(ctx context.Context, sub *Submission) error {
	params := []interface{}{sub.FormID, sub.UserID, sub.Responses, sub.ImageURLs, sub.Metadata}
	row := q.DB.QueryRowxContext(ctx, createSubmissionQuery, params...)
	if err := row.Scan(&sub.ID, &sub.SubmittedAt); err != nil {
		return q.formatQueryError("INSERT", "formgen.submissions", len(params), err)
	}
	return nil
}

func (q *Queries) GetSubmissionByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	var sub Submission
	err := q.DB.GetContext(ctx, &sub, getSubmissionByIDQuery, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("submission not found on %s: submission_id='%s', table='formgen.submissions', error=%w",
			q.getConnInfoString(), id.String(), err)
	}
	if err != nil {
		return nil, q.formatQueryError("SELECT", "formgen.submissions", 1, err)
	}
	return &sub, nil
}

func (q *Queries) ListSubmissionsByForm(ctx context.Context, formID uuid.UUID, limit, offset int) ([]Submission, error) {
	var out []Submission
	err := q.DB.SelectContext(ctx, &out, listSubmissionsByFormQuery, formID, limit, offset)
	if err != nil {
		return nil, q.formatQueryError("SELECT", "formgen.submissions", 3, err)
	}
	return out, nil
}

func (q *Queries) CountSubmissionsByForm(ctx context.Context, formID uuid.UUID) (int, error) {
	var count int
	if err := q.DB.GetContext(ctx, &count, countSubmissionsByFormQuery, formID); err != nil {
		return 0, q.formatQueryError("SELECT", "formgen.submissions", 1, err)
	}
	return count, nil
}
