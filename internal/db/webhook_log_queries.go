/*-------------------------------------------------------------------------
 *
 * webhook_log_queries.go
 *    Database queries for webhook delivery audit logs
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/db/webhook_log_queries.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"

	"github.com/google/uuid"
)

const (
	createWebhookLogQuery = `
		INSERT INTO formgen.webhook_logs
		(webhook_id, form_id, event, status, attempts, status_code, response_body, error_message, last_attempt_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	listWebhookLogsByFormQuery = `
		SELECT * FROM formgen.webhook_logs
		WHERE form_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	countWebhookLogsByFormQuery = `SELECT COUNT(*) FROM formgen.webhook_logs WHERE form_id = $1`
)

/* CreateWebhookLog records the outcome of one delivery sequence. A
 * sequence covers every retry attempt for a single event, so each
 * dispatch produces exactly one row. */
func (q *Queries) CreateWebhookLog(ctx context.Context, log *WebhookLog) error {
	params := []interface{}{
		log.WebhookID, log.FormID, log.Event, log.Status, log.Attempts,
		log.StatusCode, log.ResponseBody, log.ErrorMessage, log.LastAttemptAt,
	}
	row := q.DB.QueryRowxContext(ctx, createWebhookLogQuery, params...)
	if err := row.Scan(&log.ID, &log.CreatedAt); err != nil {
		return q.formatQueryError("INSERT", "formgen.webhook_logs", len(params), err)
	}
	return nil
}

func (q *Queries) ListWebhookLogsByForm(ctx context.Context, formID uuid.UUID, limit, offset int) ([]WebhookLog, error) {
	var out []WebhookLog
	err := q.DB.SelectContext(ctx, &out, listWebhookLogsByFormQuery, formID, limit, offset)
	if err != nil {
		return nil, q.formatQueryError("SELECT", "formgen.webhook_logs", 3, err)
	}
	return out, nil
}

func (q *Queries) CountWebhookLogsByForm(ctx context.Context, formID uuid.UUID) (int, error) {
	var count int
	if err := q.DB.GetContext(ctx, &count, countWebhookLogsByFormQuery, formID); err != nil {
		return 0, q.formatQueryError("SELECT", "formgen.webhook_logs", 1, err)
	}
	return count, nil
}
