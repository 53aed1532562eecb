/*-------------------------------------------------------------------------
 *
 * delivery.go
 *    Webhook delivery for form events
 *
 * Delivers form events to user-configured webhook endpoints with
 * HMAC-SHA256 signing, bounded retries, and a persisted audit log.
 * Each delivery sequence (all retries for one event) produces exactly
 * one log row recording the final outcome and attempt count.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/webhooks/delivery.go
 *
 *-------------------------------------------------------------------------
 */

package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/formgen/server/internal/db"
	"github.com/formgen/server/internal/forms"
	"github.com/formgen/server/internal/metrics"
)

const (
	/* Event names carried in X-FormGen-Event */
	EventSubmissionCreated = "submission.created"
	EventFormUpdated       = "form.updated"
	EventWebhookTest       = "webhook.test"

	maxAttempts       = 3
	deliveryTimeout   = 10 * time.Second
	responseBodyLimit = 1000
)

/* Payload is the JSON body POSTed to webhook endpoints */
type Payload struct {
	Event        string      `json:"event"`
	FormID       string      `json:"formId"`
	SubmissionID string      `json:"submissionId,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	Data         interface{} `json:"data"`
}

/* LogStore persists delivery audit rows */
type LogStore interface {
	CreateWebhookLog(ctx context.Context, log *db.WebhookLog) error
}

type job struct {
	webhook forms.Webhook
	formID  uuid.UUID
	event   string
	payload Payload
}

/* Service delivers webhooks through a bounded worker pool */
type Service struct {
	logs    LogStore
	client  *http.Client
	workers int
	queue   chan job
	wg      sync.WaitGroup
	stop    chan struct{}

	/* injectable for tests */
	sleep func(time.Duration)
	now   func() time.Time
}

func NewService(logs LogStore, workers int) *Service {
	if workers <= 0 {
		workers = 4
	}
	return &Service{
		logs:    logs,
		client:  &http.Client{Timeout: deliveryTimeout},
		workers: workers,
		queue:   make(chan job, 1000),
		stop:    make(chan struct{}),
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

/* Start starts the delivery workers */
func (s *Service) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

/* Stop stops the delivery workers after draining in-flight work */
func (s *Service) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *Service) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stop:
			return
		case j := <-s.queue:
			s.deliver(j)
		}
	}
}

/* Dispatch queues delivery of an event to every enabled webhook
 * subscribed to it. Non-blocking: when the queue is saturated the
 * delivery is dropped and counted. */
func (s *Service) Dispatch(formID uuid.UUID, event string, webhooks []forms.Webhook, payload Payload) {
	for _, wh := range webhooks {
		if !wh.Enabled || !subscribed(wh.Events, event) {
			continue
		}
		select {
		case s.queue <- job{webhook: wh, formID: formID, event: event, payload: payload}:
		default:
			metrics.RecordWebhookQueueDrop()
			log.Warn().
				Str("webhook_id", wh.ID).
				Str("form_id", formID.String()).
				Str("event", event).
				Msg("Webhook queue full, delivery dropped")
		}
	}
}

func subscribed(events []string, event string) bool {
	for _, e := range events {
		if e == event {
			return true
		}
	}
	return false
}

/* deliver runs the full retry sequence for one webhook and records a
 * single audit row with the final outcome */
func (s *Service) deliver(j job) {
	payloadJSON, err := json.Marshal(j.payload)
	if err != nil {
		errMsg := fmt.Sprintf("marshal payload: %s", err.Error())
		s.writeLog(j, "failed", 0, nil, nil, &errMsg)
		return
	}

	var (
		attempts     int
		statusCode   *int
		responseBody *string
		lastError    *string
	)

	for attempts < maxAttempts {
		attempts++
		metrics.RecordWebhookAttempt()

		code, body, err := s.post(j.webhook, j.event, payloadJSON)
		if err != nil {
			msg := err.Error()
			lastError = &msg
			statusCode = nil
			responseBody = nil
		} else {
			statusCode = &code
			responseBody = &body
			lastError = nil
			if code >= 200 && code < 300 {
				s.writeLog(j, "success", attempts, statusCode, responseBody, nil)
				metrics.RecordWebhookDelivery(j.event, "success")
				return
			}
			msg := fmt.Sprintf("HTTP %d", code)
			lastError = &msg
		}

		if attempts < maxAttempts {
			s.sleep(time.Duration(1<<attempts) * time.Second)
		}
	}

	s.writeLog(j, "failed", attempts, statusCode, responseBody, lastError)
	metrics.RecordWebhookDelivery(j.event, "failed")
	log.Error().
		Str("webhook_id", j.webhook.ID).
		Str("form_id", j.formID.String()).
		Str("event", j.event).
		Int("attempts", attempts).
		Msg("Webhook delivery failed after all attempts")
}

/* post performs one delivery attempt. Any HTTP status is accepted as a
 * response; only transport errors return err. */
func (s *Service) post(wh forms.Webhook, event string, payloadJSON []byte) (int, string, error) {
	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(payloadJSON))
	if err != nil {
		return 0, "", fmt.Errorf("build request: url='%s', error=%w", wh.URL, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-FormGen-Event", event)
	req.Header.Set("X-FormGen-Signature", GenerateSignature(payloadJSON, wh.Secret))
	req.Header.Set("User-Agent", "FormGen-Webhook/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("execute request: url='%s', error=%w", wh.URL, err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	return resp.StatusCode, string(bodyBytes), nil
}

func (s *Service) writeLog(j job, status string, attempts int, statusCode *int, responseBody *string, errMsg *string) {
	row := &db.WebhookLog{
		WebhookID:     j.webhook.ID,
		FormID:        j.formID,
		Event:         j.event,
		Status:        status,
		Attempts:      attempts,
		StatusCode:    statusCode,
		ResponseBody:  responseBody,
		ErrorMessage:  errMsg,
		LastAttemptAt: s.now(),
	}
	if err := s.logs.CreateWebhookLog(context.Background(), row); err != nil {
		log.Error().Err(err).
			Str("webhook_id", j.webhook.ID).
			Str("form_id", j.formID.String()).
			Msg("Failed to persist webhook log")
	}
}

/* TestWebhook delivers a synthetic payload synchronously, once, with
 * no retries and no audit row */
func (s *Service) TestWebhook(ctx context.Context, url, secret string) (bool, string) {
	payload := Payload{
		Event:     EventWebhookTest,
		FormID:    "test-form-id",
		Timestamp: s.now(),
		Data:      map[string]interface{}{"message": "This is a test webhook from FormGen"},
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Sprintf("Webhook test failed: %s", err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadJSON))
	if err != nil {
		return false, fmt.Sprintf("Webhook test failed: %s", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-FormGen-Event", EventWebhookTest)
	req.Header.Set("X-FormGen-Signature", GenerateSignature(payloadJSON, secret))
	req.Header.Set("User-Agent", "FormGen-Webhook/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Sprintf("Webhook test failed: %s", err.Error())
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, responseBodyLimit))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return true, fmt.Sprintf("Webhook test successful (HTTP %d)", resp.StatusCode)
	}
	return false, fmt.Sprintf("Webhook returned HTTP %d", resp.StatusCode)
}

/* GenerateSignature computes the X-FormGen-Signature value. An empty
 * secret produces an empty signature. */
func GenerateSignature(payload []byte, secret string) string {
	if secret == "" {
		return ""
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

/* VerifySignature checks an incoming signature in constant time */
func VerifySignature(payload []byte, signature, secret string) bool {
	expected := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}
