/*-------------------------------------------------------------------------
 *
 * delivery_test.go
 *    Tests for webhook delivery
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/webhooks/delivery_test.go
 *
 *-------------------------------------------------------------------------
 */

package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formgen/server/internal/db"
	"github.com/formgen/server/internal/forms"
)

type fakeLogStore struct {
	mu   sync.Mutex
	rows []*db.WebhookLog
}

func (f *fakeLogStore) CreateWebhookLog(_ context.Context, row *db.WebhookLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeLogStore) logs() []*db.WebhookLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*db.WebhookLog(nil), f.rows...)
}

func newTestService(logs LogStore) (*Service, *[]time.Duration) {
	s := NewService(logs, 1)
	var sleeps []time.Duration
	s.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return s, &sleeps
}

func testWebhook(url, secret string) forms.Webhook {
	return forms.Webhook{
		ID:      uuid.New().String(),
		URL:     url,
		Secret:  secret,
		Events:  []string{EventSubmissionCreated},
		Enabled: true,
	}
}

func testJob(wh forms.Webhook) job {
	return job{
		webhook: wh,
		formID:  uuid.New(),
		event:   EventSubmissionCreated,
		payload: Payload{
			Event:     EventSubmissionCreated,
			FormID:    "form-1",
			Timestamp: time.Now(),
			Data:      map[string]interface{}{"ok": true},
		},
	}
}

/* Two failures then a success: three attempts, two backoff sleeps, one
 * success row */
func TestDeliverRetriesThenSucceeds(t *testing.T) {
	var calls int
	var gotEvent, gotSignature, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotEvent = r.Header.Get("X-FormGen-Event")
		gotSignature = r.Header.Get("X-FormGen-Signature")
		gotUA = r.Header.Get("User-Agent")
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := &fakeLogStore{}
	svc, sleeps := newTestService(store)

	svc.deliver(testJob(testWebhook(server.URL, "s3cret")))

	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *sleeps)
	assert.Equal(t, EventSubmissionCreated, gotEvent)
	assert.Equal(t, "FormGen-Webhook/1.0", gotUA)
	assert.NotEmpty(t, gotSignature)

	rows := store.logs()
	require.Len(t, rows, 1)
	assert.Equal(t, "success", rows[0].Status)
	assert.Equal(t, 3, rows[0].Attempts)
	require.NotNil(t, rows[0].StatusCode)
	assert.Equal(t, http.StatusOK, *rows[0].StatusCode)
}

func TestDeliverFirstAttemptSuccessSkipsBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	store := &fakeLogStore{}
	svc, sleeps := newTestService(store)

	svc.deliver(testJob(testWebhook(server.URL, "")))

	assert.Empty(t, *sleeps)
	rows := store.logs()
	require.Len(t, rows, 1)
	assert.Equal(t, "success", rows[0].Status)
	assert.Equal(t, 1, rows[0].Attempts)
}

/* Persistent failure exhausts the retry budget and records exactly one
 * failed row for the whole sequence */
func TestDeliverAllAttemptsFail(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	store := &fakeLogStore{}
	svc, sleeps := newTestService(store)

	svc.deliver(testJob(testWebhook(server.URL, "secret")))

	assert.Equal(t, 3, calls)
	assert.Len(t, *sleeps, 2)

	rows := store.logs()
	require.Len(t, rows, 1)
	assert.Equal(t, "failed", rows[0].Status)
	assert.Equal(t, 3, rows[0].Attempts)
	require.NotNil(t, rows[0].StatusCode)
	assert.Equal(t, http.StatusBadGateway, *rows[0].StatusCode)
	require.NotNil(t, rows[0].ErrorMessage)
	assert.Contains(t, *rows[0].ErrorMessage, "502")
}

func TestDeliverTransportError(t *testing.T) {
	store := &fakeLogStore{}
	svc, _ := newTestService(store)

	/* Unroutable address */
	svc.deliver(testJob(testWebhook("http://127.0.0.1:1", "secret")))

	rows := store.logs()
	require.Len(t, rows, 1)
	assert.Equal(t, "failed", rows[0].Status)
	assert.Equal(t, 3, rows[0].Attempts)
	assert.Nil(t, rows[0].StatusCode)
	require.NotNil(t, rows[0].ErrorMessage)
}

func TestDispatchFiltersDisabledAndUnsubscribed(t *testing.T) {
	store := &fakeLogStore{}
	svc, _ := newTestService(store)

	disabled := testWebhook("http://example.com", "")
	disabled.Enabled = false
	unsubscribed := testWebhook("http://example.com", "")
	unsubscribed.Events = []string{EventFormUpdated}
	subscribed := testWebhook("http://example.com", "")

	svc.Dispatch(uuid.New(), EventSubmissionCreated,
		[]forms.Webhook{disabled, unsubscribed, subscribed},
		Payload{Event: EventSubmissionCreated})

	assert.Len(t, svc.queue, 1)
}

func TestGenerateSignature(t *testing.T) {
	payload := []byte(`{"event":"submission.created"}`)

	sig := GenerateSignature(payload, "secret")
	assert.Contains(t, sig, "sha256=")

	/* Deterministic for the same inputs */
	assert.Equal(t, sig, GenerateSignature(payload, "secret"))
	assert.NotEqual(t, sig, GenerateSignature(payload, "other"))

	/* No secret, no signature */
	assert.Empty(t, GenerateSignature(payload, ""))
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"event":"submission.created","formId":"f1"}`)
	sig := GenerateSignature(payload, "secret")

	assert.True(t, VerifySignature(payload, sig, "secret"))
	assert.False(t, VerifySignature(payload, sig, "wrong"))
	assert.False(t, VerifySignature(payload, "sha256=deadbeef", "secret"))
	assert.False(t, VerifySignature(payload, "", "secret"))

	/* Differing lengths must not panic */
	assert.False(t, VerifySignature(payload, "short", "secret"))
}

func TestTestWebhook(t *testing.T) {
	var received Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := &fakeLogStore{}
	svc, _ := newTestService(store)

	ok, msg := svc.TestWebhook(context.Background(), server.URL, "secret")
	assert.True(t, ok)
	assert.Contains(t, msg, "200")
	assert.Equal(t, EventWebhookTest, received.Event)

	/* Test deliveries are one-shot and unlogged */
	assert.Empty(t, store.logs())
}

func TestTestWebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	store := &fakeLogStore{}
	svc, _ := newTestService(store)

	ok, msg := svc.TestWebhook(context.Background(), server.URL, "")
	assert.False(t, ok)
	assert.Contains(t, msg, "403")
}

func TestWorkerLifecycle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := &fakeLogStore{}
	svc, _ := newTestService(store)
	svc.Start()

	svc.Dispatch(uuid.New(), EventSubmissionCreated,
		[]forms.Webhook{testWebhook(server.URL, "")},
		Payload{Event: EventSubmissionCreated})

	require.Eventually(t, func() bool {
		return len(store.logs()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	svc.Stop()
}
