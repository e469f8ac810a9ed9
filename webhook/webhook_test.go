package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/topchart/models"
)

func TestDeliver_SignsBody(t *testing.T) {
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := New(srv.URL, "s3cret", time.Second)
	resp := &models.ScrapeResponse{
		Success:   true,
		Status:    models.StatusCompleted,
		SourceURL: "https://www.imdb.com/chart/top/",
		RowsFound: 3,
		Skipped:   1,
		Movies:    []models.Movie{{Rank: 1}, {Rank: 3}},
	}
	require.NoError(t, n.Deliver(context.Background(), EventFor(resp)))

	assert.Equal(t, "sha256="+Sign("s3cret", gotBody), gotSig)

	var ev struct {
		Type string  `json:"type"`
		Data RunData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &ev))
	assert.Equal(t, EventCompleted, ev.Type)
	assert.Equal(t, 2, ev.Data.Extracted)
	assert.Equal(t, 1, ev.Data.Skipped)
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(SignatureHeader), "no secret, no signature")
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL, "", time.Second).Deliver(context.Background(), &Event{Type: EventFailed})
	assert.Error(t, err)
}

func TestNotify_DeliversOnce(t *testing.T) {
	hits := make(chan struct{}, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- struct{}{}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	New(srv.URL, "", time.Second).Notify(&Event{Type: EventEmpty})

	select {
	case <-hits:
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not delivered")
	}
	select {
	case <-hits:
		t.Fatal("failed delivery must not be retried")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestEventFor_Types(t *testing.T) {
	assert.Equal(t, EventEmpty, EventFor(&models.ScrapeResponse{Status: models.StatusEmpty}).Type)
	assert.Equal(t, EventFailed, EventFor(&models.ScrapeResponse{Status: models.StatusFailed}).Type)
	assert.Equal(t, EventCompleted, EventFor(&models.ScrapeResponse{Status: models.StatusCompleted}).Type)
}

func TestNilNotifier(t *testing.T) {
	var n *Notifier
	assert.Nil(t, New("", "x", time.Second))
	assert.NoError(t, n.Deliver(context.Background(), &Event{}))
	n.Notify(&Event{})
	n.Wait()
}

func TestWait_BlocksUntilDelivered(t *testing.T) {
	var got atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		got.Add(1)
	}))
	defer srv.Close()

	n := New(srv.URL, "", time.Second)
	n.Notify(&Event{Type: EventCompleted})
	n.Wait()
	assert.Equal(t, int32(1), got.Load())
}
