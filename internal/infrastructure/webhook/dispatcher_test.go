package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dasbor/backend/internal/domain/broadcast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() broadcast.DispatchRequest {
	return broadcast.DispatchRequest{
		CampaignID: "c1d2e3f4",
		Sender:     "628120000001",
		Message:    "Promo spesial minggu ini!",
		Recipients: []broadcast.Recipient{
			{Name: "Alice", Phone: "628111"},
			{Name: "Bob", Phone: "628222"},
		},
	}
}

func TestDispatch_Success(t *testing.T) {
	var got broadcast.DispatchRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewHTTPDispatcher(5 * time.Second)
	err := d.Dispatch(context.Background(), server.URL, testRequest())

	require.NoError(t, err)
	assert.Equal(t, "628120000001", got.Sender)
	assert.Equal(t, "Promo spesial minggu ini!", got.Message)
	require.Len(t, got.Recipients, 2)
	assert.Equal(t, broadcast.Recipient{Name: "Alice", Phone: "628111"}, got.Recipients[0])
}

func TestDispatch_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	d := NewHTTPDispatcher(5 * time.Second)
	err := d.Dispatch(context.Background(), server.URL, testRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDispatch_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	d := NewHTTPDispatcher(5 * time.Second)
	err := d.Dispatch(context.Background(), server.URL, testRequest())
	require.Error(t, err)
}

func TestDispatch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewHTTPDispatcher(5 * time.Second)
	err := d.Dispatch(ctx, server.URL, testRequest())
	require.Error(t, err)
}
