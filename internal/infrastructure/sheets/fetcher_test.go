package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dasbor/backend/internal/domain/shared"
	"github.com/dasbor/backend/internal/domain/sheet"
	"github.com/dasbor/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(serverURL string) *CSVFetcher {
	return NewCSVFetcher(config.SheetsConfig{
		ExportBaseURL:   serverURL,
		FetchTimeout:    5 * time.Second,
		MaxResponseSize: 1024,
	})
}

func TestFetchCSV_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/spreadsheets/d/abc123/export", r.URL.Path)
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		assert.Equal(t, "77", r.URL.Query().Get("gid"))
		w.Write([]byte("Nama,No WA\nAlice,628111\n"))
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	body, err := fetcher.FetchCSV(context.Background(), sheet.Reference{
		SpreadsheetID: "abc123",
		Gid:           "77",
	})

	require.NoError(t, err)
	assert.Equal(t, "Nama,No WA\nAlice,628111\n", body)
}

func TestFetchCSV_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	_, err := fetcher.FetchCSV(context.Background(), sheet.Reference{
		SpreadsheetID: "abc123",
		Gid:           "0",
	})

	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, sheet.ErrCodeSheetFetchFailed, domainErr.Code)
	assert.Contains(t, domainErr.Message, "403")
	assert.Equal(t, sheet.FetchInstructions, domainErr.Instructions)
}

func TestFetchCSV_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	fetcher := newTestFetcher(server.URL)
	_, err := fetcher.FetchCSV(context.Background(), sheet.Reference{
		SpreadsheetID: "abc123",
		Gid:           "0",
	})

	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, sheet.ErrCodeSheetFetchFailed, domainErr.Code)
	assert.Equal(t, sheet.FetchInstructions, domainErr.Instructions)
}

func TestFetchCSV_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.FetchCSV(ctx, sheet.Reference{SpreadsheetID: "abc123", Gid: "0"})
	require.Error(t, err)
}

func TestFetchCSV_ResponseSizeCapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	body, err := fetcher.FetchCSV(context.Background(), sheet.Reference{
		SpreadsheetID: "abc123",
		Gid:           "0",
	})

	require.NoError(t, err)
	assert.Len(t, body, 1024)
}

func TestExportURL_EscapesComponents(t *testing.T) {
	fetcher := newTestFetcher("https://docs.google.com")

	url := fetcher.exportURL(sheet.Reference{SpreadsheetID: "1AbC_d-EfG", Gid: "123"})

	assert.Equal(t,
		"https://docs.google.com/spreadsheets/d/1AbC_d-EfG/export?format=csv&gid=123",
		url)
}
