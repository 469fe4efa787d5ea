package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/dasbor/backend/internal/domain/sheet"
	"github.com/golang-jwt/jwt/v5"
)

// NoopWriter is the writer for read-only deployments
type NoopWriter struct{}

// Capable always reports false
func (NoopWriter) Capable() bool { return false }

// AppendRow reports the missing-credentials configuration state
func (NoopWriter) AppendRow(context.Context, sheet.Reference, []string) error {
	return sheet.ErrWriteNotConfigured
}

// UpdateRow reports the missing-credentials configuration state
func (NoopWriter) UpdateRow(context.Context, sheet.Reference, int, []string) error {
	return sheet.ErrWriteNotConfigured
}

const (
	sheetsAPIBase = "https://sheets.googleapis.com/v4/spreadsheets"
	sheetsScope   = "https://www.googleapis.com/auth/spreadsheets"
)

// serviceAccountKey is the subset of the Google service-account key file we need
type serviceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// APIWriter writes through the Sheets values API, authenticating with a
// service-account key. Access tokens are cached until shortly before expiry;
// tab titles are cached per spreadsheet because the values API addresses tabs
// by title while our references carry gids.
type APIWriter struct {
	key        serviceAccountKey
	signingKey any
	apiBase    string
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
	titles      map[string]string // "spreadsheetID/gid" -> tab title
}

// NewAPIWriter loads the service-account key file and builds a writer
func NewAPIWriter(keyFile string, timeout time.Duration) (*APIWriter, error) {
	raw, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets key file: %w", err)
	}

	var key serviceAccountKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("parse sheets key file: %w", err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("sheets key file is missing client_email or private_key")
	}
	if key.TokenURI == "" {
		key.TokenURI = "https://oauth2.googleapis.com/token"
	}

	signingKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse sheets private key: %w", err)
	}

	return &APIWriter{
		key:        key,
		signingKey: signingKey,
		apiBase:    sheetsAPIBase,
		httpClient: &http.Client{Timeout: timeout},
		titles:     make(map[string]string),
	}, nil
}

// Capable always reports true once the key file parsed
func (w *APIWriter) Capable() bool { return true }

// token returns a valid access token, refreshing through the two-legged
// OAuth flow when the cached one is near expiry.
func (w *APIWriter) token(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.accessToken != "" && time.Now().Before(w.tokenExpiry.Add(-time.Minute)) {
		return w.accessToken, nil
	}

	now := time.Now()
	assertion := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   w.key.ClientEmail,
		"scope": sheetsScope,
		"aud":   w.key.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	signed, err := assertion.SignedString(w.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token assertion: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	form.Set("assertion", signed)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.key.TokenURI,
		bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchange token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned HTTP %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	w.accessToken = payload.AccessToken
	w.tokenExpiry = now.Add(time.Duration(payload.ExpiresIn) * time.Second)
	return w.accessToken, nil
}

// tabTitle resolves the title of the tab a gid points at
func (w *APIWriter) tabTitle(ctx context.Context, ref sheet.Reference) (string, error) {
	cacheKey := ref.SpreadsheetID + "/" + ref.Gid

	w.mu.Lock()
	title, ok := w.titles[cacheKey]
	w.mu.Unlock()
	if ok {
		return title, nil
	}

	var meta struct {
		Sheets []struct {
			Properties struct {
				SheetID int    `json:"sheetId"`
				Title   string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}

	endpoint := fmt.Sprintf("%s/%s?fields=sheets.properties", w.apiBase, url.PathEscape(ref.SpreadsheetID))
	if err := w.doJSON(ctx, http.MethodGet, endpoint, nil, &meta); err != nil {
		return "", err
	}

	gid, err := strconv.Atoi(ref.Gid)
	if err != nil {
		return "", fmt.Errorf("non-numeric gid %q", ref.Gid)
	}
	for _, s := range meta.Sheets {
		if s.Properties.SheetID == gid {
			w.mu.Lock()
			w.titles[cacheKey] = s.Properties.Title
			w.mu.Unlock()
			return s.Properties.Title, nil
		}
	}
	return "", fmt.Errorf("no tab with gid %s in spreadsheet", ref.Gid)
}

// AppendRow appends one row after the last data row of the tab
func (w *APIWriter) AppendRow(ctx context.Context, ref sheet.Reference, values []string) error {
	title, err := w.tabTitle(ctx, ref)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=USER_ENTERED",
		w.apiBase, url.PathEscape(ref.SpreadsheetID), url.PathEscape(title))

	body := map[string]any{"values": [][]string{values}}
	return w.doJSON(ctx, http.MethodPost, endpoint, body, nil)
}

// UpdateRow overwrites one data row. Row 0 is the first row under the header.
func (w *APIWriter) UpdateRow(ctx context.Context, ref sheet.Reference, rowIndex int, values []string) error {
	if rowIndex < 0 {
		return fmt.Errorf("row index cannot be negative")
	}
	title, err := w.tabTitle(ctx, ref)
	if err != nil {
		return err
	}

	// +2: 1-based sheet rows and one header row
	rang := fmt.Sprintf("%s!A%d", title, rowIndex+2)
	endpoint := fmt.Sprintf("%s/%s/values/%s?valueInputOption=USER_ENTERED",
		w.apiBase, url.PathEscape(ref.SpreadsheetID), url.PathEscape(rang))

	body := map[string]any{"values": [][]string{values}}
	return w.doJSON(ctx, http.MethodPut, endpoint, body, nil)
}

// doJSON performs one authenticated API call with optional JSON body and response
func (w *APIWriter) doJSON(ctx context.Context, method, endpoint string, body any, out any) error {
	token, err := w.token(ctx)
	if err != nil {
		return err
	}

	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheets api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sheets api returned HTTP %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

var (
	_ sheet.Writer = (*NoopWriter)(nil)
	_ sheet.Writer = (*APIWriter)(nil)
)
