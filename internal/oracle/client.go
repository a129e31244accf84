// Package oracle talks to the remote encryption service that cipherprobe
// treats as a black box.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cipherprobe/internal/logging"
)

// =============================================================================
// ENCRYPTION ORACLE CLIENT
// =============================================================================

const (
	DefaultBaseURL = "http://api.trytodecrypt.com/encrypt"
	DefaultTimeout = 20 * time.Second

	// maxBodyBytes bounds how much of a reply is read.
	maxBodyBytes = 1 << 20
)

// ErrEmptyResponse is returned when the oracle answers 2xx with an empty body.
var ErrEmptyResponse = errors.New("oracle returned an empty response")

// StatusError is a non-2xx reply.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("oracle returned status %d", e.Code)
	}
	return fmt.Sprintf("oracle returned status %d: %s", e.Code, e.Body)
}

// Encrypter encrypts plaintext under an identity.
type Encrypter interface {
	Encrypt(ctx context.Context, identity, plaintext string) (string, error)
}

// HTTPClient queries the oracle over HTTP:
//
//	GET <baseURL>?key=<apiKey>&id=<identity>&text=<plaintext>
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient creates a client. Empty baseURL and zero timeout fall back to
// DefaultBaseURL and DefaultTimeout.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Encrypt sends one plaintext to the oracle and returns the trimmed ciphertext.
func (c *HTTPClient) Encrypt(ctx context.Context, identity, plaintext string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid oracle URL: %w", err)
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	q.Set("id", identity)
	q.Set("text", plaintext)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	logging.OracleDebug("GET id=%q text_len=%d", identity, len(plaintext))
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		// The request URL carries the API key and plaintext.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}).String()
		}
		logging.OracleWarn("Request for id=%q failed: %v", identity, err)
		return "", fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.OracleWarn("Oracle returned status %d for id=%q", resp.StatusCode, identity)
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	ciphertext := strings.TrimSpace(string(body))
	if ciphertext == "" {
		return "", ErrEmptyResponse
	}

	logging.OracleDebug("Reply for id=%q: %d chars in %v", identity, len(ciphertext), time.Since(start))
	return ciphertext, nil
}

// Close releases idle keep-alive connections.
func (c *HTTPClient) Close() {
	c.client.CloseIdleConnections()
}
