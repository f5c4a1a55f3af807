package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/sayandeep-bot/spectosoft/iox"
	"github.com/sayandeep-bot/spectosoft/types"
)

// Upload routes on the collection endpoint. Video segments go to a
// dedicated route; every other kind shares the generic one.
const (
	videoRoute   = "/api/v1/upload-video"
	genericRoute = "/api/v1/upload"
)

// HTTPConfig configures the multipart HTTP uploader.
type HTTPConfig struct {
	// BaseURL is the collection endpoint origin (required),
	// e.g. "https://ingest.example.com".
	BaseURL string
	// Headers are custom HTTP headers added to each request.
	Headers map[string]string
}

// HTTPUploader delivers artifacts as multipart POST requests. The wire
// shape is a contract with the collection endpoint: exactly one part
// named "file", filename set to the artifact's basename, part MIME type
// derived from the extension.
type HTTPUploader struct {
	config HTTPConfig
	client *http.Client
}

// NewHTTPUploader creates an uploader from the given config.
// Returns an error if the base URL is empty.
func NewHTTPUploader(cfg HTTPConfig) (*HTTPUploader, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("http uploader requires a base URL")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	// Per-request deadlines come from the kind's delivery timeout, so the
	// client itself carries none.
	return &HTTPUploader{
		config: cfg,
		client: &http.Client{},
	}, nil
}

// Send performs a single delivery attempt. Retry scheduling belongs to
// the Engine's sweep, not here.
func (u *HTTPUploader) Send(ctx context.Context, path string, kind types.Kind) error {
	ctx, cancel := context.WithTimeout(ctx, kind.DeliverTimeout())
	defer cancel()

	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	body, contentType, err := multipartBody(filepath.Base(path), payload)
	if err != nil {
		return fmt.Errorf("build multipart body: %w", err)
	}

	route := genericRoute
	if kind == types.KindVideo {
		route = videoRoute
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.config.BaseURL+route, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	for k, v := range u.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	// Drain body to allow connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}

	return nil
}

// Close releases uploader resources.
func (u *HTTPUploader) Close() error {
	u.client.CloseIdleConnections()
	return nil
}

// StatusError is returned for non-2xx HTTP responses. Delivery treats
// every status class the same way, but the code is preserved for logs.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// multipartBody builds the single-part form the endpoint expects and
// returns the encoded body with its boundary content type.
func multipartBody(filename string, payload []byte) (*bytes.Buffer, string, error) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", types.ContentType(filepath.Ext(filename)))

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(payload); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return body, w.FormDataContentType(), nil
}

// Verify HTTPUploader implements the uploader capability.
var _ Uploader = (*HTTPUploader)(nil)
