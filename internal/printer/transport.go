package printer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spool/internal/ams"
	"spool/internal/config"
)

// Transport defines the printer operations used by the workflow.
type Transport interface {
	Upload(ctx context.Context, gcodePath string) (string, error)
	StartPrint(ctx context.Context, remoteName string) error
	LoadedFilaments(ctx context.Context) ([]ams.Slot, error)
}

// HTTPDoer describes the HTTP client used by the transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPTransport implements Transport against the printer's REST API.
type HTTPTransport struct {
	baseURL        string
	apiKey         string
	client         HTTPDoer
	requestTimeout time.Duration
	uploadTimeout  time.Duration
}

// Option configures the HTTP transport.
type Option func(*HTTPTransport)

// WithHTTPDoer injects a custom HTTP client (primarily for tests).
func WithHTTPDoer(client HTTPDoer) Option {
	return func(t *HTTPTransport) {
		if client != nil {
			t.client = client
		}
	}
}

// NewHTTPTransport builds a transport from printer configuration.
func NewHTTPTransport(cfg config.Printer, opts ...Option) (*HTTPTransport, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("printer base url required")
	}
	transport := &HTTPTransport{
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		client:         http.DefaultClient,
		requestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		uploadTimeout:  time.Duration(cfg.UploadTimeout) * time.Second,
	}
	for _, opt := range opts {
		opt(transport)
	}
	return transport, nil
}

// Upload pushes a gcode artifact to the printer and returns the remote name
// the printer assigned to it.
func (t *HTTPTransport) Upload(ctx context.Context, gcodePath string) (string, error) {
	gcodePath = strings.TrimSpace(gcodePath)
	if gcodePath == "" {
		return "", errors.New("gcode path required")
	}

	file, err := os.Open(gcodePath)
	if err != nil {
		return "", fmt.Errorf("open gcode file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(gcodePath))
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("read gcode file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize upload form: %w", err)
	}

	uploadCtx := ctx
	if t.uploadTimeout > 0 {
		var cancel context.CancelFunc
		uploadCtx, cancel = context.WithTimeout(ctx, t.uploadTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(uploadCtx, http.MethodPost, t.baseURL+"/api/v1/files", &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	t.authorize(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload gcode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var uploaded struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err == nil && strings.TrimSpace(uploaded.Name) != "" {
		return uploaded.Name, nil
	}
	return filepath.Base(gcodePath), nil
}

// StartPrint tells the printer to begin printing the named uploaded file.
func (t *HTTPTransport) StartPrint(ctx context.Context, remoteName string) error {
	remoteName = strings.TrimSpace(remoteName)
	if remoteName == "" {
		return errors.New("remote file name required")
	}

	payload, err := json.Marshal(map[string]string{"filename": remoteName})
	if err != nil {
		return fmt.Errorf("encode print request: %w", err)
	}

	reqCtx := ctx
	if t.requestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, t.requestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, t.baseURL+"/api/v1/print", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build print request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	t.authorize(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("start print: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("print start returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}
	return nil
}

// LoadedFilaments queries the AMS units and returns the occupied slots.
func (t *HTTPTransport) LoadedFilaments(ctx context.Context) ([]ams.Slot, error) {
	reqCtx := ctx
	if t.requestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, t.requestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, t.baseURL+"/api/v1/ams", nil)
	if err != nil {
		return nil, fmt.Errorf("build ams request: %w", err)
	}
	t.authorize(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query loaded filaments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ams query returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var report struct {
		Units []struct {
			ID    int `json:"id"`
			Slots []struct {
				ID           int    `json:"id"`
				FilamentType string `json:"filament_type"`
				Color        string `json:"color"`
				MaterialID   string `json:"material_id"`
			} `json:"slots"`
		} `json:"units"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode ams response: %w", err)
	}

	var slots []ams.Slot
	for _, unit := range report.Units {
		for _, slot := range unit.Slots {
			if strings.TrimSpace(slot.FilamentType) == "" {
				continue
			}
			slots = append(slots, ams.Slot{
				UnitID:       unit.ID,
				SlotID:       slot.ID,
				FilamentType: slot.FilamentType,
				Color:        slot.Color,
				MaterialID:   slot.MaterialID,
			})
		}
	}
	return slots, nil
}

func (t *HTTPTransport) authorize(req *http.Request) {
	req.Header.Set("User-Agent", "Spool-Go/0.1.0")
	if t.apiKey != "" {
		req.Header.Set("X-Api-Key", t.apiKey)
	}
}

func readErrorBody(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 2048))
	return strings.TrimSpace(string(body))
}
