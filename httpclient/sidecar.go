// Package httpclient provides the HTTP plumbing shared by the engine
// sidecars: multipart audio uploads, health probes, and classification
// of transport and status failures onto the application error taxonomy.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"time"

	apperrors "github.com/skillsenselab/audio2txt/errors"
)

// Sidecar is an HTTP client bound to one engine sidecar. Errors it
// returns carry the engine name and map onto the engine error codes.
type Sidecar struct {
	engine  string
	baseURL string
	client  *http.Client
}

// NewSidecar creates a client for the engine at baseURL.
func NewSidecar(engine, baseURL string, timeout time.Duration) *Sidecar {
	return &Sidecar{
		engine:  engine,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Healthy reports whether the sidecar answers its health endpoint.
func (s *Sidecar) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Upload describes one multipart file upload to a sidecar endpoint.
type Upload struct {
	// Path is the request path, e.g. "/transcribe".
	Path string
	// AudioPath is the local audio file to send.
	AudioPath string
	// Fields are additional form fields. Empty values are skipped.
	Fields map[string]string
}

// UploadJSON posts the audio file as multipart/form-data and decodes
// the JSON response into out. Failures come back classified: transport
// timeouts and 504 as ENGINE_TIMEOUT, 415/422 as
// UNSUPPORTED_AUDIO_FORMAT, everything else as ENGINE_UNAVAILABLE.
// Caller cancellation passes through untouched.
func (s *Sidecar) UploadJSON(ctx context.Context, up Upload, out any) error {
	audioData, err := os.ReadFile(up.AudioPath)
	if err != nil {
		return fmt.Errorf("read audio file: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", "audio.wav")
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return fmt.Errorf("write audio data: %w", err)
	}
	for k, v := range up.Fields {
		if v == "" {
			continue
		}
		_ = writer.WriteField(k, v)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+up.Path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return s.classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return s.classifyStatusError(resp.StatusCode, up.AudioPath, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", s.engine, err)
	}
	return nil
}

// classifyTransportError maps client/transport failures onto the engine
// error taxonomy. Caller cancellation is passed through untouched so the
// pipeline can tell it apart from an engine failure.
func (s *Sidecar) classifyTransportError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.EngineTimeout(s.engine, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.EngineTimeout(s.engine, err)
	}
	return apperrors.EngineUnavailable(s.engine, err)
}

func (s *Sidecar) classifyStatusError(status int, audioPath string, body []byte) error {
	switch status {
	case http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity:
		return apperrors.UnsupportedAudioFormat(s.engine, audioPath)
	case http.StatusGatewayTimeout:
		return apperrors.EngineTimeout(s.engine, fmt.Errorf("%s error (status %d): %s", s.engine, status, body))
	default:
		return apperrors.EngineUnavailable(s.engine, fmt.Errorf("%s error (status %d): %s", s.engine, status, body))
	}
}
