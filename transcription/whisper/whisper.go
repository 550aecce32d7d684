// Package whisper implements transcription.Provider against a
// faster-whisper HTTP sidecar.
package whisper

import (
	"context"
	"fmt"
	"time"

	"github.com/skillsenselab/audio2txt/httpclient"
	"github.com/skillsenselab/audio2txt/provider"
	"github.com/skillsenselab/audio2txt/transcription"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperModel   = "large-v3"
	defaultWhisperTimeout = 300 * time.Second
)

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	URL         string        `json:"url" yaml:"url" mapstructure:"url"`
	Model       string        `json:"model" yaml:"model" mapstructure:"model"`
	Language    string        `json:"language,omitempty" yaml:"language" mapstructure:"language"`
	Device      string        `json:"device,omitempty" yaml:"device" mapstructure:"device"`
	ComputeType string        `json:"compute_type,omitempty" yaml:"compute_type" mapstructure:"compute_type"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Provider implements transcription.Provider using a faster-whisper HTTP sidecar.
type Provider struct {
	cfg     Config
	sidecar *httpclient.Sidecar
}

// NewProvider creates a new Whisper transcription provider.
func NewProvider(cfg Config) *Provider {
	if cfg.URL == "" {
		cfg.URL = defaultWhisperURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultWhisperModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultWhisperTimeout
	}
	return &Provider{
		cfg:     cfg,
		sidecar: httpclient.NewSidecar(ProviderName, cfg.URL, cfg.Timeout),
	}
}

// Factory returns a provider.Factory that creates Whisper Provider
// instances from a whisper.Config.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg any) (transcription.Provider, error) {
		wc, ok := cfg.(Config)
		if !ok {
			return nil, fmt.Errorf("whisper: config type %T, want whisper.Config", cfg)
		}
		return NewProvider(wc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.sidecar.Healthy(ctx)
}

// Transcribe sends an audio file to the Whisper sidecar and returns the
// transcription. Request fields override configured defaults per call.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}
	device := p.cfg.Device
	if req.Device != "" {
		device = req.Device
	}

	var result whisperResponse
	err := p.sidecar.UploadJSON(ctx, httpclient.Upload{
		Path:      "/transcribe",
		AudioPath: req.AudioPath,
		Fields: map[string]string{
			"model":        model,
			"language":     lang,
			"device":       device,
			"compute_type": p.cfg.ComputeType,
		},
	}, &result)
	if err != nil {
		return nil, err
	}

	return toResponse(&result), nil
}

// --- internal Whisper API response types ---

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

type whisperSegment struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

func toResponse(resp *whisperResponse) *transcription.Response {
	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcription.Segment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       seg.Text,
			Confidence: seg.Confidence,
		}
	}

	duration := resp.Duration
	if duration == 0 && len(resp.Segments) > 0 {
		duration = resp.Segments[len(resp.Segments)-1].End
	}

	return &transcription.Response{
		Text:     resp.Text,
		Segments: segments,
		Duration: duration,
		Language: resp.Language,
	}
}
