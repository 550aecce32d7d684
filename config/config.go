package config

import (
	"fmt"

	"github.com/skillsenselab/audio2txt/diarization/pyannote"
	"github.com/skillsenselab/audio2txt/llm/ollama"
	"github.com/skillsenselab/audio2txt/logger"
	"github.com/skillsenselab/audio2txt/transcription/whisper"
)

// BaseConfig contains the essential application identity fields.
type BaseConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
}

// ApplyDefaults applies default values to base configuration.
func (c *BaseConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "audio2txt"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
}

// Validate validates base configuration.
func (c *BaseConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("base.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	for _, v := range validEnvs {
		if c.Environment == v {
			return nil
		}
	}
	return fmt.Errorf("base.environment must be one of [development, staging, production] (got: %s)", c.Environment)
}

// PipelineConfig configures transcript processing behavior.
type PipelineConfig struct {
	// MaxConcurrent bounds concurrent files in batch processing.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	// StrictDiarization fails a run when diarization fails instead of
	// degrading to an unattributed transcript.
	StrictDiarization bool `yaml:"strict_diarization" mapstructure:"strict_diarization"`
	// Sequential runs the engines one after another. The zero value is
	// the default mode: transcription and diarization run concurrently.
	Sequential bool `yaml:"sequential" mapstructure:"sequential"`
}

// ApplyDefaults applies default values to pipeline configuration.
func (c *PipelineConfig) ApplyDefaults() {
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 2
	}
}

// Validate validates pipeline configuration.
func (c *PipelineConfig) Validate() error {
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("pipeline.max_concurrent must be at least 1 (got: %d)", c.MaxConcurrent)
	}
	return nil
}

// EnginesConfig selects the backend serving each engine role, by the
// name the backend registers under.
type EnginesConfig struct {
	Transcription string `yaml:"transcription" mapstructure:"transcription"`
	Diarization   string `yaml:"diarization" mapstructure:"diarization"`
	LLM           string `yaml:"llm" mapstructure:"llm"`
}

// ApplyDefaults applies default values to engine selection.
func (c *EnginesConfig) ApplyDefaults() {
	if c.Transcription == "" {
		c.Transcription = whisper.ProviderName
	}
	if c.Diarization == "" {
		c.Diarization = pyannote.ProviderName
	}
	if c.LLM == "" {
		c.LLM = ollama.ProviderName
	}
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// ApplyDefaults applies default values to tracing configuration.
func (c *TracingConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
		c.Insecure = true
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
}

// AppConfig is the root configuration for the audio2txt application.
type AppConfig struct {
	Base     BaseConfig      `yaml:"base" mapstructure:"base"`
	Logging  logger.Config   `yaml:"logging" mapstructure:"logging"`
	Whisper  whisper.Config  `yaml:"whisper" mapstructure:"whisper"`
	Pyannote pyannote.Config `yaml:"pyannote" mapstructure:"pyannote"`
	Ollama   ollama.Config   `yaml:"ollama" mapstructure:"ollama"`
	Engines  EnginesConfig   `yaml:"engines" mapstructure:"engines"`
	Pipeline PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Tracing  TracingConfig   `yaml:"tracing" mapstructure:"tracing"`
}

// ApplyDefaults applies defaults to every section.
func (c *AppConfig) ApplyDefaults() {
	c.Base.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Engines.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	c.Tracing.ApplyDefaults()
}

// Validate validates every section.
func (c *AppConfig) Validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	return nil
}

// Load reads configuration from file and environment, applies defaults,
// and validates the result.
func Load(opts ...LoaderOption) (*AppConfig, error) {
	var cfg AppConfig
	if err := LoadConfig("audio2txt", &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
