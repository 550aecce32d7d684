package transcription

// Request holds parameters for a transcription call.
type Request struct {
	// AudioPath is the path to the audio file to transcribe.
	AudioPath string `json:"audio_path" validate:"required"`
	// Language is the expected language of the audio (e.g. "zh").
	Language string `json:"language,omitempty"`
	// Model is the transcription model to use (e.g. "large-v3").
	Model string `json:"model,omitempty"`
	// Device is the preferred compute device ("cpu" or "cuda").
	Device string `json:"device,omitempty" validate:"omitempty,oneof=cpu cuda"`
}

// Response holds the result of a transcription call.
type Response struct {
	// Text is the full transcription text.
	Text string `json:"text"`
	// Segments contains time-aligned transcript segments, ordered by Start
	// and non-overlapping within one response.
	Segments []Segment `json:"segments,omitempty"`
	// Duration is the audio duration in seconds.
	Duration float64 `json:"duration,omitempty"`
	// Language is the detected or specified language.
	Language string `json:"language,omitempty"`
}

// Segment represents a time-aligned portion of a transcript.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds. Always greater than Start.
	End float64 `json:"end"`
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
	// Confidence is an opaque engine-supplied score in [0,1].
	Confidence float64 `json:"confidence,omitempty"`
}
