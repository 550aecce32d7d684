package diarization

// Request holds parameters for a diarization call.
type Request struct {
	// AudioPath is the path to the audio file to diarize.
	AudioPath string `json:"audio_path" validate:"required"`
	// NumSpeakers is the exact number of speakers (0 = auto-detect).
	NumSpeakers int `json:"num_speakers,omitempty" validate:"gte=0"`
	// MinSpeakers is the minimum expected number of speakers.
	MinSpeakers int `json:"min_speakers,omitempty" validate:"gte=0"`
	// MaxSpeakers is the maximum expected number of speakers.
	MaxSpeakers int `json:"max_speakers,omitempty" validate:"gte=0"`
}

// Response holds the result of a diarization call.
type Response struct {
	// Turns contains speaker turns ordered by start time, non-overlapping.
	Turns []Turn `json:"turns"`
	// NumSpeakers is the number of speakers detected.
	NumSpeakers int `json:"num_speakers"`
}

// Turn represents one speaker-attributed time interval.
type Turn struct {
	// Start is the turn start time in seconds.
	Start float64 `json:"start"`
	// End is the turn end time in seconds. Always greater than Start.
	End float64 `json:"end"`
	// Speaker is the engine-local speaker label (e.g. "SPEAKER_00").
	// Labels are not stable across different audio files.
	Speaker string `json:"speaker"`
}
