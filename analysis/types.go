package analysis

import "time"

// Type classifies what an analysis solution produces.
type Type string

const (
	TypeSummary      Type = "summary"
	TypeDeepAnalysis Type = "deep_analysis"
	TypeActionItems  Type = "action_items"
	TypeKeywords     Type = "keywords"
	TypeCustom       Type = "custom"
)

// Status is the outcome state of one analysis.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Solution is a named prompt configuration applied to a transcript.
// The template's "{transcript}" placeholder is replaced with the
// transcript corpus before the LLM call.
type Solution struct {
	// ID is the solution identifier (e.g. "quick_summary").
	ID string `json:"id" yaml:"id" validate:"required"`
	// Name is a human-readable solution name.
	Name string `json:"name" yaml:"name"`
	// Type classifies the produced content.
	Type Type `json:"type" yaml:"type"`
	// Model overrides the provider's default model.
	Model string `json:"model,omitempty" yaml:"model"`
	// PromptTemplate is the prompt with a "{transcript}" placeholder.
	PromptTemplate string `json:"prompt_template" yaml:"prompt_template" validate:"required"`
	// SystemPrompt is an optional system message.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt"`
	// Temperature controls randomness for this solution.
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature"`
	// MaxTokens bounds the response length. 0 means provider default.
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens"`
}

// Result is the outcome of applying one Solution to one transcript.
type Result struct {
	// ID is a unique identifier for this result.
	ID string `json:"id"`
	// TranscriptID references the analyzed transcript.
	TranscriptID string `json:"transcript_id"`
	// SolutionID and SolutionName reference the applied solution.
	SolutionID   string `json:"solution_id"`
	SolutionName string `json:"solution_name"`
	// Type mirrors the solution's type.
	Type Type `json:"type"`
	// Status reports whether the analysis completed.
	Status Status `json:"status"`
	// Content is the generated text (Markdown sections).
	Content string `json:"content"`
	// ModelUsed is the model that produced the content.
	ModelUsed string `json:"model_used"`
	// ProcessingSeconds is the wall-clock time of the LLM call.
	ProcessingSeconds float64 `json:"processing_seconds"`
	// CreatedAt records when the result was produced.
	CreatedAt time.Time `json:"created_at"`
}

// BuiltinSolutions returns the solutions shipped with the tool. Callers
// may define their own in configuration instead.
func BuiltinSolutions() []Solution {
	return []Solution{
		{
			ID:             "quick_summary",
			Name:           "Quick summary",
			Type:           TypeSummary,
			PromptTemplate: "Summarize the following meeting transcript in Markdown with sections for topic, decisions, and open points:\n\n{transcript}",
			Temperature:    0.3,
		},
		{
			ID:             "action_items",
			Name:           "Action items",
			Type:           TypeActionItems,
			PromptTemplate: "Extract every action item from the transcript below as a Markdown checklist, one line per item with the responsible speaker when identifiable:\n\n{transcript}",
			Temperature:    0.2,
		},
		{
			ID:             "keywords",
			Name:           "Keywords",
			Type:           TypeKeywords,
			PromptTemplate: "List the ten most important keywords or phrases in the transcript below, one per line:\n\n{transcript}",
			Temperature:    0.1,
		},
	}
}
