package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skillsenselab/audio2txt/llm"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "gemma2:9b" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Stream {
			t.Error("Complete must not stream")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:           "gemma2:9b",
			Message:         ollamaChatMessage{Role: "assistant", Content: "## 摘要\n預算討論"},
			Done:            true,
			PromptEvalCount: 120,
			EvalCount:       30,
		})
	}))
	defer srv.Close()

	p := NewProvider(Config{BaseURL: srv.URL})
	resp, err := p.Complete(context.Background(), llm.CompletionRequest{
		SystemPrompt: "You summarize meeting transcripts.",
		Messages:     []llm.Message{{Role: "user", Content: "summarize this"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "## 摘要\n預算討論" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 150 {
		t.Errorf("TotalTokens = %d, want 150", resp.Usage.TotalTokens)
	}
}

func TestComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewProvider(Config{BaseURL: srv.URL})
	if _, err := p.Complete(context.Background(), llm.CompletionRequest{}); err == nil {
		t.Error("Complete() should surface server errors")
	}
}

func TestStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			t.Error("Stream must request streaming")
		}
		enc := json.NewEncoder(w)
		enc.Encode(ollamaChatResponse{Message: ollamaChatMessage{Content: "hel"}})
		enc.Encode(ollamaChatResponse{Message: ollamaChatMessage{Content: "lo"}, Done: true})
	}))
	defer srv.Close()

	p := NewProvider(Config{BaseURL: srv.URL})
	ch, err := p.Stream(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	var content string
	var done bool
	for chunk := range ch {
		if chunk.Err != nil {
			t.Fatalf("chunk error: %v", chunk.Err)
		}
		content += chunk.Content
		done = chunk.Done
	}
	if content != "hello" {
		t.Errorf("streamed content = %q", content)
	}
	if !done {
		t.Error("final chunk should carry Done")
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewProvider(Config{BaseURL: srv.URL})
	if !p.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false, want true")
	}
}
