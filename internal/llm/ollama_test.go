package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newOllamaTestClient(t *testing.T, handler http.HandlerFunc) *OllamaClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOllamaClient(&Config{
		Model:   "llama3",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, zap.NewNop().Sugar())
}

func TestOllamaGenerate(t *testing.T) {
	client := newOllamaTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "llama3" {
			t.Errorf("model = %q, want llama3", req.Model)
		}
		if req.Stream {
			t.Error("stream should be disabled")
		}
		if !strings.Contains(req.Prompt, "Pregunta:") {
			t.Errorf("prompt missing template: %q", req.Prompt)
		}

		json.NewEncoder(w).Encode(generateResponse{
			Response: "  [7, \"Q?\", null, \"A.\"]  ",
			Done:     true,
		})
	})

	raw, err := client.Generate(context.Background(), BuildPrompt("Q?"))
	if err != nil {
		t.Fatal(err)
	}
	if raw != `[7, "Q?", null, "A."]` {
		t.Errorf("raw = %q", raw)
	}
}

func TestOllamaGenerateServerError(t *testing.T) {
	client := newOllamaTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	})

	if _, err := client.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestOllamaGenerateContextCancelled(t *testing.T) {
	client := newOllamaTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := client.Generate(ctx, "p"); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
