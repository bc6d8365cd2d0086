package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateQuestions(t *testing.T) {
	var gotAuth, gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		gotPrompt = req.Messages[0].Content

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Question: A?\n1) yes\nAnswer: 1\n"}},
			},
		})
	}))
	defer server.Close()

	client := New("sk-test", server.URL, "")
	text, err := client.GenerateQuestions(context.Background(), "geography")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(text, "Question: A?") {
		t.Fatalf("unexpected completion text: %q", text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if !strings.Contains(gotPrompt, `"geography"`) {
		t.Fatalf("prompt missing subject: %q", gotPrompt)
	}
}

func TestGenerateQuestionsRequiresKey(t *testing.T) {
	client := New("", "", "")
	if _, err := client.GenerateQuestions(context.Background(), "anything"); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestGenerateQuestionsSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New("sk-test", server.URL, "")
	if _, err := client.GenerateQuestions(context.Background(), "anything"); err == nil {
		t.Fatal("expected error from non-2xx status")
	}
}
