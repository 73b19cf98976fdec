package llmclient

import "testing"

func TestBuildUnknownProvider(t *testing.T) {
	_, err := Build(Config{Provider: "carrier-pigeon"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestBuildAnthropic(t *testing.T) {
	p, err := Build(Config{Provider: "anthropic", Anthropic: struct {
		APIKey string
		Model  string
	}{APIKey: "k", Model: "claude-3-5-haiku-latest"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
}
