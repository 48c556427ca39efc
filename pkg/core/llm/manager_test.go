package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if cfg.ActiveProvider != "azure-openai" {
		t.Errorf("default provider = %s", cfg.ActiveProvider)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	content := `active_provider: gemini
agents:
  decision_maker:
    provider: azure-openai
    model: gpt-4.1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ActiveProvider != "gemini" {
		t.Errorf("active provider = %s", cfg.ActiveProvider)
	}
	if cfg.Agents["decision_maker"].Provider != "azure-openai" {
		t.Errorf("agent override = %+v", cfg.Agents["decision_maker"])
	}
}

func TestGetProviderResolution(t *testing.T) {
	m := NewManager(Config{
		ActiveProvider: "gemini",
		Agents: map[string]AgentConfig{
			"fraud_detector": {Provider: "azure-openai"},
			"risk_assessor":  {Provider: "unregistered"},
		},
	})

	if _, ok := m.GetProvider("fraud_detector").(*AzureOpenAIProvider); !ok {
		t.Error("per-agent override should win")
	}
	if _, ok := m.GetProvider("medical_reviewer").(*GeminiProvider); !ok {
		t.Error("global provider should apply without an override")
	}
	if _, ok := m.GetProvider("risk_assessor").(*GeminiProvider); !ok {
		t.Error("unregistered override should fall back to the global provider")
	}
}

func TestSetGlobalProvider(t *testing.T) {
	m := NewManager(Config{ActiveProvider: "azure-openai"})
	if err := m.SetGlobalProvider("gemini"); err != nil {
		t.Fatalf("SetGlobalProvider: %v", err)
	}
	if m.GetActiveProvider() != "gemini" {
		t.Errorf("active provider = %s", m.GetActiveProvider())
	}
	if err := m.SetGlobalProvider("nonexistent"); err == nil {
		t.Error("unknown provider must error")
	}
}

// Provider switches arrive over HTTP while workflows resolve providers;
// run both paths concurrently so the race detector can check the locking.
func TestConcurrentProviderSwitch(t *testing.T) {
	m := NewManager(Config{
		ActiveProvider: "azure-openai",
		Agents:         map[string]AgentConfig{"fraud_detector": {Model: "gpt-4.1"}},
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		name := "gemini"
		if i%2 == 0 {
			name = "azure-openai"
		}
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if m.GetProvider("fraud_detector") == nil {
					t.Error("GetProvider returned nil")
					return
				}
				m.GetActiveProvider()
			}
		}()
		go func(name string) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if err := m.SetGlobalProvider(name); err != nil {
					t.Errorf("SetGlobalProvider: %v", err)
					return
				}
			}
		}(name)
	}
	wg.Wait()

	switch m.GetActiveProvider() {
	case "azure-openai", "gemini":
	default:
		t.Errorf("active provider = %s", m.GetActiveProvider())
	}
}

func TestAzureGenerateResponse(t *testing.T) {
	var got chatRequest
	var gotKey, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ANALYSIS COMPLETE"}},
			},
		})
	}))
	defer srv.Close()

	p := &AzureOpenAIProvider{Client: srv.Client()}
	options := map[string]interface{}{
		"endpoint":   srv.URL,
		"api_key":    "test-key",
		"deployment": "gpt-4.1",
	}
	out, err := p.GenerateResponse(context.Background(), "case context", "system prompt", options)
	if err != nil {
		t.Fatalf("GenerateResponse: %v", err)
	}
	if out != "ANALYSIS COMPLETE" {
		t.Errorf("response = %q", out)
	}
	if gotKey != "test-key" {
		t.Errorf("api-key header = %q", gotKey)
	}
	if gotPath != "/openai/deployments/gpt-4.1/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "case context" {
		t.Errorf("messages = %+v", got.Messages)
	}
	if got.MaxTokens != 4000 || got.Temperature != 0.1 {
		t.Errorf("defaults = %d/%v", got.MaxTokens, got.Temperature)
	}
}

func TestAzureGenerateResponseMissingConfig(t *testing.T) {
	t.Setenv("AZURE_OPENAI_ENDPOINT", "")
	t.Setenv("AZURE_OPENAI_KEY", "")
	p := &AzureOpenAIProvider{}
	if _, err := p.GenerateResponse(context.Background(), "x", "y", nil); err == nil {
		t.Error("expected config error")
	}
}

func TestAzureGenerateResponseAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"429","message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := &AzureOpenAIProvider{Client: srv.Client()}
	options := map[string]interface{}{"endpoint": srv.URL, "api_key": "k"}
	if _, err := p.GenerateResponse(context.Background(), "x", "y", options); err == nil {
		t.Error("expected error for non-200 status")
	}
}
