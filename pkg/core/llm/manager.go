package llm

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Config is the provider-selection configuration, usually loaded from
// agents.yaml. Agents may override the global provider individually.
type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

// AgentConfig is the per-agent section of the provider configuration.
type AgentConfig struct {
	Provider    string `yaml:"provider"` // Optional override
	Model       string `yaml:"model"`    // Optional model override
	Description string `yaml:"description"`
}

// LoadConfig reads a yaml provider configuration from path. A missing file
// is not an error; the default configuration is returned instead.
func LoadConfig(path string) (Config, error) {
	cfg := Config{ActiveProvider: "azure-openai"}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read provider config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse provider config: %w", err)
	}
	if cfg.ActiveProvider == "" {
		cfg.ActiveProvider = "azure-openai"
	}
	return cfg, nil
}

// Manager resolves the provider each agent should use. The mutex guards
// config: the global provider can be switched over HTTP while workflows
// resolve providers concurrently. The providers map is never mutated.
type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]Provider{
			"azure-openai": &AzureOpenAIProvider{},
			"gemini":       &GeminiProvider{},
		},
	}
}

// ProviderNames lists the registered provider keys.
func (m *Manager) ProviderNames() []string {
	names := make([]string, 0, len(m.providers))
	for k := range m.providers {
		names = append(names, k)
	}
	return names
}

// GetProvider resolves the provider for an agent: the per-agent override
// wins, then the global active provider, then azure-openai.
func (m *Manager) GetProvider(agentKey string) Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if agentConfig, ok := m.config.Agents[agentKey]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p
		}
		log.Warn().Str("agent", agentKey).Str("provider", agentConfig.Provider).
			Msg("configured provider not registered, falling back")
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return m.providers["azure-openai"]
}

// ExecutePrompt resolves the agent's provider, adapts the system prompt and
// issues the generation call.
func (m *Manager) ExecutePrompt(ctx context.Context, agentKey string, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(agentKey)
	m.mu.RLock()
	agentConfig, ok := m.config.Agents[agentKey]
	m.mu.RUnlock()
	if ok && agentConfig.Model != "" {
		if _, set := options["model"]; !set {
			if options == nil {
				options = map[string]interface{}{}
			}
			options["model"] = agentConfig.Model
		}
	}
	adapted := provider.AdaptInstructions(systemPrompt)
	return provider.GenerateResponse(ctx, prompt, adapted, options)
}

func (m *Manager) SetGlobalProvider(name string) error {
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	m.mu.Lock()
	m.config.ActiveProvider = name
	m.mu.Unlock()
	log.Info().Str("provider", name).Msg("global provider switched")
	return nil
}

func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}
