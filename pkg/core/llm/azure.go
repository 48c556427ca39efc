package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// AzureOpenAIProvider calls an Azure OpenAI chat-completions deployment.
// Endpoint, key and deployment come from the environment and can be
// overridden per call through the options map.
type AzureOpenAIProvider struct {
	Client *http.Client
}

var _ Provider = (*AzureOpenAIProvider)(nil)

const defaultAPIVersion = "2025-01-01-preview"

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *AzureOpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	endpoint := StringOption(options, "endpoint", os.Getenv("AZURE_OPENAI_ENDPOINT"))
	apiKey := StringOption(options, "api_key", os.Getenv("AZURE_OPENAI_KEY"))
	if endpoint == "" || apiKey == "" {
		return "", fmt.Errorf("AZURE_OPENAI_CONFIG_MISSING: set AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_KEY env vars")
	}

	deployment := StringOption(options, "deployment", os.Getenv("AZURE_OPENAI_DEPLOYMENT"))
	if deployment == "" {
		deployment = StringOption(options, "model", "gpt-4.1")
	}
	apiVersion := StringOption(options, "api_version", os.Getenv("AZURE_OPENAI_VERSION"))
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(endpoint, "/"), deployment, apiVersion)

	reqBody := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   IntOption(options, "max_tokens", 4000),
		Temperature: FloatOption(options, "temperature", 0.1),
		TopP:        1.0,
		Stream:      false,
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("AZURE_MARSHAL_ERROR: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("AZURE_REQ_CREATE_ERROR: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", apiKey)

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("AZURE_API_CALL_ERROR: %v", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("AZURE_READ_BODY_ERROR: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AZURE_API_ERROR: status=%d body=%s", res.StatusCode, string(body))
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("AZURE_UNMARSHAL_ERROR: %v", err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("AZURE_API_ERROR: code=%s message=%s", response.Error.Code, response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("AZURE_NO_CHOICES: %s", string(body))
	}
	return response.Choices[0].Message.Content, nil
}

func (p *AzureOpenAIProvider) AdaptInstructions(raw string) string {
	return raw
}
