package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"

	"ecofood/config"
)

// ConfigError indicates the generator cannot run because of missing
// configuration, e.g. no API key. It is fatal and never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "gemini not configured: " + e.Reason
}

// TextGenerator is the contract the planning tools depend on.
// Prompt in, raw text plus model name out, or a failure.
type TextGenerator interface {
	Generate(prompt string) (*GenerateResponse, error)
}

// GenerateResponse holds the raw model output
type GenerateResponse struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// GeminiClient handles communication with the Gemini generateContent API
type GeminiClient struct {
	httpClient *http.Client
}

// NewGeminiClient creates a new Gemini API client
func NewGeminiClient() *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{},
	}
}

// generateContentRequest is the wire shape of a generateContent call
type generateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// generateContentResponse is the subset of the response we consume
type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends a prompt to Gemini and returns the raw text response
func (c *GeminiClient) Generate(prompt string) (*GenerateResponse, error) {
	cfg := config.Get()
	if cfg.GeminiAPIKey == "" {
		return nil, &ConfigError{Reason: "GEMINI_API_KEY environment variable is missing"}
	}

	requestBody, err := json.Marshal(generateContentRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return nil, serr.Wrap(err, "failed to marshal request")
	}

	apiURL := fmt.Sprintf("%s/%s:generateContent", cfg.GeminiAPIURL, cfg.GeminiModel)

	req, err := http.NewRequest("POST", apiURL, bytes.NewReader(requestBody))
	if err != nil {
		return nil, serr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", cfg.GeminiAPIKey)

	logger.Info("Gemini request", "model", cfg.GeminiModel, "prompt_len", fmt.Sprintf("%d", len(prompt)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, serr.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, serr.Wrap(err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, serr.New(fmt.Sprintf("Gemini API error: %s - %s", resp.Status, string(body)))
	}

	var response generateContentResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, serr.Wrap(err, "failed to parse response")
	}

	var parts []string
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				parts = append(parts, part.Text)
			}
		}
	}
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return nil, serr.New("Gemini returned an empty response")
	}

	return &GenerateResponse{Text: text, Model: cfg.GeminiModel}, nil
}
