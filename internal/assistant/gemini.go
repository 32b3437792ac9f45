package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/noah-isme/backend-vlyx/internal/obs"
	"github.com/noah-isme/backend-vlyx/internal/resilience"
)

// ErrNoCandidate is returned when the model answered without any text.
var ErrNoCandidate = errors.New("assistant: completion contained no text")

// GeminiClient calls the generateContent REST endpoint.
type GeminiClient struct {
	HTTP            resilience.HTTPClient
	BaseURL         string
	Model           string
	APIKey          string
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
}

// NewGeminiClient returns a client with the default generation settings.
func NewGeminiClient(client resilience.HTTPClient, baseURL, model, apiKey string) *GeminiClient {
	return &GeminiClient{
		HTTP:            client,
		BaseURL:         strings.TrimRight(baseURL, "/"),
		Model:           model,
		APIKey:          apiKey,
		Temperature:     0.7,
		TopP:            0.95,
		MaxOutputTokens: 1000,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate implements Generator. History turns are sent first; the instructions are prefixed to
// the final user message.
func (g *GeminiClient) Generate(ctx context.Context, p Prompt) (string, error) {
	start := time.Now()
	text, err := g.generate(ctx, p)
	if obs.AssistantUpstreamLatency != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		obs.AssistantUpstreamLatency.WithLabelValues(result).Observe(obs.DurationMillis(time.Since(start)))
	}
	return text, err
}

func (g *GeminiClient) generate(ctx context.Context, p Prompt) (string, error) {
	body, err := json.Marshal(g.request(p))
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.BaseURL, g.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	resp, err := g.HTTP.Do(ctx, req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", &resilience.StatusError{Target: g.HTTP.Breaker.Target(), StatusCode: resp.StatusCode}
	}

	var out generateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("assistant: decode completion: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoCandidate
	}
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrNoCandidate
	}
	return text, nil
}

func (g *GeminiClient) request(p Prompt) generateRequest {
	contents := make([]geminiContent, 0, len(p.History)+1)
	for _, m := range p.History {
		role := "user"
		if m.Role != "user" {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	text := p.Message
	if p.Instructions != "" {
		text = p.Instructions + "\n\nUser message: " + p.Message
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: text}}})
	return generateRequest{
		Contents: contents,
		GenerationConfig: generationConfig{
			Temperature:     g.Temperature,
			TopP:            g.TopP,
			MaxOutputTokens: g.MaxOutputTokens,
		},
	}
}
