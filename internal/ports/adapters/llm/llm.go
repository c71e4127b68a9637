// Package llm generates clip titles and cover text through an
// OpenAI-compatible chat completion API.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/forPelevin/dmcut/internal/types"
)

const (
	DefaultModel   = "deepseek-ai/DeepSeek-V3.1-Terminus"
	defaultTimeout = 60 * time.Second
)

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	AllowedHosts []string
	Timeout      time.Duration
	MaxTokens    int
	Temperature  float32
	HTTPClient   *http.Client
}

type Adapter struct {
	cli     *openai.Client
	key     string
	model   string
	timeout time.Duration
	tokens  int
	temp    float32
}

func New(cfg Config) (*Adapter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: api key is required (DMCUT_LLM_API_KEY)")
	}
	if err := ValidateBaseURL(cfg.BaseURL, cfg.AllowedHosts); err != nil {
		return nil, err
	}
	cc := openai.DefaultConfig(cfg.APIKey)
	cc.BaseURL = normalizeBaseURL(cfg.BaseURL)
	if cfg.HTTPClient != nil {
		cc.HTTPClient = cfg.HTTPClient
	}
	a := &Adapter{
		cli:     openai.NewClientWithConfig(cc),
		key:     cfg.APIKey,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		tokens:  cfg.MaxTokens,
		temp:    cfg.Temperature,
	}
	if a.model == "" {
		a.model = DefaultModel
	}
	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}
	if a.tokens <= 0 {
		a.tokens = 600
	}
	if a.temp == 0 {
		a.temp = 0.7
	}
	return a, nil
}

func (a *Adapter) Generate(ctx context.Context, req types.MetadataRequest) (types.ClipMeta, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return types.ClipMeta{}, fmt.Errorf("build prompt: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.cli.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   a.tokens,
		Temperature: a.temp,
	})
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return types.ClipMeta{}, fmt.Errorf("llm timeout after %s (model=%s)", a.timeout, a.model)
		}
		return types.ClipMeta{}, fmt.Errorf("llm request: %s", truncate(redactSecrets(err.Error(), a.key), 400))
	}
	if len(resp.Choices) == 0 {
		return types.ClipMeta{}, errors.New("llm: response has no choices")
	}
	return parseMeta(resp.Choices[0].Message.Content)
}

func parseMeta(content string) (types.ClipMeta, error) {
	clean, err := extractJSONObject(content)
	if err != nil {
		return types.ClipMeta{}, err
	}
	var meta types.ClipMeta
	if err := json.Unmarshal([]byte(clean), &meta); err != nil {
		return types.ClipMeta{}, fmt.Errorf("llm: decode metadata: %w", err)
	}
	meta.Title = strings.TrimSpace(meta.Title)
	if meta.Title == "" {
		return types.ClipMeta{}, errors.New("llm: metadata has no title")
	}
	return meta, nil
}

func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("llm: empty content")
	}

	// Strip markdown code fences.
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", fmt.Errorf("llm: could not locate JSON object in: %q", truncate(t, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
