package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	pkghttp "talenttrack/pkg/http"
	"talenttrack/pkg/logger"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderGroq   Provider = "groq"
	ProviderGemini Provider = "gemini"
	ProviderNone   Provider = "none"
)

var defaultBaseURLs = map[Provider]string{
	ProviderOpenAI: "https://api.openai.com/v1",
	ProviderGroq:   "https://api.groq.com/openai/v1",
	ProviderOllama: "http://localhost:11434",
}

var log = logger.New("LLM")

// Options configures a Service.
type Options struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
	CacheTTL  time.Duration
}

// Service sends JSON-mode completion requests with temperature pinned to 0.
type Service struct {
	provider  Provider
	apiKey    string
	model     string
	baseURL   string
	maxTokens int
	client    *pkghttp.Client
	gemini    *geminiBackend
	cache     *ResponseCache
}

func NewService(ctx context.Context, opts Options) (*Service, error) {
	provider := Provider(strings.ToLower(opts.Provider))
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4000
	}

	s := &Service{
		provider:  provider,
		apiKey:    opts.APIKey,
		model:     opts.Model,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		maxTokens: opts.MaxTokens,
		client:    pkghttp.NewClient(opts.Timeout),
	}
	if s.baseURL == "" {
		s.baseURL = defaultBaseURLs[provider]
	}

	switch provider {
	case ProviderOpenAI, ProviderGroq:
		if s.apiKey == "" {
			return nil, fmt.Errorf("%s: API key is required", provider)
		}
	case ProviderOllama:
	case ProviderGemini:
		backend, err := newGeminiBackend(ctx, opts.APIKey, opts.Model, opts.MaxTokens)
		if err != nil {
			return nil, err
		}
		s.gemini = backend
	case ProviderNone, "":
		return nil, fmt.Errorf("LLM provider not configured")
	default:
		return nil, fmt.Errorf("unknown provider: %s", opts.Provider)
	}

	if opts.CacheTTL > 0 {
		s.cache = NewResponseCache(opts.CacheTTL)
	}

	return s, nil
}

// Complete sends prompt as a single user message and returns the raw completion text.
func (s *Service) Complete(ctx context.Context, prompt string) (string, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(s.cacheKey(prompt)); ok {
			log.Printf("Cache HIT (%d chars prompt)", len(prompt))
			return cached, nil
		}
	}

	startTime := time.Now()

	var response string
	var err error

	switch s.provider {
	case ProviderOpenAI, ProviderGroq:
		response, err = s.callChatCompletions(ctx, prompt)
	case ProviderOllama:
		response, err = s.callOllama(ctx, prompt)
	case ProviderGemini:
		response, err = s.gemini.complete(ctx, prompt)
	default:
		return "", fmt.Errorf("unknown provider: %s", s.provider)
	}

	elapsed := time.Since(startTime)
	if err != nil {
		log.Printf("%s request failed after %v: %v", s.provider, elapsed, err)
		return "", err
	}
	log.Printf("%s request took %v (%d chars response)", s.provider, elapsed, len(response))

	if s.cache != nil {
		s.cache.Set(s.cacheKey(prompt), response)
	}
	return response, nil
}

// Model returns the configured model identifier.
func (s *Service) Model() string {
	return s.model
}

// CleanCache drops expired cached completions.
func (s *Service) CleanCache() {
	if s.cache != nil {
		s.cache.CleanExpired()
	}
}

// Close releases provider resources.
func (s *Service) Close() error {
	if s.gemini != nil {
		return s.gemini.close()
	}
	return nil
}

func (s *Service) cacheKey(prompt string) string {
	return string(s.provider) + "|" + s.model + "|" + prompt
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// callChatCompletions talks to OpenAI-compatible APIs (OpenAI, Groq).
func (s *Service) callChatCompletions(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature:    0,
		MaxTokens:      s.maxTokens,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal %s request: %w", s.provider, err)
	}

	body, err := s.client.PostJSON(ctx, s.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + s.apiKey},
		bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", s.provider, err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode %s response: %w", s.provider, err)
	}

	if result.Error.Message != "" {
		return "", fmt.Errorf("%s error: %s", s.provider, result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", s.provider)
	}

	return result.Choices[0].Message.Content, nil
}

func (s *Service) callOllama(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":  s.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
		"options": map[string]interface{}{
			"temperature": 0,
			"num_predict": s.maxTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	body, err := s.client.PostJSON(ctx, s.baseURL+"/api/generate", nil, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("Ollama connection failed (is Ollama running?): %w", err)
	}

	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}

	if result.Error != "" {
		return "", fmt.Errorf("Ollama error: %s", result.Error)
	}

	return result.Response, nil
}
