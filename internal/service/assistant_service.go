package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Replies returned instead of model output when the assistant cannot answer.
const (
	AssistantUnavailableReply = "AI Service is not initialized or API Key is missing."
	AssistantErrorReply       = "Sorry, I encountered an error connecting to the AI service."
	AssistantEmptyReply       = "I'm sorry, I couldn't generate a response."

	DefaultAssistantPrompt = "You are a helpful and professional IT tutor assistant for first-year students."
)

type assistantRecorder interface {
	RecordAssistantReply(outcome string)
}

// AssistantConfig points the assistant at a Gemini-compatible generateContent endpoint.
type AssistantConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	Timeout      time.Duration
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type chatSession struct {
	systemInstruction string
	history           []geminiContent
}

// AssistantService is a study assistant backed by one shared chat conversation.
type AssistantService struct {
	cfg        AssistantConfig
	httpClient *http.Client
	metrics    assistantRecorder
	logger     *zap.Logger

	mu   sync.Mutex
	chat *chatSession
}

// NewAssistantService constructs the assistant. Without an API key every reply is the unavailable fallback.
func NewAssistantService(cfg AssistantConfig, httpClient *http.Client, metrics assistantRecorder, logger *zap.Logger) *AssistantService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultAssistantPrompt
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{cfg: cfg, httpClient: httpClient, metrics: metrics, logger: logger}
}

// Initialize starts a fresh conversation. An empty prompt uses the configured default.
// It is a no-op when no API key is configured.
func (s *AssistantService) Initialize(_ context.Context, systemPrompt string) {
	if s.cfg.APIKey == "" {
		return
	}
	prompt := strings.TrimSpace(systemPrompt)
	if prompt == "" {
		prompt = s.cfg.SystemPrompt
	}
	s.mu.Lock()
	s.chat = &chatSession{systemInstruction: prompt}
	s.mu.Unlock()
}

// Ready reports whether a conversation has been initialised.
func (s *AssistantService) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.APIKey != "" && s.chat != nil
}

// SendMessage sends text within the current conversation and returns the reply
// or one of the fallback replies. It never fails.
func (s *AssistantService) SendMessage(ctx context.Context, text string) string {
	s.mu.Lock()
	chat := s.chat
	var history []geminiContent
	var instruction string
	if chat != nil {
		history = append(history, chat.history...)
		instruction = chat.systemInstruction
	}
	s.mu.Unlock()

	if s.cfg.APIKey == "" || chat == nil {
		s.record("unavailable")
		return AssistantUnavailableReply
	}

	userTurn := geminiContent{Role: "user", Parts: []geminiPart{{Text: text}}}
	reply, err := s.generate(ctx, instruction, append(history, userTurn))
	if err != nil {
		s.logger.Error("assistant request failed", zap.Error(err))
		s.record("error")
		return AssistantErrorReply
	}

	if reply == "" {
		s.record("empty")
		return AssistantEmptyReply
	}

	s.mu.Lock()
	if s.chat == chat {
		chat.history = append(chat.history, userTurn, geminiContent{Role: "model", Parts: []geminiPart{{Text: reply}}})
	}
	s.mu.Unlock()

	s.record("ok")
	return reply
}

func (s *AssistantService) generate(ctx context.Context, instruction string, contents []geminiContent) (string, error) {
	payload := generateRequest{Contents: contents}
	if instruction != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: instruction}}}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", s.cfg.BaseURL, url.PathEscape(s.cfg.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call generateContent: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("generateContent status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

func (s *AssistantService) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordAssistantReply(outcome)
	}
}
