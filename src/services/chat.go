package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"n8n-optimizer/src/config"
)

var (
	ErrChatAuth      = errors.New("authentication failed")
	ErrChatCredits   = errors.New("insufficient credits")
	ErrChatRateLimit = errors.New("rate limit exceeded")
	ErrChatProvider  = errors.New("provider error")
	ErrChatTimeout   = errors.New("request timeout")
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SystemPrompt opens every conversation sent to the provider
const SystemPrompt = "You are an assistant that helps people design, debug and optimize n8n workflows. Answer concisely."

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Error   bool   `json:"error,omitempty"`
}

// Completer produces the assistant reply for a conversation
type Completer interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// ChatService calls an OpenRouter compatible chat completions endpoint.
// Failures are reported once; there are no retries.
type ChatService struct {
	cfg    config.ChatConfig
	client *http.Client
}

func NewChatService(cfg config.ChatConfig) *ChatService {
	return &ChatService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string              `json:"model"`
	Messages []completionMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *ChatService) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if s.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: missing API key", ErrChatAuth)
	}

	payload := completionRequest{Model: s.cfg.Model}
	for _, message := range messages {
		payload.Messages = append(payload.Messages, completionMessage{Role: message.Role, Content: message.Content})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", fmt.Errorf("%w: %v", ErrChatTimeout, err)
		}
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", fmt.Errorf("%w: %v", ErrChatTimeout, err)
		}
		return "", fmt.Errorf("read chat response: %w", err)
	}

	var decoded completionResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := strings.TrimSpace(string(raw))
		if decodeErr == nil && decoded.Error != nil && decoded.Error.Message != "" {
			message = decoded.Error.Message
		}
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "", fmt.Errorf("%w: %s", ErrChatAuth, message)
		case http.StatusPaymentRequired:
			return "", fmt.Errorf("%w: %s", ErrChatCredits, message)
		case http.StatusTooManyRequests:
			return "", fmt.Errorf("%w: %s", ErrChatRateLimit, message)
		default:
			return "", fmt.Errorf("%w (status %d): %s", ErrChatProvider, resp.StatusCode, message)
		}
	}

	if decodeErr != nil {
		return "", fmt.Errorf("decode chat response: %w", decodeErr)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", ErrChatProvider)
	}
	return decoded.Choices[0].Message.Content, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// chatErrorCopy maps error text fragments to the message shown to the user.
// Order matters: the first matching fragment wins.
var chatErrorCopy = []struct {
	fragment string
	message  string
}{
	{"rate limit", "The assistant is receiving too many requests right now. Please wait a moment and try again."},
	{"authentication", "The assistant is not configured correctly (authentication failed). Please contact support."},
	{"credits", "The assistant has run out of credits. Please try again later."},
	{"provider", "The AI provider returned an error. Please try again in a few minutes."},
	{"timeout", "The assistant took too long to answer. Please try again."},
}

// ClassifyError turns a chat failure into user-facing copy
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	text := strings.ToLower(err.Error())
	for _, entry := range chatErrorCopy {
		if strings.Contains(text, entry.fragment) {
			return entry.message
		}
	}
	return "Error: " + err.Error()
}

const (
	chatKeyPrefix  = "chat:"
	chatHistoryTTL = 24 * time.Hour
	maxChatHistory = 50
)

// ChatSession is one conversation whose history lives in a KeyValueStore.
// History is loaded on construction and written back after every change.
type ChatSession struct {
	id        string
	store     KeyValueStore
	completer Completer
	logger    *slog.Logger

	mu      sync.Mutex
	history []ChatMessage
}

func NewChatSession(ctx context.Context, id string, store KeyValueStore, completer Completer) *ChatSession {
	s := &ChatSession{
		id:        id,
		store:     store,
		completer: completer,
		logger:    slog.With("chat_session", id),
	}
	s.hydrate(ctx)
	return s
}

func (s *ChatSession) key() string {
	return chatKeyPrefix + s.id
}

func (s *ChatSession) hydrate(ctx context.Context) {
	var history []ChatMessage
	found, err := s.store.Get(ctx, s.key(), &history)
	if err != nil {
		s.logger.Warn("Failed to load chat history, starting empty", "error", err)
		return
	}
	if found {
		s.history = history
	}
}

// flush must be called with mu held
func (s *ChatSession) flush(ctx context.Context) {
	if len(s.history) > maxChatHistory {
		s.history = append([]ChatMessage(nil), s.history[len(s.history)-maxChatHistory:]...)
	}
	if err := s.store.Set(ctx, s.key(), s.history, chatHistoryTTL); err != nil {
		s.logger.Warn("Failed to persist chat history", "error", err)
	}
}

// History returns a copy of the conversation so far
func (s *ChatSession) History() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatMessage{}, s.history...)
}

// Send records the user message, asks the completer and records the reply.
// A failed completion is recorded and returned as an assistant message with
// Error set; it is never returned as an error.
func (s *ChatSession) Send(ctx context.Context, text string) ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, ChatMessage{Role: RoleUser, Content: text})
	s.flush(ctx)

	conversation := []ChatMessage{{Role: RoleSystem, Content: SystemPrompt}}
	for _, message := range s.history {
		if !message.Error {
			conversation = append(conversation, message)
		}
	}

	var reply ChatMessage
	content, err := s.completer.Complete(ctx, conversation)
	if err != nil {
		s.logger.Error("Chat completion failed", "error", err)
		reply = ChatMessage{Role: RoleAssistant, Content: ClassifyError(err), Error: true}
	} else {
		reply = ChatMessage{Role: RoleAssistant, Content: content}
	}

	s.history = append(s.history, reply)
	s.flush(ctx)
	return reply
}

// Reset clears the conversation
func (s *ChatSession) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	if err := s.store.Delete(ctx, s.key()); err != nil {
		s.logger.Warn("Failed to delete chat history", "error", err)
	}
}
