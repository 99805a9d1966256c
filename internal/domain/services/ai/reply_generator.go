package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/pkg/logger"
)

// ReplyGenerator produces in-character agent replies to scammer messages.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, persona models.PersonaProfile, transcript []models.TranscriptEntry, message string) (string, error)
}

// GeneratorConfig holds reply generator configuration
type GeneratorConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// LLMReplyGenerator generates replies through an OpenAI-compatible
// chat completion API.
type LLMReplyGenerator struct {
	httpClient *http.Client
	logger     *logger.Logger
	config     GeneratorConfig
}

// NewLLMReplyGenerator creates a reply generator
func NewLLMReplyGenerator(cfg GeneratorConfig, log *logger.Logger) *LLMReplyGenerator {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.9 // Higher for varied, human-like responses
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 150
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	return &LLMReplyGenerator{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log.WithComponent("reply-generator"),
		config: cfg,
	}
}

// GenerateReply builds the persona prompt plus recent conversation
// context and asks the model for the next in-character message.
func (g *LLMReplyGenerator) GenerateReply(ctx context.Context, persona models.PersonaProfile, transcript []models.TranscriptEntry, message string) (string, error) {
	messages := []map[string]string{
		{"role": "system", "content": persona.SystemPrompt},
	}

	// Last 10 entries of history keep the context window small
	history := transcript
	if len(history) > 10 {
		history = history[len(history)-10:]
	}
	for _, entry := range history {
		role := "user"
		if entry.Role == models.RoleAgent {
			role = "assistant"
		}
		messages = append(messages, map[string]string{
			"role":    role,
			"content": entry.Content,
		})
	}

	messages = append(messages, map[string]string{
		"role":    "user",
		"content": message,
	})

	reqBody := map[string]interface{}{
		"model":             g.config.Model,
		"messages":          messages,
		"temperature":       g.config.Temperature,
		"max_tokens":        g.config.MaxTokens,
		"presence_penalty":  0.6,
		"frequency_penalty": 0.3,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := strings.TrimSuffix(g.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API error %d: %s", resp.StatusCode, string(body))
	}

	var completionResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &completionResp); err != nil {
		return "", err
	}

	if len(completionResp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	reply := strings.TrimSpace(completionResp.Choices[0].Message.Content)
	return addRealisticTouches(reply, persona), nil
}

// FallbackReply returns a safe in-character line for when the model
// call fails.
func FallbackReply(persona models.PersonaProfile) string {
	if len(persona.FallbackLines) > 0 {
		return persona.FallbackLines[rand.Intn(len(persona.FallbackLines))]
	}
	return "I'm sorry, can you repeat that?"
}

var typoReplacements = map[string]string{
	"the":     "teh",
	"you":     "u",
	"your":    "ur",
	"please":  "plz",
	"thanks":  "thnks",
	"receive": "recieve",
	"their":   "thier",
}

// addRealisticTouches injects persona-appropriate typos into a reply
func addRealisticTouches(text string, persona models.PersonaProfile) string {
	rate := persona.Typing.TypoRate
	if rate <= 0.02 {
		return text
	}

	words := strings.Fields(text)
	for i, word := range words {
		if rand.Float64() >= rate {
			continue
		}
		lower := strings.ToLower(strings.Trim(word, ".,!?"))
		replacement, ok := typoReplacements[lower]
		if !ok {
			continue
		}
		if word[0] >= 'A' && word[0] <= 'Z' {
			replacement = strings.ToUpper(replacement[:1]) + replacement[1:]
		}
		words[i] = strings.Replace(word, strings.Trim(word, ".,!?"), replacement, 1)
	}
	return strings.Join(words, " ")
}
