package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"microblogTTS/internal/apperror"
)

const enhancePrompt = `You prepare social media posts for text-to-speech narration.
Insert pauses as <break time="x.xs" /> tags where a speaker would naturally pause
(between 0.3s and 1.5s). Do not change, add or remove any words.
Return only the resulting text.`

// TextEnhancer rewrites post text into narration-ready text.
type TextEnhancer interface {
	Enhance(ctx context.Context, text, instructions string) (string, error)
}

// ChatEnhancer calls an OpenAI-compatible chat completions endpoint.
type ChatEnhancer struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewChatEnhancer(baseURL, apiKey, model string, httpClient *http.Client) *ChatEnhancer {
	return &ChatEnhancer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *ChatEnhancer) Enhance(ctx context.Context, text, instructions string) (string, error) {
	system := enhancePrompt
	if instructions = strings.TrimSpace(instructions); instructions != "" {
		system += "\nAdditional narration guidance from the author: " + instructions
	}

	payload := map[string]any{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: text},
		},
		"temperature": 0.3,
	}

	resp, err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.apiKey}, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "openai", "/chat/completions"); err != nil {
		return "", err
	}

	var result struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperror.Upstream("openai response unreadable", fmt.Errorf("openai /chat/completions: decode: %w", err))
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", apperror.Upstream("openai returned no text", nil)
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
