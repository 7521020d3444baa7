package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// LLMClient talks to an OpenAI-compatible chat completions endpoint.
type LLMClient struct {
	baseURL string
	token   string
	model   string
	client  *http.Client
}

// NewLLMClient creates a client for the configured endpoint. Every call
// carries the client timeout plus whatever deadline the caller's context has.
func NewLLMClient(baseURL, token, model string) *LLMClient {
	return &LLMClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		model:   model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model     string        `json:"model"`
	Messages  []ChatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// MemeDraft is a parsed generation response.
type MemeDraft struct {
	Text   string   `json:"text"`
	Format string   `json:"format"`
	Topics []string `json:"topics"`
}

// MemeEvaluation is the model's self-assessment of a draft, 0-10 per axis.
type MemeEvaluation struct {
	HumorScore        float64 `json:"humor_score"`
	AuthenticityScore float64 `json:"authenticity_score"`
	EngagementScore   float64 `json:"engagement_score"`
}

// memePersona teaches the model the register the account writes in.
const memePersona = `You are an expert in internet meme culture, focused on post-ironic humor.

Principles: post-irony (sincerity and mockery blend), absurdism, meta-humor,
layered references, format subversion, brevity (short, punchy, often lowercase),
and cultural awareness (current events, internet micro-cultures, relatability,
existential dread presented humorously). Do not sound like a brand trying to be
relatable. Forced memes die quickly.`

// GenerateMeme asks the model for one candidate post built on the given
// context. Any transport failure or unusable response comes back as a
// *GenerationError; there is no internal retry.
func (c *LLMClient) GenerateMeme(ctx context.Context, trendContext, ironyLevel string) (*MemeDraft, error) {
	userPrompt := fmt.Sprintf(`Generate a short social media post for the following context:

CONTEXT: %s

REQUIREMENTS:
- Irony level: %s
- Maximum length: 280 characters
- Must feel native to internet culture, not corporate

Return JSON: {"text": "the post", "format": "meme format used (if any)", "topics": ["topic1", "topic2"]}`, trendContext, ironyLevel)

	content, err := c.chat(ctx, []ChatMessage{
		{Role: "system", Content: memePersona},
		{Role: "user", Content: userPrompt},
	}, 1024)
	if err != nil {
		return nil, &GenerationError{Op: "generate", Err: err}
	}

	draft := &MemeDraft{}
	if err := json.Unmarshal(extractJSON(content), draft); err != nil {
		// Models do not always honor the JSON contract. Fall back to the raw
		// text rather than discarding a usable draft.
		draft = &MemeDraft{Text: strings.TrimSpace(content)}
	}
	if strings.TrimSpace(draft.Text) == "" {
		return nil, &GenerationError{Op: "generate", Err: fmt.Errorf("model returned empty text")}
	}
	return draft, nil
}

// EvaluateMeme asks the same model to score a draft along the three quality
// axes. Callers substitute neutral midpoints on failure.
func (c *LLMClient) EvaluateMeme(ctx context.Context, text string) (*MemeEvaluation, error) {
	prompt := fmt.Sprintf(`Evaluate this post for quality:

POST: %q

Rate humor, authenticity (feels native to internet culture?), and potential
engagement, each 0-10.

Return JSON: {"humor_score": 0, "authenticity_score": 0, "engagement_score": 0}`, text)

	content, err := c.chat(ctx, []ChatMessage{{Role: "user", Content: prompt}}, 512)
	if err != nil {
		return nil, &GenerationError{Op: "evaluate", Err: err}
	}

	eval := &MemeEvaluation{}
	if err := json.Unmarshal(extractJSON(content), eval); err != nil {
		return nil, &GenerationError{Op: "evaluate", Err: fmt.Errorf("unparseable evaluation: %w", err)}
	}
	return eval, nil
}

func (c *LLMClient) chat(ctx context.Context, messages []ChatMessage, maxTokens int) (string, error) {
	payload, err := json.Marshal(ChatRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("LLM API returned status %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("llm api status %d", resp.StatusCode)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	return chatResp.Choices[0].Message.Content, nil
}

// extractJSON pulls the first {...} block out of a model reply, tolerating
// prose or code fences around it.
func extractJSON(content string) []byte {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return []byte(content)
	}
	return []byte(content[start : end+1])
}
