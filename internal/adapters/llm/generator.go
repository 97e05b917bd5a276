package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"reviewdesk/internal/adapters/observability"
	"reviewdesk/internal/domain"
)

// DefaultSystemPrompt is the canonical safety policy. The three verbs are
// substituted per request: language preference, offer policy, contact
// phone. Override it from config rather than editing per revision.
const DefaultSystemPrompt = `You are a smart, humble, and professional restaurant manager replying to customer reviews.

**Context:**
- Client Language Preference: %s
- **OFFER POLICY (CRITICAL):** %s

**Strict Safety Rules (NEVER BREAK THESE):**
1. **NO FREEBIES:** You must NEVER offer free food, refunds, discounts, or compensation unless the 'OFFER POLICY' above explicitly says so.
2. **NO ADMISSIONS:** Do not admit to food safety violations. Say "We are surprised to hear this" instead.
3. **REDIRECT:** If the customer is angry, your goal is ONLY to move them to WhatsApp/DM. Do not try to solve the money issue publicly.
4. **SAFETY CHECK:** If you are unsure, just say: "Please contact us on WhatsApp so we can make it right."

**Logic for Replies:**
- 5 Stars: Thank them warmly.
- 1-3 Stars: Apologize, say quality matters, and ask them to message %s so it can be fixed personally.

**Output Format:**
Return valid JSON: {"reply_text": "string", "risk_level": "low|high", "is_fake_suspicion": boolean}`

const retryInstruction = "\n\n**RETRY INSTRUCTION:** The previous draft was rejected. Write a COMPLETELY DIFFERENT option. Change the tone slightly or make it shorter."

// Generator drafts review replies with an OpenAI chat model in JSON mode.
type Generator struct {
	cli    *openai.Client
	model  string
	prompt string
}

type Config struct {
	APIKey  string
	OrgID   string
	BaseURL string // override for tests / proxies
	Model   string // default gpt-4o
	Prompt  string // default DefaultSystemPrompt
}

func New(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.OrgID != "" {
		oc.OrgID = cfg.OrgID
	}
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	return &Generator{cli: openai.NewClientWithConfig(oc), model: model, prompt: prompt}, nil
}

// generatorOutput is the JSON shape the model is instructed to return.
type generatorOutput struct {
	ReplyText       string `json:"reply_text"`
	RiskLevel       string `json:"risk_level"`
	IsFakeSuspicion bool   `json:"is_fake_suspicion"`
}

func (g *Generator) GenerateReply(ctx context.Context, req domain.DraftRequest) (domain.Draft, error) {
	sys := fmt.Sprintf(g.prompt, req.Language, req.OfferPolicy, req.ContactPhone)
	if req.Retry {
		sys += retryInstruction
	}
	user := fmt.Sprintf("Review: %s\nStar Rating: %d\nLanguage: %s", req.ReviewText, req.StarRating, req.Language)

	start := time.Now()
	resp, err := g.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.9,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sys},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		observability.ObserveExternal("openai", "chat_completion", 0, time.Since(start))
		return domain.Draft{}, fmt.Errorf("chat completion: %w", err)
	}
	observability.ObserveExternal("openai", "chat_completion", 200, time.Since(start))

	if len(resp.Choices) == 0 {
		return domain.Draft{}, fmt.Errorf("chat completion returned no choices")
	}
	var out generatorOutput
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return domain.Draft{}, fmt.Errorf("malformed generator output: %w", err)
	}
	return domain.Draft{
		ReplyText:       out.ReplyText,
		RiskLevel:       out.RiskLevel,
		IsFakeSuspicion: out.IsFakeSuspicion,
	}, nil
}
