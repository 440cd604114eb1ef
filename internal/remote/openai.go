package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/pageguard/pageguard/internal/model"
)

// OpenAIClassifier prompts an OpenAI-compatible endpoint to emit
// decisions in the service wire format. It stands in for the dedicated
// service where that is not deployed; the original backend was itself a
// single LLM prompt.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// NewOpenAIClassifier creates the provider
func NewOpenAIClassifier(cfg model.ServiceConfig, log *zap.Logger) (*OpenAIClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai provider requires an API key")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" && cfg.BaseURL != model.DefaultConfig().Service.BaseURL {
		clientConfig.BaseURL = cfg.BaseURL
	}
	m := cfg.Model
	if m == "" {
		m = openai.GPT4oMini
	}
	return &OpenAIClassifier{
		client: openai.NewClientWithConfig(clientConfig),
		model:  m,
		log:    log,
	}, nil
}

const batchSystemPrompt = `You are a content-safety classifier protecting minors. ` +
	`For EACH input text, in order, emit one JSON object with fields: ` +
	`safe (bool), category (one of profanity, hate_speech, explicit_content, ` +
	`explicit_image, sexual_conversation, predatory, violent, harassment, ` +
	`self_harm, alcohol_drugs, scam, fraud, unsafe_content), confidence (0-100 int), ` +
	`title (short label), reason (one sentence). ` +
	`Respond with ONLY a JSON array, same length and order as the inputs.`

const imageSystemPrompt = `You are an image-safety classifier protecting minors. ` +
	`Decide whether the image is explicit or otherwise unsafe for a child. ` +
	`Respond with ONLY a JSON object with fields: safe (bool), category ` +
	`(explicit_image or unsafe_content), confidence (0-100 int), title, reason.`

// AnalyzeBatch classifies texts in request order
func (c *OpenAIClassifier) AnalyzeBatch(ctx context.Context, contents []string) ([]model.Decision, error) {
	if len(contents) > BatchLimit {
		return nil, fmt.Errorf("batch of %d exceeds limit %d", len(contents), BatchLimit)
	}
	payload, err := json.Marshal(contents)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: batchSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai batch: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai batch: empty response")
	}

	var decisions []model.Decision
	if err := json.Unmarshal([]byte(stripFences(resp.Choices[0].Message.Content)), &decisions); err != nil {
		return nil, fmt.Errorf("openai batch: decode decisions: %w", err)
	}
	return decisions, nil
}

// AnalyzeImage classifies a single image by URL or inline bytes
func (c *OpenAIClassifier) AnalyzeImage(ctx context.Context, req ImageRequest) (model.Decision, error) {
	imageURL := req.URL
	if req.Base64 != "" {
		imageURL = "data:image/jpeg;base64," + req.Base64
	}
	if imageURL == "" {
		return model.Decision{}, fmt.Errorf("openai image: empty request")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: imageSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Classify this image."},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURL}},
				},
			},
		},
	})
	if err != nil {
		return model.Decision{}, fmt.Errorf("openai image: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.Decision{}, fmt.Errorf("openai image: empty response")
	}

	var d model.Decision
	if err := json.Unmarshal([]byte(stripFences(resp.Choices[0].Message.Content)), &d); err != nil {
		return model.Decision{}, fmt.Errorf("openai image: decode decision: %w", err)
	}
	if !d.Safe && d.ImageContext == nil {
		d.ImageContext = &model.ImageContext{Source: model.ImageSourceNSFWModel, Confidence: d.Confidence}
	}
	return d, nil
}

// stripFences removes markdown code fences some models wrap JSON in
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if cut, ok := strings.CutPrefix(s, "```json"); ok {
		s = cut
	} else if cut, ok := strings.CutPrefix(s, "```"); ok {
		s = cut
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// NewClassifier selects the provider from configuration
func NewClassifier(cfg model.ServiceConfig, log *zap.Logger) (Classifier, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "service":
		return NewService(cfg, log), nil
	case "openai":
		return NewOpenAIClassifier(cfg, log)
	default:
		return nil, fmt.Errorf("unknown classification provider: %s (supported: service, openai)", cfg.Provider)
	}
}
