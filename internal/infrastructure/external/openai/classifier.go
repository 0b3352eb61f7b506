package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Categories offered to the model
var Categories = []string{
	entity.CategorySales,
	entity.CategoryPayroll,
	entity.CategorySuppliers,
	entity.CategoryTaxes,
	entity.CategoryRent,
	entity.CategoryUtilities,
	entity.CategoryOther,
}

// chatCompleter is the part of *openai.Client used here
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Classifier implements port.EntryClassifier using OpenAI
type Classifier struct {
	client  chatCompleter
	model   string
	prompts *PromptConfig
	logger  *zap.Logger
}

// NewClassifier creates a new OpenAI entry classifier
func NewClassifier(apiKey, model string, prompts *PromptConfig, logger *zap.Logger) *Classifier {
	return newClassifier(openai.NewClient(apiKey), model, prompts, logger)
}

func newClassifier(client chatCompleter, model string, prompts *PromptConfig, logger *zap.Logger) *Classifier {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Classifier{
		client:  client,
		model:   model,
		prompts: prompts,
		logger:  logger,
	}
}

type promptData struct {
	Description string
	Kind        entity.EntryKind
	Value       float64
	Categories  []string
}

type classificationResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Classify asks the model for the category of an entry
func (c *Classifier) Classify(ctx context.Context, e entity.Entry) (*port.Classification, error) {
	c.logger.Debug("Classifying entry", zap.String("entry_id", e.ID))

	prompt, err := renderTemplate(c.prompts.Classification.UserTemplate, promptData{
		Description: e.Description,
		Kind:        e.Kind,
		Value:       e.Amount(),
		Categories:  Categories,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.prompts.Classification.Temperature,
		MaxTokens:   c.prompts.Classification.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.prompts.Classification.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		c.logger.Error("OpenAI API call failed", zap.Error(err))
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	result, err := parseClassification(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.Error("Failed to parse OpenAI response",
			zap.Error(err),
			zap.String("content", resp.Choices[0].Message.Content))
		return nil, err
	}

	c.logger.Info("Entry classified by model",
		zap.String("entry_id", e.ID),
		zap.String("category", result.Category),
		zap.Float64("confidence", result.Confidence))

	return result, nil
}

// parseClassification decodes the model answer, tolerating text around the JSON object
func parseClassification(content string) (*port.Classification, error) {
	var parsed classificationResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		jsonStr := extractJSON(content)
		if jsonStr == "" {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
	}

	category, ok := canonicalCategory(parsed.Category)
	if !ok {
		return nil, fmt.Errorf("model returned unknown category %q", parsed.Category)
	}

	confidence := parsed.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &port.Classification{
		Category:   category,
		Confidence: confidence,
		Reasoning:  parsed.Reasoning,
	}, nil
}

func canonicalCategory(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// extractJSON returns the outermost {...} span of content
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

// Verify interface compliance
var _ port.EntryClassifier = (*Classifier)(nil)
