package openai

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCompleter struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.content}},
		},
	}, nil
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		want     string
		wantConf float64
		wantErr  bool
	}{
		{name: "plain json", content: `{"category": "Aluguel", "confidence": 0.93, "reasoning": "rent"}`, want: entity.CategoryRent, wantConf: 0.93},
		{name: "fenced json", content: "```json\n{\"category\": \"impostos e tributos\", \"confidence\": 0.8}\n```", want: entity.CategoryTaxes, wantConf: 0.8},
		{name: "confidence clamped", content: `{"category": "Vendas", "confidence": 7}`, want: entity.CategorySales, wantConf: 1},
		{name: "unknown category", content: `{"category": "Marketing", "confidence": 0.9}`, wantErr: true},
		{name: "not json", content: "I think it is rent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseClassification(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, tt.wantConf, got.Confidence)
		})
	}
}

func TestClassifier_Classify(t *testing.T) {
	fake := &fakeCompleter{content: `{"category": "Utilidades", "confidence": 0.88, "reasoning": "energy bill"}`}
	c := newClassifier(fake, "gpt-4o-mini", nil, zap.NewNop())

	v := 320.5
	got, err := c.Classify(context.Background(), entity.Entry{
		ID:          "e1",
		Description: "Conta de luz março",
		Kind:        entity.EntryKindExpense,
		Value:       &v,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryUtilities, got.Category)
	assert.Equal(t, "energy bill", got.Reasoning)

	assert.Equal(t, "gpt-4o-mini", fake.lastReq.Model)
	require.Len(t, fake.lastReq.Messages, 2)
	prompt := fake.lastReq.Messages[1].Content
	assert.Contains(t, prompt, "Conta de luz março")
	assert.Contains(t, prompt, "Value: 320.50")
	assert.Contains(t, prompt, "- Folha de Pagamento")
}

func TestClassifier_ClassifyAPIError(t *testing.T) {
	errAPI := errors.New("rate limited")
	c := newClassifier(&fakeCompleter{err: errAPI}, "gpt-4o-mini", nil, zap.NewNop())

	_, err := c.Classify(context.Background(), entity.Entry{ID: "e1", Description: "Venda"})
	assert.ErrorIs(t, err, errAPI)
}

func TestLoadPrompts_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("classification:\n  temperature: 0.5\n  system: custom\n"), 0o600))

	prompts, err := LoadPrompts(path)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), prompts.Classification.Temperature)
	assert.Equal(t, "custom", prompts.Classification.System)
	assert.Equal(t, defaultUserTemplate, prompts.Classification.UserTemplate)
	assert.Equal(t, 300, prompts.Classification.MaxTokens)

	_, err = LoadPrompts(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
