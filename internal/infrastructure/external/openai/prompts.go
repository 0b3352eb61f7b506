package openai

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

// PromptConfig holds the prompts and model parameters used by the classifier
type PromptConfig struct {
	Classification struct {
		Temperature  float32 `yaml:"temperature"`
		MaxTokens    int     `yaml:"max_tokens"`
		System       string  `yaml:"system"`
		UserTemplate string  `yaml:"user_template"`
	} `yaml:"classification"`
}

const defaultSystemPrompt = `You are an accounting assistant for a Brazilian accounting firm. ` +
	`You classify accounting entries (lançamentos) into one category from a fixed list. ` +
	`Always respond with a single JSON object.`

const defaultUserTemplate = `Classify the accounting entry below.

Description: {{.Description}}
Kind: {{.Kind}}
{{- if .Value}}
Value: {{printf "%.2f" .Value}}
{{- end}}

Allowed categories:
{{- range .Categories}}
- {{.}}
{{- end}}

Respond as {"category": "<one of the allowed categories>", "confidence": <0..1>, "reasoning": "<short>"}`

// DefaultPrompts returns the built-in prompt configuration
func DefaultPrompts() *PromptConfig {
	var p PromptConfig
	p.Classification.Temperature = 0.1
	p.Classification.MaxTokens = 300
	p.Classification.System = defaultSystemPrompt
	p.Classification.UserTemplate = defaultUserTemplate
	return &p
}

// LoadPrompts loads prompt configuration from YAML file.
// Missing fields keep their built-in values.
func LoadPrompts(promptsPath string) (*PromptConfig, error) {
	data, err := os.ReadFile(promptsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	prompts := DefaultPrompts()
	if err := yaml.Unmarshal(data, prompts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompts: %w", err)
	}

	return prompts, nil
}

// renderTemplate renders a template with provided data
func renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("prompt").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
