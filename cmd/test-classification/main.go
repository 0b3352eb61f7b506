package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/audit"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/garyjia/ledger-auditor/internal/infrastructure/external/openai"
	"github.com/garyjia/ledger-auditor/pkg/utils"
)

func main() {
	apiKey := flag.String("key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	model := flag.String("model", "gpt-4o-mini", "Model name")
	promptsFile := flag.String("prompts", "configs/prompts.yaml", "Path to prompts.yaml")
	description := flag.String("description", "Pagamento DARF IRPJ referente ao trimestre", "Entry description to classify")
	kind := flag.String("kind", string(entity.EntryKindExpense), "Entry kind: revenue, expense or transfer")
	timeout := flag.Duration("timeout", 30*time.Second, "API call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger, err := utils.NewCLILogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *apiKey == "" {
		*apiKey = os.Getenv("OPENAI_API_KEY")
	}

	fmt.Println("=== Entry Classification Test ===")

	entry := entity.Entry{
		ID:          "test-entry",
		Description: *description,
		Kind:        entity.EntryKind(*kind),
	}
	fmt.Printf("  Description: %s\n", entry.Description)
	fmt.Printf("  Kind: %s\n\n", entry.Kind)

	var classifier port.EntryClassifier = audit.KeywordClassifier{}
	if *apiKey != "" {
		prompts := openai.DefaultPrompts()
		if _, statErr := os.Stat(*promptsFile); statErr == nil {
			prompts, err = openai.LoadPrompts(*promptsFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading prompts: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✓ Prompts loaded from %s\n", *promptsFile)
		}
		classifier = openai.NewClassifier(*apiKey, *model, prompts, logger)
		fmt.Printf("Using OpenAI model %s\n", *model)
	} else {
		fmt.Println("OPENAI_API_KEY not set, using the keyword classifier")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	result, err := classifier.Classify(ctx, entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Classification failed after %v: %v\n", time.Since(start), err)
		os.Exit(1)
	}

	fmt.Printf("\n✓ Classified in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Category: %s\n", result.Category)
	fmt.Printf("  Confidence: %.2f\n", result.Confidence)
	fmt.Printf("  Reasoning: %s\n", result.Reasoning)
	fmt.Printf("  Coherence with description: %.0f%%\n", audit.Coherence(result.Category, entry.Description)*100)
}
