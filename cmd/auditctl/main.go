// Command auditctl audits the entries of an Excel workbook without a database.
//
// Usage:
//
//	auditctl -in entries.xlsx [-sheet Lançamentos] [-client c1] [-level full] [-out report.xlsx]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/ledger-auditor/internal/application/service"
	"github.com/garyjia/ledger-auditor/internal/audit"
	"github.com/garyjia/ledger-auditor/internal/config"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/garyjia/ledger-auditor/internal/infrastructure/spreadsheet"
	"github.com/garyjia/ledger-auditor/pkg/utils"
)

// cliLogger adapts zap to the service.Logger interface
type cliLogger struct {
	logger *zap.SugaredLogger
}

func (l cliLogger) Info(msg string, kv ...interface{})  { l.logger.Infow(msg, kv...) }
func (l cliLogger) Error(msg string, kv ...interface{}) { l.logger.Errorw(msg, kv...) }

// stdoutNotifier prints notifications instead of delivering them
type stdoutNotifier struct{}

func (stdoutNotifier) Notify(_ context.Context, n entity.Notification) error {
	fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", n.Severity, n.Title, n.Description)
	return nil
}

func main() {
	in := flag.String("in", "", "Workbook with the entries to audit")
	sheet := flag.String("sheet", "", "Sheet name (defaults to the first sheet)")
	clientID := flag.String("client", "", "Only audit entries of this client")
	from := flag.String("from", "", "Period start, YYYY-MM-DD")
	to := flag.String("to", "", "Period end, YYYY-MM-DD")
	level := flag.String("level", string(entity.ValidationFull), "Validation level: basic, full or advanced")
	noAI := flag.Bool("no-ai", false, "Disable correction suggestions")
	out := flag.String("out", "", "Write an Excel report to this path")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "Usage: auditctl -in entries.xlsx [-client id] [-from YYYY-MM-DD -to YYYY-MM-DD] [-out report.xlsx]")
		os.Exit(2)
	}

	logger, err := utils.NewCLILogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	period, err := parsePeriod(*from, *to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(2)
	}

	initial := entity.DefaultAuditConfiguration()
	initial.ValidationLevel = entity.ValidationLevel(*level)
	initial.UseAI = !*noAI
	initial.PersistHistory = false

	store, err := service.NewConfigStore(initial)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(2)
	}

	source := spreadsheet.NewWorkbookSource(*in, *sheet, logger)
	audits := service.NewAuditService(
		store,
		audit.NewValidator(nil, audit.NewAdvisor(), logger),
		source,
		nil,
		nil,
		nil,
		stdoutNotifier{},
		config.DefaultCategoryAverages(),
		cliLogger{logger: logger.Sugar()},
	)

	ctx := context.Background()
	entries, err := source.FetchEntries(ctx, *clientID, period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	results, err := audits.AuditBatch(ctx, entries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: audit failed: %v\n", err)
		os.Exit(1)
	}

	summary := service.Summarize(results)
	summary.ClientID = *clientID
	summary.Period = period
	summary.BatchProblems = audit.CrossCheck(entries)
	summary.GeneratedAt = time.Now()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Summary *entity.BatchAuditSummary   `json:"summary"`
		Results []entity.VerificationResult `json:"results"`
	}{summary, results}); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	if *out != "" {
		if err := spreadsheet.NewReportWriter(logger).Write(*out, results, summary); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: failed to write report: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "✓ Report written to %s\n", *out)
	}

	if summary.StatusCounts.Rejected > 0 {
		os.Exit(3)
	}
}

func parsePeriod(from, to string) (*entity.Period, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("-from and -to must be given together")
	}
	f, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, fmt.Errorf("invalid -from: %w", err)
	}
	t, err := time.Parse("2006-01-02", to)
	if err != nil {
		return nil, fmt.Errorf("invalid -to: %w", err)
	}
	return &entity.Period{From: f, To: t}, nil
}
