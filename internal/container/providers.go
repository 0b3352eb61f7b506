package container

import (
	"context"
	"fmt"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/application/service"
	"github.com/garyjia/ledger-auditor/internal/audit"
	infraLark "github.com/garyjia/ledger-auditor/internal/infrastructure/external/lark"
	"github.com/garyjia/ledger-auditor/internal/infrastructure/external/openai"
	"github.com/garyjia/ledger-auditor/internal/infrastructure/persistence/repository"
	"github.com/garyjia/ledger-auditor/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/ledger-auditor/internal/infrastructure/worker"
	"github.com/garyjia/ledger-auditor/migrations"
	"github.com/garyjia/ledger-auditor/pkg/database"
	"go.uber.org/zap"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// ProvideDatabase opens the database, applies the embedded migrations and
// wraps the connection in a transaction manager.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).RunMigrations(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories on top of the transaction manager.
func ProvideRepositories(db *sqlite.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Entry:        repository.NewEntryRepository(db, logger),
		Result:       repository.NewResultRepository(db, logger),
		Notification: repository.NewNotificationRepository(db, logger),
	}, nil
}

// ProvideMessageSender returns the Lark messenger, or a sender that only logs
// when Lark is not configured.
func ProvideMessageSender(cfg *LarkConfig, logger *zap.Logger) (port.MessageSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("lark config is required")
	}

	if cfg.AppID == "" {
		logger.Warn("Lark credentials not configured, notifications will only be logged")
		return &logMessageSender{logger: logger}, nil
	}

	sdkClient := infraLark.NewSDKClient(infraLark.Config{
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
		ChatID:    cfg.ChatID,
	}, logger)
	return infraLark.NewMessenger(sdkClient, logger), nil
}

// ProvideClassifier returns the OpenAI classifier, or the keyword classifier
// when no API key is configured.
func ProvideClassifier(cfg *OpenAIConfig, logger *zap.Logger) (port.EntryClassifier, error) {
	if cfg == nil {
		return nil, fmt.Errorf("openai config is required")
	}

	if cfg.APIKey == "" {
		logger.Warn("OpenAI API key not configured, using keyword classifier")
		return audit.KeywordClassifier{}, nil
	}

	prompts := openai.DefaultPrompts()
	if cfg.PromptsPath != "" {
		loaded, err := openai.LoadPrompts(cfg.PromptsPath)
		if err != nil {
			return nil, err
		}
		prompts = loaded
	}

	return openai.NewClassifier(cfg.APIKey, cfg.Model, prompts, logger), nil
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Sender     port.MessageSender
	Classifier port.EntryClassifier
	Audit      *AuditConfig
	Logger     *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil || deps.Audit == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}

	store, err := service.NewConfigStore(deps.Audit.Initial)
	if err != nil {
		return nil, fmt.Errorf("invalid initial audit configuration: %w", err)
	}

	svcLogger := &zapLoggerAdapter{logger: deps.Logger}

	notification := service.NewNotificationService(
		deps.Repos.Notification,
		deps.Sender,
		deps.TxManager,
		svcLogger,
	)

	validator := audit.NewValidator(deps.Repos.Entry, audit.NewAdvisor(), deps.Logger)

	auditService := service.NewAuditService(
		store,
		validator,
		deps.Repos.Entry,
		deps.Repos.Entry,
		deps.Repos.Result,
		deps.Repos.Entry,
		notification,
		deps.Audit.CategoryAverages,
		svcLogger,
	)

	return &ServiceBundle{
		Config:         store,
		Audit:          auditService,
		Notification:   notification,
		Classification: service.NewClassificationService(deps.Repos.Entry, deps.Classifier, svcLogger),
	}, nil
}

// WorkerDeps holds dependencies for creating workers.
type WorkerDeps struct {
	Services *ServiceBundle
	Clients  port.ClientDirectory
	Schedule *ScheduleConfig
	Logger   *zap.Logger
}

// ProvideWorkers creates the worker manager and registers the audit monitor
// and, when enabled, the classification sweep.
func ProvideWorkers(deps *WorkerDeps) (*worker.WorkerManager, *worker.AuditMonitor, error) {
	if deps == nil || deps.Services == nil || deps.Schedule == nil {
		return nil, nil, fmt.Errorf("worker dependencies are required")
	}

	manager := worker.NewWorkerManager(deps.Logger)

	monitor := worker.NewAuditMonitor(deps.Services.Audit, deps.Clients, worker.MonitorConfig{
		DailyCron:  deps.Schedule.DailyCron,
		WeeklyCron: deps.Schedule.WeeklyCron,
		QueueSize:  deps.Schedule.QueueSize,
		Location:   deps.Schedule.Location,
	}, deps.Logger)
	manager.Register(monitor)

	if deps.Schedule.ClassifyInterval > 0 {
		manager.Register(worker.NewClassificationWorker(
			deps.Services.Classification,
			deps.Clients,
			deps.Schedule.ClassifyInterval,
			deps.Logger,
		))
	}

	return manager, monitor, nil
}

// logMessageSender writes notifications to the log when no chat is configured.
type logMessageSender struct {
	logger *zap.Logger
}

func (s *logMessageSender) SendText(_ context.Context, content string) error {
	s.logger.Info("Notification", zap.String("content", content))
	return nil
}
