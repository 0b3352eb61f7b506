package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/application/service"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// ClassificationWorker periodically classifies the uncategorized entries of every client
type ClassificationWorker struct {
	classifier service.ClassificationService
	clients    port.ClientDirectory
	interval   time.Duration
	logger     *zap.Logger

	mu        sync.Mutex
	scheduler *gocron.Scheduler

	syncMutex   sync.Mutex
	syncRunning bool
}

// NewClassificationWorker creates a new classification worker
func NewClassificationWorker(classifier service.ClassificationService, clients port.ClientDirectory, interval time.Duration, logger *zap.Logger) *ClassificationWorker {
	return &ClassificationWorker{
		classifier: classifier,
		clients:    clients,
		interval:   interval,
		logger:     logger,
	}
}

// Name implements Worker
func (w *ClassificationWorker) Name() string {
	return "classification-worker"
}

// Start schedules the sweep every interval
func (w *ClassificationWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.scheduler != nil {
		return fmt.Errorf("classification worker already running")
	}
	if w.interval <= 0 {
		return fmt.Errorf("classification interval must be positive, got %s", w.interval)
	}

	scheduler := gocron.NewScheduler(time.Local)
	_, err := scheduler.Every(w.interval).Do(func() {
		if err := w.Sweep(ctx); err != nil {
			w.logger.Error("Classification sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule classification: %w", err)
	}

	scheduler.StartAsync()
	w.scheduler = scheduler

	w.logger.Info("Classification worker started", zap.Duration("interval", w.interval))
	return nil
}

// Stop halts the scheduler
func (w *ClassificationWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.scheduler == nil {
		return nil
	}
	w.scheduler.Stop()
	w.scheduler = nil
	return nil
}

// Sweep classifies every client once. Overlapping sweeps are skipped.
func (w *ClassificationWorker) Sweep(ctx context.Context) error {
	w.syncMutex.Lock()
	if w.syncRunning {
		w.syncMutex.Unlock()
		w.logger.Info("Classification sweep already running, skipping")
		return nil
	}
	w.syncRunning = true
	w.syncMutex.Unlock()

	defer func() {
		w.syncMutex.Lock()
		w.syncRunning = false
		w.syncMutex.Unlock()
	}()

	clients, err := w.clients.ListClientIDs(ctx)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}

	total := service.ClassificationReport{}
	for _, clientID := range clients {
		if err := ctx.Err(); err != nil {
			return err
		}

		report, err := w.classifier.ClassifyClient(ctx, clientID)
		if err != nil {
			return fmt.Errorf("classify client %s: %w", clientID, err)
		}
		total.Classified += report.Classified
		total.Skipped += report.Skipped
		total.Failed += report.Failed
	}

	w.logger.Info("Classification sweep completed",
		zap.Int("clients", len(clients)),
		zap.Int("classified", total.Classified),
		zap.Int("skipped", total.Skipped),
		zap.Int("failed", total.Failed))
	return nil
}

var _ Worker = (*ClassificationWorker)(nil)
