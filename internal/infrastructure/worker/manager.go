package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Worker defines the interface for background workers
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string
}

// WorkerManager manages lifecycle of multiple workers.
// Workers start in registration order and stop in reverse order.
type WorkerManager struct {
	workers []Worker
	logger  *zap.Logger

	mu        sync.RWMutex
	isRunning bool
	started   []Worker
	cancel    context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(logger *zap.Logger) *WorkerManager {
	return &WorkerManager{
		workers: make([]Worker, 0),
		logger:  logger,
	}
}

// Register adds a worker to be managed
func (m *WorkerManager) Register(worker Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.workers = append(m.workers, worker)
	m.logger.Info("Worker registered",
		zap.String("worker_name", worker.Name()),
		zap.Int("total_workers", len(m.workers)))
}

// Get returns the registered worker with the given name
func (m *WorkerManager) Get(name string) (Worker, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, w := range m.workers {
		if w.Name() == name {
			return w, true
		}
	}
	return nil, false
}

// StartAll starts all registered workers. If one fails, the workers already
// started are stopped again and the error is returned.
func (m *WorkerManager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return fmt.Errorf("workers already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.logger.Info("Starting all workers", zap.Int("count", len(m.workers)))

	started := make([]Worker, 0, len(m.workers))
	for _, worker := range m.workers {
		if err := worker.Start(runCtx); err != nil {
			m.logger.Error("Failed to start worker",
				zap.String("worker_name", worker.Name()),
				zap.Error(err))
			cancel()
			stopErr := stopReverse(started, m.logger)
			return errors.Join(fmt.Errorf("start worker %s: %w", worker.Name(), err), stopErr)
		}
		started = append(started, worker)
		m.logger.Info("Worker started", zap.String("worker_name", worker.Name()))
	}

	m.started = started
	m.cancel = cancel
	m.isRunning = true
	return nil
}

// StopAll gracefully stops all workers
func (m *WorkerManager) StopAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isRunning {
		m.logger.Warn("Workers not running, nothing to stop")
		return nil
	}

	m.logger.Info("Stopping all workers", zap.Int("count", len(m.started)))

	err := stopReverse(m.started, m.logger)
	m.cancel()
	m.started = nil
	m.isRunning = false

	if err != nil {
		return err
	}
	m.logger.Info("All workers stopped successfully")
	return nil
}

func stopReverse(workers []Worker, logger *zap.Logger) error {
	var errs []error
	for i := len(workers) - 1; i >= 0; i-- {
		worker := workers[i]
		if err := worker.Stop(); err != nil {
			logger.Error("Failed to stop worker",
				zap.String("worker_name", worker.Name()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("stop worker %s: %w", worker.Name(), err))
			continue
		}
		logger.Info("Worker stopped", zap.String("worker_name", worker.Name()))
	}
	return errors.Join(errs...)
}

// GetWorkerCount returns the number of registered workers
func (m *WorkerManager) GetWorkerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workers)
}

// IsRunning returns whether workers are running
func (m *WorkerManager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isRunning
}
