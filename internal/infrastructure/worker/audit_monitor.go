package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/application/service"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// ErrNotAccepting is returned by Submit when the monitor is not in real-time mode
var ErrNotAccepting = errors.New("audit monitor is not accepting real-time batches")

// MonitorConfig holds the scheduling parameters of the audit monitor
type MonitorConfig struct {
	DailyCron  string // e.g. "0 2 * * *"
	WeeklyCron string // e.g. "0 3 * * 1"
	QueueSize  int
	Location   *time.Location
}

// AuditMonitor runs audits according to the configured frequency: real-time
// batches submitted through Submit, or scheduled full audits of every client.
type AuditMonitor struct {
	audits  service.AuditService
	clients port.ClientDirectory
	config  MonitorConfig
	logger  *zap.Logger
	now     func() time.Time

	mu        sync.Mutex
	running   bool
	frequency entity.AuditFrequency
	parent    context.Context
	cancel    context.CancelFunc
	scheduler *gocron.Scheduler
	queue     chan []entity.Entry
	done      chan struct{}
	wg        sync.WaitGroup

	// sendMu is held for reading by Submit while it sends, so Stop can wait
	// out in-flight sends before closing the queue
	sendMu sync.RWMutex

	runMutex   sync.Mutex
	runActive  bool
	lastRunAt  time.Time
	lastRunErr error
}

// NewAuditMonitor creates a new audit monitor
func NewAuditMonitor(audits service.AuditService, clients port.ClientDirectory, cfg MonitorConfig, logger *zap.Logger) *AuditMonitor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &AuditMonitor{
		audits:  audits,
		clients: clients,
		config:  cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Name implements Worker
func (m *AuditMonitor) Name() string {
	return "audit-monitor"
}

// Start begins monitoring with the frequency currently configured
func (m *AuditMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("audit monitor already running")
	}

	frequency := m.audits.Config().Frequency
	runCtx, cancel := context.WithCancel(ctx)

	switch frequency {
	case entity.FrequencyRealTime:
		m.queue = make(chan []entity.Entry, m.config.QueueSize)
		m.done = make(chan struct{})
		m.wg.Add(1)
		go m.consume(runCtx, m.queue)

	case entity.FrequencyDaily, entity.FrequencyWeekly:
		expr := m.config.DailyCron
		if frequency == entity.FrequencyWeekly {
			expr = m.config.WeeklyCron
		}

		scheduler := gocron.NewScheduler(m.config.Location)
		_, err := scheduler.Cron(expr).Do(func() {
			if err := m.RunScheduledAudit(runCtx); err != nil {
				m.logger.Error("Scheduled audit failed", zap.Error(err))
			}
		})
		if err != nil {
			cancel()
			return fmt.Errorf("failed to schedule %s audit: %w", frequency, err)
		}
		scheduler.StartAsync()
		m.scheduler = scheduler

		m.logger.Info("Scheduled audits enabled",
			zap.String("frequency", string(frequency)),
			zap.String("cron", expr))

	default:
		cancel()
		return fmt.Errorf("unsupported audit frequency %q", frequency)
	}

	m.running = true
	m.frequency = frequency
	m.parent = ctx
	m.cancel = cancel

	m.logger.Info("Audit monitor started", zap.String("frequency", string(frequency)))
	return nil
}

// Stop halts the scheduler or the real-time consumer and waits for it to
// finish. Batches already queued are audited before Stop returns.
func (m *AuditMonitor) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}

	m.running = false
	if m.scheduler != nil {
		m.scheduler.Stop()
		m.scheduler = nil
	}
	queue := m.queue
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	m.queue = nil
	cancel := m.cancel
	m.mu.Unlock()

	if queue != nil {
		m.sendMu.Lock()
		close(queue)
		m.sendMu.Unlock()
	}

	m.wg.Wait()
	cancel()
	m.logger.Info("Audit monitor stopped")
	return nil
}

// Reload restarts the monitor so that a new frequency takes effect
func (m *AuditMonitor) Reload() error {
	m.mu.Lock()
	parent, running, current := m.parent, m.running, m.frequency
	m.mu.Unlock()

	if !running {
		return nil
	}
	if current == m.audits.Config().Frequency {
		return nil
	}

	if err := m.Stop(); err != nil {
		return err
	}
	return m.Start(parent)
}

// Frequency returns the frequency the monitor is running with, or "" when stopped
func (m *AuditMonitor) Frequency() entity.AuditFrequency {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return ""
	}
	return m.frequency
}

// Accepting reports whether Submit currently accepts batches
func (m *AuditMonitor) Accepting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running && m.frequency == entity.FrequencyRealTime
}

// Submit queues a batch for real-time auditing. A nil error means the
// batch will be audited, even if Stop is called right after.
func (m *AuditMonitor) Submit(ctx context.Context, entries []entity.Entry) error {
	m.sendMu.RLock()
	defer m.sendMu.RUnlock()

	m.mu.Lock()
	accepting := m.running && m.frequency == entity.FrequencyRealTime
	queue, done := m.queue, m.done
	m.mu.Unlock()

	if !accepting {
		return ErrNotAccepting
	}

	select {
	case queue <- entries:
		return nil
	case <-done:
		return ErrNotAccepting
	case <-ctx.Done():
		return ctx.Err()
	}
}

// consume audits batches until Stop closes the queue
func (m *AuditMonitor) consume(ctx context.Context, queue <-chan []entity.Entry) {
	defer m.wg.Done()

	for batch := range queue {
		results, err := m.audits.AuditBatch(ctx, batch)
		if err != nil {
			m.logger.Error("Real-time audit failed", zap.Int("entries", len(batch)), zap.Error(err))
			continue
		}

		var counts entity.StatusCounts
		for _, r := range results {
			counts.Add(r.Status)
		}
		m.logger.Info("Real-time batch audited",
			zap.Int("entries", len(results)),
			zap.Int("flagged", counts.Flagged),
			zap.Int("rejected", counts.Rejected))
	}
}

// RunScheduledAudit runs a full audit of every client over the period that
// ended yesterday. Overlapping runs are skipped.
func (m *AuditMonitor) RunScheduledAudit(ctx context.Context) error {
	m.runMutex.Lock()
	if m.runActive {
		m.runMutex.Unlock()
		m.logger.Info("Scheduled audit already running, skipping")
		return nil
	}
	m.runActive = true
	m.runMutex.Unlock()

	defer func() {
		m.runMutex.Lock()
		m.runActive = false
		m.runMutex.Unlock()
	}()

	err := m.auditAllClients(ctx)

	m.runMutex.Lock()
	m.lastRunAt = m.now()
	m.lastRunErr = err
	m.runMutex.Unlock()

	return err
}

func (m *AuditMonitor) auditAllClients(ctx context.Context) error {
	period := m.period(m.audits.Config().Frequency)

	clients, err := m.clients.ListClientIDs(ctx)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}

	m.logger.Info("Starting scheduled audit",
		zap.Int("clients", len(clients)),
		zap.Time("from", period.From),
		zap.Time("to", period.To))

	var failed []string
	for _, clientID := range clients {
		if err := ctx.Err(); err != nil {
			return err
		}

		summary, err := m.audits.RunFullAudit(ctx, clientID, period)
		if err != nil {
			m.logger.Error("Client audit failed", zap.String("client_id", clientID), zap.Error(err))
			failed = append(failed, clientID)
			continue
		}

		m.logger.Info("Client audit completed",
			zap.String("client_id", clientID),
			zap.Int("total_entries", summary.TotalEntries),
			zap.Int("rejected", summary.StatusCounts.Rejected),
			zap.Int("batch_problems", len(summary.BatchProblems)))
	}

	if len(failed) > 0 {
		return fmt.Errorf("audit failed for %d of %d clients: %v", len(failed), len(clients), failed)
	}
	return nil
}

// period returns the previous day for daily audits and the previous seven days otherwise
func (m *AuditMonitor) period(frequency entity.AuditFrequency) *entity.Period {
	y, mo, d := m.now().In(m.config.Location).Date()
	today := time.Date(y, mo, d, 0, 0, 0, 0, m.config.Location)
	yesterday := today.AddDate(0, 0, -1)

	if frequency == entity.FrequencyWeekly {
		return &entity.Period{From: today.AddDate(0, 0, -7), To: yesterday}
	}
	return &entity.Period{From: yesterday, To: yesterday}
}

// LastRun reports when the last scheduled audit finished and its error
func (m *AuditMonitor) LastRun() (time.Time, error) {
	m.runMutex.Lock()
	defer m.runMutex.Unlock()
	return m.lastRunAt, m.lastRunErr
}

// Verify interface compliance
var _ Worker = (*AuditMonitor)(nil)
