package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/garyjia/ledger-auditor/internal/application/service"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
)

var errBoom = errors.New("boom")

type fakeAuditService struct {
	mu        sync.Mutex
	cfg       entity.AuditConfiguration
	batchFunc func(ctx context.Context, entries []entity.Entry) ([]entity.VerificationResult, error)
	fullFunc  func(ctx context.Context, clientID string, period *entity.Period) (*entity.BatchAuditSummary, error)

	fullCalls []fullAuditCall
}

type fullAuditCall struct {
	clientID string
	period   *entity.Period
}

func newFakeAuditService(frequency entity.AuditFrequency) *fakeAuditService {
	cfg := entity.DefaultAuditConfiguration()
	cfg.Frequency = frequency
	return &fakeAuditService{cfg: cfg}
}

func (f *fakeAuditService) Configure(_ context.Context, patch entity.AuditConfigurationPatch) (entity.AuditConfiguration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = f.cfg.Apply(patch)
	return f.cfg, nil
}

func (f *fakeAuditService) Config() entity.AuditConfiguration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

func (f *fakeAuditService) AuditBatch(ctx context.Context, entries []entity.Entry) ([]entity.VerificationResult, error) {
	if f.batchFunc != nil {
		return f.batchFunc(ctx, entries)
	}
	return nil, nil
}

func (f *fakeAuditService) RunFullAudit(ctx context.Context, clientID string, period *entity.Period) (*entity.BatchAuditSummary, error) {
	f.mu.Lock()
	f.fullCalls = append(f.fullCalls, fullAuditCall{clientID: clientID, period: period})
	f.mu.Unlock()

	if f.fullFunc != nil {
		return f.fullFunc(ctx, clientID, period)
	}
	return &entity.BatchAuditSummary{ClientID: clientID, Period: period}, nil
}

func (f *fakeAuditService) calls() []fullAuditCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fullAuditCall(nil), f.fullCalls...)
}

var _ service.AuditService = (*fakeAuditService)(nil)

type fakeClientDirectory struct {
	ids []string
	err error
}

func (f *fakeClientDirectory) ListClientIDs(_ context.Context) ([]string, error) {
	return f.ids, f.err
}

type fakeClassificationService struct {
	mu      sync.Mutex
	clients []string
	err     error
}

func (f *fakeClassificationService) ClassifyClient(_ context.Context, clientID string) (*service.ClassificationReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.clients = append(f.clients, clientID)
	return &service.ClassificationReport{ClientID: clientID, Classified: 2, Skipped: 1}, nil
}

type stubWorker struct {
	name     string
	startErr error
	stopErr  error
	log      *[]string
}

func (w *stubWorker) Start(_ context.Context) error {
	*w.log = append(*w.log, "start "+w.name)
	return w.startErr
}

func (w *stubWorker) Stop() error {
	*w.log = append(*w.log, "stop "+w.name)
	return w.stopErr
}

func (w *stubWorker) Name() string { return w.name }
