package service

import (
	"context"
	"errors"
	"sync"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	"github.com/garyjia/ledger-auditor/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

var errBoom = errors.New("boom")

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockEntrySource struct {
	fetchFunc func(ctx context.Context, clientID string, period *entity.Period) ([]entity.Entry, error)
}

func (m *mockEntrySource) FetchEntries(ctx context.Context, clientID string, period *entity.Period) ([]entity.Entry, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, clientID, period)
	}
	return nil, nil
}

type mockCategoryStats struct {
	averages entity.CategoryAverages
	err      error
}

func (m *mockCategoryStats) ReferenceAverages(ctx context.Context) (entity.CategoryAverages, error) {
	return m.averages, m.err
}

type recordedResult struct {
	clientID string
	result   entity.VerificationResult
}

type mockHistory struct {
	mu      sync.Mutex
	records []recordedResult
	err     error
}

func (m *mockHistory) RecordResult(ctx context.Context, clientID string, result entity.VerificationResult) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, recordedResult{clientID: clientID, result: result})
	return nil
}

type appliedCorrection struct {
	entryID    string
	suggestion entity.CorrectionSuggestion
}

type mockCorrectionWriter struct {
	applied []appliedCorrection
	err     error
}

func (m *mockCorrectionWriter) ApplyCorrection(ctx context.Context, entryID string, suggestion entity.CorrectionSuggestion) error {
	if m.err != nil {
		return m.err
	}
	m.applied = append(m.applied, appliedCorrection{entryID: entryID, suggestion: suggestion})
	return nil
}

type mockNotifier struct {
	sent []entity.Notification
	err  error
}

func (m *mockNotifier) Notify(ctx context.Context, n entity.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, n)
	return nil
}

type mockNotificationRepo struct {
	createFunc       func(ctx context.Context, record *entity.NotificationRecord) error
	updateStatusFunc func(ctx context.Context, id string, status string, errorMsg string) error
	markSentFunc     func(ctx context.Context, id string) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, record *entity.NotificationRecord) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, record)
	}
	record.ID = "n-1"
	return nil
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id string) (*entity.NotificationRecord, error) {
	return &entity.NotificationRecord{ID: id}, nil
}

func (m *mockNotificationRepo) UpdateStatus(ctx context.Context, id string, status string, errorMsg string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, errorMsg)
	}
	return nil
}

func (m *mockNotificationRepo) MarkSent(ctx context.Context, id string) error {
	if m.markSentFunc != nil {
		return m.markSentFunc(ctx, id)
	}
	return nil
}

type mockMessageSender struct {
	sendTextFunc func(ctx context.Context, content string) error
}

func (m *mockMessageSender) SendText(ctx context.Context, content string) error {
	if m.sendTextFunc != nil {
		return m.sendTextFunc(ctx, content)
	}
	return nil
}

// MockEntryClassifier mocks port.EntryClassifier
type MockEntryClassifier struct {
	mock.Mock
}

func (m *MockEntryClassifier) Classify(ctx context.Context, e entity.Entry) (*port.Classification, error) {
	args := m.Called(ctx, e)
	classification, _ := args.Get(0).(*port.Classification)
	return classification, args.Error(1)
}

type mockEntryRepo struct {
	mockEntrySource
	updates   map[string]port.Classification
	updateErr error
}

func (m *mockEntryRepo) ApplyCorrection(ctx context.Context, entryID string, suggestion entity.CorrectionSuggestion) error {
	return nil
}

func (m *mockEntryRepo) IsLikelyDuplicate(ctx context.Context, e entity.Entry) (bool, error) {
	return false, nil
}

func (m *mockEntryRepo) ReferenceAverages(ctx context.Context) (entity.CategoryAverages, error) {
	return nil, nil
}

func (m *mockEntryRepo) ListClientIDs(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *mockEntryRepo) Save(ctx context.Context, e entity.Entry) error {
	return nil
}

func (m *mockEntryRepo) GetByID(ctx context.Context, id string) (*entity.Entry, error) {
	return nil, nil
}

func (m *mockEntryRepo) UpdateClassification(ctx context.Context, entryID, category string, confidence float64) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.updates == nil {
		m.updates = make(map[string]port.Classification)
	}
	m.updates[entryID] = port.Classification{Category: category, Confidence: confidence}
	return nil
}
