package cli

import (
	"context"
	"time"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driving"
)

// mockSyncService records invocations and returns canned summaries.
type mockSyncService struct {
	syncCalls    []string
	lastOpts     domain.SyncOptions
	syncAllCalls int
	summary      *domain.SyncSummary
	err          error
}

var _ driving.SyncService = (*mockSyncService)(nil)

func (m *mockSyncService) Sync(_ context.Context, sourceID string, opts domain.SyncOptions) (*domain.SyncSummary, error) {
	m.syncCalls = append(m.syncCalls, sourceID)
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.summary != nil {
		return m.summary, nil
	}
	return &domain.SyncSummary{SourceID: sourceID}, nil
}

func (m *mockSyncService) SyncAll(_ context.Context) error {
	m.syncAllCalls++
	return m.err
}

func (m *mockSyncService) Status(_ context.Context, sourceID string) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{
		SourceID:    sourceID,
		Phase:       driving.PhaseDone,
		LastRun:     time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		LastSummary: "2 new, 1 updated",
	}, nil
}

// mockSourceService serves a fixed source list.
type mockSourceService struct {
	sources []domain.Source
	added   []domain.Source
	removed []string
	err     error
}

var _ driving.SourceService = (*mockSourceService)(nil)

func (m *mockSourceService) Add(_ context.Context, source domain.Source) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.added = append(m.added, source)
	return "generated-id", nil
}

func (m *mockSourceService) Get(_ context.Context, id string) (*domain.Source, error) {
	for i := range m.sources {
		if m.sources[i].ID == id {
			return &m.sources[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSourceService) List(_ context.Context) ([]domain.Source, error) {
	return m.sources, m.err
}

func (m *mockSourceService) Remove(_ context.Context, id string) error {
	m.removed = append(m.removed, id)
	return m.err
}

// mockRegistry is a static connector type registry.
type mockRegistry struct {
	types []string
}

var _ driven.ConnectorFactory = (*mockRegistry)(nil)

func (m *mockRegistry) Create(_ context.Context, _ domain.Source) (driven.SourceConnector, error) {
	return nil, domain.ErrUnsupportedType
}

func (m *mockRegistry) Register(connectorType string, _ driven.ConnectorBuilder) {
	m.types = append(m.types, connectorType)
}

func (m *mockRegistry) SupportedTypes() []string {
	return m.types
}

// mockJournalReader serves fixed journal events.
type mockJournalReader struct {
	events []domain.ChangeEvent
}

func (m *mockJournalReader) ListEvents(_ context.Context, _ string, _ int) ([]domain.ChangeEvent, error) {
	return m.events, nil
}

// setupTestServices wires mock services and returns a cleanup func
// restoring the previous wiring.
func setupTestServices() (sync *mockSyncService, sources *mockSourceService, cleanup func()) {
	oldSync := syncOrchestrator
	oldSources := sourceService
	oldRegistry := connectorRegistry
	oldJournal := journalReader

	sync = &mockSyncService{}
	sources = &mockSourceService{}
	syncOrchestrator = sync
	sourceService = sources
	connectorRegistry = &mockRegistry{types: []string{"readwise", "tracker", "contacts"}}
	journalReader = &mockJournalReader{}

	cleanup = func() {
		syncOrchestrator = oldSync
		sourceService = oldSources
		connectorRegistry = oldRegistry
		journalReader = oldJournal
	}
	return sync, sources, cleanup
}
