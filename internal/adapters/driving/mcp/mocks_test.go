package mcp

import (
	"context"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driving"
)

// mockSyncService returns canned summaries and statuses.
type mockSyncService struct {
	summary  *domain.SyncSummary
	status   *driving.SyncStatus
	err      error
	lastOpts domain.SyncOptions
}

var _ driving.SyncService = (*mockSyncService)(nil)

func (m *mockSyncService) Sync(_ context.Context, sourceID string, opts domain.SyncOptions) (*domain.SyncSummary, error) {
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
	return m.err
}

func (m *mockSyncService) Status(_ context.Context, sourceID string) (*driving.SyncStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.status != nil {
		return m.status, nil
	}
	return &driving.SyncStatus{SourceID: sourceID, Phase: driving.PhaseIdle}, nil
}

// mockSourceService serves a fixed source list.
type mockSourceService struct {
	sources []domain.Source
	err     error
}

var _ driving.SourceService = (*mockSourceService)(nil)

func (m *mockSourceService) Add(_ context.Context, _ domain.Source) (string, error) {
	return "", m.err
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

func (m *mockSourceService) Remove(_ context.Context, _ string) error {
	return m.err
}

// mockJournalReader serves fixed journal events.
type mockJournalReader struct {
	events []domain.ChangeEvent
	err    error
}

var _ JournalReader = (*mockJournalReader)(nil)

func (m *mockJournalReader) ListEvents(_ context.Context, _ string, _ int) ([]domain.ChangeEvent, error) {
	return m.events, m.err
}
