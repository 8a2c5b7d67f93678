package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordhub/recordhub-cli/internal/adapters/driven/journal"
	"github.com/recordhub/recordhub-cli/internal/adapters/driven/storage/memory"
	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driving"
)

// --- Mock implementations for sync testing ---

// syncMockConnector implements driven.SourceConnector for testing.
type syncMockConnector struct {
	sourceID   string
	sourceName string
	items      []domain.RawItem
	fetchErr   error
	rules      domain.SourceRules

	fetchCalls int
	lastSince  *time.Time
	fetchGate  chan struct{}
	closed     bool
}

func (m *syncMockConnector) Type() string     { return "mock" }
func (m *syncMockConnector) SourceID() string { return m.sourceID }

func (m *syncMockConnector) Fetch(ctx context.Context, since *time.Time) ([]domain.RawItem, error) {
	m.fetchCalls++
	m.lastSince = since
	if m.fetchGate != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-m.fetchGate:
		}
	}
	return m.items, m.fetchErr
}

func (m *syncMockConnector) Rules() domain.SourceRules { return m.rules }

func (m *syncMockConnector) Normalize(parent domain.RawItem, childCount int) domain.RecordFields {
	return domain.RecordFields{
		ExternalID: domain.ExternalID(m.sourceName, parent.ID),
		Title:      parent.Title,
		Source:     m.sourceName,
		Author:     parent.Author,
		URL:        parent.URL,
		Category:   parent.Category,
		State:      parent.Extra["state"],
		ChildCount: childCount,
		CapturedAt: parent.CreatedAt,
		UpdatedAt:  domain.ChangeMarker(parent.UpdatedAt),
	}
}

func (m *syncMockConnector) RenderContent(parent domain.RawItem, children []domain.RawItem) string {
	if parent.Summary == "" && len(children) == 0 {
		return ""
	}
	var lines []string
	if parent.Summary != "" {
		lines = append(lines, parent.Summary)
	}
	for _, child := range children {
		lines = append(lines, "> "+child.Body)
	}
	return strings.Join(lines, "\n")
}

func (m *syncMockConnector) Close() error {
	m.closed = true
	return nil
}

// syncMockFactory implements driven.ConnectorFactory keyed by source ID.
type syncMockFactory struct {
	connectors map[string]*syncMockConnector
	createErr  error
}

func newSyncMockFactory() *syncMockFactory {
	return &syncMockFactory{connectors: make(map[string]*syncMockConnector)}
}

func (f *syncMockFactory) Create(_ context.Context, source domain.Source) (driven.SourceConnector, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if conn, ok := f.connectors[source.ID]; ok {
		return conn, nil
	}
	return nil, errors.New("no connector configured for source")
}

func (f *syncMockFactory) Register(_ string, _ driven.ConnectorBuilder) {}

func (f *syncMockFactory) SupportedTypes() []string { return []string{"mock"} }

// syncFixture bundles the stores an orchestrator test needs.
type syncFixture struct {
	sourceStore *memory.SourceStore
	cursorStore *memory.CursorStore
	recordStore *memory.RecordStore
	content     *memory.ContentSink
	journal     *journal.MemorySink
	factory     *syncMockFactory
	orch        *SyncOrchestrator
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	f := &syncFixture{
		sourceStore: memory.NewSourceStore(),
		cursorStore: memory.NewCursorStore(),
		recordStore: memory.NewRecordStore(),
		content:     memory.NewContentSink(),
		journal:     journal.NewMemorySink(),
		factory:     newSyncMockFactory(),
	}
	f.recordStore.AddCollection("Highlights", memory.SyncSchema())
	f.orch = NewSyncOrchestrator(f.sourceStore, f.cursorStore, f.recordStore, f.content, f.journal, f.factory)
	return f
}

func (f *syncFixture) addSource(t *testing.T, id string, connector *syncMockConnector) {
	t.Helper()

	source := domain.Source{
		ID:         id,
		Type:       "mock",
		Name:       connector.sourceName,
		Collection: "Highlights",
		Token:      "tok",
	}
	require.NoError(t, f.sourceStore.Save(context.Background(), source))
	f.factory.connectors[id] = connector
}

// --- Tests ---

func TestSyncOrchestrator_Sync_SourceNotFound(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.orch.Sync(context.Background(), "nonexistent", domain.SyncOptions{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "get source")
}

func TestSyncOrchestrator_Sync_NotConfigured(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	source := domain.Source{ID: "src-1", Type: "mock", Name: "Mock", Collection: "Highlights"}
	require.NoError(t, f.sourceStore.Save(ctx, source))

	_, err := f.orch.Sync(ctx, "src-1", domain.SyncOptions{})

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestSyncOrchestrator_Sync_CollectionMissing(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	conn := &syncMockConnector{sourceID: "src-1", sourceName: "Mock"}
	source := domain.Source{ID: "src-1", Type: "mock", Name: "Mock", Collection: "Nope", Token: "tok"}
	require.NoError(t, f.sourceStore.Save(ctx, source))
	f.factory.connectors["src-1"] = conn

	_, err := f.orch.Sync(ctx, "src-1", domain.SyncOptions{})

	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestSyncOrchestrator_Sync_CreatesRecords(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	conn := &syncMockConnector{
		sourceID:   "src-1",
		sourceName: "Readwise",
		items: []domain.RawItem{
			{ID: "book-1", Title: "First Book", Category: "book"},
			{ID: "h-1", ParentID: "book-1", Body: "a highlight"},
			{ID: "book-2", Title: "Second Book", Category: "article"},
			{ID: "h-2", ParentID: "book-2", Body: "another"},
		},
	}
	f.addSource(t, "src-1", conn)

	summary, err := f.orch.Sync(ctx, "src-1", domain.SyncOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, "2 new, 0 updated", summary.Line())
	assert.True(t, conn.closed)

	// Records landed in the collection with fields and content.
	collection, err := f.recordStore.Collection(ctx, "Highlights")
	require.NoError(t, err)
	records, err := collection.GetAllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Readwise:book-1", records[0].Field(domain.FieldExternalID).Text())
	assert.Equal(t, float64(1), records[0].Field(domain.FieldChildCount).Number())
	block, ok := f.content.Content(records[0].GUID())
	require.True(t, ok)
	assert.Contains(t, block, "> a highlight")

	// The journal carries one major event per created record.
	events := f.journal.Events("src-1")
	require.Len(t, events, 2)
	assert.Equal(t, domain.VerbCreated, events[0].Verb)
	assert.True(t, events[0].Major)

	// First run resolves no cursor, the finished run writes one.
	assert.Nil(t, conn.lastSince)
	cursor, err := f.cursorStore.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.False(t, cursor.FullSync())
}

func TestSyncOrchestrator_Sync_SecondRunIsNoop(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	conn := &syncMockConnector{
		sourceID:   "src-1",
		sourceName: "Readwise",
		items: []domain.RawItem{
			{ID: "book-1", Title: "First Book"},
			{ID: "h-1", ParentID: "book-1", Body: "a highlight"},
		},
	}
	f.addSource(t, "src-1", conn)

	_, err := f.orch.Sync(ctx, "src-1", domain.SyncOptions{})
	require.NoError(t, err)

	summary, err := f.orch.Sync(ctx, "src-1", domain.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, "No changes", summary.Line())

	// No new journal events beyond the first run's create.
	assert.Len(t, f.journal.Events("src-1"), 1)

	// The second run used the stored cursor.
	require.NotNil(t, conn.lastSince)
}

func TestSyncOrchestrator_Sync_UpdatesOnNewChildren(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	conn := &syncMockConnector{
		sourceID:   "src-1",
		sourceName: "Readwise",
		items: []domain.RawItem{
			{ID: "book-1", Title: "First Book"},
			{ID: "h-1", ParentID: "book-1", Body: "first highlight"},
		},
	}
	f.addSource(t, "src-1", conn)

	_, err := f.orch.Sync(ctx, "src-1", domain.SyncOptions{})
	require.NoError(t, err)

	conn.items = append(conn.items, domain.RawItem{ID: "h-2", ParentID: "book-1", Body: "second highlight"})

	summary, err := f.orch.Sync(ctx, "src-1", domain.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 1, summary.Updated)

	events := f.journal.Events("src-1")
	require.Len(t, events, 2)
	update := events[1]
	assert.Equal(t, domain.VerbUpdated, update.Verb)
	assert.False(t, update.Major)
	// Only the newly merged child shows up as an excerpt.
	require.Len(t, update.Excerpts, 1)
	assert.Equal(t, "second highlight", update.Excerpts[0])

	// Content was replaced with the full render.
	collection, err := f.recordStore.Collection(ctx, "Highlights")
	require.NoError(t, err)
	records, err := collection.GetAllRecords(ctx)
	require.NoError(t, err)
	block, ok := f.content.Content(records[0].GUID())
	require.True(t, ok)
	assert.Contains(t, block, "first highlight")
	assert.Contains(t, block, "second highlight")
}

func TestSyncOrchestrator_Sync_FetchErrorKeepsPartialAndCursor(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	conn := &syncMockConnector{
		sourceID:   "src-1",
		sourceName: "Readwise",
		items: []domain.RawItem{
			{ID: "book-1", Title: "Partial Book"},
			{ID: "h-1", ParentID: "book-1", Body: "made it through"},
		},
		fetchErr: domain.ErrSourceUnavailable,
	}
	f.addSource(t, "src-1", conn)

	summary, err := f.orch.Sync(ctx, "src-1", domain.SyncOptions{})

	// The run completes on the partial page set.
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)

	// The cursor stays unset so missed pages are retried next run.
	_, err = f.cursorStore.Get(ctx, "src-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncOrchestrator_Sync_ForceFullIgnoresCursor(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	conn := &syncMockConnector{
		sourceID:   "src-1",
		sourceName: "Readwise",
		items: []domain.RawItem{
			{ID: "book-1", Title: "First Book"},
			{ID: "h-1", ParentID: "book-1", Body: "a highlight"},
		},
	}
	f.addSource(t, "src-1", conn)

	_, err := f.orch.Sync(ctx, "src-1", domain.SyncOptions{})
	require.NoError(t, err)

	_, err = f.orch.Sync(ctx, "src-1", domain.SyncOptions{ForceFull: true})
	require.NoError(t, err)
	assert.Nil(t, conn.lastSince)
}

func TestSyncOrchestrator_Sync_EmptyCollectionBootstraps(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	conn := &syncMockConnector{sourceID: "src-1", sourceName: "Readwise"}
	f.addSource(t, "src-1", conn)

	// A stale cursor exists but the collection holds nothing to dedup
	// against, so the run backfills from scratch.
	since := time.Now().Add(-time.Hour)
	require.NoError(t, f.cursorStore.Save(ctx, domain.Cursor{SourceID: "src-1", Since: &since}))

	_, err := f.orch.Sync(ctx, "src-1", domain.SyncOptions{})
	require.NoError(t, err)
	assert.Nil(t, conn.lastSince)
}

func TestSyncOrchestrator_Sync_SinceOverride(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	conn := &syncMockConnector{
		sourceID:   "src-1",
		sourceName: "Readwise",
		items: []domain.RawItem{
			{ID: "book-1", Title: "First Book"},
			{ID: "h-1", ParentID: "book-1", Body: "a highlight"},
		},
	}
	f.addSource(t, "src-1", conn)

	// Seed the collection so the bootstrap rule does not kick in.
	_, err := f.orch.Sync(ctx, "src-1", domain.SyncOptions{})
	require.NoError(t, err)

	override := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	source, err := f.sourceStore.Get(ctx, "src-1")
	require.NoError(t, err)
	source.SinceOverride = &override
	require.NoError(t, f.sourceStore.Save(ctx, *source))

	_, err = f.orch.Sync(ctx, "src-1", domain.SyncOptions{})
	require.NoError(t, err)
	require.NotNil(t, conn.lastSince)
	assert.Equal(t, override, *conn.lastSince)
}

func TestSyncOrchestrator_Sync_SingleFlight(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	gate := make(chan struct{})
	conn := &syncMockConnector{sourceID: "src-1", sourceName: "Readwise", fetchGate: gate}
	f.addSource(t, "src-1", conn)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.orch.Sync(ctx, "src-1", domain.SyncOptions{})
	}()

	// Wait until the first run is inside Fetch.
	require.Eventually(t, func() bool {
		return conn.fetchCalls == 1
	}, time.Second, 5*time.Millisecond)

	// A concurrent trigger is a silent zero-effect skip.
	summary, err := f.orch.Sync(ctx, "src-1", domain.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 1, conn.fetchCalls)

	close(gate)
	<-done
}

func TestSyncOrchestrator_SyncAll(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	first := &syncMockConnector{
		sourceID:   "src-1",
		sourceName: "Readwise",
		items: []domain.RawItem{
			{ID: "book-1", Title: "Book"},
			{ID: "h-1", ParentID: "book-1", Body: "one"},
		},
	}
	second := &syncMockConnector{sourceID: "src-2", sourceName: "Tracker"}
	f.addSource(t, "src-1", first)
	f.addSource(t, "src-2", second)

	require.NoError(t, f.orch.SyncAll(ctx))
	assert.Equal(t, 1, first.fetchCalls)
	assert.Equal(t, 1, second.fetchCalls)
}

func TestSyncOrchestrator_Status(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	// Unknown sources report idle.
	status, err := f.orch.Status(ctx, "src-1")
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Equal(t, driving.PhaseIdle, status.Phase)

	conn := &syncMockConnector{
		sourceID:   "src-1",
		sourceName: "Readwise",
		items: []domain.RawItem{
			{ID: "book-1", Title: "Book"},
			{ID: "h-1", ParentID: "book-1", Body: "one"},
		},
	}
	f.addSource(t, "src-1", conn)

	_, err = f.orch.Sync(ctx, "src-1", domain.SyncOptions{})
	require.NoError(t, err)

	status, err = f.orch.Status(ctx, "src-1")
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Equal(t, driving.PhaseDone, status.Phase)
	assert.Equal(t, 1, status.ParentsProcessed)
	assert.Equal(t, "1 new, 0 updated", status.LastSummary)
	assert.False(t, status.LastRun.IsZero())
}
