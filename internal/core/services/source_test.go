package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordhub/recordhub-cli/internal/adapters/driven/storage/memory"
	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
)

func newSourceService(t *testing.T) (*SourceService, *memory.SourceStore, *memory.CursorStore) {
	t.Helper()

	sourceStore := memory.NewSourceStore()
	cursorStore := memory.NewCursorStore()
	factory := NewConnectorFactory()
	factory.Register("readwise", func(domain.Source) (driven.SourceConnector, error) { return nil, nil })
	return NewSourceService(sourceStore, cursorStore, factory), sourceStore, cursorStore
}

func TestSourceService_Add_GeneratesID(t *testing.T) {
	svc, store, _ := newSourceService(t)
	ctx := context.Background()

	id, err := svc.Add(ctx, domain.Source{Type: "readwise", Name: "Readwise", Collection: "Highlights", Token: "tok"})

	require.NoError(t, err)
	require.NotEmpty(t, id)

	saved, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Readwise", saved.Name)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestSourceService_Add_Validation(t *testing.T) {
	svc, _, _ := newSourceService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, domain.Source{Type: "readwise"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Add(ctx, domain.Source{Type: "unheard-of", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestSourceService_Add_DuplicateID(t *testing.T) {
	svc, _, _ := newSourceService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, domain.Source{ID: "src-1", Type: "readwise", Name: "Readwise"})
	require.NoError(t, err)

	_, err = svc.Add(ctx, domain.Source{ID: "src-1", Type: "readwise", Name: "Again"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestSourceService_Remove_DeletesCursor(t *testing.T) {
	svc, store, cursors := newSourceService(t)
	ctx := context.Background()

	id, err := svc.Add(ctx, domain.Source{Type: "readwise", Name: "Readwise"})
	require.NoError(t, err)

	since := time.Now()
	require.NoError(t, cursors.Save(ctx, domain.Cursor{SourceID: id, Since: &since}))

	require.NoError(t, svc.Remove(ctx, id))

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = cursors.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceService_Remove_Missing(t *testing.T) {
	svc, _, _ := newSourceService(t)

	err := svc.Remove(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
