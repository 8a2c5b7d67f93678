package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
)

func TestConnectorFactory_Create_Unknown(t *testing.T) {
	factory := NewConnectorFactory()

	_, err := factory.Create(context.Background(), domain.Source{Type: "nope"})

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestConnectorFactory_RegisterAndCreate(t *testing.T) {
	factory := NewConnectorFactory()
	factory.Register("mock", func(source domain.Source) (driven.SourceConnector, error) {
		return &syncMockConnector{sourceID: source.ID, sourceName: source.Name}, nil
	})

	conn, err := factory.Create(context.Background(), domain.Source{ID: "src-1", Name: "Mock", Type: "mock"})

	require.NoError(t, err)
	assert.Equal(t, "src-1", conn.SourceID())
}

func TestConnectorFactory_SupportedTypes_Sorted(t *testing.T) {
	factory := NewConnectorFactory()
	builder := func(domain.Source) (driven.SourceConnector, error) { return nil, nil }
	factory.Register("tracker", builder)
	factory.Register("contacts", builder)
	factory.Register("readwise", builder)

	assert.Equal(t, []string{"contacts", "readwise", "tracker"}, factory.SupportedTypes())
}
