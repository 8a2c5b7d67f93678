package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
)

func TestRecordStore_Collection(t *testing.T) {
	store := NewRecordStore()
	store.AddCollection("Highlights", SyncSchema())

	ctx := context.Background()

	c, err := store.Collection(ctx, "Highlights")
	require.NoError(t, err)
	assert.Equal(t, "Highlights", c.Name())

	_, err = store.Collection(ctx, "Missing")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestRecordStore_GetAllCollections(t *testing.T) {
	store := NewRecordStore()
	store.AddCollection("A", SyncSchema())
	store.AddCollection("B", SyncSchema())

	collections, err := store.GetAllCollections(context.Background())
	require.NoError(t, err)
	assert.Len(t, collections, 2)
}

func TestCollection_CreateRecord(t *testing.T) {
	store := NewRecordStore()
	c := store.AddCollection("Highlights", SyncSchema())
	ctx := context.Background()

	guid, err := c.CreateRecord(ctx, "A Book")
	require.NoError(t, err)
	require.NotEmpty(t, guid)

	records, err := c.GetAllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, guid, records[0].GUID())
	assert.Equal(t, "A Book", records[0].Title())
}

func TestCollection_CreateReadbacks_DelaysVisibility(t *testing.T) {
	store := NewRecordStore()
	store.CreateReadbacks = 2
	c := store.AddCollection("Highlights", SyncSchema())
	ctx := context.Background()

	guid, err := c.CreateRecord(ctx, "Delayed")
	require.NoError(t, err)

	// First two reads miss the record, the third sees it.
	records, err := c.GetAllRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = c.GetAllRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = c.GetAllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, guid, records[0].GUID())
}

func TestRecord_Field_UnknownID(t *testing.T) {
	store := NewRecordStore()
	c := store.AddCollection("Highlights", SyncSchema())
	ctx := context.Background()

	_, err := c.CreateRecord(ctx, "A Book")
	require.NoError(t, err)

	records, err := c.GetAllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Nil(t, records[0].Field("no_such_field"))
	assert.NotNil(t, records[0].Field(domain.FieldExternalID))
}

func TestField_SetAndRead(t *testing.T) {
	store := NewRecordStore()
	c := store.AddCollection("Highlights", SyncSchema())
	ctx := context.Background()

	_, err := c.CreateRecord(ctx, "A Book")
	require.NoError(t, err)
	records, err := c.GetAllRecords(ctx)
	require.NoError(t, err)
	rec := records[0]

	require.NoError(t, rec.Field(domain.FieldExternalID).Set("Readwise:42"))
	assert.Equal(t, "Readwise:42", rec.Field(domain.FieldExternalID).Text())

	require.NoError(t, rec.Field(domain.FieldChildCount).Set(3))
	assert.Equal(t, float64(3), rec.Field(domain.FieldChildCount).Number())

	captured := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, rec.Field(domain.FieldCapturedAt).Set(captured))
	assert.Equal(t, captured, rec.Field(domain.FieldCapturedAt).Date())
}

func TestField_SetChoice(t *testing.T) {
	store := NewRecordStore()
	c := store.AddCollection("Highlights", SyncSchema())
	ctx := context.Background()

	_, err := c.CreateRecord(ctx, "A Book")
	require.NoError(t, err)
	records, err := c.GetAllRecords(ctx)
	require.NoError(t, err)

	category := records[0].Field(domain.FieldCategory)
	assert.True(t, category.SetChoice("article"))
	assert.Equal(t, "article", category.Choice())

	// Unknown label leaves the caller to fall back to Set.
	assert.False(t, category.SetChoice("unheard-of"))
	require.NoError(t, category.Set("unheard-of"))
	assert.Equal(t, "unheard-of", category.Text())
}

func TestField_Reject(t *testing.T) {
	store := NewRecordStore()
	c := store.AddCollection("Strict", Schema{
		"locked": {Kind: KindText, Reject: true},
	})
	ctx := context.Background()

	_, err := c.CreateRecord(ctx, "A Book")
	require.NoError(t, err)
	records, err := c.GetAllRecords(ctx)
	require.NoError(t, err)

	err = records[0].Field("locked").Set("value")
	assert.ErrorIs(t, err, domain.ErrFieldWriteRejected)
}
