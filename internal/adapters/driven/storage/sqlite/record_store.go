package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
)

// Field kinds supported by collection schemas.
const (
	KindText   = "text"
	KindNumber = "number"
	KindDate   = "date"
	KindChoice = "choice"
)

// FieldDef describes one field of a collection schema.
type FieldDef struct {
	ID      string
	Kind    string
	Choices []string
}

// DefaultSyncFields returns the field schema a sync target collection needs.
func DefaultSyncFields() []FieldDef {
	return []FieldDef{
		{ID: domain.FieldExternalID, Kind: KindText},
		{ID: domain.FieldSource, Kind: KindText},
		{ID: domain.FieldAuthor, Kind: KindText},
		{ID: domain.FieldURL, Kind: KindText},
		{ID: domain.FieldCategory, Kind: KindChoice,
			Choices: []string{"article", "book", "email", "podcast", "tweet"}},
		{ID: domain.FieldState, Kind: KindChoice,
			Choices: []string{"open", "closed"}},
		{ID: domain.FieldChildCount, Kind: KindNumber},
		{ID: domain.FieldCapturedAt, Kind: KindDate},
		{ID: domain.FieldUpdatedAt, Kind: KindText},
	}
}

// EnsureCollection creates the named collection with the given field schema
// if it does not exist yet. Existing collections keep their schema; new
// fields are added, existing ones are left untouched.
func (s *Store) EnsureCollection(ctx context.Context, name string, fields []FieldDef) error {
	if name == "" {
		return fmt.Errorf("%w: collection name is required", domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO collections (name) VALUES (?) ON CONFLICT(name) DO NOTHING", name); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	for _, f := range fields {
		choicesJSON, err := json.Marshal(f.Choices)
		if err != nil {
			return fmt.Errorf("marshalling choices: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO collection_fields (collection, field_id, kind, choices)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(collection, field_id) DO NOTHING
		`, name, f.ID, f.Kind, string(choicesJSON)); err != nil {
			return fmt.Errorf("creating field %s: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ==================== Record Store ====================

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// GetAllCollections lists every collection in the store.
func (s *recordStore) GetAllCollections(ctx context.Context) ([]driven.Collection, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT name FROM collections ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var collections []driven.Collection //nolint:prealloc // size unknown from query
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		collections = append(collections, &collection{store: s.store, name: name})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}
	return collections, nil
}

// Collection returns the named collection.
func (s *recordStore) Collection(ctx context.Context, name string) (driven.Collection, error) {
	var found string
	row := s.store.db.QueryRowContext(ctx, "SELECT name FROM collections WHERE name = ?", name)
	if err := row.Scan(&found); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %q", domain.ErrCollectionNotFound, name)
		}
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	return &collection{store: s.store, name: found}, nil
}

// collection implements driven.Collection over the records table.
type collection struct {
	store *Store
	name  string
}

var _ driven.Collection = (*collection)(nil)

func (c *collection) Name() string {
	return c.name
}

// GetAllRecords returns every record in the collection in creation order.
func (c *collection) GetAllRecords(ctx context.Context) ([]driven.Record, error) {
	rows, err := c.store.db.QueryContext(ctx,
		"SELECT guid, title FROM records WHERE collection = ? ORDER BY rowid", c.name)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []driven.Record //nolint:prealloc // size unknown from query
	for rows.Next() {
		var guid, title string
		if err := rows.Scan(&guid, &title); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, &record{collection: c, guid: guid, title: title})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// CreateRecord creates a record with the given title and returns its GUID.
func (c *collection) CreateRecord(ctx context.Context, title string) (string, error) {
	guid := uuid.NewString()
	_, err := c.store.db.ExecContext(ctx,
		"INSERT INTO records (guid, collection, title, created_at) VALUES (?, ?, ?, ?)",
		guid, c.name, title, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("creating record: %w", err)
	}
	return guid, nil
}

// record implements driven.Record.
type record struct {
	collection *collection
	guid       string
	title      string
}

var _ driven.Record = (*record)(nil)

func (r *record) GUID() string {
	return r.guid
}

func (r *record) Title() string {
	return r.title
}

// Field returns the named field, or nil when the collection schema has no
// field with that id.
func (r *record) Field(id string) driven.Field {
	var kind, choicesJSON string
	row := r.collection.store.db.QueryRow(
		"SELECT kind, choices FROM collection_fields WHERE collection = ? AND field_id = ?",
		r.collection.name, id)
	if err := row.Scan(&kind, &choicesJSON); err != nil {
		return nil
	}

	var choices []string
	if err := json.Unmarshal([]byte(choicesJSON), &choices); err != nil {
		return nil
	}

	return &field{
		store:   r.collection.store,
		guid:    r.guid,
		id:      id,
		kind:    kind,
		choices: choices,
	}
}

// field implements driven.Field over the record_fields table.
type field struct {
	store   *Store
	guid    string
	id      string
	kind    string
	choices []string
}

var _ driven.Field = (*field)(nil)

// row reads the field's value row. Missing rows yield zero values.
func (f *field) row() (text string, number float64, date time.Time, choice string) {
	var dateStr sql.NullString
	r := f.store.db.QueryRow(`
		SELECT text_value, number_value, date_value, choice_value
		FROM record_fields WHERE record_guid = ? AND field_id = ?
	`, f.guid, f.id)
	if err := r.Scan(&text, &number, &dateStr, &choice); err != nil {
		return "", 0, time.Time{}, ""
	}
	return text, number, parseNullableTime(dateStr), choice
}

func (f *field) Text() string {
	text, _, _, _ := f.row()
	return text
}

func (f *field) Number() float64 {
	_, number, _, _ := f.row()
	return number
}

func (f *field) Date() time.Time {
	_, _, date, _ := f.row()
	return date
}

func (f *field) Choice() string {
	_, _, _, choice := f.row()
	return choice
}

// Set writes a plain value. The column written depends on the value's type,
// not the field kind, so a choice field can carry a plain text fallback.
func (f *field) Set(value any) error {
	switch v := value.(type) {
	case string:
		return f.write("text_value", v)
	case float64:
		return f.write("number_value", v)
	case int:
		return f.write("number_value", float64(v))
	case time.Time:
		return f.write("date_value", v.Format(time.RFC3339))
	default:
		return fmt.Errorf("%w: field %s does not accept %T", domain.ErrFieldWriteRejected, f.id, value)
	}
}

// SetChoice selects a choice by label. Returns false when the field is not
// a choice field or no choice with that label exists.
func (f *field) SetChoice(label string) bool {
	if f.kind != KindChoice {
		return false
	}
	for _, c := range f.choices {
		if c == label {
			return f.write("choice_value", label) == nil
		}
	}
	return false
}

// write upserts one value column of the field's row.
func (f *field) write(column string, value any) error {
	query := fmt.Sprintf(`
		INSERT INTO record_fields (record_guid, field_id, %s)
		VALUES (?, ?, ?)
		ON CONFLICT(record_guid, field_id) DO UPDATE SET %s = excluded.%s
	`, column, column, column)
	if _, err := f.store.db.Exec(query, f.guid, f.id, value); err != nil {
		return fmt.Errorf("%w: writing field %s: %v", domain.ErrFieldWriteRejected, f.id, err)
	}
	return nil
}

// ==================== Content Sink ====================

// contentSink implements driven.ContentSink over the content_blocks table.
type contentSink struct {
	store *Store
}

var _ driven.ContentSink = (*contentSink)(nil)

// InsertContent writes first-time content for a record.
func (s *contentSink) InsertContent(ctx context.Context, block string, recordGUID string) error {
	_, err := s.store.db.ExecContext(ctx,
		"INSERT INTO content_blocks (record_guid, block, updated_at) VALUES (?, ?, ?)",
		recordGUID, block, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting content: %w", err)
	}
	return nil
}

// ReplaceContent swaps a record's content for the new block.
func (s *contentSink) ReplaceContent(ctx context.Context, block string, recordGUID string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO content_blocks (record_guid, block, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(record_guid) DO UPDATE SET
			block = excluded.block,
			updated_at = excluded.updated_at
	`, recordGUID, block, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("replacing content: %w", err)
	}
	return nil
}

// Content returns the stored block for a record, or empty when none exists.
func (s *Store) Content(ctx context.Context, recordGUID string) (string, error) {
	var block string
	row := s.db.QueryRowContext(ctx,
		"SELECT block FROM content_blocks WHERE record_guid = ?", recordGUID)
	if err := row.Scan(&block); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("querying content: %w", err)
	}
	return block, nil
}
