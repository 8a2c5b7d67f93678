package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
)

// Ensure the types implement the interfaces.
var (
	_ driven.RecordStore = (*RecordStore)(nil)
	_ driven.Collection  = (*Collection)(nil)
	_ driven.Record      = (*Record)(nil)
	_ driven.Field       = (*Field)(nil)
)

// FieldKind names the value type a field accepts.
type FieldKind int

const (
	// KindText stores a string.
	KindText FieldKind = iota
	// KindNumber stores a float64.
	KindNumber
	// KindDate stores a time.Time.
	KindDate
	// KindChoice stores one label from a fixed set.
	KindChoice
)

// FieldSpec declares one field of a collection's schema.
type FieldSpec struct {
	Kind FieldKind

	// Choices are the valid labels for a KindChoice field.
	Choices []string

	// Reject makes every Set fail, to exercise rejected-write handling.
	Reject bool
}

// Schema maps field ids to their specs. Records expose exactly the
// schema's fields and nothing else.
type Schema map[string]FieldSpec

// SyncSchema is the default schema for a sync target collection.
// Category choices cover the common remote categories; anything outside
// the list falls back to a text write.
func SyncSchema() Schema {
	return Schema{
		domain.FieldExternalID: {Kind: KindText},
		domain.FieldSource:     {Kind: KindText},
		domain.FieldAuthor:     {Kind: KindText},
		domain.FieldURL:        {Kind: KindText},
		domain.FieldCategory:   {Kind: KindChoice, Choices: []string{"article", "book", "email", "podcast", "tweet"}},
		domain.FieldState:      {Kind: KindChoice, Choices: []string{"open", "closed"}},
		domain.FieldChildCount: {Kind: KindNumber},
		domain.FieldCapturedAt: {Kind: KindDate},
		domain.FieldUpdatedAt:  {Kind: KindText},
	}
}

// RecordStore is an in-memory implementation of driven.RecordStore.
//
// CreateReadbacks delays a new record's visibility by that many
// GetAllRecords calls, mimicking the eventually-visible creation of real
// record hosts. Zero means records are visible immediately.
type RecordStore struct {
	mu          sync.RWMutex
	collections map[string]*Collection

	CreateReadbacks int
}

// NewRecordStore creates an empty in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		collections: make(map[string]*Collection),
	}
}

// AddCollection creates a collection with the given schema and returns it.
func (s *RecordStore) AddCollection(name string, schema Schema) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &Collection{name: name, schema: schema, store: s}
	s.collections[name] = c
	return c
}

// GetAllCollections lists every collection in the store.
func (s *RecordStore) GetAllCollections(_ context.Context) ([]driven.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]driven.Collection, 0, len(s.collections))
	for _, c := range s.collections {
		result = append(result, c)
	}
	return result, nil
}

// Collection returns the named collection.
func (s *RecordStore) Collection(_ context.Context, name string) (driven.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return c, nil
}

// Collection is an in-memory implementation of driven.Collection.
type Collection struct {
	mu      sync.Mutex
	name    string
	schema  Schema
	records []*Record

	// hidden counts down per GetAllRecords call before a freshly created
	// record becomes visible.
	hidden map[string]int

	store *RecordStore
}

// Name returns the collection's display name.
func (c *Collection) Name() string { return c.name }

// GetAllRecords returns the currently visible records.
func (c *Collection) GetAllRecords(_ context.Context) ([]driven.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]driven.Record, 0, len(c.records))
	for _, rec := range c.records {
		if left, ok := c.hidden[rec.guid]; ok {
			if left > 1 {
				c.hidden[rec.guid] = left - 1
				continue
			}
			delete(c.hidden, rec.guid)
		}
		result = append(result, rec)
	}
	return result, nil
}

// CreateRecord creates a record with the given title and returns its GUID.
func (c *Collection) CreateRecord(_ context.Context, title string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := &Record{guid: uuid.NewString(), title: title, fields: make(map[string]*Field, len(c.schema))}
	for id, spec := range c.schema {
		rec.fields[id] = &Field{spec: spec}
	}
	c.records = append(c.records, rec)

	if c.store != nil && c.store.CreateReadbacks > 0 {
		if c.hidden == nil {
			c.hidden = make(map[string]int)
		}
		c.hidden[rec.guid] = c.store.CreateReadbacks
	}
	return rec.guid, nil
}

// Record is an in-memory implementation of driven.Record.
type Record struct {
	guid   string
	title  string
	fields map[string]*Field
}

// GUID returns the storage-assigned identifier.
func (r *Record) GUID() string { return r.guid }

// Title returns the record's display name.
func (r *Record) Title() string { return r.title }

// Field returns the named field, or nil if the schema has no such field.
func (r *Record) Field(id string) driven.Field {
	field, ok := r.fields[id]
	if !ok {
		return nil
	}
	return field
}

// Field is an in-memory implementation of driven.Field.
type Field struct {
	mu   sync.Mutex
	spec FieldSpec

	text   string
	number float64
	date   time.Time
	choice string
}

// Text returns the field's string value.
func (f *Field) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

// Number returns the field's numeric value.
func (f *Field) Number() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.number
}

// Date returns the field's time value.
func (f *Field) Date() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.date
}

// Choice returns the selected choice label.
func (f *Field) Choice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.choice
}

// Set writes a plain value.
func (f *Field) Set(value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.spec.Reject {
		return fmt.Errorf("%w: field rejects writes", domain.ErrFieldWriteRejected)
	}

	switch v := value.(type) {
	case string:
		f.text = v
	case float64:
		f.number = v
	case int:
		f.number = float64(v)
	case time.Time:
		f.date = v
	default:
		return fmt.Errorf("%w: unsupported value type %T", domain.ErrFieldWriteRejected, value)
	}
	return nil
}

// SetChoice selects a choice by label. Returns false when the field has no
// choice with that label.
func (f *Field) SetChoice(label string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.spec.Kind != KindChoice {
		return false
	}
	for _, c := range f.spec.Choices {
		if c == label {
			f.choice = label
			return true
		}
	}
	return false
}
