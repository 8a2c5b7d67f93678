package services

import (
	"context"
	"fmt"
	"time"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
	"github.com/recordhub/recordhub-cli/internal/logger"
)

// Record creation is eventually visible in the collection, so a freshly
// created record is re-read a bounded number of times before giving up.
const (
	defaultReadbackAttempts = 5
	defaultReadbackDelay    = 50 * time.Millisecond
)

// Reconciler merges one run's item groups into a collection. Records are
// matched on the external id field only; a match with an unchanged child
// count and an unmoved updated_at marker is a noop, everything else is a
// create or a full-overwrite update.
//
// A Reconciler is built per run: Load indexes the collection's current
// records, Reconcile processes one group at a time, Journal returns the
// accumulated change events afterwards.
type Reconciler struct {
	collection driven.Collection
	content    driven.ContentSink

	// ReadbackAttempts and ReadbackDelay bound the wait for a freshly
	// created record to become readable.
	ReadbackAttempts int
	ReadbackDelay    time.Duration

	byExternalID map[string]driven.Record
	recordCount  int
	journal      domain.Journal
}

// NewReconciler creates a reconciler over the given collection.
func NewReconciler(collection driven.Collection, content driven.ContentSink) *Reconciler {
	return &Reconciler{
		collection:       collection,
		content:          content,
		ReadbackAttempts: defaultReadbackAttempts,
		ReadbackDelay:    defaultReadbackDelay,
	}
}

// Load reads the collection and indexes its records by external id.
// When two records carry the same external id the first one wins and the
// duplicate is left untouched.
func (r *Reconciler) Load(ctx context.Context) error {
	records, err := r.collection.GetAllRecords(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	r.recordCount = len(records)
	r.byExternalID = make(map[string]driven.Record, len(records))
	for _, rec := range records {
		field := rec.Field(domain.FieldExternalID)
		if field == nil {
			continue
		}
		id := field.Text()
		if id == "" {
			continue
		}
		if _, ok := r.byExternalID[id]; ok {
			logger.Warn("Duplicate external id %q in collection %s, keeping first record", id, r.collection.Name())
			continue
		}
		r.byExternalID[id] = rec
	}
	return nil
}

// Reconcile merges one item group into the collection and reports the
// action taken. An error wrapping domain.ErrRecordNotVisible means the
// created record never became readable; the group is skipped and the run
// continues.
func (r *Reconciler) Reconcile(ctx context.Context, connector driven.SourceConnector, group domain.ItemGroup) (domain.ReconcileAction, error) {
	fields := connector.Normalize(group.Parent, len(group.Children))
	if fields.ExternalID == "" {
		return domain.ActionNoop, fmt.Errorf("item %s: %w: empty external id", group.Parent.ID, domain.ErrInvalidInput)
	}

	if existing, ok := r.byExternalID[fields.ExternalID]; ok {
		return r.update(ctx, connector, group, fields, existing)
	}
	return r.create(ctx, connector, group, fields)
}

// Journal returns the run's change events in append order.
func (r *Reconciler) Journal() []domain.ChangeEvent {
	return r.journal.Events()
}

// RecordCount returns the number of records the collection held at Load
// time. Zero marks a bootstrap run.
func (r *Reconciler) RecordCount() int {
	return r.recordCount
}

func (r *Reconciler) create(ctx context.Context, connector driven.SourceConnector, group domain.ItemGroup, fields domain.RecordFields) (domain.ReconcileAction, error) {
	guid, err := r.collection.CreateRecord(ctx, fields.Title)
	if err != nil {
		return domain.ActionNoop, fmt.Errorf("create record: %w", err)
	}

	rec, err := r.awaitRecord(ctx, guid)
	if err != nil {
		return domain.ActionNoop, err
	}
	r.byExternalID[fields.ExternalID] = rec

	r.writeFields(rec, fields)

	if block := connector.RenderContent(group.Parent, group.Children); block != "" {
		if err := r.content.InsertContent(ctx, block, guid); err != nil {
			return domain.ActionNoop, fmt.Errorf("insert content: %w", err)
		}
	}

	logger.Debug("Created record %s (%s)", guid, fields.Title)
	r.journal.Record(domain.VerbCreated, fields.Title, guid, true, childBodies(group.Children, 0))
	return domain.ActionCreate, nil
}

func (r *Reconciler) update(ctx context.Context, connector driven.SourceConnector, group domain.ItemGroup, fields domain.RecordFields, rec driven.Record) (domain.ReconcileAction, error) {
	storedCount := -1
	if field := rec.Field(domain.FieldChildCount); field != nil {
		storedCount = int(field.Number())
	}
	changed := storedCount != fields.ChildCount
	if !changed && fields.UpdatedAt != "" {
		if field := rec.Field(domain.FieldUpdatedAt); field != nil {
			changed = field.Text() != fields.UpdatedAt
		}
	}
	if !changed {
		return domain.ActionNoop, nil
	}

	r.writeFields(rec, fields)

	if block := connector.RenderContent(group.Parent, group.Children); block != "" {
		if err := r.content.ReplaceContent(ctx, block, rec.GUID()); err != nil {
			return domain.ActionNoop, fmt.Errorf("replace content: %w", err)
		}
	}

	logger.Debug("Updated record %s (%s): %d -> %d children", rec.GUID(), fields.Title, storedCount, fields.ChildCount)
	r.journal.Record(domain.VerbUpdated, fields.Title, rec.GUID(), false, childBodies(group.Children, storedCount))
	return domain.ActionUpdate, nil
}

// awaitRecord re-reads the collection until the created record shows up.
// Returns an error wrapping domain.ErrRecordNotVisible when it never does.
func (r *Reconciler) awaitRecord(ctx context.Context, guid string) (driven.Record, error) {
	for attempt := 0; attempt < r.ReadbackAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.ReadbackDelay):
		}

		records, err := r.collection.GetAllRecords(ctx)
		if err != nil {
			return nil, fmt.Errorf("read back record: %w", err)
		}
		for _, rec := range records {
			if rec.GUID() == guid {
				return rec, nil
			}
		}
	}
	return nil, fmt.Errorf("record %s: %w", guid, domain.ErrRecordNotVisible)
}

// writeFields overwrites every mirrored field the record exposes. Missing
// fields are skipped, rejected writes are logged and do not abort the run.
func (r *Reconciler) writeFields(rec driven.Record, fields domain.RecordFields) {
	r.writeValue(rec, domain.FieldExternalID, fields.ExternalID)
	r.writeValue(rec, domain.FieldSource, fields.Source)
	r.writeValue(rec, domain.FieldAuthor, fields.Author)
	r.writeValue(rec, domain.FieldURL, fields.URL)
	r.writeChoice(rec, domain.FieldCategory, fields.Category)
	r.writeChoice(rec, domain.FieldState, fields.State)
	r.writeValue(rec, domain.FieldChildCount, float64(fields.ChildCount))
	if !fields.CapturedAt.IsZero() {
		r.writeValue(rec, domain.FieldCapturedAt, fields.CapturedAt)
	}
	if fields.UpdatedAt != "" {
		r.writeValue(rec, domain.FieldUpdatedAt, fields.UpdatedAt)
	}
	for id, value := range fields.Extra {
		r.writeValue(rec, id, value)
	}
}

func (r *Reconciler) writeValue(rec driven.Record, id string, value any) {
	field := rec.Field(id)
	if field == nil {
		return
	}
	if err := field.Set(value); err != nil {
		logger.Warn("Record %s: write %s: %v", rec.GUID(), id, err)
	}
}

// writeChoice selects a choice by label and falls back to a plain text
// write when the collection has no matching choice.
func (r *Reconciler) writeChoice(rec driven.Record, id string, label string) {
	if label == "" {
		return
	}
	field := rec.Field(id)
	if field == nil {
		return
	}
	if field.SetChoice(label) {
		return
	}
	if err := field.Set(label); err != nil {
		logger.Warn("Record %s: write %s: %v", rec.GUID(), id, err)
	}
}

// childBodies returns the bodies of the children past the given offset,
// used as journal excerpts. A negative offset means all children.
func childBodies(children []domain.RawItem, from int) []string {
	if from < 0 {
		from = 0
	}
	if from > len(children) {
		from = len(children)
	}
	bodies := make([]string, 0, len(children)-from)
	for _, child := range children[from:] {
		bodies = append(bodies, child.Body)
	}
	return bodies
}
