package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
)

// journalSink implements driven.JournalSink over the journal_events table.
type journalSink struct {
	store *Store
}

var _ driven.JournalSink = (*journalSink)(nil)

// Write delivers the run's events in append order.
func (s *journalSink) Write(ctx context.Context, sourceID string, events []domain.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO journal_events (source_id, verb, title, record_guid, major, excerpts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, event := range events {
		excerptsJSON, err := json.Marshal(event.Excerpts)
		if err != nil {
			return fmt.Errorf("marshalling excerpts: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, sourceID, string(event.Verb), event.Title,
			event.RecordGUID, boolToInt(event.Major), string(excerptsJSON), now); err != nil {
			return fmt.Errorf("writing journal event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListEvents returns the most recent journal events for a source, newest
// first. An empty sourceID lists events across all sources.
func (s *Store) ListEvents(ctx context.Context, sourceID string, limit int) ([]domain.ChangeEvent, error) {
	query := `
		SELECT verb, title, record_guid, major, excerpts
		FROM journal_events
	`
	args := []any{}
	if sourceID != "" {
		query += " WHERE source_id = ?"
		args = append(args, sourceID)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal events: %w", err)
	}
	defer rows.Close()

	var events []domain.ChangeEvent //nolint:prealloc // size unknown from query
	for rows.Next() {
		event, err := scanJournalEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal events: %w", err)
	}
	return events, nil
}

// scanJournalEvent scans a journal event from *sql.Rows.
func scanJournalEvent(rows *sql.Rows) (*domain.ChangeEvent, error) {
	var event domain.ChangeEvent
	var verb, excerptsJSON string
	var major int

	if err := rows.Scan(&verb, &event.Title, &event.RecordGUID, &major, &excerptsJSON); err != nil {
		return nil, fmt.Errorf("scanning journal event: %w", err)
	}

	if err := json.Unmarshal([]byte(excerptsJSON), &event.Excerpts); err != nil {
		return nil, fmt.Errorf("unmarshaling excerpts: %w", err)
	}
	event.Verb = domain.ChangeVerb(verb)
	event.Major = major == 1

	return &event, nil
}
