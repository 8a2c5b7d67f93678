package domain

import "fmt"

// SyncSummary is the outcome of one sync run.
type SyncSummary struct {
	// SourceID identifies the synced source.
	SourceID string

	// Created is the number of records created.
	Created int

	// Updated is the number of records updated.
	Updated int

	// Skipped is the number of parents skipped due to per-item errors.
	Skipped int

	// Journal is the ordered change log for the run.
	Journal []ChangeEvent
}

// Line renders the one-line human-readable summary.
func (s *SyncSummary) Line() string {
	if s.Created == 0 && s.Updated == 0 {
		return "No changes"
	}
	return fmt.Sprintf("%d new, %d updated", s.Created, s.Updated)
}
