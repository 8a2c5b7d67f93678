package driven

import "context"

// ContentSink receives a parent's rendered content block. Exactly one of
// the two methods is invoked per parent per run: InsertContent for a record
// created this run, ReplaceContent for an existing one.
type ContentSink interface {
	// InsertContent writes first-time content for a record.
	InsertContent(ctx context.Context, block string, recordGUID string) error

	// ReplaceContent swaps a record's content for the new block.
	ReplaceContent(ctx context.Context, block string, recordGUID string) error
}
