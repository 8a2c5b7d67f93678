package domain

// ChangeVerb names the kind of change a journal event records.
type ChangeVerb string

const (
	// VerbCreated marks the first appearance of a parent.
	VerbCreated ChangeVerb = "created"

	// VerbUpdated marks additional content merged into an existing parent.
	VerbUpdated ChangeVerb = "updated"
)

// MaxExcerpts bounds the preview of newly merged child content carried on a
// journal event. Excerpts are for human-readable logging only and are never
// used for deduplication or comparison.
const MaxExcerpts = 5

// ChangeEvent describes one create or update performed during a sync run.
// Events are immutable once appended.
type ChangeEvent struct {
	// Verb is the kind of change.
	Verb ChangeVerb

	// Title is the affected record's title.
	Title string

	// RecordGUID references the local record.
	RecordGUID string

	// Major is true exactly when the parent appeared for the first time.
	Major bool

	// Excerpts previews merged child content, at most MaxExcerpts entries.
	Excerpts []string
}

// Journal accumulates the ordered change events of one sync run.
// A noop reconciliation never produces an event.
type Journal struct {
	events []ChangeEvent
}

// Record appends one event. Excerpts are trimmed of empty entries and
// capped at MaxExcerpts.
func (j *Journal) Record(verb ChangeVerb, title, recordGUID string, major bool, excerpts []string) {
	capped := make([]string, 0, MaxExcerpts)
	for _, e := range excerpts {
		if e == "" {
			continue
		}
		capped = append(capped, e)
		if len(capped) == MaxExcerpts {
			break
		}
	}
	j.events = append(j.events, ChangeEvent{
		Verb:       verb,
		Title:      title,
		RecordGUID: recordGUID,
		Major:      major,
		Excerpts:   capped,
	})
}

// Events returns the accumulated events in append order.
func (j *Journal) Events() []ChangeEvent {
	return j.events
}

// Len returns the number of accumulated events.
func (j *Journal) Len() int {
	return len(j.events)
}
