// Package readwise syncs documents and highlights from the Readwise Reader
// API. Documents become parent records; their highlights are merged into
// the record's content, blockquoted in API order.
package readwise
