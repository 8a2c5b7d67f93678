package domain

import "time"

// RawItem is a source-native item as returned by a remote API, before
// classification and normalization. An item with a non-empty ParentID is a
// child merged into its parent's content; everything else is a parent that
// becomes one local record.
type RawItem struct {
	// ID is the source-scoped identifier. Required.
	ID string

	// ParentID links a child item to its parent. Empty for parents.
	ParentID string

	// UpdatedAt is when the source last modified the item, if reported.
	UpdatedAt time.Time

	// CreatedAt is when the source captured the item, if reported.
	CreatedAt time.Time

	// Title is the item's display title (parents).
	Title string

	// Author is the originating author, if any.
	Author string

	// URL is a link back to the item at the source.
	URL string

	// Category is the source's own classification (e.g. "article", "rss").
	Category string

	// Summary is an optional parent-level summary rendered ahead of
	// child content.
	Summary string

	// Body is the item's text content. For children this is the quoted
	// excerpt; for parents it is usually empty.
	Body string

	// Note is an optional annotation attached to a child.
	Note string

	// Extra carries source-specific fields that normalization may map
	// onto record fields.
	Extra map[string]string
}

// IsChild reports whether the item attaches to a parent.
func (i *RawItem) IsChild() bool {
	return i.ParentID != ""
}

// ItemGroup pairs a parent with its children in source emission order.
type ItemGroup struct {
	// Parent is the item that becomes one local record.
	Parent RawItem

	// Children are the items merged into the parent's content,
	// in the order the source emitted them.
	Children []RawItem
}

// SourceRules configures per-source classification behaviour.
// Exclusion and the no-content-without-children rule belong to the source,
// not the engine.
type SourceRules struct {
	// RequireChildren drops parents with zero matched children.
	RequireChildren bool

	// Exclude drops a parent before reconciliation when it returns true.
	// Nil means nothing is excluded.
	Exclude func(parent RawItem) bool
}

// Excluded reports whether the rules exclude the given parent.
func (r SourceRules) Excluded(parent RawItem) bool {
	return r.Exclude != nil && r.Exclude(parent)
}
