// Package tracker syncs issues from a GitHub repository. Each issue
// becomes a parent record; its comments are merged into the record's
// content in the order GitHub returns them.
package tracker
