// Package contacts syncs a Google account's contacts through the People
// API. Each contact becomes a parent record; its email addresses and phone
// numbers are merged into the record's content.
package contacts
