// Package services implements the core business logic for RecordHub.
//
// Services orchestrate the sync pipeline: classifying raw items, reconciling
// parents against the local record store, building the change journal, and
// sequencing whole runs. They depend only on domain types and the port
// interfaces; adapters and connectors are injected at construction.
package services
