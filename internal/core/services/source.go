package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driving"
)

// Ensure SourceService implements the interface.
var _ driving.SourceService = (*SourceService)(nil)

// SourceService manages source configurations.
type SourceService struct {
	sourceStore driven.SourceStore
	cursorStore driven.CursorStore
	factory     driven.ConnectorFactory
}

// NewSourceService creates a new source service.
func NewSourceService(sourceStore driven.SourceStore, cursorStore driven.CursorStore, factory driven.ConnectorFactory) *SourceService {
	return &SourceService{
		sourceStore: sourceStore,
		cursorStore: cursorStore,
		factory:     factory,
	}
}

// Add validates and stores a new source, returning its generated ID.
func (s *SourceService) Add(ctx context.Context, source domain.Source) (string, error) {
	if source.Type == "" || source.Name == "" {
		return "", fmt.Errorf("%w: type and name are required", domain.ErrInvalidInput)
	}
	if s.factory != nil && !supportedType(s.factory.SupportedTypes(), source.Type) {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedType, source.Type)
	}

	if source.ID == "" {
		source.ID = uuid.NewString()
	} else {
		existing, err := s.sourceStore.Get(ctx, source.ID)
		if err == nil && existing != nil {
			return "", fmt.Errorf("source %s: %w", source.ID, domain.ErrAlreadyExists)
		}
	}

	now := time.Now()
	source.CreatedAt = now
	source.UpdatedAt = now

	if err := s.sourceStore.Save(ctx, source); err != nil {
		return "", fmt.Errorf("save source: %w", err)
	}
	return source.ID, nil
}

// Get retrieves a source by ID.
func (s *SourceService) Get(ctx context.Context, id string) (*domain.Source, error) {
	return s.sourceStore.Get(ctx, id)
}

// List returns all configured sources.
func (s *SourceService) List(ctx context.Context) ([]domain.Source, error) {
	return s.sourceStore.List(ctx)
}

// Remove deletes a source and its cursor. The synced records stay in the
// collection; only the source configuration and watermark go away.
func (s *SourceService) Remove(ctx context.Context, id string) error {
	if _, err := s.sourceStore.Get(ctx, id); err != nil {
		return err
	}

	if s.cursorStore != nil {
		if err := s.cursorStore.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete cursor: %w", err)
		}
	}
	return s.sourceStore.Delete(ctx, id)
}

func supportedType(types []string, t string) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
