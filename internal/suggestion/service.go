package suggestion

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the suggestion service.
type ServiceConfig struct {
	Repository Repository
	Notifier   Notifier
	Logger     zerolog.Logger
	Now        func() time.Time
}

// Service validates, stores and announces suggestions.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a suggestion service. A nil Repository means in-memory
// storage and a nil Notifier means no notifications.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Repository == nil {
		cfg.Repository = NewInMemoryRepository()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NopNotifier{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		repo:     cfg.Repository,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
}

// Validate normalizes in and checks it. An empty type becomes DefaultType.
func Validate(in Input) (Input, error) {
	in.Type = strings.TrimSpace(in.Type)
	if in.Type == "" {
		in.Type = DefaultType
	}
	if !ValidType(in.Type) {
		return in, fmt.Errorf("%w: %q", ErrInvalidType, in.Type)
	}

	in.Details = strings.TrimSpace(in.Details)
	if in.Details == "" {
		return in, ErrEmptyDetails
	}
	if utf8.RuneCountInString(in.Details) > MaxDetailsLength {
		return in, ErrTooLong
	}
	return in, nil
}

// Submit validates and stores a suggestion. Notification failures are logged
// and do not fail the submission.
func (s *Service) Submit(ctx context.Context, in Input) (Suggestion, error) {
	in, err := Validate(in)
	if err != nil {
		return Suggestion{}, err
	}

	sg := Suggestion{
		ID:        uuid.NewString(),
		Type:      in.Type,
		Details:   in.Details,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, sg); err != nil {
		return Suggestion{}, fmt.Errorf("storing suggestion: %w", err)
	}

	if err := s.notifier.Notify(ctx, sg); err != nil {
		s.logger.Warn().Err(err).Str("suggestion_id", sg.ID).Msg("suggestion notification failed")
	}

	s.logger.Info().Str("suggestion_id", sg.ID).Str("type", sg.Type).Msg("suggestion received")
	return sg, nil
}

// List returns up to limit suggestions, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Suggestion, error) {
	return s.repo.List(ctx, limit)
}
