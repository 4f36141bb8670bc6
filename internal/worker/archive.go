package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/mobileid/portal/internal/suggestion"
)

// ErrMalformed marks a message that can never be processed. It is acked and
// dropped rather than redelivered.
var ErrMalformed = errors.New("malformed message")

// ArchiveStats counts archiver outcomes.
type ArchiveStats struct {
	Archived int64
	Dropped  int64
	Failed   int64
}

// Archiver stores suggestions announced on Pub/Sub.
type Archiver struct {
	repo   suggestion.Repository
	logger zerolog.Logger

	archived atomic.Int64
	dropped  atomic.Int64
	failed   atomic.Int64
}

// NewArchiver creates an archiver writing to repo.
func NewArchiver(repo suggestion.Repository, logger zerolog.Logger) *Archiver {
	return &Archiver{repo: repo, logger: logger}
}

// Archive decodes one suggestion message and stores it. Redelivered
// messages are harmless because the repository ignores known IDs.
func (a *Archiver) Archive(ctx context.Context, data []byte) error {
	var s suggestion.Suggestion
	if err := json.Unmarshal(data, &s); err != nil {
		a.dropped.Add(1)
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if s.ID == "" || s.CreatedAt.IsZero() {
		a.dropped.Add(1)
		return fmt.Errorf("%w: suggestion without id or createdAt", ErrMalformed)
	}

	in, err := suggestion.Validate(suggestion.Input{Type: s.Type, Details: s.Details})
	if err != nil {
		a.dropped.Add(1)
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	s.Type, s.Details = in.Type, in.Details

	if err := a.repo.Create(ctx, s); err != nil {
		a.failed.Add(1)
		return fmt.Errorf("archiving suggestion %s: %w", s.ID, err)
	}

	a.archived.Add(1)
	a.logger.Info().
		Str("suggestion_id", s.ID).
		Str("type", s.Type).
		Msg("suggestion archived")
	return nil
}

// Stats returns the counters so far.
func (a *Archiver) Stats() ArchiveStats {
	return ArchiveStats{
		Archived: a.archived.Load(),
		Dropped:  a.dropped.Load(),
		Failed:   a.failed.Load(),
	}
}
