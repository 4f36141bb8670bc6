package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobileid/portal/internal/suggestion"
	"github.com/mobileid/portal/internal/worker"
)

type failingRepo struct{ suggestion.Repository }

func (failingRepo) Create(context.Context, suggestion.Suggestion) error {
	return errors.New("connection reset")
}

func message(t *testing.T, s suggestion.Suggestion) []byte {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	return data
}

func TestArchiver_Archive(t *testing.T) {
	repo := suggestion.NewInMemoryRepository()
	a := worker.NewArchiver(repo, zerolog.Nop())

	s := suggestion.Suggestion{
		ID:        "0b7e4c5e-8f9d-4a57-9d8e-4b0c0f6f1a11",
		Type:      suggestion.TypeFeature,
		Details:   "  지갑 앱 연동  ",
		CreatedAt: time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC),
	}

	require.NoError(t, a.Archive(context.Background(), message(t, s)))
	// Redelivery is absorbed by the repository.
	require.NoError(t, a.Archive(context.Background(), message(t, s)))

	got, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "지갑 앱 연동", got[0].Details)
	assert.Equal(t, worker.ArchiveStats{Archived: 2}, a.Stats())
}

func TestArchiver_Malformed(t *testing.T) {
	valid := suggestion.Suggestion{ID: "s1", Type: suggestion.TypeBug, Details: "버튼 오류", CreatedAt: time.Now()}

	tests := []struct {
		name string
		data []byte
	}{
		{"not json", []byte("{")},
		{"missing id", message(t, suggestion.Suggestion{Type: suggestion.TypeBug, Details: "x", CreatedAt: time.Now()})},
		{"missing createdAt", message(t, suggestion.Suggestion{ID: "s1", Type: suggestion.TypeBug, Details: "x"})},
		{"unknown type", message(t, suggestion.Suggestion{ID: "s1", Type: "칭찬", Details: "x", CreatedAt: time.Now()})},
		{"empty details", message(t, suggestion.Suggestion{ID: "s1", Type: suggestion.TypeBug, Details: " ", CreatedAt: time.Now()})},
	}

	repo := suggestion.NewInMemoryRepository()
	a := worker.NewArchiver(repo, zerolog.Nop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Archive(context.Background(), tt.data)
			assert.ErrorIs(t, err, worker.ErrMalformed)
		})
	}

	require.NoError(t, a.Archive(context.Background(), message(t, valid)))
	assert.Equal(t, worker.ArchiveStats{Archived: 1, Dropped: int64(len(tests))}, a.Stats())
}

func TestArchiver_RepositoryFailure(t *testing.T) {
	a := worker.NewArchiver(failingRepo{}, zerolog.Nop())

	err := a.Archive(context.Background(), message(t, suggestion.Suggestion{
		ID: "s1", Type: suggestion.TypeOther, Details: "기타 의견", CreatedAt: time.Now(),
	}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, worker.ErrMalformed)
	assert.Equal(t, worker.ArchiveStats{Failed: 1}, a.Stats())
}
