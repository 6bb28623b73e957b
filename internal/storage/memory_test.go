package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/chengjiao-crawler/internal/domain"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := sampleRecord()

	ok, err := s.Exists(ctx, rec.URL)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.FindByURL(ctx, rec.URL)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Insert(ctx, rec))
	assert.ErrorIs(t, s.Insert(ctx, &domain.TransactionRecord{URL: rec.URL, Name: "other"}), domain.ErrDuplicateRecord)

	ok, err = s.Exists(ctx, rec.URL)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.FindByURL(ctx, rec.URL)
	require.NoError(t, err)
	assert.Equal(t, rec, got, "first write wins")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
