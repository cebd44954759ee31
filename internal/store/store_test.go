package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(host, uuid string, collectedAt time.Time) *ReportRecord {
	return &ReportRecord{
		Name:           "report.json",
		Hostname:       host,
		SystemUUID:     uuid,
		SystemSerial:   "ABC123",
		Format:         "json",
		Digest:         "d-" + host + "-" + collectedAt.Format(time.RFC3339),
		UnknownClasses: []string{"audio", "usb"},
		CollectedAt:    collectedAt,
		Data:           []byte(`{"schemaVersion": 1}`),
	}
}

func TestInsertGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	collected := time.Date(2026, 3, 1, 10, 30, 0, 500, time.UTC)

	id, storedAt, err := s.Insert(ctx, record("host-a", "uuid-a", collected))
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.False(t, storedAt.IsZero())

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "report.json", got.Name)
	assert.Equal(t, "host-a", got.Hostname)
	assert.Equal(t, "uuid-a", got.SystemUUID)
	assert.Equal(t, "ABC123", got.SystemSerial)
	assert.Equal(t, "json", got.Format)
	assert.Equal(t, []string{"audio", "usb"}, got.UnknownClasses)
	assert.True(t, collected.Equal(got.CollectedAt))
	assert.True(t, storedAt.Equal(got.StoredAt))
	assert.Equal(t, []byte(`{"schemaVersion": 1}`), got.Data)

	_, err = s.Get(ctx, id+100)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestNoUnknownClasses(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	rec := record("host-a", "", time.Now())
	rec.UnknownClasses = nil
	id, _, err := s.Insert(ctx, rec)
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.UnknownClasses)
}

func TestLatest(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, _, err := s.Insert(ctx, record("host-a", "uuid-a", base))
	require.NoError(t, err)
	newest, _, err := s.Insert(ctx, record("host-a", "uuid-a", base.Add(time.Hour)))
	require.NoError(t, err)
	_, _, err = s.Insert(ctx, record("host-a", "uuid-a", base.Add(30*time.Minute)))
	require.NoError(t, err)
	_, _, err = s.Insert(ctx, record("host-b", "uuid-a", base.Add(2*time.Hour)))
	require.NoError(t, err)

	got, err := s.Latest(ctx, "host-a", "uuid-a")
	require.NoError(t, err)
	assert.Equal(t, newest, got.ID)

	_, err = s.Latest(ctx, "host-c", "")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLatestSubSecondOrdering(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 5, 0, time.UTC)

	_, _, err := s.Insert(ctx, record("host-a", "", base))
	require.NoError(t, err)
	later, _, err := s.Insert(ctx, record("host-a", "", base.Add(500*time.Millisecond)))
	require.NoError(t, err)

	got, err := s.Latest(ctx, "host-a", "")
	require.NoError(t, err)
	assert.Equal(t, later, got.ID)
}

func TestList(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, _, err := s.Insert(ctx, record("host-a", "uuid-a", base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	_, _, err := s.Insert(ctx, record("host-b", "uuid-b", base))
	require.NoError(t, err)

	all, total, err := s.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	assert.Len(t, all, 6)
	for _, rec := range all {
		assert.Empty(t, rec.Data)
	}

	page, total, err := s.List(ctx, ListFilter{Hostname: "host-a", PageSize: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.True(t, base.Add(2*time.Hour).Equal(page[0].CollectedAt))
	assert.True(t, base.Add(time.Hour).Equal(page[1].CollectedAt))

	after := base.Add(3 * time.Hour)
	recent, total, err := s.List(ctx, ListFilter{SystemUUID: "uuid-a", CollectedAfter: &after})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, recent, 2)

	before := base
	old, total, err := s.List(ctx, ListFilter{CollectedBefore: &before})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, old, 2)
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, _, err := s.Insert(ctx, record("host-a", "", time.Now()))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))
	assert.ErrorIs(t, s.Delete(ctx, id), sql.ErrNoRows)
}

func TestPurge(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, _, err := s.Insert(ctx, record("host-a", "", now.Add(-72*time.Hour)))
	require.NoError(t, err)
	_, _, err = s.Insert(ctx, record("host-a", "", now.Add(-49*time.Hour)))
	require.NoError(t, err)
	keep, _, err := s.Insert(ctx, record("host-a", "", now.Add(-time.Hour)))
	require.NoError(t, err)

	n, err := s.Purge(ctx, 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rest, total, err := s.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, keep, rest[0].ID)
}
