package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ierg/nscsync/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	require.Error(t, err)
}

func TestRecordAndListEvents(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	fileTime := time.Date(2024, time.January, 15, 9, 30, 0, 0, time.UTC)
	events := []model.SyncEvent{
		{
			RemoteName: "12345678_000042_DETLRPT_SE_01152024093000_ipeds_98765_2023_se.csv",
			LocalName:  "12345678_DETLRPT_SE_01152024093000_ipeds_98765_2023_se.csv",
			Rule:       "IPEDS",
			Status:     model.StatusRenamed,
			FileTime:   fileTime,
		},
		{
			RemoteName: "garbage.csv",
			Status:     model.StatusQuarantinedUnparsed,
			Detail:     "expected 6 underscore-delimited segments, found 1",
		},
	}

	for _, event := range events {
		require.NoError(t, store.RecordEvent(ctx, event))
	}

	got, err := store.RecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, "garbage.csv", got[0].RemoteName)
	assert.Equal(t, model.StatusQuarantinedUnparsed, got[0].Status)
	assert.True(t, got[0].FileTime.IsZero())

	assert.Equal(t, "IPEDS", got[1].Rule)
	assert.Equal(t, model.StatusRenamed, got[1].Status)
	assert.True(t, fileTime.Equal(got[1].FileTime))
	assert.False(t, got[1].Timestamp.IsZero())
}

func TestRecordEventValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.RecordEvent(ctx, model.SyncEvent{Status: model.StatusRenamed})
	require.Error(t, err)

	err = store.RecordEvent(ctx, model.SyncEvent{RemoteName: "x.csv"})
	require.Error(t, err)
}

func TestRecentEventsLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordEvent(ctx, model.SyncEvent{
			RemoteName: "file.csv",
			Status:     model.StatusUploaded,
		}))
	}

	got, err := store.RecentEvents(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestWatermarkRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	mark, err := store.Watermark(ctx, "receive")
	require.NoError(t, err)
	assert.True(t, mark.IsZero())

	want := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetWatermark(ctx, "receive", want))

	mark, err = store.Watermark(ctx, "receive")
	require.NoError(t, err)
	assert.True(t, want.Equal(mark))

	// Advancing replaces the previous value.
	later := want.Add(24 * time.Hour)
	require.NoError(t, store.SetWatermark(ctx, "receive", later))

	mark, err = store.Watermark(ctx, "receive")
	require.NoError(t, err)
	assert.True(t, later.Equal(mark))
}

func TestStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	store, err := NewStore(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.RecordEvent(ctx, model.SyncEvent{
		RemoteName: "file.csv",
		Status:     model.StatusRenamed,
	}))
	require.NoError(t, store.Close())

	store, err = NewStore(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	got, err := store.RecentEvents(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
