package datastore_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/MeiTetsuH/diffchecker/internal/config"
	"github.com/MeiTetsuH/diffchecker/internal/datastore"
	"github.com/MeiTetsuH/diffchecker/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T, opts ...datastore.StoreOption) *datastore.ComparisonStore {
	t.Helper()
	cfg := config.NewDefaultStorageConfig()
	cfg.SQLiteDBPath = filepath.Join(t.TempDir(), "db", "comparisons.db")

	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	opts = append([]datastore.StoreOption{datastore.WithClock(clock.Now)}, opts...)

	store, err := datastore.NewComparisonStore(cfg, zerolog.Nop(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestComparisonStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	saved, err := store.Save(ctx, models.SavedComparison{
		Name:       "release notes",
		Kind:       models.ComparisonText,
		LeftLabel:  "v1",
		RightLabel: "v2",
		Payload:    []byte(`{"left":"a","right":"b"}`),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, saved.CreatedAt, saved.UpdatedAt)

	loaded, err := store.LoadByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, loaded.ID)
	assert.Equal(t, "release notes", loaded.Name)
	assert.Equal(t, models.ComparisonText, loaded.Kind)
	assert.Equal(t, "v1", loaded.LeftLabel)
	assert.JSONEq(t, `{"left":"a","right":"b"}`, string(loaded.Payload))
	assert.True(t, saved.CreatedAt.Equal(loaded.CreatedAt))
}

func TestComparisonStore_SaveValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Save(ctx, models.SavedComparison{Name: "  "})
	var vErr *common.ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = store.Save(ctx, models.SavedComparison{Name: "bad", Payload: []byte("{not json")})
	assert.ErrorAs(t, err, &vErr)
}

func TestComparisonStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.LoadByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestComparisonStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := range 3 {
		_, err := store.Save(ctx, models.SavedComparison{Name: fmt.Sprintf("cmp-%d", i)})
		require.NoError(t, err)
	}

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"cmp-2", "cmp-1", "cmp-0"}, names(all))

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"cmp-2", "cmp-1"}, names(recent))

	none, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestComparisonStore_QuotaEvictsOldest(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.Equal(t, 100, store.MaxEntries())

	var firstID string
	for i := range 101 {
		saved, err := store.Save(ctx, models.SavedComparison{Name: fmt.Sprintf("cmp-%03d", i)})
		require.NoError(t, err)
		if i == 0 {
			firstID = saved.ID
		}
	}

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	_, err = store.LoadByID(ctx, firstID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cmp-100", all[0].Name)
	assert.Equal(t, "cmp-001", all[len(all)-1].Name)
}

func TestComparisonStore_QuotaOverride(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, datastore.WithMaxEntries(2))

	for i := range 4 {
		_, err := store.Save(ctx, models.SavedComparison{Name: fmt.Sprintf("cmp-%d", i)})
		require.NoError(t, err)
	}
	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cmp-3", "cmp-2"}, names(all))
}

func TestComparisonStore_DeleteAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	saved, err := store.Save(ctx, models.SavedComparison{Name: "draft", LeftLabel: "a"})
	require.NoError(t, err)

	newName := "final"
	updated, err := store.Update(ctx, saved.ID, models.ComparisonUpdate{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Name)
	assert.Equal(t, "a", updated.LeftLabel)
	assert.True(t, updated.UpdatedAt.After(saved.UpdatedAt))

	empty := ""
	_, err = store.Update(ctx, saved.ID, models.ComparisonUpdate{Name: &empty})
	var vErr *common.ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = store.Update(ctx, "missing", models.ComparisonUpdate{Name: &newName})
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.DeleteByID(ctx, saved.ID))
	assert.ErrorIs(t, store.DeleteByID(ctx, saved.ID), common.ErrNotFound)
}

func TestComparisonStore_SearchByName(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, name := range []string{"Quarterly Report", "quarterly budget", "Ünïcode Notes", "misc"} {
		_, err := store.Save(ctx, models.SavedComparison{Name: name})
		require.NoError(t, err)
	}

	hits, err := store.SearchByName(ctx, "QUARTERLY")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Quarterly Report", "quarterly budget"}, names(hits))

	hits, err = store.SearchByName(ctx, "ünï")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ünïcode Notes"}, names(hits))

	hits, err = store.SearchByName(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestComparisonStore_ImportUpserts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, datastore.WithMaxEntries(3))

	saved, err := store.Save(ctx, models.SavedComparison{Name: "original"})
	require.NoError(t, err)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	written, err := store.Import(ctx, []models.SavedComparison{
		{ID: saved.ID, Name: "replaced", CreatedAt: base},
		{Name: "fresh-1", CreatedAt: base.Add(time.Minute)},
		{Name: "fresh-2", CreatedAt: base.Add(2 * time.Minute)},
		{Name: "fresh-3", CreatedAt: base.Add(3 * time.Minute)},
		{Name: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, written)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh-3", "fresh-2", "fresh-1"}, names(all))
}

func TestComparisonStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	assert.False(t, store.Available())

	_, err := store.Save(ctx, models.SavedComparison{Name: "x"})
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)

	_, err = store.LoadByID(ctx, "x")
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = store.Count(ctx)
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)

	var nilStore *datastore.ComparisonStore
	assert.False(t, nilStore.Available())
	all, err = nilStore.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.ErrorIs(t, nilStore.DeleteByID(ctx, "x"), common.ErrStorageUnavailable)
}

func TestComparisonStore_CloseDuringUse(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, datastore.WithClock(time.Now))
	saved, err := store.Save(ctx, models.SavedComparison{Name: "seed"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 400)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				_, err := store.Save(ctx, models.SavedComparison{Name: "n"})
				errs <- err
				_, err = store.LoadByID(ctx, saved.ID)
				errs <- err
				_, err = store.Count(ctx)
				errs <- err
				_, err = store.ListAll(ctx)
				errs <- err
			}
		}()
	}
	require.NoError(t, store.Close())
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, common.ErrStorageUnavailable)
		}
	}
}

func names(recs []models.SavedComparison) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}
