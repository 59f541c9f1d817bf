package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/tim/internal/models"
)

var testZone = time.FixedZone("test", 2*3600)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
func (c *fakeClock) Set(t time.Time)         { c.t = t }

func newTestDB(t *testing.T) (*DB, *fakeClock) {
	t.Helper()

	clock := &fakeClock{t: time.Date(2024, time.May, 15, 9, 0, 0, 0, testZone)}
	database, err := New(filepath.Join(t.TempDir(), "tim", "data.db"), WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return database, clock
}

func openCount(t *testing.T, database *DB) int {
	t.Helper()

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM work WHERE "end" IS NULL`).Scan(&n))
	return n
}

// track records a closed interval of d starting at the clock's current time
func track(t *testing.T, database *DB, clock *fakeClock, tags string, d time.Duration) models.WorkRecord {
	t.Helper()

	ctx := context.Background()
	_, err := database.Start(ctx, tags, false)
	require.NoError(t, err)
	clock.Advance(d)
	rec, err := database.Stop(ctx)
	require.NoError(t, err)
	return *rec
}

func TestNewCreatesSchema(t *testing.T) {
	t.Parallel()

	database, _ := newTestDB(t)

	var name string
	err := database.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'work'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "work", name)
}

func TestNewRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := New("")
	require.ErrorIs(t, err, ErrDatabase)
}

func TestStartStopRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, clock := newTestDB(t)
	started := clock.Now()

	rec, err := database.Start(ctx, "a b", false)
	require.NoError(t, err)
	assert.True(t, rec.Open())
	assert.Equal(t, "a b", rec.Tags)
	assert.Equal(t, started.Unix(), rec.Start.Unix())
	assert.Nil(t, rec.Bill)
	assert.False(t, rec.Amended)

	clock.Advance(95 * time.Minute)

	stopped, err := database.Stop(ctx)
	require.NoError(t, err)
	require.NotNil(t, stopped.End)
	assert.Equal(t, rec.ID, stopped.ID)

	last, err := database.LastClosed(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(stopped, last); diff != "" {
		t.Errorf("last closed mismatch (-stop +last):\n%s", diff)
	}
	assert.Equal(t, "a b", last.Tags)
	assert.True(t, last.End.After(last.Start))
	assert.Equal(t, 95*time.Minute, last.Duration(clock.Now()))
	assert.Equal(t, last.End.Sub(last.Start), last.Duration(time.Time{}))
}

func TestStartWhileTracking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, clock := newTestDB(t)

	first, err := database.Start(ctx, "first", false)
	require.NoError(t, err)

	clock.Advance(time.Hour)

	_, err = database.Start(ctx, "second", false)
	require.ErrorIs(t, err, ErrAlreadyTracking)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 1, openCount(t, database))

	current, _, err := database.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, current.ID)

	second, err := database.Start(ctx, "second", true)
	require.NoError(t, err)
	assert.Equal(t, 1, openCount(t, database))

	closed, err := database.Get(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.End)
	assert.Equal(t, second.Start.Unix(), closed.End.Unix())
	assert.Equal(t, clock.Now().Unix(), second.Start.Unix())
}

func TestAtMostOneOpenRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, clock := newTestDB(t)

	ops := []func() error{
		func() error { _, err := database.Start(ctx, "a", false); return err },
		func() error { _, err := database.Start(ctx, "b", false); return err },
		func() error { _, err := database.Start(ctx, "c", true); return err },
		func() error { _, err := database.Stop(ctx); return err },
		func() error { _, err := database.Stop(ctx); return err },
		func() error { _, err := database.Start(ctx, "d", true); return err },
		func() error { _, err := database.Start(ctx, "e", true); return err },
	}

	for i, op := range ops {
		_ = op()
		clock.Advance(time.Minute)
		assert.LessOrEqual(t, openCount(t, database), 1, "after op %d", i)
	}
}

func TestStopWhenNotTracking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, _ := newTestDB(t)

	_, err := database.Stop(ctx)
	require.ErrorIs(t, err, ErrNotTracking)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestIsTrackingAndCurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, clock := newTestDB(t)

	tracking, err := database.IsTracking(ctx)
	require.NoError(t, err)
	assert.False(t, tracking)

	_, _, err = database.Current(ctx)
	require.ErrorIs(t, err, ErrNotTracking)

	_, err = database.Start(ctx, "", false)
	require.NoError(t, err)
	clock.Advance(42 * time.Second)

	tracking, err = database.IsTracking(ctx)
	require.NoError(t, err)
	assert.True(t, tracking)

	rec, elapsed, err := database.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", rec.Tags)
	assert.Equal(t, 42*time.Second, elapsed)
}

func TestResolveID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, clock := newTestDB(t)

	_, err := database.ResolveID(ctx, 0)
	require.ErrorIs(t, err, ErrNotFound)

	a := track(t, database, clock, "a", time.Hour)
	b := track(t, database, clock, "b", time.Hour)

	id, err := database.ResolveID(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, b.ID, id)

	// the latest end wins, not the latest id
	require.NoError(t, database.AmendTime(ctx, a.ID, models.WhichEnd, clock.Now().Add(time.Hour), false))
	id, err = database.ResolveID(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	// an open record never resolves as the latest
	_, err = database.Start(ctx, "open", false)
	require.NoError(t, err)
	id, err = database.ResolveID(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	id, err = database.ResolveID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, id)

	_, err = database.ResolveID(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	database, _ := newTestDB(t)

	_, err := database.Get(context.Background(), 7)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = database.LastClosed(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, clock := newTestDB(t)

	a := track(t, database, clock, "a", time.Hour)
	b := track(t, database, clock, "b", time.Hour)

	deleted, err := database.Delete(ctx, 999)
	require.NoError(t, err)
	assert.False(t, deleted)

	log, err := database.List(ctx, LogQuery{Range: RangeAll})
	require.NoError(t, err)
	assert.Len(t, log.Records, 2)

	deleted, err = database.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = database.Get(ctx, a.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// zero deletes the most recently completed record
	deleted, err = database.Delete(ctx, 0)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = database.Get(ctx, b.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// the open record can be deleted too
	open, err := database.Start(ctx, "c", false)
	require.NoError(t, err)
	deleted, err = database.Delete(ctx, open.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 0, openCount(t, database))

	// ids are never reused
	next, err := database.Start(ctx, "d", false)
	require.NoError(t, err)
	assert.Greater(t, next.ID, open.ID)
}

func TestAmend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, clock := newTestDB(t)
	rec := track(t, database, clock, "a", time.Hour)

	require.NoError(t, database.AmendTags(ctx, rec.ID, "b c"))
	got, err := database.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "b c", got.Tags)
	assert.False(t, got.Amended)

	newStart := rec.Start.Add(-30 * time.Minute)
	require.NoError(t, database.AmendTime(ctx, rec.ID, models.WhichStart, newStart, false))
	got, err = database.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.Amended)
	assert.Equal(t, newStart.Unix(), got.Start.Unix())
	assert.Equal(t, 90*time.Minute, got.Duration(clock.Now()))

	// ordering is not validated
	require.NoError(t, database.AmendTime(ctx, rec.ID, models.WhichEnd, newStart.Add(-time.Hour), false))
	got, err = database.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.End.Before(got.Start))

	require.ErrorIs(t, database.AmendTags(ctx, 999, "x"), ErrNotFound)
	require.ErrorIs(t, database.AmendTime(ctx, 999, models.WhichStart, newStart, false), ErrNotFound)
	require.ErrorIs(t, database.AmendTime(ctx, rec.ID, models.Which("tags"), newStart, false), ErrUnknownField)
}

func TestAmendBilledRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, clock := newTestDB(t)
	rec := track(t, database, clock, "a", time.Hour)

	_, err := database.MarkBilled(ctx, BillQuery{All: true, Ref: "INV-1"})
	require.NoError(t, err)

	err = database.AmendTime(ctx, rec.ID, models.WhichEnd, clock.Now(), false)
	require.ErrorIs(t, err, ErrAlreadyBilled)
	require.ErrorIs(t, err, ErrInvalidState)

	got, err := database.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, got.Amended)

	require.NoError(t, database.AmendTime(ctx, rec.ID, models.WhichEnd, clock.Now(), true))
	got, err = database.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.Amended)

	// tags are not guarded
	require.NoError(t, database.AmendTags(ctx, rec.ID, "b"))
}

func TestListRangeToday(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, clock := newTestDB(t)

	clock.Set(time.Date(2024, time.May, 14, 22, 0, 0, 0, testZone))
	track(t, database, clock, "yesterday", time.Hour)

	clock.Set(time.Date(2024, time.May, 15, 14, 0, 0, 0, testZone))
	late := track(t, database, clock, "late", time.Hour)

	clock.Set(time.Date(2024, time.May, 15, 0, 0, 0, 0, testZone))
	midnight := track(t, database, clock, "midnight", time.Hour)

	clock.Set(time.Date(2024, time.May, 15, 18, 0, 0, 0, testZone))
	log, err := database.List(ctx, LogQuery{Range: RangeToday})
	require.NoError(t, err)

	ids := make([]int64, 0, len(log.Records))
	for _, r := range log.Records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{midnight.ID, late.ID}, ids)
	assert.Equal(t, 2*time.Hour, log.Total())
	assert.False(t, log.Tracking())

	all, err := database.List(ctx, LogQuery{Range: RangeAll})
	require.NoError(t, err)
	assert.Len(t, all.Records, 3)
	assert.Equal(t, "yesterday", all.Records[0].Tags)
}

func TestListOpenRecordDuration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, clock := newTestDB(t)

	track(t, database, clock, "done", 10*time.Minute)
	_, err := database.Start(ctx, "running", false)
	require.NoError(t, err)
	clock.Advance(25 * time.Minute)

	log, err := database.List(ctx, LogQuery{Range: RangeToday})
	require.NoError(t, err)
	require.Len(t, log.Records, 2)

	open := log.Records[1]
	assert.True(t, open.Open())
	assert.Equal(t, 25*time.Minute, open.Duration(log.At))
	assert.Equal(t, 35*time.Minute, log.Total())
	assert.True(t, log.Tracking())
}

func TestListTagsAgreeWithMatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, clock := newTestDB(t)

	for _, tags := range []string{"", "a", "a b c", "ab", "b", "alphabet", "Alpha beta", "client meeting", "c a", "100%_off"} {
		track(t, database, clock, tags, time.Minute)
	}

	for _, f := range []TagFilter{
		NewTagFilter([]string{"a"}, false),
		NewTagFilter([]string{"b"}, false),
		NewTagFilter([]string{"c"}, false),
		NewTagFilter([]string{"ab"}, false),
		NewTagFilter([]string{"a", "c"}, false),
		NewTagFilter([]string{"pha"}, false),
		NewTagFilter([]string{"pha"}, true),
		NewTagFilter([]string{"alpha"}, true),
		NewTagFilter([]string{"a", "b"}, true),
		NewTagFilter([]string{"%"}, true),
		NewTagFilter([]string{"_"}, true),
		NewTagFilter([]string{"100%_off"}, false),
	} {
		log, err := database.List(ctx, LogQuery{Range: RangeAll, Tags: f})
		require.NoError(t, err)

		var got []string
		for _, r := range log.Records {
			got = append(got, r.Tags)
		}

		all, err := database.List(ctx, LogQuery{Range: RangeAll})
		require.NoError(t, err)
		var want []string
		for _, r := range all.Records {
			if f.Match(r.Tags) {
				want = append(want, r.Tags)
			}
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("filter %q mismatch (-match +sql):\n%s", f.String(), diff)
		}
	}
}

func TestListBilledFilter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, clock := newTestDB(t)

	billedRec := track(t, database, clock, "client", time.Hour)
	unbilledRec := track(t, database, clock, "internal", time.Hour)

	n, err := database.MarkBilled(ctx, BillQuery{All: true, Tags: NewTagFilter([]string{"client"}, false)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	yes, no := true, false

	log, err := database.List(ctx, LogQuery{Range: RangeAll, Billed: &yes})
	require.NoError(t, err)
	require.Len(t, log.Records, 1)
	assert.Equal(t, billedRec.ID, log.Records[0].ID)

	log, err = database.List(ctx, LogQuery{Range: RangeAll, Billed: &no})
	require.NoError(t, err)
	require.Len(t, log.Records, 1)
	assert.Equal(t, unbilledRec.ID, log.Records[0].ID)
}

func TestMarkBilledRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, clock := newTestDB(t)

	track(t, database, clock, "a", time.Hour)
	track(t, database, clock, "b", time.Hour)
	_, err := database.Start(ctx, "c", false)
	require.NoError(t, err)

	n, err := database.MarkBilled(ctx, BillQuery{All: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	log, err := database.List(ctx, LogQuery{Range: RangeAll})
	require.NoError(t, err)
	for _, r := range log.Records {
		require.NotNil(t, r.Bill, "record %d", r.ID)
		assert.Equal(t, DefaultBillRef, *r.Bill)
	}

	_, err = database.MarkBilled(ctx, BillQuery{All: true, Unbill: true})
	require.NoError(t, err)

	log, err = database.List(ctx, LogQuery{Range: RangeAll})
	require.NoError(t, err)
	for _, r := range log.Records {
		assert.Nil(t, r.Bill, "record %d", r.ID)
	}
}

func TestMarkBilledDateBounds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, clock := newTestDB(t)

	clock.Set(time.Date(2024, time.May, 1, 9, 0, 0, 0, testZone))
	early := track(t, database, clock, "a", time.Hour)
	clock.Set(time.Date(2024, time.May, 10, 9, 0, 0, 0, testZone))
	middle := track(t, database, clock, "a", time.Hour)
	clock.Set(time.Date(2024, time.May, 20, 9, 0, 0, 0, testZone))
	late := track(t, database, clock, "b", time.Hour)

	from := time.Date(2024, time.May, 10, 0, 0, 0, 0, testZone)
	to := time.Date(2024, time.May, 10, 10, 0, 0, 0, testZone) // inclusive of middle's end

	n, err := database.MarkBilled(ctx, BillQuery{From: &from, To: &to, Ref: "INV-7"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := database.Get(ctx, middle.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Bill)
	assert.Equal(t, "INV-7", *got.Bill)

	for _, id := range []int64{early.ID, late.ID} {
		got, err := database.Get(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, got.Bill)
	}

	// from alone with a tag filter
	n, err = database.MarkBilled(ctx, BillQuery{From: &from, Tags: NewTagFilter([]string{"b"}, false)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got, err = database.Get(ctx, late.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Bill)

	// to alone
	n, err = database.MarkBilled(ctx, BillQuery{To: &from, Ref: "INV-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got, err = database.Get(ctx, early.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Bill)
	assert.Equal(t, "INV-1", *got.Bill)
}

func TestMarkBilledRequiresRange(t *testing.T) {
	t.Parallel()

	database, _ := newTestDB(t)
	now := time.Now()

	_, err := database.MarkBilled(context.Background(), BillQuery{})
	require.ErrorIs(t, err, ErrNoBillRange)

	_, err = database.MarkBilled(context.Background(), BillQuery{All: true, From: &now})
	require.ErrorIs(t, err, ErrBillRangeConflict)
}

func TestOperationsFailAfterClose(t *testing.T) {
	t.Parallel()

	database, _ := newTestDB(t)
	require.NoError(t, database.Close())

	_, err := database.Start(context.Background(), "a", false)
	require.ErrorIs(t, err, ErrDatabase)
}
