package db

import (
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/rotation.report/internal/rotation"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEmbeddedMigrations(t *testing.T) {
	migFS, err := getMigrationsFS()
	require.NoError(t, err)
	ups, err := fs.Glob(migFS, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migFS, "*.down.sql")
	require.NoError(t, err)
	assert.Len(t, ups, 2)
	assert.Len(t, downs, len(ups), "every up migration needs a down")
}

func TestNewDB_MigratesToLatest(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	for _, table := range []string{"runs", "samples"} {
		var n int
		err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "table %s", table)
	}
}

func TestNewDB_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	db, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.InsertRun(&Run{RunID: "r1", Source: "test", StartedAt: time.Unix(1, 0)}))
	require.NoError(t, db.Close())

	db, err = NewDB(path)
	require.NoError(t, err)
	defer db.Close()
	run, err := db.GetRun("r1")
	require.NoError(t, err)
	assert.Equal(t, "test", run.Source)
	assert.Equal(t, path, db.Path())
}

func TestPragmasApplied(t *testing.T) {
	db := newTestDB(t)

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var busyTimeout int
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, 5000, busyTimeout)

	var foreignKeys int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)
}

func TestMigrateDownAndUp(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.MigrateDown())
	version, _, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='samples'`).Scan(&n))
	assert.Equal(t, 0, n)

	require.NoError(t, db.MigrateUp())
	version, _, err = db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func TestRuns_InsertFinishGet(t *testing.T) {
	db := newTestDB(t)
	started := time.Unix(1700000000, 123)

	require.NoError(t, db.InsertRun(&Run{
		RunID:      "run-a",
		Source:     "points.jsonl",
		ParamsJSON: `{"alpha":0.2}`,
		StartedAt:  started,
	}))

	run, err := db.GetRun("run-a")
	require.NoError(t, err)
	assert.True(t, run.StartedAt.Equal(started))
	assert.Nil(t, run.FinishedAt)
	assert.Equal(t, `{"alpha":0.2}`, run.ParamsJSON)

	finished := started.Add(10 * time.Second)
	require.NoError(t, db.FinishRun("run-a", finished, 300, 5, true))

	run, err = db.GetRun("run-a")
	require.NoError(t, err)
	require.NotNil(t, run.FinishedAt)
	assert.True(t, run.FinishedAt.Equal(finished))
	assert.Equal(t, 300, run.FramesRead)
	assert.Equal(t, 5, run.Rotations)
	assert.True(t, run.Stopped)
}

func TestRuns_Errors(t *testing.T) {
	db := newTestDB(t)

	assert.Error(t, db.InsertRun(&Run{Source: "x"}))

	_, err := db.GetRun("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, db.FinishRun("missing", time.Now(), 0, 0, false), ErrRunNotFound)
	assert.ErrorIs(t, db.DeleteRun("missing"), ErrRunNotFound)

	require.NoError(t, db.InsertRun(&Run{RunID: "dup", StartedAt: time.Now()}))
	assert.Error(t, db.InsertRun(&Run{RunID: "dup", StartedAt: time.Now()}))
}

func TestListRuns_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	base := time.Unix(1700000000, 0)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, db.InsertRun(&Run{RunID: id, StartedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	runs, err := db.ListRuns(0)
	require.NoError(t, err)
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.RunID)
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)

	runs, err = db.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestSamples_RoundTripInFrameOrder(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.InsertRun(&Run{RunID: "r", StartedAt: time.Now()}))

	want := []rotation.Sample{
		{FrameIndex: 1, X: 10.5, Y: 20.25, BearingDegrees: -45, RotationCount: 0, ElapsedSeconds: 0.03},
		{FrameIndex: 2, X: 11, Y: 21, BearingDegrees: -44.5, RotationCount: 0, ElapsedSeconds: 0.07},
		{FrameIndex: 3, X: 12, Y: 22, BearingDegrees: -44, RotationCount: 1, ElapsedSeconds: 0.1},
	}
	// Insert out of order; reads come back sorted.
	require.NoError(t, db.InsertSamples("r", []rotation.Sample{want[2], want[0]}))
	require.NoError(t, db.InsertSamples("r", want[1:2]))

	got, err := db.Samples("r")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}

	n, err := db.SampleCount("r")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	elapsed, err := db.ElapsedSeconds("r")
	require.NoError(t, err)
	assert.Equal(t, 0.1, elapsed)
}

func TestSamples_EmptyRun(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.InsertSamples("none", nil))
	got, err := db.Samples("none")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	elapsed, err := db.ElapsedSeconds("none")
	require.NoError(t, err)
	assert.Zero(t, elapsed)
}

func TestSamples_RequireRun(t *testing.T) {
	db := newTestDB(t)
	err := db.InsertSamples("orphan", []rotation.Sample{{FrameIndex: 1}})
	assert.Error(t, err, "foreign key should reject samples without a run")

	n, err := db.SampleCount("orphan")
	require.NoError(t, err)
	assert.Equal(t, 0, n, "failed batch must roll back")
}

func TestDeleteRun_CascadesSamples(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.InsertRun(&Run{RunID: "r", StartedAt: time.Now()}))
	require.NoError(t, db.InsertSamples("r", []rotation.Sample{{FrameIndex: 1}, {FrameIndex: 2}}))

	require.NoError(t, db.DeleteRun("r"))
	n, err := db.SampleCount("r")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRecorder_BatchesPipelineSamples(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.InsertRun(&Run{RunID: "live", StartedAt: time.Now()}))

	rec := NewRecorder(db, "live", 4)
	p, err := rotation.NewPipeline(rotation.Config{Alpha: 1, MaxOutlierDistance: 100, Pivot: &rotation.Point2D{}}, rec)
	require.NoError(t, err)

	for i := 1; i <= 10; i++ {
		_, err := p.ProcessFrame(rotation.Frame{Index: i, ElapsedSeconds: float64(i) / 30, Points: []rotation.Point2D{{X: 5, Y: 5}}})
		require.NoError(t, err)
	}

	n, err := db.SampleCount("live")
	require.NoError(t, err)
	assert.Equal(t, 8, n, "two full batches flushed")

	require.NoError(t, rec.Flush())
	got, err := db.Samples("live")
	require.NoError(t, err)
	if diff := cmp.Diff(p.Samples(), got); diff != "" {
		t.Errorf("stored samples differ from pipeline (-want +got):\n%s", diff)
	}
}
