package data_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/spf13/afero"
	"github.com/tauraamui/camarchive/pkg/archive"
	"github.com/tauraamui/camarchive/pkg/archiveerr"
	"github.com/tauraamui/camarchive/pkg/camera"
	data "github.com/tauraamui/camarchive/pkg/database"
	"github.com/tauraamui/camarchive/pkg/database/dbconn"
	"github.com/tauraamui/camarchive/pkg/database/models"
	"github.com/tauraamui/camarchive/pkg/log"
)

func silenceLogs() func() {
	debugRef, infoRef := log.Debug, log.Info
	log.Debug = func(string, ...interface{}) {}
	log.Info = func(string, ...interface{}) {}
	return func() { log.Debug, log.Info = debugRef, infoRef }
}

func overloadCacheDir(dir string) func() {
	return data.OverloadUC(func() (string, error) { return dir, nil })
}

func TestResolveDBPathUsesEnvOverride(t *testing.T) {
	is := is.New(t)
	t.Setenv("CAMARCHIVE_DB", "/tmp/ledger.db")

	path, err := data.ResolveDBPath(func() (string, error) { return "", errors.New("unused") })
	is.NoErr(err)
	is.Equal(path, "/tmp/ledger.db")
}

func TestResolveDBPathUnderUserCacheDir(t *testing.T) {
	is := is.New(t)
	t.Setenv("CAMARCHIVE_DB", "")

	path, err := data.ResolveDBPath(func() (string, error) { return "/home/test/.cache", nil })
	is.NoErr(err)
	is.Equal(path, filepath.Join("/home/test/.cache", "tacusci", "camarchive", "camarchive.db"))
}

func TestResolveDBPathCacheDirFailure(t *testing.T) {
	is := is.New(t)
	t.Setenv("CAMARCHIVE_DB", "")

	_, err := data.ResolveDBPath(func() (string, error) { return "", errors.New("test cache dir error") })
	is.True(err != nil)
	is.Equal(err.Error(), "unable to resolve camarchive.db database file location: test cache dir error")
}

func TestSetupCreatesLedgerAndMigrates(t *testing.T) {
	is := is.New(t)
	defer silenceLogs()()
	t.Setenv("CAMARCHIVE_DB", "")

	fs := afero.NewMemMapFs()
	defer data.OverloadFS(fs)()
	defer overloadCacheDir("/cache")()

	mock := dbconn.Mock()
	var opened string
	defer data.OverloadOpenDBConnection(func(path string) (dbconn.GormWrapper, error) {
		opened = path
		return mock, nil
	})()

	is.NoErr(data.Setup())

	expected := filepath.Join("/cache", "tacusci", "camarchive", "camarchive.db")
	is.Equal(opened, expected)
	exists, err := afero.Exists(fs, expected)
	is.NoErr(err)
	is.True(exists)
	is.Equal(len(mock.Migrated()), 1)
}

func TestSetupFailsWhenLedgerExists(t *testing.T) {
	is := is.New(t)
	defer silenceLogs()()
	t.Setenv("CAMARCHIVE_DB", "/ledger/camarchive.db")

	fs := afero.NewMemMapFs()
	is.NoErr(afero.WriteFile(fs, "/ledger/camarchive.db", nil, os.ModePerm))
	defer data.OverloadFS(fs)()

	err := data.Setup()
	is.True(errors.Is(err, data.ErrDBAlreadyExists))
}

func TestConnectReportsOpenFailure(t *testing.T) {
	is := is.New(t)
	defer silenceLogs()()
	t.Setenv("CAMARCHIVE_DB", "/ledger/camarchive.db")

	defer data.OverloadFS(afero.NewMemMapFs())()
	defer data.OverloadOpenDBConnection(func(string) (dbconn.GormWrapper, error) {
		return nil, errors.New("file is not a database")
	})()

	_, err := data.Connect()
	is.True(err != nil)
	is.Equal(err.Error(), "unable to open db connection: file is not a database")
}

func TestDestroyRemovesLedger(t *testing.T) {
	is := is.New(t)
	t.Setenv("CAMARCHIVE_DB", "/ledger/camarchive.db")

	fs := afero.NewMemMapFs()
	is.NoErr(afero.WriteFile(fs, "/ledger/camarchive.db", nil, os.ModePerm))
	defer data.OverloadFS(fs)()

	is.NoErr(data.Destroy())
	exists, err := afero.Exists(fs, "/ledger/camarchive.db")
	is.NoErr(err)
	is.True(!exists)
}

func TestSaveOutcomeWritesEntryPerCamera(t *testing.T) {
	is := is.New(t)
	defer silenceLogs()()

	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	outcome := archive.Outcome{
		RunID:     "run-1",
		StartedAt: started,
		Sources: map[string]archive.SourceOutcome{
			"2": {CameraID: "2", Ticks: 4, FramesKept: 1, FramesDiscarded: 3},
			"1": {
				CameraID: "1", Ticks: 4, FetchFailures: 4,
				LastError: archiveerr.Fetch(archiveerr.Unreachable, "connection refused", nil),
				Cancelled: true,
			},
		},
		Rejected: []archive.Rejection{
			{Record: camera.Record{ID: "3"}, Err: errors.New("missing snapshot_url")},
		},
	}

	db := dbconn.Mock()
	is.NoErr(data.SaveOutcome(db, outcome))

	created := db.Created()
	is.Equal(len(created), 3)

	first := created[0].(*models.RunEntry)
	is.Equal(first.RunID, "run-1")
	is.Equal(first.CameraID, "1")
	is.Equal(first.FetchFailures, 4)
	is.True(first.Cancelled)
	is.Equal(first.LastError, outcome.Sources["1"].LastError.Error())

	second := created[1].(*models.RunEntry)
	is.Equal(second.CameraID, "2")
	is.Equal(second.FramesKept, 1)
	is.Equal(second.FramesDiscarded, 3)
	is.True(!second.Failed())

	rejected := created[2].(*models.RunEntry)
	is.Equal(rejected.CameraID, "3")
	is.True(rejected.Rejected)
	is.Equal(rejected.LastError, "missing snapshot_url")
	is.Equal(rejected.StartedAt, started)
}

func TestSaveOutcomeStopsOnCreateError(t *testing.T) {
	is := is.New(t)
	defer silenceLogs()()

	outcome := archive.Outcome{
		RunID:   "run-2",
		Sources: map[string]archive.SourceOutcome{"1": {CameraID: "1"}},
	}

	db := dbconn.Mock().SetError(errors.New("database is locked"))
	err := data.SaveOutcome(db, outcome)
	is.True(err != nil)
	is.Equal(err.Error(), "unable to save run run-2 camera 1: database is locked")
}

func TestHistoryQueriesByRun(t *testing.T) {
	is := is.New(t)

	entries := []models.RunEntry{{RunID: "run-1", CameraID: "1"}}
	db := dbconn.Mock().SetResult(entries)

	found, err := data.History(db, "run-1")
	is.NoErr(err)
	is.Equal(found, entries)
	is.Equal(db.Chain().Where.Args, []interface{}{"run-1"})
}
