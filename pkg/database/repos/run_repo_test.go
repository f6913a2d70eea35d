package repos_test

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/tauraamui/camarchive/pkg/database/dbconn"
	"github.com/tauraamui/camarchive/pkg/database/models"
	"github.com/tauraamui/camarchive/pkg/database/repos"
)

func TestRunRepoCreateNoErr(t *testing.T) {
	is := is.New(t)

	db := dbconn.Mock()
	repo := repos.RunRepository{DB: db}

	entry := models.RunEntry{RunID: "run-1", CameraID: "1"}
	is.NoErr(repo.Create(&entry))
	is.Equal(len(db.Created()), 1)
	is.Equal(db.Created()[0], &entry)
}

func TestRunRepoCreateWithErr(t *testing.T) {
	is := is.New(t)

	err := errors.New("unable to create data")
	db := dbconn.Mock().SetError(err)
	repo := repos.RunRepository{DB: db}

	is.Equal(repo.Create(&models.RunEntry{RunID: "run-1"}), err)
	is.Equal(len(db.Created()), 0)
}

type runRepoFindTest struct {
	title         string
	existing      []models.RunEntry
	error         error
	expectedQuery string
	find          func(repos.RunRepository) ([]models.RunEntry, error)
	expectedErr   string
}

func TestRunRepoFind(t *testing.T) {
	existing := []models.RunEntry{
		{RunID: "run-1", CameraID: "1", FramesKept: 3},
		{RunID: "run-1", CameraID: "2", FramesKept: 5},
	}

	tests := []runRepoFindTest{
		{
			title:         "find by run returns entries",
			existing:      existing,
			expectedQuery: "run_id = ?",
			find:          func(r repos.RunRepository) ([]models.RunEntry, error) { return r.FindByRun("run-1") },
		},
		{
			title:         "find by camera returns entries",
			existing:      existing,
			expectedQuery: "camera_id = ?",
			find:          func(r repos.RunRepository) ([]models.RunEntry, error) { return r.FindByCamera("1") },
		},
		{
			title:         "find by run wraps query error",
			error:         errors.New("no such table: run_entries"),
			expectedQuery: "run_id = ?",
			find:          func(r repos.RunRepository) ([]models.RunEntry, error) { return r.FindByRun("run-9") },
			expectedErr:   "entries for run run-9 not found: no such table: run_entries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			is := is.New(t)

			db := dbconn.Mock().SetError(tt.error)
			if tt.existing != nil {
				db.SetResult(tt.existing)
			}
			repo := repos.RunRepository{DB: db}

			entries, err := tt.find(repo)
			is.Equal(db.Chain().Where.Query, tt.expectedQuery)
			if len(tt.expectedErr) > 0 {
				is.True(err != nil)
				is.Equal(err.Error(), tt.expectedErr)
				return
			}
			is.NoErr(err)
			is.Equal(entries, tt.existing)
		})
	}
}
