package data

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"github.com/tauraamui/camarchive/pkg/archive"
	"github.com/tauraamui/camarchive/pkg/database/dbconn"
	"github.com/tauraamui/camarchive/pkg/database/models"
	"github.com/tauraamui/camarchive/pkg/database/repos"
	"github.com/tauraamui/camarchive/pkg/log"
	"github.com/tauraamui/xerror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	vendorName       = "tacusci"
	appName          = "camarchive"
	databaseFileName = "camarchive.db"
)

var (
	ErrCreateDBFile    = xerror.New("unable to create database file")
	ErrDBAlreadyExists = xerror.New("database file already exists")
)

var uc = os.UserCacheDir
var fs = afero.NewOsFs()

// Setup creates the ledger file and its tables.
func Setup() error {
	log.Info("Creating run ledger...") //nolint

	if err := createFile(); err != nil {
		return err
	}

	if _, err := Connect(); err != nil {
		return err
	}

	log.Info("Created run ledger") //nolint
	return nil
}

func Destroy() error {
	dbFilePath, err := resolveDBPath(uc)
	if err != nil {
		return xerror.Errorf("unable to delete database file: %w", err)
	}

	return fs.Remove(dbFilePath)
}

// Connect opens the ledger, creating it first if it does not exist yet.
func Connect() (dbconn.GormWrapper, error) {
	dbPath, err := resolveDBPath(uc)
	if err != nil {
		return nil, err
	}

	if _, err := fs.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		if err := fs.MkdirAll(filepath.Dir(dbPath), os.ModeDir|os.ModePerm); err != nil {
			return nil, xerror.Errorf("%v: %w", ErrCreateDBFile, err)
		}
	}

	log.Debug("Connecting to DB: %s", dbPath) //nolint
	db, err := openDBConnection(dbPath)
	if err != nil {
		return nil, xerror.Errorf("unable to open db connection: %w", err)
	}

	err = models.AutoMigrate(db)
	if err != nil {
		return nil, xerror.Errorf("unable to run automigrations: %w", err)
	}

	return db, nil
}

var openDBConnection = func(path string) (dbconn.GormWrapper, error) {
	logger := logger.New(nil, logger.Config{LogLevel: logger.Silent})
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger})
	if err != nil {
		return nil, err
	}
	return dbconn.Wrap(db), nil
}

// SaveOutcome writes one ledger entry per camera in the outcome, rejected
// cameras included.
func SaveOutcome(db dbconn.GormWrapper, outcome archive.Outcome) error {
	repo := repos.RunRepository{DB: db}

	for _, entry := range entriesFor(outcome) {
		entry := entry
		if err := repo.Create(&entry); err != nil {
			return xerror.Errorf("unable to save run %s camera %s: %w", outcome.RunID, entry.CameraID, err)
		}
	}

	log.Debug("Saved run %s to ledger", outcome.RunID) //nolint
	return nil
}

func entriesFor(outcome archive.Outcome) []models.RunEntry {
	entries := make([]models.RunEntry, 0, len(outcome.Sources)+len(outcome.Rejected))
	for _, id := range outcome.CameraIDs() {
		s := outcome.Sources[id]
		entries = append(entries, models.RunEntry{
			RunID:           outcome.RunID,
			CameraID:        s.CameraID,
			Ticks:           s.Ticks,
			FramesKept:      s.FramesKept,
			FramesDiscarded: s.FramesDiscarded,
			FetchFailures:   s.FetchFailures,
			WriteFailures:   s.WriteFailures,
			LastError:       s.LastErrorMessage(),
			Cancelled:       s.Cancelled,
			StartedAt:       s.StartedAt,
			StoppedAt:       s.StoppedAt,
		})
	}

	rejected := make([]models.RunEntry, 0, len(outcome.Rejected))
	for _, r := range outcome.Rejected {
		rejected = append(rejected, models.RunEntry{
			RunID:     outcome.RunID,
			CameraID:  r.Record.ID,
			LastError: r.Err.Error(),
			Rejected:  true,
			StartedAt: outcome.StartedAt,
			StoppedAt: outcome.StartedAt,
		})
	}
	sort.SliceStable(rejected, func(i, j int) bool { return rejected[i].CameraID < rejected[j].CameraID })

	return append(entries, rejected...)
}

// History loads the ledger entries of a single run.
func History(db dbconn.GormWrapper, runID string) ([]models.RunEntry, error) {
	repo := repos.RunRepository{DB: db}
	return repo.FindByRun(runID)
}

func resolveDBPath(uc func() (string, error)) (string, error) {
	databasePath := os.Getenv("CAMARCHIVE_DB")
	if len(databasePath) > 0 {
		return databasePath, nil
	}

	databaseParentDir, err := uc()
	if err != nil {
		return "", xerror.Errorf("unable to resolve %s database file location: %w", databaseFileName, err)
	}

	return filepath.Join(
		databaseParentDir,
		vendorName,
		appName,
		databaseFileName), nil
}

func createFile() error {
	path, err := resolveDBPath(uc)
	if err != nil {
		return err
	}

	if _, err := fs.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := fs.MkdirAll(filepath.Dir(path), os.ModeDir|os.ModePerm); err != nil {
			return xerror.Errorf("%v: %w", ErrCreateDBFile, err)
		}

		f, err := fs.Create(path)
		if err != nil {
			return xerror.Errorf("%v: %w", ErrCreateDBFile, err)
		}
		return f.Close()
	}

	return xerror.Errorf("%w: %s", ErrDBAlreadyExists, path)
}
