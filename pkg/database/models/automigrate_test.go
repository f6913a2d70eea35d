package models_test

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/tauraamui/camarchive/pkg/database/dbconn"
	"github.com/tauraamui/camarchive/pkg/database/models"
)

func TestAutoMigrateRegistersRunEntry(t *testing.T) {
	is := is.New(t)

	db := dbconn.Mock()
	is.NoErr(models.AutoMigrate(db))

	migrated := db.Migrated()
	is.Equal(len(migrated), 1)
	_, ok := migrated[0].(*models.RunEntry)
	is.True(ok)
}

func TestAutoMigrateReturnsMigrationError(t *testing.T) {
	is := is.New(t)

	db := dbconn.Mock().SetError(errors.New("disk I/O error"))
	err := models.AutoMigrate(db)
	is.True(err != nil)
	is.Equal(err.Error(), "disk I/O error")
}

func TestRunEntryFailed(t *testing.T) {
	is := is.New(t)

	is.True(!models.RunEntry{}.Failed())
	is.True(models.RunEntry{Rejected: true}.Failed())
	is.True(models.RunEntry{LastError: "timeout: no response"}.Failed())
}
