package videostorage_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/spf13/afero"
	"github.com/tauraamui/camarchive/pkg/archiveerr"
	"github.com/tauraamui/camarchive/pkg/video/videoframe"
	"github.com/tauraamui/camarchive/pkg/video/videostorage"
)

const testRoot = "/testroot/results"

func TestFormatTimestamp(t *testing.T) {
	is := is.New(t)

	ts := time.Date(2021, 2, 3, 4, 5, 6, 7008000, time.UTC)
	is.Equal(videostorage.FormatTimestamp(ts), "2021-02-03_04-05-06-007008")
}

func TestFormatTimestampConvertsToUTC(t *testing.T) {
	is := is.New(t)

	ts := time.Date(2021, 2, 3, 4, 5, 6, 0, time.FixedZone("UTC+2", 2*60*60))
	is.Equal(videostorage.FormatTimestamp(ts), "2021-02-03_02-05-06-000000")
}

func TestParseTimestampRejectsMalformed(t *testing.T) {
	is := is.New(t)

	_, err := videostorage.ParseTimestamp("2021-02-03_04-05-06")
	is.True(err != nil)
	_, err = videostorage.ParseTimestamp("2021-02-03_04-05-06-00x000")
	is.True(err != nil)
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	is := is.New(t)

	fs := afero.NewMemMapFs()
	storage := videostorage.NewStorage(fs, testRoot)

	ts := time.Date(2021, 6, 7, 8, 9, 10, 123456000, time.UTC)
	frame := videoframe.New(3, 2, 1, ts)
	frame.Pix[4] = 250

	path, err := storage.Write("7", ts, frame)
	is.NoErr(err)
	is.Equal(path, filepath.Join(testRoot, "7", "2021-06-07_08-09-10-123456.png"))

	read, err := videostorage.ReadFrame(fs, path)
	is.NoErr(err)
	is.Equal(read.Width, 3)
	is.Equal(read.Height, 2)
	is.True(read.Timestamp.Equal(ts))
	is.Equal(read.Pix, frame.Pix)

	tmp, err := afero.Exists(fs, path+".tmp")
	is.NoErr(err)
	is.True(!tmp)
}

func TestWriteKeepsColourFramesLossless(t *testing.T) {
	is := is.New(t)

	fs := afero.NewMemMapFs()
	storage := videostorage.NewStorage(fs, testRoot)

	ts := time.Date(2021, 6, 7, 8, 9, 10, 0, time.UTC)
	frame := videoframe.New(2, 2, 4, ts)
	for i := range frame.Pix {
		frame.Pix[i] = 255
	}
	frame.Pix[0], frame.Pix[1], frame.Pix[2] = 10, 20, 30

	path, err := storage.Write("cam", ts, frame)
	is.NoErr(err)

	read, err := videostorage.ReadFrame(fs, path)
	is.NoErr(err)
	is.Equal(read.Channels, 4)
	is.Equal(read.Pix, frame.Pix)
}

func TestWritesAreListedPerCamera(t *testing.T) {
	is := is.New(t)

	fs := afero.NewMemMapFs()
	storage := videostorage.NewStorage(fs, testRoot)

	base := time.Date(2021, 6, 7, 8, 9, 10, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ts := base.Add(time.Duration(i) * time.Second)
		_, err := storage.Write("a", ts, videoframe.New(1, 1, 1, ts))
		is.NoErr(err)
	}
	_, err := storage.Write("b", base, videoframe.New(1, 1, 1, base))
	is.NoErr(err)

	frames, err := videostorage.ListFrames(fs, testRoot, "a")
	is.NoErr(err)
	is.Equal(len(frames), 3)
	is.Equal(filepath.Base(frames[0]), "2021-06-07_08-09-10-000000.png")
}

func TestWriteEmptyFrameIsEncodeFailure(t *testing.T) {
	is := is.New(t)

	storage := videostorage.NewStorage(afero.NewMemMapFs(), testRoot)
	_, err := storage.Write("7", time.Now(), videoframe.New(0, 0, 1, time.Now()))
	is.True(archiveerr.IsWrite(err, archiveerr.EncodeFailed))
	is.True(errors.Is(err, videostorage.ErrEmptyFrame))
}

func TestWriteToReadOnlyFsIsIOFailure(t *testing.T) {
	is := is.New(t)

	storage := videostorage.NewStorage(afero.NewReadOnlyFs(afero.NewMemMapFs()), testRoot)
	_, err := storage.Write("7", time.Now(), videoframe.New(1, 1, 1, time.Now()))
	is.True(archiveerr.IsWrite(err, archiveerr.IOFailed))
}
