package videostorage

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/tauraamui/camarchive/pkg/archiveerr"
	"github.com/tauraamui/camarchive/pkg/video/videoframe"
)

const frameExt = ".png"

type Storage interface {
	Write(cameraID string, ts time.Time, frame *videoframe.Frame) (string, error)
	Root() string
}

func NewStorage(fs afero.Fs, root string) Storage {
	return &pngStorage{fs: fs, root: root}
}

type pngStorage struct {
	fs   afero.Fs
	root string
}

func (s *pngStorage) Root() string {
	return s.root
}

// Write encodes frame as PNG under <root>/<cameraID>/<timestamp>.png. The
// file only appears under its final name once fully written.
func (s *pngStorage) Write(cameraID string, ts time.Time, frame *videoframe.Frame) (string, error) {
	path := FramePath(s.root, cameraID, ts)

	if frame == nil || frame.Width <= 0 || frame.Height <= 0 {
		return "", archiveerr.Write(archiveerr.EncodeFailed, path, ErrEmptyFrame)
	}

	buf := bytes.Buffer{}
	if err := png.Encode(&buf, frame.Image()); err != nil {
		return "", archiveerr.Write(archiveerr.EncodeFailed, path, err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(path), os.ModeDir|os.ModePerm); err != nil {
		return "", archiveerr.Write(archiveerr.IOFailed, path, err)
	}

	if err := s.save(path, buf.Bytes()); err != nil {
		return "", archiveerr.Write(archiveerr.IOFailed, path, err)
	}

	return path, nil
}

func (s *pngStorage) save(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return err
	}
	return nil
}

func FramePath(root, cameraID string, ts time.Time) string {
	return filepath.Join(root, cameraID, FormatTimestamp(ts)+frameExt)
}
