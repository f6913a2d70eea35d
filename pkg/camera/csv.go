package camera

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const playlistExt = "m3u8"

// ReadCSV builds records from a file of camera URLs, one per row in the
// first column. URLs ending in .m3u8 become playlist streams, everything
// else a static snapshot URL. Ids are assigned 1..n in row order.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "unable to read camera csv")
		}
		if len(row) == 0 {
			continue
		}
		addr := strings.TrimSpace(row[0])
		if len(addr) == 0 {
			continue
		}

		id := strconv.Itoa(len(records) + 1)
		if isPlaylist(addr) {
			records = append(records, Record{ID: id, Kind: PlaylistStream, ManifestURL: addr})
			continue
		}
		records = append(records, Record{ID: id, Kind: StaticURL, SnapshotURL: addr})
	}
	return records, nil
}

func isPlaylist(addr string) bool {
	if i := strings.IndexAny(addr, "?#"); i >= 0 {
		addr = addr[:i]
	}
	parts := strings.Split(addr, ".")
	return strings.EqualFold(parts[len(parts)-1], playlistExt)
}
