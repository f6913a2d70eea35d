package camera

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/tauraamui/camarchive/pkg/archiveerr"
	"github.com/tauraamui/xerror"
)

type Kind string

const (
	StaticURL      Kind = "non_ip"
	PortProbe      Kind = "ip"
	PlaylistStream Kind = "stream"
)

func (k Kind) Valid() bool {
	switch k {
	case StaticURL, PortProbe, PlaylistStream:
		return true
	}
	return false
}

// Record describes one camera to archive. Which fields are required
// depends on Kind.
type Record struct {
	ID          string `json:"cameraID"`
	Kind        Kind   `json:"camera_type"`
	SnapshotURL string `json:"snapshot_url,omitempty"`
	IP          string `json:"ip,omitempty"`
	Port        string `json:"port,omitempty"`
	ImagePath   string `json:"image_path,omitempty"`
	VideoPath   string `json:"video_path,omitempty"`
	ManifestURL string `json:"m3u8_url,omitempty"`
}

// flexString accepts either a JSON string or number, directory services
// hand out numeric ids and ports.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return xerror.Errorf("expected string or number: %w", err)
	}
	*s = flexString(n.String())
	return nil
}

func (r *Record) UnmarshalJSON(b []byte) error {
	type plain Record
	var raw struct {
		plain
		ID   flexString `json:"cameraID"`
		Port flexString `json:"port,omitempty"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Record(raw.plain)
	r.ID = string(raw.ID)
	r.Port = string(raw.Port)
	return nil
}

// Validate checks the fields required by the record's kind are present.
func (r Record) Validate() error {
	if len(strings.TrimSpace(r.ID)) == 0 {
		return archiveerr.Config(archiveerr.MissingField, "cameraID", "camera record has no id")
	}
	if strings.ContainsAny(r.ID, `/\`) || r.ID == "." || r.ID == ".." {
		return archiveerr.Config(archiveerr.InvalidID, "cameraID", fmt.Sprintf("%q cannot be used as a directory name", r.ID))
	}

	switch r.Kind {
	case StaticURL:
		if len(r.SnapshotURL) == 0 {
			return missing("snapshot_url", r.Kind)
		}
	case PortProbe:
		if len(r.IP) == 0 {
			return missing("ip", r.Kind)
		}
		if len(r.ImagePath) == 0 && len(r.VideoPath) == 0 {
			return missing("image_path", r.Kind)
		}
		if len(r.Port) > 0 {
			if p, err := strconv.Atoi(r.Port); err != nil || p < 1 || p > 65535 {
				return archiveerr.Config(archiveerr.MissingField, "port", fmt.Sprintf("%q is not a valid port", r.Port))
			}
		}
	case PlaylistStream:
		if len(r.ManifestURL) == 0 {
			return missing("m3u8_url", r.Kind)
		}
	default:
		return archiveerr.Config(archiveerr.UnknownKind, "camera_type", fmt.Sprintf("unsupported camera type %q", string(r.Kind)))
	}
	return nil
}

func missing(field string, kind Kind) error {
	return archiveerr.Config(archiveerr.MissingField, field, fmt.Sprintf("required for camera_type %s", kind))
}

// ProbeURL builds http://<ip>[:<port>]/<path> for a port probe camera,
// preferring the image path over the video path.
func (r Record) ProbeURL() string {
	host := r.IP
	switch {
	case len(r.Port) > 0:
		host = net.JoinHostPort(strings.Trim(r.IP, "[]"), r.Port)
	case strings.Contains(r.IP, ":") && !strings.HasPrefix(r.IP, "["):
		host = "[" + r.IP + "]"
	}
	path := r.ImagePath
	if len(path) == 0 {
		path = r.VideoPath
	}
	return fmt.Sprintf("http://%s/%s", host, strings.TrimPrefix(path, "/"))
}

func (r Record) String() string {
	return fmt.Sprintf("%s [%s]", r.ID, r.Kind)
}
