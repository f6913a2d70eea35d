// Package archiveerr holds the typed failures raised while archiving.
// Fetch and write errors are per tick and stay inside the owning worker,
// config errors are raised once before anything starts.
package archiveerr

import (
	"errors"
	"fmt"

	"github.com/tauraamui/xerror"
)

type FetchKind string

const (
	Timeout             FetchKind = "timeout"
	BadResponse         FetchKind = "bad_response"
	Unreachable         FetchKind = "unreachable"
	Incomplete          FetchKind = "incomplete"
	ManifestUnavailable FetchKind = "manifest_unavailable"
	SegmentUnavailable  FetchKind = "segment_unavailable"
)

type WriteKind string

const (
	EncodeFailed WriteKind = "encode_failed"
	IOFailed     WriteKind = "io_failed"
)

type ConfigKind string

const (
	MissingField       ConfigKind = "missing_field"
	UnknownKind        ConfigKind = "unknown_kind"
	InvalidID          ConfigKind = "invalid_id"
	DuplicateID        ConfigKind = "duplicate_id"
	InvalidThreshold   ConfigKind = "invalid_threshold"
	InvalidInterval    ConfigKind = "invalid_interval"
	InvalidConcurrency ConfigKind = "invalid_concurrency"
)

type FetchError struct {
	Kind  FetchKind
	Msg   string
	Cause error
}

func Fetch(kind FetchKind, msg string, cause error) error {
	return &FetchError{Kind: kind, Msg: msg, Cause: cause}
}

func (e *FetchError) Error() string {
	return format(string(e.Kind), e.Msg, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

type WriteError struct {
	Kind  WriteKind
	Path  string
	Cause error
}

func Write(kind WriteKind, path string, cause error) error {
	return &WriteError{Kind: kind, Path: path, Cause: cause}
}

func (e *WriteError) Error() string {
	return format(string(e.Kind), fmt.Sprintf("unable to write frame to %s", e.Path), e.Cause)
}

func (e *WriteError) Unwrap() error { return e.Cause }

type ConfigError struct {
	Kind  ConfigKind
	Field string
	Msg   string
}

func Config(kind ConfigKind, field, msg string) error {
	return &ConfigError{Kind: kind, Field: field, Msg: msg}
}

func (e *ConfigError) Error() string {
	if len(e.Field) == 0 {
		return format(string(e.Kind), e.Msg, nil)
	}
	return format(string(e.Kind), fmt.Sprintf("%s: %s", e.Field, e.Msg), nil)
}

func format(kind, msg string, cause error) string {
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return xerror.NewWithKind(xerror.Kind(kind), msg).Error()
}

// FetchKindOf reports the fetch kind carried anywhere in err's chain.
func FetchKindOf(err error) (FetchKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

func IsFetch(err error, kind FetchKind) bool {
	k, ok := FetchKindOf(err)
	return ok && k == kind
}

func IsWrite(err error, kind WriteKind) bool {
	var we *WriteError
	return errors.As(err, &we) && we.Kind == kind
}

func IsConfig(err error, kind ConfigKind) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Kind == kind
}
