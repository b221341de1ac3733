package sememe

import (
	"errors"
	"fmt"
)

// Resource names used in errors and log attributes.
const (
	ResourceHierarchy = "hierarchy"
	ResourceGlossary  = "glossary"
)

var (
	ErrBadMagic           = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrChecksumMismatch   = errors.New("checksum mismatch: data corrupted")
	ErrWrongBlobKind      = errors.New("blob kind does not match file")
	ErrTruncated          = errors.New("blob truncated")
	ErrBuildMismatch      = errors.New("blobs belong to different builds")
	ErrInconsistent       = errors.New("database is inconsistent")
)

// LoadError reports a resource that could not be opened or read.
type LoadError struct {
	Resource string
	Path     string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s %q: %v", e.Resource, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ParseError identifies a malformed line in a resource. Line is 1-based.
type ParseError struct {
	Resource string
	Line     int
	Text     string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s line %d: %s: %q", e.Resource, e.Line, e.Reason, e.Text)
}

// CacheError reports a persisted blob that cannot be used. Any CacheError
// invalidates the whole cache.
type CacheError struct {
	Blob string
	Err  error
}

func (e *CacheError) Error() string {
	if e.Blob == "" {
		return fmt.Sprintf("cache: %v", e.Err)
	}
	return fmt.Sprintf("cache %s: %v", e.Blob, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }
