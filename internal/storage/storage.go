// Package storage defines object storage references and errors shared by the
// storage backends.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

const uriScheme = "s3://"

var (
	// ErrNotFound is returned when the referenced object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidURI is returned for malformed s3:// references.
	ErrInvalidURI = errors.New("invalid storage uri")
	// ErrUnavailable is returned when the storage service throttled or timed
	// out and the retry budget ran out.
	ErrUnavailable = errors.New("storage unavailable")
)

// Location points at one object. An empty Bucket means the default bucket.
type Location struct {
	Bucket string
	Key    string
}

// URI renders the location as s3://bucket/key.
func (l Location) URI() string {
	return uriScheme + l.Bucket + "/" + l.Key
}

// IsURI reports whether ref uses the s3:// scheme.
func IsURI(ref string) bool {
	return strings.HasPrefix(strings.TrimSpace(ref), uriScheme)
}

// ParseURI splits s3://bucket/key into its parts.
func ParseURI(uri string) (Location, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, uriScheme) {
		return Location{}, fmt.Errorf("%w: %q must start with %s", ErrInvalidURI, uri, uriScheme)
	}

	bucket, key, found := strings.Cut(strings.TrimPrefix(uri, uriScheme), "/")
	if !found || bucket == "" || key == "" {
		return Location{}, fmt.Errorf("%w: %q must have the form s3://bucket/key", ErrInvalidURI, uri)
	}

	return Location{Bucket: bucket, Key: key}, nil
}

// Resolve turns a file reference into a Location. Bare keys keep an empty
// bucket so the store falls back to its default.
func Resolve(ref string) (Location, error) {
	ref = strings.TrimSpace(ref)
	if IsURI(ref) {
		return ParseURI(ref)
	}
	if ref == "" {
		return Location{}, fmt.Errorf("%w: empty reference", ErrInvalidURI)
	}
	return Location{Key: ref}, nil
}
