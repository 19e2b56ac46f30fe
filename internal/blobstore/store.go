// Package blobstore stores published artifacts under string keys.
//
// A Put fully replaces the previous value of a key or leaves it untouched on
// failure; there is no versioning and no append.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("blob not found")

// Store is a durable key-value blob store.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// ValidateKey rejects keys that are empty or would escape the namespace.
func ValidateKey(key string) error {
	if key == "" {
		return errors.New("empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("invalid key %q", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return fmt.Errorf("invalid key %q", key)
		}
	}
	return nil
}

// objectName joins a namespace prefix and a key.
func objectName(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}
