package db

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when object not found
var ErrNotFound error = errors.New("not found")

// Key identifies looked up values of a single source
type Key struct {
	Source string
	Word   string
}

// String returns storage key, words are case insensitive
func (k Key) String() string {
	return k.Source + ":" + strings.ToLower(k.Word)
}

// Cache defines methods provided by lookup cache backends
type Cache interface {
	// Get values extracted for the key
	Get(context.Context, Key) ([]string, error)
	// Save values extracted for the key
	Save(context.Context, Key, []string) error
}
