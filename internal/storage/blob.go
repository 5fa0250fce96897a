package storage

import (
	"errors"
	"io"
)

var ErrInvalidKey = errors.New("invalid spool key")

// Spool holds uploaded files on disk while they are being read.
type Spool interface {
	Put(key string, r io.Reader) (string, error) // returns local path
	Remove(key string) error
}
