// Package store provides the persistence of plugin data as string key/values
package store

import (
	"io"
)

// StringStorer is implemented by any value that has the GetString, PutString, DeleteString, Scan
// and Close methods
type StringStorer interface {
	io.Closer

	// GetString returns the value associated to a given key. A missing key is an error
	GetString(key string) (value string, err error)

	// PutString adds or updates the value of a key
	PutString(key string, value string) (err error)

	// DeleteString deletes the entry of a key
	DeleteString(key string) (err error)

	// Scan returns all key/values
	Scan() (entries map[string]string, err error)
}
