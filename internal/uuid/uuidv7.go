// Package uuid issues the time-ordered identifiers every record is keyed by.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string. Later IDs sort after earlier ones, so
// primary-key indexes grow at the tail.
func New() string {
	if id, err := googleuuid.NewV7(); err == nil {
		return id.String()
	}
	// V7 only fails when the entropy source does; fall back to V4.
	return googleuuid.NewString()
}

// Parse validates s and returns it in canonical lower-case hyphenated form,
// so IDs from URLs compare equal to stored ones.
func Parse(s string) (string, error) {
	id, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
