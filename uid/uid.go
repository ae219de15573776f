// Package uid generates time-ordered identifiers.
package uid

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a new UUIDv7 in canonical string form. Identifiers generated
// later sort after earlier ones.
func New() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("uid: %w", err)
	}
	return id.String(), nil
}

// Must is New that panics on failure, for initializers.
func Must() string {
	s, err := New()
	if err != nil {
		panic(err)
	}
	return s
}

// Parse validates s and returns it in canonical lowercase form.
func Parse(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("uid: %w", err)
	}
	return id.String(), nil
}

// Version reports the UUID version of s.
func Version(s string) (int, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("uid: %w", err)
	}
	return int(id.Version()), nil
}
