package storage

import (
	"fmt"
	"regexp"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// checkKey rejects keys that could not be used as a file name.
func checkKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
