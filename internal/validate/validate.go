// Package validate provides functions to validate upload requests.
package validate

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// MinContentTypeLen is the shortest accepted content type (e.g. "a/b").
const MinContentTypeLen = 3

// UserID checks that the user id is non-empty.
func UserID(s string) error {
	if s == "" {
		return errors.New("user_id required")
	}
	return nil
}

// Filename checks that the filename is non-empty.
func Filename(s string) error {
	if s == "" {
		return errors.New("filename required")
	}
	return nil
}

// ContentType checks that the content type is at least MinContentTypeLen characters.
func ContentType(ct string) error {
	if utf8.RuneCountInString(ct) < MinContentTypeLen {
		return fmt.Errorf("content_type must be at least %d characters", MinContentTypeLen)
	}
	return nil
}

// Size checks that the declared size is a positive byte count.
func Size(n int64) error {
	if n < 1 {
		return errors.New("size must be >= 1")
	}
	return nil
}

// All runs validators in order and returns the first failure.
func All(validators ...func() error) error {
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}
