package extract

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/joseph-ayodele/docmeta/constants"
)

// guard runs fn and converts both returned errors and panics into *ExtractError.
// Several parsing libraries panic on malformed input.
func guard(format constants.Format, path string, fn func() (Metadata, error)) (md Metadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			md = nil
			err = &ExtractError{Format: format, Path: path, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	md, err = fn()
	if err != nil {
		var ee *ExtractError
		if errors.As(err, &ee) {
			return nil, err
		}
		return nil, &ExtractError{Format: format, Path: path, Err: err}
	}
	return md, nil
}

// truncateRunes keeps the first n characters of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
