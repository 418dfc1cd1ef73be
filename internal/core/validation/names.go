package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/recordhub/records-api/internal/core/domain"
)

// MinAccountNameLength is the shortest display name accepted, in runes,
// after surrounding whitespace is removed.
const MinAccountNameLength = 3

// AccountName trims name and enforces MinAccountNameLength.
func AccountName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < MinAccountNameLength {
		return "", domain.Errorf(domain.ErrBadRequest, "name must be at least %d characters", MinAccountNameLength)
	}
	return name, nil
}

// ItemName trims name and rejects it when nothing is left.
func ItemName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.Errorf(domain.ErrBadRequest, "name must not be blank")
	}
	return name, nil
}
