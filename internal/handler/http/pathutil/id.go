package pathutil

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidID reports a path segment that is not a positive integer ID.
var ErrInvalidID = errors.New("invalid id")

// ExtractID strips prefix from path and parses the remainder as an int64
// resource ID. IDs are positive by construction, so zero, negatives, and
// anything non-numeric come back as ErrInvalidID.
func ExtractID(path, prefix string) (int64, error) {
	rest := strings.TrimPrefix(path, prefix)
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
