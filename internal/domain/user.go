package domain

import (
	"fmt"
	"strconv"
)

// UserID identifies a chat user. Each user owns an independent queue,
// worker and sandbox directory.
type UserID int64

// Validate checks that the identity is usable.
func (u UserID) Validate() error {
	if u <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidUserID, int64(u))
	}
	return nil
}

// String renders the identity as a decimal number. The sandbox directory of
// the user is named after this value.
func (u UserID) String() string {
	return strconv.FormatInt(int64(u), 10)
}

// ParseUserID parses a decimal user identity.
func ParseUserID(s string) (UserID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUserID, s)
	}
	id := UserID(n)
	if err := id.Validate(); err != nil {
		return 0, err
	}
	return id, nil
}
