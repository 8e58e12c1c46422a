package models

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidUserID = errors.New("invalid user id")

// UserID is an opaque 32-byte identity. It can be derived from an
// account address (hex) or from a UUID.
type UserID [32]byte

// ParseUserID accepts 64 hex characters (optionally 0x-prefixed) or a UUID.
// A UUID occupies the first 16 bytes; the rest stay zero.
func ParseUserID(s string) (UserID, error) {
	var id UserID
	s = strings.TrimSpace(s)
	raw := strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(raw) == hex.EncodedLen(len(id)) {
		if _, err := hex.Decode(id[:], []byte(raw)); err != nil {
			return UserID{}, ErrInvalidUserID
		}
		return id, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, ErrInvalidUserID
	}
	copy(id[:], u[:])
	return id, nil
}

func (id UserID) String() string {
	return hex.EncodeToString(id[:])
}

func (id UserID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
