// Package domain contains the ledger model and its binary codec.
package domain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	apperrors "permanode/utils/errors"
)

// MessageIDLength is the byte length of a message id.
const MessageIDLength = 32

// MessageID is the BLAKE2b-256 hash of a message's raw bytes.
type MessageID [MessageIDLength]byte

// ParseMessageID decodes the 64 character hex form of a message id.
func ParseMessageID(s string) (MessageID, error) {
	var id MessageID
	s = strings.TrimPrefix(s, "0x")
	if len(s) != 2*MessageIDLength {
		return id, fmt.Errorf("%w: message id must be %d hex characters, got %d", apperrors.ErrInvalidInput, 2*MessageIDLength, len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("%w: message id is not hex: %v", apperrors.ErrInvalidInput, err)
	}
	return id, nil
}

// ComputeMessageID hashes raw message bytes into their id.
func ComputeMessageID(raw []byte) MessageID {
	return MessageID(blake2b.Sum256(raw))
}

// HashedIndex returns the hex BLAKE2b-256 digest of an indexation index.
func HashedIndex(index []byte) string {
	sum := blake2b.Sum256(index)
	return hex.EncodeToString(sum[:])
}

func (id MessageID) String() string {
	return hex.EncodeToString(id[:])
}

func (id MessageID) IsZero() bool {
	return id == MessageID{}
}

func (id MessageID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *MessageID) UnmarshalText(text []byte) error {
	parsed, err := ParseMessageID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Less orders ids bytewise.
func (id MessageID) Less(other MessageID) bool {
	for i := range id {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return false
}
