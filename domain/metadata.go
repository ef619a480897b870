package domain

import (
	"encoding/json"
	"fmt"

	apperrors "permanode/utils/errors"
)

// LedgerInclusionState is the node's verdict on a referenced message.
type LedgerInclusionState string

const (
	LedgerInclusionNoTransaction LedgerInclusionState = "noTransaction"
	LedgerInclusionIncluded      LedgerInclusionState = "included"
	LedgerInclusionConflicting   LedgerInclusionState = "conflicting"
)

func (s LedgerInclusionState) IsValid() bool {
	switch s {
	case LedgerInclusionNoTransaction, LedgerInclusionIncluded, LedgerInclusionConflicting:
		return true
	}
	return false
}

func (s *LedgerInclusionState) UnmarshalText(text []byte) error {
	v := LedgerInclusionState(text)
	if !v.IsValid() {
		return fmt.Errorf("%w: unknown ledger inclusion state %q", apperrors.ErrInvalidInput, text)
	}
	*s = v
	return nil
}

// MessageMetadata mirrors the node's message metadata document.
type MessageMetadata struct {
	MessageID                  MessageID             `json:"messageId"`
	Parents                    []MessageID           `json:"parentMessageIds"`
	IsSolid                    bool                  `json:"isSolid"`
	ReferencedByMilestoneIndex *uint32               `json:"referencedByMilestoneIndex,omitempty"`
	MilestoneIndex             *uint32               `json:"milestoneIndex,omitempty"`
	LedgerInclusionState       *LedgerInclusionState `json:"ledgerInclusionState,omitempty"`
	ConflictReason             *uint8                `json:"conflictReason,omitempty"`
	ShouldPromote              *bool                 `json:"shouldPromote,omitempty"`
	ShouldReattach             *bool                 `json:"shouldReattach,omitempty"`
}

// ReferencedIndex returns the referencing milestone index, if any.
func (m *MessageMetadata) ReferencedIndex() (uint32, bool) {
	if m.ReferencedByMilestoneIndex == nil {
		return 0, false
	}
	return *m.ReferencedByMilestoneIndex, true
}

// ParseMetadata decodes a metadata document as published by nodes.
func ParseMetadata(b []byte) (*MessageMetadata, error) {
	var meta MessageMetadata
	if err := json.Unmarshal(b, &meta); err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", apperrors.ErrInvalidInput, err)
	}
	if meta.MessageID.IsZero() {
		return nil, fmt.Errorf("%w: metadata without messageId", apperrors.ErrInvalidInput)
	}
	return &meta, nil
}
