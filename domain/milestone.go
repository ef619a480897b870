package domain

import (
	"fmt"
	"sort"
	"time"

	apperrors "permanode/utils/errors"
)

// Milestone is the stored summary of a milestone message.
type Milestone struct {
	Index     uint32    `json:"milestoneIndex"`
	MessageID MessageID `json:"messageId"`
	Timestamp time.Time `json:"timestamp"`
}

// MilestoneFromMessage extracts the milestone row from a milestone message.
func MilestoneFromMessage(id MessageID, msg *Message) (*Milestone, error) {
	ms, ok := msg.Milestone()
	if !ok {
		return nil, fmt.Errorf("%w: message %s carries no milestone", apperrors.ErrInvalidInput, id)
	}
	return &Milestone{
		Index:     ms.Index,
		MessageID: id,
		Timestamp: time.Unix(int64(ms.Timestamp), 0).UTC(),
	}, nil
}

// FullMessage is a message together with its raw bytes and metadata.
type FullMessage struct {
	MessageID MessageID        `json:"message_id"`
	Raw       []byte           `json:"raw"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`

	decoded *Message
}

// NewFullMessage decodes raw and checks it hashes to id when id is set.
func NewFullMessage(raw []byte, meta *MessageMetadata) (*FullMessage, error) {
	msg, err := UnpackMessage(raw)
	if err != nil {
		return nil, err
	}
	id := ComputeMessageID(raw)
	if meta != nil && !meta.MessageID.IsZero() && meta.MessageID != id {
		return nil, fmt.Errorf("%w: metadata id %s does not match message id %s", apperrors.ErrInvalidInput, meta.MessageID, id)
	}
	return &FullMessage{MessageID: id, Raw: raw, Metadata: meta, decoded: msg}, nil
}

// Message returns the decoded message, decoding Raw on first use.
func (f *FullMessage) Message() (*Message, error) {
	if f.decoded == nil {
		msg, err := UnpackMessage(f.Raw)
		if err != nil {
			return nil, err
		}
		f.decoded = msg
	}
	return f.decoded, nil
}

// MilestoneData is every message referenced by one milestone. Archive
// files hold one MilestoneData per line.
type MilestoneData struct {
	MilestoneIndex uint32         `json:"milestone_index"`
	Milestone      *Milestone     `json:"milestone"`
	Messages       []*FullMessage `json:"messages"`
}

// SortMessages orders messages by id so encodings are deterministic.
func (d *MilestoneData) SortMessages() {
	sort.Slice(d.Messages, func(i, j int) bool {
		return d.Messages[i].MessageID.Less(d.Messages[j].MessageID)
	})
}
