package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"permanode/domain"
)

func newTestMessage(t *testing.T, nonce uint64, payload domain.Payload) *domain.FullMessage {
	t.Helper()
	var parent domain.MessageID
	parent[31] = 7
	msg := &domain.Message{NetworkID: 9, Parents: []domain.MessageID{parent}, Payload: payload, Nonce: nonce}
	raw, err := msg.Pack()
	require.NoError(t, err)
	full, err := domain.NewFullMessage(raw, nil)
	require.NoError(t, err)
	return full
}

func newTestMilestone(index uint32) *domain.Milestone {
	var id domain.MessageID
	id[0] = byte(index)
	return &domain.Milestone{Index: index, MessageID: id, Timestamp: time.Unix(1_600_000_000, 0).UTC()}
}

func marker() *uint8 {
	v := uint8(0)
	return &v
}
