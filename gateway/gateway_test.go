package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"

	"permanode/domain"
)

func testMessage(t *testing.T, nonce uint64) (*domain.FullMessage, []byte) {
	t.Helper()
	var parent domain.MessageID
	parent[0] = 1
	msg := &domain.Message{
		NetworkID: 1,
		Parents:   []domain.MessageID{parent},
		Payload:   &domain.IndexationPayload{Index: []byte("gw"), Data: []byte("data")},
		Nonce:     nonce,
	}
	raw, err := msg.Pack()
	require.NoError(t, err)
	full, err := domain.NewFullMessage(raw, nil)
	require.NoError(t, err)
	return full, raw
}
