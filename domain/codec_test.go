package domain

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "permanode/utils/errors"
)

func idOf(b byte) MessageID {
	var id MessageID
	for i := range id {
		id[i] = b
	}
	return id
}

func sampleIndexationMessage() *Message {
	return &Message{
		NetworkID: 6530425480034647824,
		Parents:   []MessageID{idOf(1), idOf(2)},
		Payload:   &IndexationPayload{Index: []byte("permanode"), Data: []byte("hello")},
		Nonce:     42,
	}
}

func sampleMilestoneMessage(index uint32) *Message {
	var proof [MerkleProofLength]byte
	proof[0] = 0xaa
	var key [PublicKeyLength]byte
	key[31] = 7
	var sig [SignatureLength]byte
	sig[63] = 9
	return &Message{
		NetworkID: 1,
		Parents:   []MessageID{idOf(3)},
		Payload: &MilestonePayload{
			Index:                      index,
			Timestamp:                  1620000000,
			Parents:                    []MessageID{idOf(3), idOf(4)},
			InclusionMerkleProof:       proof,
			NextPoWScore:               4000,
			NextPoWScoreMilestoneIndex: 100,
			PublicKeys:                 [][PublicKeyLength]byte{key},
			Signatures:                 [][SignatureLength]byte{sig},
		},
		Nonce: 7,
	}
}

func TestPackUnpack(t *testing.T) {
	tests := []struct {
		name string
		msg  *Message
	}{
		{"indexation", sampleIndexationMessage()},
		{"milestone", sampleMilestoneMessage(12)},
		{"transaction", &Message{NetworkID: 9, Parents: []MessageID{idOf(5)}, Payload: &TransactionPayload{Raw: []byte{1, 2, 3}}, Nonce: 1}},
		{"no payload", &Message{NetworkID: 9, Parents: []MessageID{idOf(5), idOf(6), idOf(7)}, Nonce: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.msg.Pack()
			require.NoError(t, err)

			got, err := UnpackMessage(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.msg, got)

			again, err := got.Pack()
			require.NoError(t, err)
			assert.Equal(t, raw, again)
		})
	}
}

func TestUnpackMessage_Layout(t *testing.T) {
	raw, err := sampleIndexationMessage().Pack()
	require.NoError(t, err)

	assert.Equal(t, uint64(6530425480034647824), binary.LittleEndian.Uint64(raw[0:8]))
	assert.Equal(t, byte(2), raw[8])
	payloadLen := binary.LittleEndian.Uint32(raw[8+1+64:])
	// type + index len + index + data len + data
	assert.Equal(t, uint32(4+2+9+4+5), payloadLen)
	assert.Equal(t, uint32(PayloadTypeIndexation), binary.LittleEndian.Uint32(raw[8+1+64+4:]))
}

func TestUnpackMessage_Rejects(t *testing.T) {
	valid, err := sampleIndexationMessage().Pack()
	require.NoError(t, err)

	unsorted := append([]byte(nil), valid...)
	high := idOf(9)
	copy(unsorted[9:41], high[:])

	zeroParents := append([]byte(nil), valid[:8]...)
	zeroParents = append(zeroParents, 0)

	badType := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badType[8+1+64+4:], 7)

	shortPayload := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(shortPayload[8+1+64:], 30)

	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"truncated", valid[:len(valid)-3]},
		{"trailing bytes", append(append([]byte(nil), valid...), 0)},
		{"unsorted parents", unsorted},
		{"zero parents", zeroParents},
		{"unknown payload type", badType},
		{"payload length mismatch", shortPayload},
		{"too long", make([]byte, MaxMessageLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnpackMessage(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedMessage))
			assert.True(t, apperrors.IsValidationError(err))
		})
	}
}

func TestPack_RejectsInvalidIndex(t *testing.T) {
	msg := sampleIndexationMessage()
	msg.Payload = &IndexationPayload{Index: make([]byte, MaxIndexLength+1)}
	_, err := msg.Pack()
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestComputeMessageID(t *testing.T) {
	raw, err := sampleIndexationMessage().Pack()
	require.NoError(t, err)

	id := ComputeMessageID(raw)
	assert.Equal(t, id, ComputeMessageID(raw))
	assert.Len(t, id.String(), 64)

	raw[len(raw)-1] ^= 0xff
	assert.NotEqual(t, id, ComputeMessageID(raw))
}

func TestParseMessageID(t *testing.T) {
	id := idOf(0xab)
	parsed, err := ParseMessageID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseMessageID("abcd")
	assert.True(t, apperrors.IsValidationError(err))
	_, err = ParseMessageID(string(make([]byte, 64)))
	assert.Error(t, err)
}

func TestHashedIndex(t *testing.T) {
	h := HashedIndex([]byte("permanode"))
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashedIndex([]byte("permanode")))
	assert.NotEqual(t, h, HashedIndex([]byte("Permanode")))
}

func TestMessage_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(sampleIndexationMessage())
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "6530425480034647824", out["networkId"])
	assert.Equal(t, "42", out["nonce"])
	assert.Len(t, out["parentMessageIds"], 2)

	payload := out["payload"].(map[string]interface{})
	assert.Equal(t, float64(2), payload["type"])
	assert.Equal(t, "7065726d616e6f6465", payload["index"])
}

func TestMessage_Accessors(t *testing.T) {
	ms := sampleMilestoneMessage(77)
	index, ok := ms.MilestoneIndex()
	assert.True(t, ok)
	assert.Equal(t, uint32(77), index)
	_, ok = ms.Indexation()
	assert.False(t, ok)

	_, ok = sampleIndexationMessage().MilestoneIndex()
	assert.False(t, ok)
}

func TestMilestoneFromMessage(t *testing.T) {
	id := idOf(8)
	m, err := MilestoneFromMessage(id, sampleMilestoneMessage(5))
	require.NoError(t, err)
	assert.Equal(t, uint32(5), m.Index)
	assert.Equal(t, int64(1620000000), m.Timestamp.Unix())

	_, err = MilestoneFromMessage(id, sampleIndexationMessage())
	assert.Error(t, err)
}

func TestParseMetadata(t *testing.T) {
	id := idOf(0x11)
	doc := `{"messageId":"` + id.String() + `","parentMessageIds":["` + idOf(1).String() + `"],"isSolid":true,"referencedByMilestoneIndex":12,"ledgerInclusionState":"included"}`

	meta, err := ParseMetadata([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, id, meta.MessageID)
	ref, ok := meta.ReferencedIndex()
	assert.True(t, ok)
	assert.Equal(t, uint32(12), ref)
	assert.Equal(t, LedgerInclusionIncluded, *meta.LedgerInclusionState)

	_, err = ParseMetadata([]byte(`{"messageId":"` + id.String() + `","ledgerInclusionState":"maybe"}`))
	assert.Error(t, err)
	_, err = ParseMetadata([]byte(`{"isSolid":true}`))
	assert.Error(t, err)
}

func TestNewFullMessage(t *testing.T) {
	raw, err := sampleIndexationMessage().Pack()
	require.NoError(t, err)

	full, err := NewFullMessage(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, ComputeMessageID(raw), full.MessageID)
	msg, err := full.Message()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), msg.Nonce)

	_, err = NewFullMessage(raw, &MessageMetadata{MessageID: idOf(1)})
	assert.Error(t, err)
}

func TestMqttType(t *testing.T) {
	assert.Equal(t, "messages", MqttMessages.Topic())
	assert.Equal(t, "messages/referenced", MqttMessagesReferenced.Topic())
	_, err := ParseMqttType("metadata")
	assert.Error(t, err)
}
