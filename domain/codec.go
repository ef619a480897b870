package domain

import (
	"encoding/binary"
	"errors"
	"fmt"

	apperrors "permanode/utils/errors"
)

// ErrMalformedMessage is returned for any byte sequence that is not a valid message.
var ErrMalformedMessage = fmt.Errorf("malformed message: %w", apperrors.ErrInvalidInput)

var errShortBuffer = errors.New("unexpected end of data")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedMessage, fmt.Sprintf(format, args...))
}

type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int { return len(r.buf) - r.off }

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, errShortBuffer
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) parents(field string) ([]MessageID, error) {
	count, err := r.u8()
	if err != nil {
		return nil, malformed("%s count: %v", field, err)
	}
	if count < MinParents || count > MaxParents {
		return nil, malformed("%s count %d out of range [%d, %d]", field, count, MinParents, MaxParents)
	}
	parents := make([]MessageID, count)
	for i := range parents {
		b, err := r.take(MessageIDLength)
		if err != nil {
			return nil, malformed("%s %d: %v", field, i, err)
		}
		copy(parents[i][:], b)
		if i > 0 && !parents[i-1].Less(parents[i]) {
			return nil, malformed("%s must be sorted and unique", field)
		}
	}
	return parents, nil
}

// UnpackMessage decodes the little-endian wire form of a message.
func UnpackMessage(raw []byte) (*Message, error) {
	if len(raw) > MaxMessageLength {
		return nil, malformed("length %d exceeds %d", len(raw), MaxMessageLength)
	}
	r := &reader{buf: raw}

	networkID, err := r.u64()
	if err != nil {
		return nil, malformed("network id: %v", err)
	}
	parents, err := r.parents("parents")
	if err != nil {
		return nil, err
	}

	payloadLen, err := r.u32()
	if err != nil {
		return nil, malformed("payload length: %v", err)
	}
	var payload Payload
	if payloadLen > 0 {
		body, err := r.take(int(payloadLen))
		if err != nil {
			return nil, malformed("payload of %d bytes: %v", payloadLen, err)
		}
		payload, err = unpackPayload(body)
		if err != nil {
			return nil, err
		}
	}

	nonce, err := r.u64()
	if err != nil {
		return nil, malformed("nonce: %v", err)
	}
	if r.remaining() != 0 {
		return nil, malformed("%d trailing bytes", r.remaining())
	}

	return &Message{
		NetworkID: networkID,
		Parents:   parents,
		Payload:   payload,
		Nonce:     nonce,
	}, nil
}

func unpackPayload(body []byte) (Payload, error) {
	r := &reader{buf: body}
	kind, err := r.u32()
	if err != nil {
		return nil, malformed("payload type: %v", err)
	}

	var payload Payload
	switch kind {
	case PayloadTypeTransaction:
		raw := make([]byte, r.remaining())
		copy(raw, body[r.off:])
		r.off = len(body)
		payload = &TransactionPayload{Raw: raw}
	case PayloadTypeMilestone:
		payload, err = unpackMilestone(r)
	case PayloadTypeIndexation:
		payload, err = unpackIndexation(r)
	default:
		return nil, malformed("unknown payload type %d", kind)
	}
	if err != nil {
		return nil, err
	}
	if r.remaining() != 0 {
		return nil, malformed("payload length mismatch, %d bytes unread", r.remaining())
	}
	return payload, nil
}

func unpackIndexation(r *reader) (*IndexationPayload, error) {
	indexLen, err := r.u16()
	if err != nil {
		return nil, malformed("index length: %v", err)
	}
	if indexLen < MinIndexLength || indexLen > MaxIndexLength {
		return nil, malformed("index length %d out of range [%d, %d]", indexLen, MinIndexLength, MaxIndexLength)
	}
	index, err := r.take(int(indexLen))
	if err != nil {
		return nil, malformed("index: %v", err)
	}
	dataLen, err := r.u32()
	if err != nil {
		return nil, malformed("data length: %v", err)
	}
	data, err := r.take(int(dataLen))
	if err != nil {
		return nil, malformed("data: %v", err)
	}
	return &IndexationPayload{
		Index: append([]byte(nil), index...),
		Data:  append([]byte(nil), data...),
	}, nil
}

func unpackMilestone(r *reader) (*MilestonePayload, error) {
	ms := &MilestonePayload{}
	var err error

	if ms.Index, err = r.u32(); err != nil {
		return nil, malformed("milestone index: %v", err)
	}
	if ms.Timestamp, err = r.u64(); err != nil {
		return nil, malformed("milestone timestamp: %v", err)
	}
	if ms.Parents, err = r.parents("milestone parents"); err != nil {
		return nil, err
	}
	proof, err := r.take(MerkleProofLength)
	if err != nil {
		return nil, malformed("inclusion merkle proof: %v", err)
	}
	copy(ms.InclusionMerkleProof[:], proof)
	if ms.NextPoWScore, err = r.u32(); err != nil {
		return nil, malformed("next pow score: %v", err)
	}
	if ms.NextPoWScoreMilestoneIndex, err = r.u32(); err != nil {
		return nil, malformed("next pow score milestone index: %v", err)
	}

	keyCount, err := r.u8()
	if err != nil {
		return nil, malformed("public key count: %v", err)
	}
	ms.PublicKeys = make([][PublicKeyLength]byte, keyCount)
	for i := range ms.PublicKeys {
		b, err := r.take(PublicKeyLength)
		if err != nil {
			return nil, malformed("public key %d: %v", i, err)
		}
		copy(ms.PublicKeys[i][:], b)
	}

	receiptLen, err := r.u32()
	if err != nil {
		return nil, malformed("receipt length: %v", err)
	}
	if receiptLen > 0 {
		receipt, err := r.take(int(receiptLen))
		if err != nil {
			return nil, malformed("receipt: %v", err)
		}
		ms.Receipt = append([]byte(nil), receipt...)
	}

	sigCount, err := r.u8()
	if err != nil {
		return nil, malformed("signature count: %v", err)
	}
	ms.Signatures = make([][SignatureLength]byte, sigCount)
	for i := range ms.Signatures {
		b, err := r.take(SignatureLength)
		if err != nil {
			return nil, malformed("signature %d: %v", i, err)
		}
		copy(ms.Signatures[i][:], b)
	}
	return ms, nil
}

// Pack encodes the message into its wire form. It is the inverse of UnpackMessage.
func (m *Message) Pack() ([]byte, error) {
	if len(m.Parents) < MinParents || len(m.Parents) > MaxParents {
		return nil, malformed("parents count %d out of range [%d, %d]", len(m.Parents), MinParents, MaxParents)
	}

	var payload []byte
	if m.Payload != nil {
		var err error
		if payload, err = packPayload(m.Payload); err != nil {
			return nil, err
		}
	}

	buf := make([]byte, 0, 8+1+len(m.Parents)*MessageIDLength+4+len(payload)+8)
	buf = binary.LittleEndian.AppendUint64(buf, m.NetworkID)
	buf = appendParents(buf, m.Parents)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payload)))
	buf = append(buf, payload...)
	buf = binary.LittleEndian.AppendUint64(buf, m.Nonce)

	if len(buf) > MaxMessageLength {
		return nil, malformed("length %d exceeds %d", len(buf), MaxMessageLength)
	}
	return buf, nil
}

func appendParents(buf []byte, parents []MessageID) []byte {
	buf = append(buf, uint8(len(parents)))
	for _, p := range parents {
		buf = append(buf, p[:]...)
	}
	return buf
}

func packPayload(p Payload) ([]byte, error) {
	buf := binary.LittleEndian.AppendUint32(nil, p.PayloadType())
	switch v := p.(type) {
	case *TransactionPayload:
		buf = append(buf, v.Raw...)
	case *IndexationPayload:
		if len(v.Index) < MinIndexLength || len(v.Index) > MaxIndexLength {
			return nil, malformed("index length %d out of range [%d, %d]", len(v.Index), MinIndexLength, MaxIndexLength)
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(v.Index)))
		buf = append(buf, v.Index...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v.Data)))
		buf = append(buf, v.Data...)
	case *MilestonePayload:
		if len(v.Parents) < MinParents || len(v.Parents) > MaxParents {
			return nil, malformed("milestone parents count %d out of range [%d, %d]", len(v.Parents), MinParents, MaxParents)
		}
		buf = binary.LittleEndian.AppendUint32(buf, v.Index)
		buf = binary.LittleEndian.AppendUint64(buf, v.Timestamp)
		buf = appendParents(buf, v.Parents)
		buf = append(buf, v.InclusionMerkleProof[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, v.NextPoWScore)
		buf = binary.LittleEndian.AppendUint32(buf, v.NextPoWScoreMilestoneIndex)
		buf = append(buf, uint8(len(v.PublicKeys)))
		for _, k := range v.PublicKeys {
			buf = append(buf, k[:]...)
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v.Receipt)))
		buf = append(buf, v.Receipt...)
		buf = append(buf, uint8(len(v.Signatures)))
		for _, s := range v.Signatures {
			buf = append(buf, s[:]...)
		}
	default:
		return nil, malformed("unsupported payload %T", p)
	}
	return buf, nil
}
