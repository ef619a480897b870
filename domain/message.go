package domain

// Payload type tags.
const (
	PayloadTypeTransaction uint32 = 0
	PayloadTypeMilestone   uint32 = 1
	PayloadTypeIndexation  uint32 = 2
)

// Wire limits.
const (
	MaxMessageLength  = 32768
	MinParents        = 1
	MaxParents        = 8
	MinIndexLength    = 1
	MaxIndexLength    = 64
	PublicKeyLength   = 32
	SignatureLength   = 64
	MerkleProofLength = 32
)

// Message is a decoded ledger message.
type Message struct {
	NetworkID uint64
	Parents   []MessageID
	Payload   Payload
	Nonce     uint64
}

// Payload is one of TransactionPayload, MilestonePayload or IndexationPayload.
type Payload interface {
	PayloadType() uint32
}

// TransactionPayload is kept undecoded.
type TransactionPayload struct {
	Raw []byte
}

func (*TransactionPayload) PayloadType() uint32 { return PayloadTypeTransaction }

// MilestonePayload is issued by the coordinator to confirm a cone of messages.
type MilestonePayload struct {
	Index                      uint32
	Timestamp                  uint64
	Parents                    []MessageID
	InclusionMerkleProof       [MerkleProofLength]byte
	NextPoWScore               uint32
	NextPoWScoreMilestoneIndex uint32
	PublicKeys                 [][PublicKeyLength]byte
	Receipt                    []byte
	Signatures                 [][SignatureLength]byte
}

func (*MilestonePayload) PayloadType() uint32 { return PayloadTypeMilestone }

// IndexationPayload tags data with a searchable index.
type IndexationPayload struct {
	Index []byte
	Data  []byte
}

func (*IndexationPayload) PayloadType() uint32 { return PayloadTypeIndexation }

// MilestoneIndex returns the milestone index when the message carries a milestone.
func (m *Message) MilestoneIndex() (uint32, bool) {
	if ms, ok := m.Payload.(*MilestonePayload); ok {
		return ms.Index, true
	}
	return 0, false
}

// Milestone returns the milestone payload, if any.
func (m *Message) Milestone() (*MilestonePayload, bool) {
	ms, ok := m.Payload.(*MilestonePayload)
	return ms, ok
}

// Indexation returns the indexation payload, if any.
func (m *Message) Indexation() (*IndexationPayload, bool) {
	ix, ok := m.Payload.(*IndexationPayload)
	return ix, ok
}
