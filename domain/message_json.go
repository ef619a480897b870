package domain

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
)

type messageJSON struct {
	NetworkID        string      `json:"networkId"`
	ParentMessageIDs []MessageID `json:"parentMessageIds"`
	Payload          any         `json:"payload"`
	Nonce            string      `json:"nonce"`
}

type transactionJSON struct {
	Type uint32 `json:"type"`
	Raw  string `json:"raw"`
}

type indexationJSON struct {
	Type  uint32 `json:"type"`
	Index string `json:"index"`
	Data  string `json:"data"`
}

type milestoneJSON struct {
	Type                       uint32      `json:"type"`
	Index                      uint32      `json:"index"`
	Timestamp                  uint64      `json:"timestamp"`
	ParentMessageIDs           []MessageID `json:"parentMessageIds"`
	InclusionMerkleProof       string      `json:"inclusionMerkleProof"`
	NextPoWScore               uint32      `json:"nextPoWScore"`
	NextPoWScoreMilestoneIndex uint32      `json:"nextPoWScoreMilestoneIndex"`
	PublicKeys                 []string    `json:"publicKeys"`
	Receipt                    *string     `json:"receipt"`
	Signatures                 []string    `json:"signatures"`
}

// MarshalJSON renders the message the way node REST APIs do.
func (m *Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		NetworkID:        strconv.FormatUint(m.NetworkID, 10),
		ParentMessageIDs: m.Parents,
		Payload:          payloadJSON(m.Payload),
		Nonce:            strconv.FormatUint(m.Nonce, 10),
	})
}

func payloadJSON(p Payload) any {
	switch v := p.(type) {
	case *TransactionPayload:
		return transactionJSON{Type: PayloadTypeTransaction, Raw: hex.EncodeToString(v.Raw)}
	case *IndexationPayload:
		return indexationJSON{
			Type:  PayloadTypeIndexation,
			Index: hex.EncodeToString(v.Index),
			Data:  hex.EncodeToString(v.Data),
		}
	case *MilestonePayload:
		out := milestoneJSON{
			Type:                       PayloadTypeMilestone,
			Index:                      v.Index,
			Timestamp:                  v.Timestamp,
			ParentMessageIDs:           v.Parents,
			InclusionMerkleProof:       hex.EncodeToString(v.InclusionMerkleProof[:]),
			NextPoWScore:               v.NextPoWScore,
			NextPoWScoreMilestoneIndex: v.NextPoWScoreMilestoneIndex,
			PublicKeys:                 make([]string, len(v.PublicKeys)),
			Signatures:                 make([]string, len(v.Signatures)),
		}
		for i, k := range v.PublicKeys {
			out.PublicKeys[i] = hex.EncodeToString(k[:])
		}
		for i, s := range v.Signatures {
			out.Signatures[i] = hex.EncodeToString(s[:])
		}
		if len(v.Receipt) > 0 {
			r := hex.EncodeToString(v.Receipt)
			out.Receipt = &r
		}
		return out
	default:
		return nil
	}
}
