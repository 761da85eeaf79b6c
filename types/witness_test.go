package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffInclusionProofJSONTuple(t *testing.T) {
	proof := DiffInclusionProof{
		BlockHeader: BlockHeader{
			BlockNumber:   3,
			PrevBlockHash: HashFromUint64(1),
		},
		TxProof: MerkleProof{
			Root:     HashFromUint64(2),
			Index:    5,
			Value:    HashFromUint64(3),
			Siblings: []Hash{HashFromUint64(4)},
		},
		AssetProof: InclusionProof{
			Found:    true,
			Key:      HashFromUint64(5),
			Value:    HashFromUint64(6),
			Siblings: []Hash{HashFromUint64(7)},
			Root:     HashFromUint64(8),
		},
	}

	data, err := json.Marshal(proof)
	require.NoError(t, err)

	// On the wire the proof is a 3-element array, not an object.
	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 3)

	var header BlockHeader
	require.NoError(t, json.Unmarshal(raw[0], &header))
	require.Equal(t, proof.BlockHeader, header)

	var decoded DiffInclusionProof
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, proof, decoded)
}

func TestDiffInclusionProofRejectsWrongArity(t *testing.T) {
	var decoded DiffInclusionProof
	require.Error(t, json.Unmarshal([]byte(`[{}, {}]`), &decoded))
	require.Error(t, json.Unmarshal([]byte(`{}`), &decoded))
}
