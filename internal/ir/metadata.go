package ir

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ChainMetadata is the caller-maintained checkpoint blob: for every
// instance id, the last ingested sequence number of each chain, indexed by
// chain_id - 1.
//
//	{"1": [250, 17], "2": [3]}
type ChainMetadata map[string][]int64

// ParseChainMetadata decodes a metadata blob.
func ParseChainMetadata(data []byte) (ChainMetadata, error) {
	var md ChainMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("parse chain metadata: %w", err)
	}
	if md == nil {
		md = ChainMetadata{}
	}
	return md, nil
}

// LastSequence returns the last sequence number recorded for the chain.
// ok is false when the instance or chain is not present.
func (md ChainMetadata) LastSequence(instanceID, chainID int64) (seq int64, ok bool) {
	chains, found := md[strconv.FormatInt(instanceID, 10)]
	if !found || chainID < 1 || chainID > int64(len(chains)) {
		return 0, false
	}
	return chains[chainID-1], true
}

// SetLastSequence records seq as the last sequence number of the chain,
// growing the instance's chain list with zeros as needed.
func (md ChainMetadata) SetLastSequence(instanceID, chainID, seq int64) {
	if chainID < 1 {
		return
	}
	key := strconv.FormatInt(instanceID, 10)
	chains := md[key]
	for int64(len(chains)) < chainID {
		chains = append(chains, 0)
	}
	chains[chainID-1] = seq
	md[key] = chains
}

// Marshal encodes the metadata blob.
func (md ChainMetadata) Marshal() ([]byte, error) {
	return json.Marshal(md)
}
