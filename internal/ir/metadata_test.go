package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChainMetadata(t *testing.T) {
	md, err := ParseChainMetadata([]byte(`{"1":[250,17],"2":[3]}`))
	require.NoError(t, err)

	seq, ok := md.LastSequence(1, 1)
	assert.True(t, ok)
	assert.Equal(t, int64(250), seq)

	seq, ok = md.LastSequence(1, 2)
	assert.True(t, ok)
	assert.Equal(t, int64(17), seq)

	_, ok = md.LastSequence(1, 3)
	assert.False(t, ok, "chain beyond list")

	_, ok = md.LastSequence(1, 0)
	assert.False(t, ok, "chain ids are 1-based")

	_, ok = md.LastSequence(9, 1)
	assert.False(t, ok, "unknown instance")
}

func TestParseChainMetadataInvalid(t *testing.T) {
	_, err := ParseChainMetadata([]byte(`{"1":"nope"}`))
	assert.Error(t, err)

	md, err := ParseChainMetadata([]byte(`null`))
	require.NoError(t, err)
	assert.NotNil(t, md)
}

func TestChainMetadataSetLastSequence(t *testing.T) {
	md := ChainMetadata{}
	md.SetLastSequence(3, 2, 40)

	data, err := md.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"3":[0,40]}`, string(data))

	md.SetLastSequence(3, 1, 7)
	seq, ok := md.LastSequence(3, 1)
	assert.True(t, ok)
	assert.Equal(t, int64(7), seq)
}
