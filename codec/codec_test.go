package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type payload struct {
	ID   int
	Body string
}

func TestJsonCodecRoundtrip(t *testing.T) {
	c := &JsonCodec[payload]{}

	in := payload{ID: 7, Body: "hello"}
	data, err := c.Marshal(in)
	assert.NoError(t, err)

	var out payload
	assert.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestZstdCodecSmallPayloadStaysRaw(t *testing.T) {
	inner := &JsonCodec[payload]{}
	c := NewZstd[payload](inner)

	in := payload{ID: 1, Body: "tiny"}
	data, err := c.Marshal(in)
	assert.NoError(t, err)

	raw, err := inner.Marshal(in)
	assert.NoError(t, err)
	assert.Equal(t, raw, data)

	var out payload
	assert.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestZstdCodecCompressesLargePayload(t *testing.T) {
	inner := &JsonCodec[payload]{}
	c := NewZstd[payload](inner)

	in := payload{ID: 2, Body: strings.Repeat("all cache entries look alike ", 200)}
	data, err := c.Marshal(in)
	assert.NoError(t, err)

	raw, err := inner.Marshal(in)
	assert.NoError(t, err)
	assert.Less(t, len(data), len(raw))

	var out payload
	assert.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestZstdCodecReadsRawEntries(t *testing.T) {
	// entries written before compression was enabled decode fine
	inner := &JsonCodec[payload]{}
	in := payload{ID: 3, Body: strings.Repeat("written without compression ", 50)}
	raw, err := inner.Marshal(in)
	assert.NoError(t, err)

	var out payload
	assert.NoError(t, NewZstd[payload](inner).Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}
