package codec

import (
	"bytes"

	"github.com/klauspost/compress/zstd"
)

// payloads below this size rarely shrink and are stored as-is
const compressFloor = 128

// zstd frame magic, used to tell compressed payloads from raw ones
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var (
	zstdEncoder, _ = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// ZstdCodec compresses the bytes produced by an inner codec. Small or
// incompressible payloads pass through untouched, and Unmarshal accepts both
// forms, so it can be enabled on a region that already holds raw entries.
type ZstdCodec[T any] struct {
	inner Codec[T]
}

// NewZstd wraps inner with zstd compression.
func NewZstd[T any](inner Codec[T]) *ZstdCodec[T] {
	return &ZstdCodec[T]{inner: inner}
}

func (c *ZstdCodec[T]) Marshal(v T) ([]byte, error) {
	data, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(data) < compressFloor {
		return data, nil
	}

	compressed := zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)))
	if len(compressed) >= len(data) {
		return data, nil
	}
	return compressed, nil
}

func (c *ZstdCodec[T]) Unmarshal(data []byte, v *T) error {
	if bytes.HasPrefix(data, zstdMagic) {
		if plain, err := zstdDecoder.DecodeAll(data, nil); err == nil {
			data = plain
		}
	}
	return c.inner.Unmarshal(data, v)
}
