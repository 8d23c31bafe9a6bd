// Package image streams bytes between a monolithic firmware image and
// per-part companion files, hashing each part as it goes.
package image

import (
	"github.com/opencontainers/go-digest"
)

// copyBufferSize bounds every chunked copy and fill loop.
const copyBufferSize = 4096

// FillByte initializes the entire destination image during packing,
// before any part is written. It is fixed and independent of any part's
// configured padding byte.
const FillByte = 0xFF

// PartResult describes what the engine did for one part.
type PartResult struct {
	Name   string
	Offset uint64
	Size   uint64

	// BytesCopied counts bytes moved between the image and the companion
	// file, excluding padding.
	BytesCopied uint64
	// Padded counts padding bytes appended during packing when the input
	// file was shorter than the declared size.
	Padded      uint64
	PaddingByte byte

	// Digest covers exactly the part's final byte sequence: the bytes
	// copied on unpack, or copied plus padding on pack.
	Digest digest.Digest

	// Skipped marks a pack part whose companion file was missing; its
	// destination region keeps the fill value.
	Skipped bool
}
