package image

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"

	"example.com/fwsplit/internal/layout"
)

// Pack assembles the destination firmware image from the parts' companion
// files. The destination is created (truncating any existing file),
// extended to the largest offset+size among the parts and filled with
// FillByte before any part is written. Parts whose companion file cannot
// be opened are skipped with a warning, leaving their region at the fill
// value.
func Pack(imagePath string, parts []layout.Part) ([]PartResult, error) {
	firmware, err := os.Create(imagePath)
	if err != nil {
		return nil, fmt.Errorf("create firmware file: %w", err)
	}
	defer firmware.Close()

	var maxSize uint64
	for _, part := range parts {
		if part.Offset+part.Size > maxSize {
			maxSize = part.Offset + part.Size
		}
	}
	if err := fillImage(firmware, maxSize); err != nil {
		return nil, err
	}

	buf := make([]byte, copyBufferSize)
	results := make([]PartResult, 0, len(parts))
	for _, part := range parts {
		res, err := writePart(firmware, part, buf)
		if err != nil {
			return results, err
		}
		switch {
		case res.Skipped:
			fmt.Printf("Warning: %s not found, skipping\n", layout.PartFileName(part.Name))
		case res.Padded > 0:
			fmt.Printf("Wrote %s: %d bytes (padded %d bytes with 0x%02X), SHA256: %s\n",
				res.Name, res.BytesCopied, res.Padded, res.PaddingByte, res.Digest.Encoded())
		default:
			fmt.Printf("Wrote %s: %d bytes, SHA256: %s\n", res.Name, res.BytesCopied, res.Digest.Encoded())
		}
		results = append(results, res)
	}
	return results, nil
}

func fillImage(firmware *os.File, size uint64) error {
	if err := firmware.Truncate(int64(size)); err != nil {
		return fmt.Errorf("extend firmware file: %w", err)
	}
	if _, err := firmware.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek firmware file: %w", err)
	}
	fill := bytes.Repeat([]byte{FillByte}, copyBufferSize)
	remaining := size
	for remaining > 0 {
		chunk := fill
		if remaining < uint64(len(fill)) {
			chunk = fill[:remaining]
		}
		if _, err := firmware.Write(chunk); err != nil {
			return fmt.Errorf("fill firmware file: %w", err)
		}
		remaining -= uint64(len(chunk))
	}
	return nil
}

func writePart(firmware *os.File, part layout.Part, buf []byte) (PartResult, error) {
	res := PartResult{
		Name:        part.Name,
		Offset:      part.Offset,
		Size:        part.Size,
		PaddingByte: part.PaddingByte,
	}

	input, err := os.Open(layout.PartFileName(part.Name))
	if err != nil {
		res.Skipped = true
		return res, nil
	}
	defer input.Close()

	if _, err := firmware.Seek(int64(part.Offset), io.SeekStart); err != nil {
		return res, fmt.Errorf("seek firmware to 0x%x: %w", part.Offset, err)
	}

	digester := digest.SHA256.Digester()
	for res.BytesCopied < part.Size {
		chunk := buf
		if remaining := part.Size - res.BytesCopied; remaining < uint64(len(buf)) {
			chunk = buf[:remaining]
		}
		n, err := input.Read(chunk)
		if n > 0 {
			if _, werr := firmware.Write(chunk[:n]); werr != nil {
				return res, fmt.Errorf("write firmware: %w", werr)
			}
			digester.Hash().Write(chunk[:n])
			res.BytesCopied += uint64(n)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read part file %q: %w", part.Name, err)
		}
	}

	if res.BytesCopied < part.Size {
		res.Padded = part.Size - res.BytesCopied
		padding := bytes.Repeat([]byte{part.PaddingByte}, copyBufferSize)
		remaining := res.Padded
		for remaining > 0 {
			chunk := padding
			if remaining < uint64(len(padding)) {
				chunk = padding[:remaining]
			}
			if _, err := firmware.Write(chunk); err != nil {
				return res, fmt.Errorf("pad firmware: %w", err)
			}
			digester.Hash().Write(chunk)
			remaining -= uint64(len(chunk))
		}
	}

	res.Digest = digester.Digest()
	return res, nil
}
