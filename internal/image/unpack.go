package image

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"

	"example.com/fwsplit/internal/common"
	"example.com/fwsplit/internal/layout"
)

// Unpack extracts every part of the firmware image into its companion
// <name>.bin file, in declaration order. The source image is opened
// read-only and never modified. A source shorter than a part's declared
// range is not an error; the part simply ends early and the result
// reports the bytes actually copied.
func Unpack(imagePath string, parts []layout.Part) ([]PartResult, error) {
	firmware, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open firmware file: %w", err)
	}
	defer firmware.Close()

	buf := make([]byte, copyBufferSize)
	results := make([]PartResult, 0, len(parts))
	for _, part := range parts {
		res, err := extractPart(firmware, part, buf)
		if err != nil {
			return results, err
		}
		fmt.Printf("Extracted %s: %d bytes, SHA256: %s\n", res.Name, res.BytesCopied, res.Digest.Encoded())
		results = append(results, res)
	}
	return results, nil
}

func extractPart(firmware *os.File, part layout.Part, buf []byte) (PartResult, error) {
	res := PartResult{
		Name:        part.Name,
		Offset:      part.Offset,
		Size:        part.Size,
		PaddingByte: part.PaddingByte,
	}

	out, err := os.Create(layout.PartFileName(part.Name))
	if err != nil {
		return res, fmt.Errorf("create part file %q: %w", part.Name, err)
	}
	defer out.Close()

	if _, err := firmware.Seek(int64(part.Offset), io.SeekStart); err != nil {
		return res, fmt.Errorf("seek firmware to 0x%x: %w", part.Offset, err)
	}

	digester := digest.SHA256.Digester()
	remaining := part.Size
	for remaining > 0 {
		chunk := buf
		if remaining < uint64(len(buf)) {
			chunk = buf[:remaining]
		}
		n, err := firmware.Read(chunk)
		if n > 0 {
			if _, werr := out.Write(chunk[:n]); werr != nil {
				return res, fmt.Errorf("write part file %q: %w", part.Name, werr)
			}
			digester.Hash().Write(chunk[:n])
			remaining -= uint64(n)
			res.BytesCopied += uint64(n)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read firmware: %w", err)
		}
	}

	if remaining > 0 {
		common.Logf("part %q truncated at end of image: copied %d of %d bytes", part.Name, res.BytesCopied, part.Size)
	}

	res.Digest = digester.Digest()
	return res, nil
}
