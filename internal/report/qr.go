package report

import (
	"fmt"

	"github.com/opencontainers/go-digest"
	qrcode "github.com/skip2/go-qrcode"
)

// DigestQR creates a QR code PNG encoding the provided manifest digest.
func DigestQR(dgst digest.Digest, size int) ([]byte, error) {
	if dgst == "" {
		return nil, fmt.Errorf("manifest digest is empty")
	}
	if size <= 0 {
		size = 128
	}
	png, err := qrcode.Encode(dgst.String(), qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
