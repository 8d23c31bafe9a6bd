package common

import (
	"io"
	"os"

	"github.com/opencontainers/go-digest"
)

// DigestFile streams the file at path through a SHA-256 digester and
// returns its digest and size.
func DigestFile(path string) (digest.Digest, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	digester := digest.SHA256.Digester()
	n, err := io.Copy(digester.Hash(), f)
	if err != nil {
		return "", 0, err
	}
	return digester.Digest(), n, nil
}

// FileSize returns the size of the file at path.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
