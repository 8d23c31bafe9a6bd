// Package manifest records the identity of a firmware image and its
// parts: per-file sizes and SHA-256 digests, serialized as JSON.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/opencontainers/go-digest"

	"example.com/fwsplit/internal/common"
	"example.com/fwsplit/internal/layout"
)

type Item struct {
	Name   string        `json:"name"`
	Path   string        `json:"path"`
	Offset uint64        `json:"offset"`
	Size   int64         `json:"size"`
	Digest digest.Digest `json:"digest"`
}

type Manifest struct {
	CreatedAt   time.Time     `json:"createdAt"`
	Image       string        `json:"image,omitempty"`
	ImageSize   int64         `json:"imageSize,omitempty"`
	ImageDigest digest.Digest `json:"imageDigest,omitempty"`
	Algorithm   string        `json:"algorithm"`
	Items       []Item        `json:"items"`
}

// Build hashes each part's companion file and, when imagePath is
// non-empty, the image itself. Parts whose companion file is missing are
// left out of the manifest; any other read failure aborts.
func Build(imagePath string, parts []layout.Part) (Manifest, error) {
	m := Manifest{CreatedAt: time.Now().UTC(), Algorithm: string(digest.SHA256)}
	if imagePath != "" {
		dgst, size, err := common.DigestFile(imagePath)
		if err != nil {
			return m, fmt.Errorf("digest image %s: %w", imagePath, err)
		}
		m.Image = imagePath
		m.ImageSize = size
		m.ImageDigest = dgst
	}
	for _, part := range parts {
		path := layout.PartFileName(part.Name)
		dgst, size, err := common.DigestFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return m, fmt.Errorf("digest part %s: %w", path, err)
		}
		m.Items = append(m.Items, Item{
			Name:   part.Name,
			Path:   path,
			Offset: part.Offset,
			Size:   size,
			Digest: dgst,
		})
	}
	return m, nil
}

// Sum returns the digest of the manifest's JSON form, suitable for
// stamping into a report.
func (m Manifest) Sum() (digest.Digest, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return digest.SHA256.FromBytes(b), nil
}

func Save(m Manifest, out string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func Load(path string) (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}
