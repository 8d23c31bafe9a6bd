package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"

	"example.com/fwsplit/internal/manifest"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestDigestQR(t *testing.T) {
	dgst := digest.SHA256.FromString("fwsplit")
	png, err := DigestQR(dgst, 0)
	if err != nil {
		t.Fatalf("DigestQR: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("output is not a PNG: % x", png[:4])
	}
}

func TestDigestQREmpty(t *testing.T) {
	if _, err := DigestQR("", 128); err == nil {
		t.Fatal("expected error for empty digest")
	}
}

func TestSaveManifestPDF(t *testing.T) {
	m := manifest.Manifest{
		CreatedAt: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		Image:     "fw.img",
		ImageSize: 0x2000,
		Algorithm: string(digest.SHA256),
		Items: []manifest.Item{
			{Name: "header", Path: "header.bin", Offset: 0x0, Size: 0x40, Digest: digest.SHA256.FromString("header")},
			{Name: "kernel", Path: "kernel.bin", Offset: 0x40, Size: 0x1fc0, Digest: digest.SHA256.FromString("kernel")},
		},
	}
	out := filepath.Join(t.TempDir(), "report.pdf")
	if err := SaveManifestPDF(m, Options{Title: "Test Report"}, out); err != nil {
		t.Fatalf("SaveManifestPDF: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a PDF document")
	}
}

func TestSaveManifestPDFEmptyManifest(t *testing.T) {
	m := manifest.Manifest{CreatedAt: time.Now().UTC(), Algorithm: string(digest.SHA256)}
	out := filepath.Join(t.TempDir(), "empty.pdf")
	if err := SaveManifestPDF(m, Options{}, out); err != nil {
		t.Fatalf("SaveManifestPDF: %v", err)
	}
}
