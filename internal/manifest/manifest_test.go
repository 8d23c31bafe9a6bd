package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"

	"example.com/fwsplit/internal/layout"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	boot := []byte("boot contents")
	if err := os.WriteFile("boot.bin", boot, 0644); err != nil {
		t.Fatalf("write part file: %v", err)
	}
	img := filepath.Join(dir, "fw.img")
	if err := os.WriteFile(img, []byte("whole image"), 0644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	parts := []layout.Part{
		{Name: "boot", Offset: 0x0},
		{Name: "missing", Offset: 0x40},
	}
	m, err := Build(img, parts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.Algorithm != "sha256" {
		t.Fatalf("algorithm = %q, want sha256", m.Algorithm)
	}
	if m.Image != img || m.ImageSize != int64(len("whole image")) {
		t.Fatalf("image metadata = %q/%d", m.Image, m.ImageSize)
	}
	if m.ImageDigest != digest.SHA256.FromBytes([]byte("whole image")) {
		t.Fatal("image digest mismatch")
	}
	if len(m.Items) != 1 {
		t.Fatalf("got %d items, want 1 (missing part omitted)", len(m.Items))
	}
	item := m.Items[0]
	if item.Name != "boot" || item.Path != "boot.bin" || item.Size != int64(len(boot)) {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.Digest != digest.SHA256.FromBytes(boot) {
		t.Fatal("part digest mismatch")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if err := os.WriteFile("boot.bin", []byte("abc"), 0644); err != nil {
		t.Fatalf("write part file: %v", err)
	}
	m, err := Build("", []layout.Part{{Name: "boot", Offset: 0x40}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out := filepath.Join(dir, "manifest.json")
	if err := Save(m, out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Items) != 1 || loaded.Items[0] != m.Items[0] {
		t.Fatalf("loaded manifest differs: %+v vs %+v", loaded.Items, m.Items)
	}

	sum1, err := m.Sum()
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	sum2, err := loaded.Sum()
	if err != nil {
		t.Fatalf("Sum of loaded: %v", err)
	}
	if sum1 != sum2 {
		t.Fatalf("manifest digest changed across save/load: %s vs %s", sum1, sum2)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed manifest")
	}
}
