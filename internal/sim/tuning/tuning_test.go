package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsValid(t *testing.T) {
	d := Defaults()
	if err := d.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if d.WorldChunks()*d.ChunkSize != d.WorldSize {
		t.Fatalf("world chunks %d * chunk size %d != world size %d", d.WorldChunks(), d.ChunkSize, d.WorldSize)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("render_radius: 6\nmovement:\n  walk_speed: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.RenderRadius != 6 {
		t.Fatalf("render_radius=%d want 6", got.RenderRadius)
	}
	if got.Movement.WalkSpeed != 4 {
		t.Fatalf("walk_speed=%v want 4", got.Movement.WalkSpeed)
	}
	// untouched fields keep defaults
	if got.ChunkSize != Defaults().ChunkSize {
		t.Fatalf("chunk_size lost its default")
	}
}

func TestLoadRejectsBadShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("world_size: 250\nchunk_size: 16\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("world_size not divisible by chunk_size accepted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}
