package main

import (
	"context"
	"path/filepath"
	"testing"

	"obj-gl-renderer/internal/mesh"
)

func TestWriteOBJ(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cube.obj")
	if err := writeOBJ(path, mesh.Cube(2)); err != nil {
		t.Fatal(err)
	}
	m, err := mesh.LoadOBJ(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Faces) != 12 || len(m.Positions) != 24 {
		t.Errorf("read back %d vertices, %d faces", len(m.Positions), len(m.Faces))
	}

	if err := writeOBJ(filepath.Join(dir, "missing", "cube.obj"), mesh.Cube(1)); err == nil {
		t.Error("expected error for a missing directory")
	}
}
