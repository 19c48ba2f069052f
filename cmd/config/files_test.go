package config

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
)

func TestFilesRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Device.ChunkSize = 64
	want := []float64{0, 0.5, -0.5, 0.25}

	for _, name := range []string{"out.wav", "out.f32"} {
		path := filepath.Join(t.TempDir(), name)
		if err := WriteFile(cfg, path, want); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
		src, err := CreateFileSource(cfg, path)
		if err != nil {
			t.Fatalf("CreateFileSource(%s) error = %v", name, err)
		}
		chunk, err := src.ReadChunk(context.Background())
		if err != nil {
			t.Fatalf("ReadChunk(%s) error = %v", name, err)
		}
		if len(chunk) != len(want) {
			t.Fatalf("%s: read %d samples, want %d", name, len(chunk), len(want))
		}
		for i := range want {
			if chunk[i] != want[i] {
				t.Errorf("%s: sample %d = %v, want %v", name, i, chunk[i], want[i])
			}
		}
		if _, err := src.ReadChunk(context.Background()); !errors.Is(err, io.EOF) {
			t.Errorf("%s: second ReadChunk error = %v, want io.EOF", name, err)
		}
		src.Close()
	}
}

func TestReadFileWhole(t *testing.T) {
	cfg := Default()
	want := make([]float64, 1000)
	for i := range want {
		want[i] = float64(i%16-8) / 16
	}

	for _, name := range []string{"whole.wav", "whole.f32"} {
		path := filepath.Join(t.TempDir(), name)
		if err := WriteFile(cfg, path, want); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
		got, err := ReadFile(cfg, path)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", name, err)
		}
		if len(got) != len(want) {
			t.Fatalf("%s: read %d samples, want %d", name, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: sample %d = %v, want %v", name, i, got[i], want[i])
			}
		}
	}

	if _, err := ReadFile(cfg, filepath.Join(t.TempDir(), "missing.f32")); err == nil {
		t.Error("ReadFile(missing) succeeded")
	}
}
