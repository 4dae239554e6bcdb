package main

import (
	"os"
	"path/filepath"
	"testing"

	"mrcio/pkg/config"
	"mrcio/pkg/mrc"
)

func TestStackName(t *testing.T) {
	if got := stackName(filepath.Join("out", "mic.mrc"), 2); got != filepath.Join("out", "mic_002.mrc") {
		t.Errorf("Unexpected stack name %s", got)
	}
}

func TestCoordinateList(t *testing.T) {
	var c coordinateList
	if err := c.Set("12, 40"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set("3,4"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if len(c) != 2 || c[0].X != 12 || c[0].Y != 40 {
		t.Errorf("Unexpected coordinates %v", c)
	}
	if c.String() != "12,40 3,4" {
		t.Errorf("Unexpected string %q", c.String())
	}
	for _, bad := range []string{"12", "a,4", "3,b"} {
		if err := c.Set(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func writeImages(t *testing.T, path string, n int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer f.Close()
	sw := mrc.NewStackWriter(f)
	for i := 0; i < n; i++ {
		data := make([]float32, 12)
		for j := range data {
			data[j] = float32(i*100 + j)
		}
		a, err := mrc.NewArray(data, 3, 4)
		if err != nil {
			t.Fatalf("NewArray failed: %v", err)
		}
		if err := sw.Append(a); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
}

func TestRunStackSplits(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.mrc"), filepath.Join(dir, "b.mrc")
	writeImages(t, a, 3)
	writeImages(t, b, 2)

	out := filepath.Join(dir, "stack.mrc")
	if err := runStack(config.DefaultConfig(), []string{"-max", "3", "-output", out, a, b}); err != nil {
		t.Fatalf("runStack failed: %v", err)
	}

	for name, want := range map[string]int{"stack_001.mrc": 3, "stack_002.mrc": 2} {
		m, err := mrc.ReadMetadataFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("ReadMetadataFile(%s) failed: %v", name, err)
		}
		if m.Count != want {
			t.Errorf("%s: expected %d images, got %d", name, want, m.Count)
		}
		sel := filepath.Join(dir, "sel_"+name[:len(name)-len(".mrc")]+".txt")
		if _, err := os.Stat(sel); err != nil {
			t.Errorf("Missing selection file: %v", err)
		}
	}

	// the second stack starts with b's first image
	img, err := mrc.ReadImageFile(filepath.Join(dir, "stack_002.mrc"), 0)
	if err != nil {
		t.Fatalf("ReadImageFile failed: %v", err)
	}
	if img.At(5) != 5 {
		t.Errorf("Expected 5, got %f", img.At(5))
	}
}

func TestRunWindow(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "mic.mrc")
	writeImages(t, in, 1)

	out := filepath.Join(dir, "win.mrc")
	if err := runWindow(config.DefaultConfig(), []string{"-size", "2", "-at", "1,1", "-at", "2,1", "-at", "3,2", "-output", out, in}); err != nil {
		t.Fatalf("runWindow failed: %v", err)
	}
	m, err := mrc.ReadMetadataFile(out)
	if err != nil {
		t.Fatalf("ReadMetadataFile failed: %v", err)
	}
	if m.Count != 3 || m.NX != 2 || m.NY != 2 {
		t.Errorf("Unexpected window stack %+v", m)
	}

	if err := runWindow(config.DefaultConfig(), []string{"-size", "2", "-at", "0,0", "-output", out, in}); err == nil {
		t.Error("Expected error for window leaving the image")
	}
}

func TestRunStackClosesPartialStack(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mrc")
	writeImages(t, a, 2)

	out := filepath.Join(dir, "stack.mrc")
	err := runStack(config.DefaultConfig(), []string{"-output", out, a, filepath.Join(dir, "missing.mrc")})
	if err == nil {
		t.Fatal("Expected error for missing input")
	}
	if _, err := os.Stat(filepath.Join(dir, "sel_stack_001.txt")); err != nil {
		t.Errorf("Partial stack was not closed: %v", err)
	}
	if m, err := mrc.ReadMetadataFile(filepath.Join(dir, "stack_001.mrc")); err != nil || m.Count != 2 {
		t.Errorf("Expected 2 images in partial stack, got %+v (%v)", m, err)
	}
}
