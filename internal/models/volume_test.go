package models

import (
	"testing"

	"mrcio/pkg/mrc"
)

func TestNewVolume(t *testing.T) {
	a, err := mrc.NewArray([]int16{0, 1, 2, 3, 4, 5, 6, 7}, 2, 2, 2)
	if err != nil {
		t.Fatalf("NewArray failed: %v", err)
	}
	v, err := NewVolume(a, 1.5)
	if err != nil {
		t.Fatalf("NewVolume failed: %v", err)
	}
	if v.Width != 2 || v.Height != 2 || v.Depth != 2 {
		t.Errorf("Expected 2x2x2, got %dx%dx%d", v.Width, v.Height, v.Depth)
	}
	if v.Data[v.Index(1, 0, 1)] != 5 {
		t.Errorf("Expected 5 at (1,0,1), got %f", v.Data[v.Index(1, 0, 1)])
	}
	if v.VoxelSize.Z != 1.5 {
		t.Errorf("Expected voxel size 1.5, got %f", v.VoxelSize.Z)
	}

	flat, _ := mrc.NewArray([]int16{1, 2, 3})
	if _, err := NewVolume(flat, 1); err == nil {
		t.Error("Expected error for 1-D array")
	}
}

func TestNewStackVolume(t *testing.T) {
	a, _ := mrc.NewArray([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	b, _ := mrc.NewArray([]float32{7, 8, 9, 10, 11, 12}, 2, 3)
	v, err := NewStackVolume([]*mrc.Array{a, b}, 1)
	if err != nil {
		t.Fatalf("NewStackVolume failed: %v", err)
	}
	if v.Depth != 2 || len(v.Data) != 12 || v.Data[v.Index(0, 0, 1)] != 7 {
		t.Errorf("Unexpected stacked volume: depth %d data %v", v.Depth, v.Data)
	}

	c, _ := mrc.NewArray([]float32{1, 2, 3, 4}, 2, 2)
	if _, err := NewStackVolume([]*mrc.Array{a, c}, 1); err == nil {
		t.Error("Expected error for mismatched image sizes")
	}
}
