package capture

import (
	"errors"
	"image"
	"testing"
)

func TestNewRegionValidation(t *testing.T) {
	tests := []struct {
		name    string
		x, y    int
		w, h    int
		wantErr bool
	}{
		{"valid region", 10, 20, 640, 480, false},
		{"valid at origin", 0, 0, 1, 1, false},
		{"negative x", -1, 0, 800, 600, true},
		{"negative y", 0, -1, 800, 600, true},
		{"negative origin", -1920, -80, 800, 600, true},
		{"zero width", 0, 0, 0, 100, true},
		{"zero height", 0, 0, 100, 0, true},
		{"negative width", 0, 0, -5, 100, true},
		{"negative height", 0, 0, 100, -5, true},
		{"both non-positive", 0, 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegion(tt.x, tt.y, tt.w, tt.h)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %dx%d, got none", tt.w, tt.h)
				}
				if !errors.Is(err, ErrInvalidRegion) {
					t.Errorf("Expected ErrInvalidRegion, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if r.X != tt.x || r.Y != tt.y || r.Width != tt.w || r.Height != tt.h {
				t.Errorf("Region fields not preserved: got %+v", r)
			}
		})
	}
}

func TestRegionFromPoints(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 int
		want           Region
		wantErr        bool
	}{
		{"top-left to bottom-right", 10, 20, 110, 70, Region{10, 20, 100, 50}, false},
		{"bottom-right to top-left", 110, 70, 10, 20, Region{10, 20, 100, 50}, false},
		{"top-right to bottom-left", 110, 20, 10, 70, Region{10, 20, 100, 50}, false},
		{"spanning negative coordinates", -50, -30, 50, 30, Region{}, true},
		{"zero width", 10, 20, 10, 70, Region{}, true},
		{"zero height", 10, 20, 110, 20, Region{}, true},
		{"single point", 5, 5, 5, 5, Region{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RegionFromPoints(tt.x1, tt.y1, tt.x2, tt.y2)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRegion) {
					t.Fatalf("Expected ErrInvalidRegion, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEvenDimensions(t *testing.T) {
	tests := []struct {
		name string
		in   Region
		want Region
	}{
		{"both odd", Region{10, 10, 101, 51}, Region{10, 10, 100, 50}},
		{"both even unchanged", Region{0, 0, 1920, 1080}, Region{0, 0, 1920, 1080}},
		{"odd width only", Region{5, 5, 33, 40}, Region{5, 5, 32, 40}},
		{"odd height only", Region{5, 5, 40, 33}, Region{5, 5, 40, 32}},
		{"single pixel collapses", Region{0, 0, 1, 1}, Region{0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.EvenDimensions()
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if got.X != tt.in.X || got.Y != tt.in.Y {
				t.Errorf("Origin must not move: got (%d,%d), want (%d,%d)", got.X, got.Y, tt.in.X, tt.in.Y)
			}
			if got.Width > tt.in.Width || got.Height > tt.in.Height {
				t.Errorf("Adjusted dimensions may never grow: got %+v from %+v", got, tt.in)
			}
			if tt.in.Width-got.Width > 1 || tt.in.Height-got.Height > 1 {
				t.Errorf("Adjustment must shave at most one pixel: got %+v from %+v", got, tt.in)
			}
		})
	}
}

func TestRegionBounds(t *testing.T) {
	r, err := NewRegion(10, 40, 120, 80)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := image.Rect(10, 40, 130, 120)
	if got := r.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	if r.Bounds().Dx() != r.Width || r.Bounds().Dy() != r.Height {
		t.Errorf("Bounds size mismatch: %v vs %dx%d", r.Bounds(), r.Width, r.Height)
	}

	// Display bounds are built directly and may start left of the primary.
	d := Region{X: -1920, Y: 0, Width: 1920, Height: 1080}
	if got := d.Bounds(); got != image.Rect(-1920, 0, 0, 1080) {
		t.Errorf("Bounds() = %v, want %v", got, image.Rect(-1920, 0, 0, 1080))
	}
}
