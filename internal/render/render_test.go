package render

import (
	"testing"
)

func TestScaleRecomputedOnSizeChange(t *testing.T) {
	tests := []struct {
		name             string
		screenW, screenH int
		imageW, imageH   int
		wantSX, wantSY   float64
	}{
		{"identity", 1920, 1080, 1920, 1080, 1, 1},
		{"upscale", 1080, 2400, 1920, 1080, 1920.0 / 1080.0, 1080.0 / 2400.0},
		{"downscale", 3840, 2160, 1920, 1080, 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			s.SetScreenSize(tt.screenW, tt.screenH)
			s.SetImageSize(tt.imageW, tt.imageH)

			sx, sy := s.Scale()
			if sx != tt.wantSX || sy != tt.wantSY {
				t.Errorf("Scale() = (%v, %v), want (%v, %v)", sx, sy, tt.wantSX, tt.wantSY)
			}
		})
	}
}

func TestDegenerateSizesKeepLastTransform(t *testing.T) {
	s := NewState()
	s.SetScreenSize(1000, 1000)
	s.SetImageSize(2000, 2000)

	s.SetScreenSize(0, 0)
	sx, sy := s.Scale()
	if sx != 2 || sy != 2 {
		t.Errorf("zero screen size must keep last transform, got (%v, %v)", sx, sy)
	}

	s.SetImageSize(0, 500)
	sx, sy = s.Scale()
	if sx != 2 || sy != 2 {
		t.Errorf("zero image size must keep last transform, got (%v, %v)", sx, sy)
	}
}

func TestMapScreenToImageAppliesInverse(t *testing.T) {
	s := NewState()
	s.SetScreenSize(1000, 500)
	s.SetImageSize(2000, 2000)

	// Scale is (2, 4); the inverse maps screen points into image space.
	p := s.MapScreenToImage(Point{X: 100, Y: 100})
	if p.X != 50 || p.Y != 25 {
		t.Errorf("MapScreenToImage = (%v, %v), want (50, 25)", p.X, p.Y)
	}

	dx, dy := s.MapScreenVector(10, 20)
	if dx != 5 || dy != 5 {
		t.Errorf("MapScreenVector = (%v, %v), want (5, 5)", dx, dy)
	}
}

func TestCursorClampedToImageBounds(t *testing.T) {
	s := NewState()
	s.SetScreenSize(1920, 1080)
	s.SetImageSize(1920, 1080)

	tests := []struct {
		name         string
		x, y         float64
		wantX, wantY float64
	}{
		{"inside", 100, 200, 100, 200},
		{"negative overflow", 5 - 10000, 5 - 10000, 0, 0},
		{"positive overflow", 50000, 50000, 1920, 1080},
		{"edges are inclusive", 1920, 1080, 1920, 1080},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.SetCursorPosition(tt.x, tt.y)
			got := s.CursorPosition()
			if got.X != tt.wantX || got.Y != tt.wantY {
				t.Errorf("cursor = (%v, %v), want (%v, %v)", got.X, got.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestSetCursorPositionReportsChange(t *testing.T) {
	s := NewState()
	s.SetScreenSize(100, 100)
	s.SetImageSize(100, 100)

	if !s.SetCursorPosition(10, 10) {
		t.Error("first move should report a change")
	}
	if s.SetCursorPosition(10, 10) {
		t.Error("same position should not report a change")
	}
	// Clamped to the same corner twice: second call is a no-op.
	if !s.SetCursorPosition(-5, -5) {
		t.Error("clamped move to (0,0) should report a change")
	}
	if s.SetCursorPosition(-100, -100) {
		t.Error("second clamped move to (0,0) should not report a change")
	}
}
