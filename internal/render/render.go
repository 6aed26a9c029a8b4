// Package render tracks the geometry shared between the local view and the
// remote framebuffer: view and image sizes, the scale transform between them
// and the clamped cursor position.
package render

// Point is a position in either screen or image space.
type Point struct {
	X float64
	Y float64
}

// Offset returns the point shifted by (dx, dy).
func (p Point) Offset(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// State holds the screen<->image transform and the remote cursor position.
// It is owned by the input-delivery goroutine and is not safe for concurrent
// use.
type State struct {
	screenWidth  int
	screenHeight int
	imageWidth   int
	imageHeight  int

	// Transform scale, imageSize/screenSize on both axes. Screen points
	// are mapped into image space through the inverse.
	scaleX float64
	scaleY float64

	// Lazily recomputed inverse, invalidated on any size change.
	invValid bool
	invX     float64
	invY     float64

	cursor Point
}

// NewState returns a State with an identity transform.
func NewState() *State {
	return &State{scaleX: 1, scaleY: 1}
}

// SetScreenSize records the local view size and recomputes the transform.
// Zero or negative sizes are ignored and the previous transform is kept.
func (s *State) SetScreenSize(w, h int) {
	s.screenWidth = w
	s.screenHeight = h
	s.resetTransform()
}

// SetImageSize records the remote framebuffer size and recomputes the
// transform. Zero or negative sizes are ignored and the previous transform is
// kept.
func (s *State) SetImageSize(w, h int) {
	s.imageWidth = w
	s.imageHeight = h
	s.resetTransform()
}

// ScreenSize returns the local view size in pixels.
func (s *State) ScreenSize() (int, int) {
	return s.screenWidth, s.screenHeight
}

// ImageSize returns the remote framebuffer size in pixels.
func (s *State) ImageSize() (int, int) {
	return s.imageWidth, s.imageHeight
}

// Scale returns the screen->image scale factors.
func (s *State) Scale() (float64, float64) {
	return s.scaleX, s.scaleY
}

func (s *State) resetTransform() {
	if s.screenWidth <= 0 || s.screenHeight <= 0 || s.imageWidth <= 0 || s.imageHeight <= 0 {
		// Degenerate geometry, keep the last valid transform.
		return
	}
	s.scaleX = float64(s.imageWidth) / float64(s.screenWidth)
	s.scaleY = float64(s.imageHeight) / float64(s.screenHeight)
	s.invValid = false
}

func (s *State) inverse() (float64, float64) {
	if !s.invValid {
		s.invX = 1 / s.scaleX
		s.invY = 1 / s.scaleY
		s.invValid = true
	}
	return s.invX, s.invY
}

// MapScreenToImage translates a point in screen coordinates to a location on
// the remote image by applying the inverse transform.
func (s *State) MapScreenToImage(p Point) Point {
	ix, iy := s.inverse()
	return Point{X: p.X * ix, Y: p.Y * iy}
}

// MapScreenVector translates a motion delta in screen coordinates into image
// coordinates. Vectors ignore translation, only the inverse scale applies.
func (s *State) MapScreenVector(dx, dy float64) (float64, float64) {
	ix, iy := s.inverse()
	return dx * ix, dy * iy
}

// SetCursorPosition moves the cursor, clamped to [0, imageWidth] x
// [0, imageHeight], and reports whether the position actually changed.
func (s *State) SetCursorPosition(x, y float64) bool {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x > float64(s.imageWidth) {
		x = float64(s.imageWidth)
	}
	if y > float64(s.imageHeight) {
		y = float64(s.imageHeight)
	}

	if x == s.cursor.X && y == s.cursor.Y {
		return false
	}
	s.cursor = Point{X: x, Y: y}
	return true
}

// CursorPosition returns the current cursor position in image space.
func (s *State) CursorPosition() Point {
	return s.cursor
}
