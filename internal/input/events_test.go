package input

import "testing"

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		name string
		tool ToolType
		src  Source
		want DeviceClass
	}{
		{"hardware mouse", ToolMouse, SourceMouse, DeviceMouse},
		{"mouse tool on touchscreen", ToolMouse, SourceTouchscreen, DeviceMouse},
		{"touchscreen finger", ToolFinger, SourceTouchscreen, DeviceFinger},
		{"dex touchpad", ToolFinger, SourceMouse | SourceTouchscreen, DeviceDexTouchpad},
		{"genuine touchpad", ToolFinger, SourceTouchpad, DeviceTouchpad},
		{"touchpad wins over dex bits", ToolFinger, SourceMouse | SourceTouchscreen | SourceTouchpad, DeviceTouchpad},
		{"unknown tool", ToolUnknown, SourceTouchscreen, DeviceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := PointerEvent{ToolType: tt.tool, Source: tt.src}
			if got := ClassifyDevice(e); got != tt.want {
				t.Errorf("ClassifyDevice() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointerEventAccessors(t *testing.T) {
	e := PointerEvent{}
	if e.X() != 0 || e.Y() != 0 {
		t.Errorf("empty event coordinates = (%v, %v), want (0, 0)", e.X(), e.Y())
	}
	if e.PointerCount() != 0 {
		t.Errorf("empty event PointerCount() = %d, want 0", e.PointerCount())
	}

	e.Pointers = []Pointer{{ID: 0, X: 12, Y: 34}, {ID: 1, X: 56, Y: 78}}
	if e.X() != 12 || e.Y() != 34 {
		t.Errorf("primary pointer = (%v, %v), want (12, 34)", e.X(), e.Y())
	}
	if e.PointerCount() != 2 {
		t.Errorf("PointerCount() = %d, want 2", e.PointerCount())
	}
}
