package x11

import "testing"

func TestResolveKeycode(t *testing.T) {
	tests := []struct {
		name     string
		scanCode int
		keyCode  int
		want     int
		ok       bool
	}{
		{"scan code wins", 30, 99, 30, true},
		{"scan code wins over unknown keycode", 57, 9999, 57, true},
		{"letter a", 0, 29, 30, true},
		{"digit 0", 0, 7, 11, true},
		{"enter", 0, 66, 28, true},
		{"escape", 0, 111, 1, true},
		{"f12", 0, 142, 88, true},
		{"unknown keycode", 0, 9999, 0, false},
		{"nothing", 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveKeycode(tt.scanCode, tt.keyCode)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ResolveKeycode(%d, %d) = (%d, %v), want (%d, %v)",
					tt.scanCode, tt.keyCode, got, ok, tt.want, tt.ok)
			}
		})
	}
}
