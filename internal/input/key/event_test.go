package key

import (
	"testing"
)

func TestEventString(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{NewRuneEvent('a', ModNone), "a"},
		{NewRuneEvent(' ', ModNone), "Space"},
		{NewRuneEvent('l', ModCtrl), "C-l"},
		{NewSpecialEvent(KeyEnter, ModAlt), "A-Enter"},
		{NewSpecialEvent(KeyRight, ModCtrl|ModShift), "C-S-Right"},
		{Event{Key: KeyMouse, Mouse: Mouse{Button: 0, Row: 3, Col: 7, Press: true}}, "Mouse(0,3,7)"},
	}

	for _, tt := range tests {
		if got := tt.ev.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEventIsChar(t *testing.T) {
	tests := []struct {
		ev   Event
		want bool
	}{
		{NewRuneEvent('a', ModNone), true},
		{NewRuneEvent('A', ModShift), true},
		{NewRuneEvent('中', ModNone), true},
		{NewRuneEvent('\u0301', ModNone), true},
		{NewRuneEvent('\u200d', ModNone), true},
		{NewRuneEvent('a', ModCtrl), false},
		{NewRuneEvent('a', ModAlt), false},
		{NewSpecialEvent(KeyEnter, ModNone), false},
	}

	for _, tt := range tests {
		if got := tt.ev.IsChar(); got != tt.want {
			t.Errorf("%v.IsChar() = %v, want %v", tt.ev, got, tt.want)
		}
	}
}

func TestEventIsCtrl(t *testing.T) {
	ev := NewRuneEvent('l', ModCtrl)
	if !ev.IsCtrl('l') {
		t.Error("IsCtrl('l') = false")
	}
	if ev.IsCtrl('a') {
		t.Error("IsCtrl('a') = true")
	}
	if NewRuneEvent('l', ModNone).IsCtrl('l') {
		t.Error("plain l reported as Ctrl")
	}
}
