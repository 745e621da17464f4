package terminal

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/ts95/GameBoyEmu/memory"
)

func TestKeyToButtonMapsDirectionsAndFaceButtons(t *testing.T) {
	cases := []struct {
		name   string
		event  *tcell.EventKey
		want   memory.Button
		wantOK bool
	}{
		{"up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), memory.Up, true},
		{"down", tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), memory.Down, true},
		{"left", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), memory.Left, true},
		{"right", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), memory.Right, true},
		{"enter is start", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), memory.Start, true},
		{"backspace is select", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), memory.Select, true},
		{"z is A", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone), memory.A, true},
		{"upper Z is A", tcell.NewEventKey(tcell.KeyRune, 'Z', tcell.ModNone), memory.A, true},
		{"x is B", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), memory.B, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := keyToButton(tc.event)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v", tc.wantOK, ok)
			}
			if ok && got != tc.want {
				t.Fatalf("expected button %v, got %v", tc.want, got)
			}
		})
	}
}

func TestKeyToButtonRejectsUnmappedKeys(t *testing.T) {
	_, ok := keyToButton(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))
	if ok {
		t.Fatalf("expected unmapped rune to report no button")
	}
}
