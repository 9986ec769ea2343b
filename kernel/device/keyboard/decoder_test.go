package keyboard

import "testing"

func TestDecoderPressAndRelease(t *testing.T) {
	var d decoder

	ev, ok := d.feed(0x1E) // 'a' down
	if !ok || ev.Kind != Pressed || ev.Scan != 0x1E {
		t.Fatalf("expected Pressed{0x1E}; got %+v, ok=%v", ev, ok)
	}

	ev, ok = d.feed(0x9E) // 'a' up
	if !ok || ev.Kind != Released || ev.Scan != 0x1E {
		t.Fatalf("expected Released{0x1E}; got %+v, ok=%v", ev, ok)
	}
}

func TestDecoderShiftTogglesModifiers(t *testing.T) {
	var d decoder

	ev, ok := d.feed(0x2A) // Shift down
	if !ok || ev.Kind != ModifiersChanged || ev.Mods&ShiftBit == 0 {
		t.Fatalf("expected ModifiersChanged with ShiftBit set; got %+v, ok=%v", ev, ok)
	}

	ev, ok = d.feed(0x1E) // 'a' down while shifted
	if !ok || ev.Kind != Pressed || ev.Mods&ShiftBit == 0 {
		t.Fatalf("expected Pressed with ShiftBit set; got %+v, ok=%v", ev, ok)
	}

	ev, ok = d.feed(0xAA) // Shift up
	if !ok || ev.Kind != ModifiersChanged || ev.Mods&ShiftBit != 0 {
		t.Fatalf("expected ModifiersChanged with ShiftBit cleared; got %+v, ok=%v", ev, ok)
	}
}

func TestDecoderExtensionPrefix(t *testing.T) {
	var d decoder

	_, ok := d.feed(extensionPrefix)
	if ok {
		t.Fatalf("expected extension prefix byte to produce no event")
	}

	ev, ok := d.feed(0x48) // arrow-up scancode, extended
	if !ok || ev.Kind != Pressed || ev.Scan != (uint16(extensionPrefix)<<8|0x48) {
		t.Fatalf("expected extended Pressed event; got %+v, ok=%v", ev, ok)
	}
}

func TestKeymapResolveSwedishLetters(t *testing.T) {
	InstallKeymap()

	if c, ok := Resolve(0, 0x1A); !ok || c != 'å' {
		t.Fatalf("expected 'å' at scancode 0x1A; got %q, ok=%v", c, ok)
	}
	if c, ok := Resolve(ShiftBit, 0x1A); !ok || c != 'Å' {
		t.Fatalf("expected 'Å' at scancode 0x1A with shift; got %q, ok=%v", c, ok)
	}
	if c, ok := Resolve(0, 0x27); !ok || c != 'ö' {
		t.Fatalf("expected 'ö' at scancode 0x27; got %q, ok=%v", c, ok)
	}
	if c, ok := Resolve(0, 0x28); !ok || c != 'ä' {
		t.Fatalf("expected 'ä' at scancode 0x28; got %q, ok=%v", c, ok)
	}
}

func TestEventQueuePushPop(t *testing.T) {
	var q eventQueue

	q.push(Event{Kind: Pressed, Scan: 0x1E})
	ev, ok := q.pop()
	if !ok || ev.Scan != 0x1E {
		t.Fatalf("expected queued event back out; got %+v, ok=%v", ev, ok)
	}

	if _, ok := q.pop(); ok {
		t.Fatalf("expected empty queue to report nothing pending")
	}
}
