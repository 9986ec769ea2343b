package interrupt

import "testing"

func TestTimerTickAdvancesClock(t *testing.T) {
	defer func() { globalOSTime = 0 }()
	globalOSTime = 41

	timerTick(&Registers{})

	if globalOSTime != 42 {
		t.Fatalf("expected globalOSTime to advance to 42; got %d", globalOSTime)
	}
}

func TestGlobalOSTime(t *testing.T) {
	defer func() { globalOSTime = 0 }()
	globalOSTime = 7

	if got := GlobalOSTime(); got != 7 {
		t.Fatalf("expected GlobalOSTime() to return 7; got %d", got)
	}
}
