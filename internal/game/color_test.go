package game

import "testing"

func TestPaletteDistinctHues(t *testing.T) {
	p := NewPalette()
	seen := make(map[Color]bool)
	for i := 0; i < paletteSize; i++ {
		c := p.Acquire()
		if seen[c] {
			t.Fatalf("color %08x handed out twice before the palette was used up", uint32(c))
		}
		seen[c] = true
	}
}

func TestPaletteAcquireLeastUsed(t *testing.T) {
	p := NewPalette()
	for i := 0; i < 3*paletteSize+4; i++ {
		usage := p.Usage()
		lowest := -1
		for _, n := range usage {
			if lowest < 0 || n < lowest {
				lowest = n
			}
		}
		c := p.Acquire()
		if usage[c] != lowest {
			t.Fatalf("acquire %d returned a color used %d times, minimum was %d", i, usage[c], lowest)
		}
	}
}

func TestPaletteRelease(t *testing.T) {
	p := NewPalette()
	c := p.Acquire()
	p.Acquire()
	before := p.Usage()

	p.Release(c)
	after := p.Usage()
	if after[c] != before[c]-1 {
		t.Errorf("release should undo one acquire: %d -> %d", before[c], after[c])
	}

	p.Release(c)
	p.Release(c)
	if n := p.Usage()[c]; n != 0 {
		t.Errorf("counter should stop at 0, got %d", n)
	}
	p.Release(RGB(1, 2, 3)) // not in the palette
}

func TestColorWire(t *testing.T) {
	if got := White.Wire(); got != -1 {
		t.Errorf("white should be 0xFFFFFFFF on the wire, got %x", got)
	}
	if got := RGB(255, 0, 0).Wire(); uint32(got) != 0xFFFF0000 {
		t.Errorf("red = %08x", uint32(got))
	}
	if got := HSB(0, 1, 1); got != RGB(255, 0, 0) {
		t.Errorf("HSB(0,1,1) = %08x, want red", uint32(got))
	}
}
