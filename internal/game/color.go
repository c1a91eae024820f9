package game

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Color is a packed 0xAARRGGBB value, as sent on the wire.
type Color uint32

const White Color = 0xffffffff

// RGB builds an opaque color.
func RGB(r, g, b uint8) Color {
	return Color(0xff000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Wire returns the signed form used by the int field encoding.
func (c Color) Wire() int32 { return int32(c) }

// HSB converts hue, saturation and brightness in [0,1] to an opaque color.
func HSB(hue, saturation, brightness float64) Color {
	if saturation == 0 {
		v := uint8(brightness*255 + 0.5)
		return RGB(v, v, v)
	}
	h := (hue - math.Floor(hue)) * 6
	f := h - math.Floor(h)
	p := brightness * (1 - saturation)
	q := brightness * (1 - saturation*f)
	t := brightness * (1 - saturation*(1-f))
	var r, g, b float64
	switch int(h) {
	case 0:
		r, g, b = brightness, t, p
	case 1:
		r, g, b = q, brightness, p
	case 2:
		r, g, b = p, brightness, t
	case 3:
		r, g, b = p, q, brightness
	case 4:
		r, g, b = t, p, brightness
	default:
		r, g, b = brightness, p, q
	}
	return RGB(uint8(r*255+0.5), uint8(g*255+0.5), uint8(b*255+0.5))
}

const paletteSize = 10

// Palette hands out player colors, always one of the least used.
type Palette struct {
	mu     sync.Mutex
	colors []Color
	used   []int
}

// NewPalette builds the fixed set of fully saturated hues, each 0.7 of a
// turn from the previous one so neighbours in acquisition order differ.
func NewPalette() *Palette {
	p := &Palette{
		colors: make([]Color, paletteSize),
		used:   make([]int, paletteSize),
	}
	hue := 0.0
	for i := range p.colors {
		p.colors[i] = HSB(hue, 1, 1)
		hue += 0.7
		if hue >= 1 {
			hue -= 1
		}
	}
	return p
}

// Acquire returns a least-used color. Ties are broken at random.
func (p *Palette) Acquire() Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	best := 0
	for i := 1; i < len(p.used); i++ {
		if p.used[i] < p.used[best] ||
			(p.used[i] == p.used[best] && rand.IntN(2) == 0) {
			best = i
		}
	}
	p.used[best]++
	return p.colors[best]
}

// Release gives back a color obtained from Acquire. Unknown colors and
// colors with no outstanding use are ignored.
func (p *Palette) Release(c Color) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, pc := range p.colors {
		if pc == c {
			if p.used[i] > 0 {
				p.used[i]--
			}
			return
		}
	}
}

// Usage returns a copy of the per-color counters.
func (p *Palette) Usage() map[Color]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[Color]int, len(p.colors))
	for i, c := range p.colors {
		out[c] = p.used[i]
	}
	return out
}

// randomStarColor picks a dim red to yellow tone.
func randomStarColor() Color {
	return HSB(rand.Float64()*0.1875, 0.5+rand.Float64()*0.5, 0.5+rand.Float64()*0.5)
}
