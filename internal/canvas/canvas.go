// Package canvas is the tactical-planner drawing surface: an ordered
// list of freehand strokes captured in a fixed 1024x1024 coordinate
// space, replayed onto a raster for rendering. Strokes live only for the
// current planning session and are never persisted.
package canvas

import (
	"image"
	"image/color"
	"math"
)

// Size is the fixed canvas coordinate space, independent of how large
// the surface is rendered on screen.
const Size = 1024

// DefaultBrush matches the planner's initial palette selection.
const DefaultBrush = "#ef4444"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous gesture: a color tag plus its ordered points.
type Stroke struct {
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// Surface holds the stroke sequence and the pointer state. It is not
// safe for concurrent use; each planning session owns its own Surface.
type Surface struct {
	strokes []Stroke
	drawing bool
}

// PointerDown starts a new stroke at p.
func (s *Surface) PointerDown(brush string, p Point) {
	s.drawing = true
	s.strokes = append(s.strokes, Stroke{Color: brush, Points: []Point{p}})
}

// PointerMove appends p to the last stroke only. Moves while no stroke
// is active are ignored; earlier strokes are never edited.
func (s *Surface) PointerMove(p Point) {
	if !s.drawing || len(s.strokes) == 0 {
		return
	}
	last := len(s.strokes) - 1
	s.strokes[last].Points = append(s.strokes[last].Points, p)
}

// PointerUp ends the active stroke. There is no closed-stroke state;
// the surface simply stops appending.
func (s *Surface) PointerUp() {
	s.drawing = false
}

// Clear discards every stroke unconditionally. No undo.
func (s *Surface) Clear() {
	s.strokes = nil
	s.drawing = false
}

func (s *Surface) Strokes() []Stroke {
	out := make([]Stroke, len(s.strokes))
	copy(out, s.strokes)
	return out
}

// Render replays the full stroke sequence, in order, onto a cleared
// raster. Replaying the same sequence always reproduces the same image.
func (s *Surface) Render() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	for _, stroke := range s.strokes {
		if len(stroke.Points) == 0 {
			continue
		}
		c := parseHex(stroke.Color)
		prev := stroke.Points[0]
		plot(img, prev, c)
		for _, pt := range stroke.Points[1:] {
			line(img, prev, pt, c)
			prev = pt
		}
	}
	return img
}

// ToCanvas rescales a pointer position inside a rendered rect of the
// given size into canvas space.
func ToCanvas(px, py, rectW, rectH float64) Point {
	if rectW <= 0 || rectH <= 0 {
		return Point{}
	}
	return Point{
		X: px * (Size / rectW),
		Y: py * (Size / rectH),
	}
}

// NormalizePercent maps a click inside a rendered rect to 0-100 of its
// bounding box, independent of the source image pixel dimensions. Used
// for lineup pin placement.
func NormalizePercent(px, py, rectW, rectH float64) (x, y float64) {
	if rectW <= 0 || rectH <= 0 {
		return 0, 0
	}
	return (px / rectW) * 100, (py / rectH) * 100
}

func plot(img *image.RGBA, p Point, c color.RGBA) {
	x, y := int(math.Round(p.X)), int(math.Round(p.Y))
	if x < 0 || y < 0 || x >= Size || y >= Size {
		return
	}
	img.SetRGBA(x, y, c)
}

// line draws a 1px Bresenham segment between two canvas points.
func line(img *image.RGBA, a, b Point, c color.RGBA) {
	x0, y0 := int(math.Round(a.X)), int(math.Round(a.Y))
	x1, y1 := int(math.Round(b.X)), int(math.Round(b.Y))

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		plot(img, Point{X: float64(x0), Y: float64(y0)}, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// parseHex decodes a "#rrggbb" color tag; bad tags fall back to white.
func parseHex(s string) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	var out [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexNibble(s[1+i*2])
		lo, ok2 := hexNibble(s[2+i*2])
		if !ok1 || !ok2 {
			return color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		out[i] = hi<<4 | lo
	}
	return color.RGBA{R: out[0], G: out[1], B: out[2], A: 255}
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}
