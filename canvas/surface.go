// Package canvas renders declared elements onto a tcell terminal screen.
// The screen kind owns the terminal; box, text and present are pass-through
// children that draw onto their screen ancestor's surface.
package canvas

import (
	"github.com/gdamore/tcell/v2"
)

// Surface wraps a tcell screen with the drawing helpers draw callbacks use.
// Draw callbacks run on the frame goroutine; Surface is not safe for
// concurrent use from other goroutines.
type Surface struct {
	screen tcell.Screen
	owns   bool
}

// NewSurface wraps an already-initialized screen. The surface does not own
// it: Release leaves the screen running.
func NewSurface(screen tcell.Screen) *Surface {
	return &Surface{screen: screen}
}

// Screen exposes the underlying tcell screen
func (s *Surface) Screen() tcell.Screen { return s.screen }

// Size returns the current screen dimensions
func (s *Surface) Size() (int, int) { return s.screen.Size() }

// SetCell writes one rune
func (s *Surface) SetCell(x, y int, ch rune, style tcell.Style) {
	s.screen.SetContent(x, y, ch, nil, style)
}

// Print writes text left to right starting at x, y
func (s *Surface) Print(x, y int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		s.screen.SetContent(col, y, ch, nil, style)
		col++
	}
}

// Fill paints a rectangle with one rune
func (s *Surface) Fill(x, y, w, h int, ch rune, style tcell.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			s.screen.SetContent(col, row, ch, nil, style)
		}
	}
}

// Box draws a single-line border around the rectangle. Rectangles narrower
// than 2x2 are not drawable.
func (s *Surface) Box(x, y, w, h int, style tcell.Style) {
	if w < 2 || h < 2 {
		return
	}
	for col := x + 1; col < x+w-1; col++ {
		s.screen.SetContent(col, y, '─', nil, style)
		s.screen.SetContent(col, y+h-1, '─', nil, style)
	}
	for row := y + 1; row < y+h-1; row++ {
		s.screen.SetContent(x, row, '│', nil, style)
		s.screen.SetContent(x+w-1, row, '│', nil, style)
	}
	s.screen.SetContent(x, y, '┌', nil, style)
	s.screen.SetContent(x+w-1, y, '┐', nil, style)
	s.screen.SetContent(x, y+h-1, '└', nil, style)
	s.screen.SetContent(x+w-1, y+h-1, '┘', nil, style)
}

// Clear erases the back buffer
func (s *Surface) Clear() {
	s.screen.Clear()
}

// Show flushes buffered changes to the terminal
func (s *Surface) Show() {
	s.screen.Show()
}

// Release finalizes the screen if the surface owns it
func (s *Surface) Release() {
	if s.owns {
		s.screen.Fini()
	}
}
