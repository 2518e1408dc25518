// Package geom maps screen-space points captured over the source window
// into client coordinates of differently sized target windows.
package geom

import "errors"

// ErrDegenerateGeometry is returned when the source window has a zero
// width or height; the event being mapped must be dropped.
var ErrDegenerateGeometry = errors.New("source window has zero-sized dimension")

// Point is a position in screen or client coordinates.
type Point struct {
	X, Y int
}

// Size is a width/height pair.
type Size struct {
	Width, Height int
}

// Rect is a screen rectangle identified by its top-left corner and size.
type Rect struct {
	Left, Top     int
	Right, Bottom int
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

func (r Rect) Size() Size { return Size{Width: r.Width(), Height: r.Height()} }

// MapPoint converts a screen-space point over the source window into a
// proportionally scaled point in a target window's client area.
//
// The point is taken relative to the source window's top-left screen
// origin and scaled by the ratio of target-to-source client dimensions.
// Client sizes are used as the denominator for every event kind; the
// result truncates to integer client coordinates.
func MapPoint(screen Point, sourceRect Rect, sourceClient, targetClient Size) (Point, error) {
	if sourceClient.Width == 0 || sourceClient.Height == 0 {
		return Point{}, ErrDegenerateGeometry
	}
	rel := Point{X: screen.X - sourceRect.Left, Y: screen.Y - sourceRect.Top}
	return Point{
		X: rel.X * targetClient.Width / sourceClient.Width,
		Y: rel.Y * targetClient.Height / sourceClient.Height,
	}, nil
}
