package geom

import (
	"errors"
	"testing"
)

func TestMapPoint_ProportionalScaling(t *testing.T) {
	// Source client 800x600 at screen origin, target client 400x300:
	// source-relative point (400,300) maps to (200,150).
	src := Rect{Left: 0, Top: 0, Right: 800, Bottom: 600}
	got, err := MapPoint(Point{X: 400, Y: 300}, src, Size{800, 600}, Size{400, 300})
	if err != nil {
		t.Fatal(err)
	}
	if got != (Point{X: 200, Y: 150}) {
		t.Errorf("got %+v, want {200 150}", got)
	}
}

func TestMapPoint_WindowOffset(t *testing.T) {
	// Source window at (100,50); screen point (500,350) is (400,300) relative.
	src := Rect{Left: 100, Top: 50, Right: 900, Bottom: 650}
	got, err := MapPoint(Point{X: 500, Y: 350}, src, Size{800, 600}, Size{400, 300})
	if err != nil {
		t.Fatal(err)
	}
	if got != (Point{X: 200, Y: 150}) {
		t.Errorf("got %+v, want {200 150}", got)
	}
}

func TestMapPoint_ScaleLinear(t *testing.T) {
	src := Rect{Left: 0, Top: 0, Right: 800, Bottom: 600}
	pt := Point{X: 100, Y: 100}

	base, err := MapPoint(pt, src, Size{800, 600}, Size{400, 300})
	if err != nil {
		t.Fatal(err)
	}
	doubled, err := MapPoint(pt, src, Size{800, 600}, Size{800, 300})
	if err != nil {
		t.Fatal(err)
	}
	if doubled.X != base.X*2 {
		t.Errorf("doubling target width should double x: base=%d doubled=%d", base.X, doubled.X)
	}
	if doubled.Y != base.Y {
		t.Errorf("y should be unchanged: base=%d doubled=%d", base.Y, doubled.Y)
	}
}

func TestMapPoint_TruncatesToInteger(t *testing.T) {
	src := Rect{Left: 0, Top: 0, Right: 3, Bottom: 3}
	got, err := MapPoint(Point{X: 2, Y: 2}, src, Size{3, 3}, Size{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	// 2*2/3 = 1.33 truncates to 1.
	if got != (Point{X: 1, Y: 1}) {
		t.Errorf("got %+v, want {1 1}", got)
	}
}

func TestMapPoint_ZeroSourceDropsEvent(t *testing.T) {
	src := Rect{Left: 0, Top: 0, Right: 0, Bottom: 600}
	_, err := MapPoint(Point{X: 10, Y: 10}, src, Size{0, 600}, Size{400, 300})
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}

	_, err = MapPoint(Point{X: 10, Y: 10}, src, Size{800, 0}, Size{400, 300})
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry for zero height, got %v", err)
	}
}

func TestRectSize(t *testing.T) {
	r := Rect{Left: 10, Top: 20, Right: 110, Bottom: 70}
	if r.Width() != 100 || r.Height() != 50 {
		t.Errorf("got %dx%d, want 100x50", r.Width(), r.Height())
	}
	if r.Size() != (Size{Width: 100, Height: 50}) {
		t.Errorf("Size() mismatch: %+v", r.Size())
	}
}
