package loom

import "github.com/google/uuid"

// Point is a pixel coordinate in sheet space. The origin is the sheet's
// top-left corner, with Y increasing downward.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned rectangle in sheet-pixel space.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether the pixel (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W &&
		y >= r.Y && y < r.Y+r.H
}

// In reports whether r lies entirely within outer.
func (r Rect) In(outer Rect) bool {
	return r.X >= outer.X && r.Y >= outer.Y &&
		r.X+r.W <= outer.X+outer.W &&
		r.Y+r.H <= outer.Y+outer.H
}

// Intersect returns the overlapping region of r and other.
// The result is empty if they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(r.X+r.W, other.X+other.W)
	y1 := min(r.Y+r.H, other.Y+other.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Center returns the rectangle's geometric center, rounded down.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// PivotStrategy names the rule used to derive a pivot point from a box.
type PivotStrategy uint8

const (
	PivotBottomCenter PivotStrategy = iota // baseline contact point, default for characters
	PivotCenter                            // geometric center
	PivotTopLeft                           // top-left corner
	PivotTopRight                          // top-right corner
)

// String returns the strategy's canonical name.
func (s PivotStrategy) String() string {
	switch s {
	case PivotCenter:
		return "center"
	case PivotTopLeft:
		return "top-left"
	case PivotTopRight:
		return "top-right"
	default:
		return "bottom-center"
	}
}

// ParsePivotStrategy returns the strategy for a canonical name.
// Unknown names return PivotBottomCenter with ok=false.
func ParsePivotStrategy(name string) (PivotStrategy, bool) {
	switch name {
	case "bottom-center":
		return PivotBottomCenter, true
	case "center":
		return PivotCenter, true
	case "top-left":
		return PivotTopLeft, true
	case "top-right":
		return PivotTopRight, true
	}
	return PivotBottomCenter, false
}

// SliceType categorizes a named region on the timeline.
type SliceType uint8

const (
	SliceHit        SliceType = iota // damage-dealing region
	SliceHurt                        // damage-receiving region
	SliceAttachment                  // anchor for attached sprites (weapons, effects)
	SliceCustom                      // anything else
)

// String returns the slice type's canonical name.
func (t SliceType) String() string {
	switch t {
	case SliceHit:
		return "hit"
	case SliceHurt:
		return "hurt"
	case SliceAttachment:
		return "attachment"
	default:
		return "custom"
	}
}

// ParseSliceType returns the type for a canonical name.
// Unknown names return SliceCustom with ok=false.
func ParseSliceType(name string) (SliceType, bool) {
	switch name {
	case "hit":
		return SliceHit, true
	case "hurt":
		return SliceHurt, true
	case "attachment":
		return SliceAttachment, true
	case "custom":
		return SliceCustom, true
	}
	return SliceCustom, false
}

// NewSheetID returns a fresh opaque sheet identity. Sheet IDs key the
// analysis cache and the override store; using a generated ID instead of
// a file path keeps cached data valid across file renames.
func NewSheetID() string {
	return uuid.NewString()
}
