package loom

// DefaultAlphaThreshold is the minimum alpha value for a pixel to count
// as content when computing trim bounds.
const DefaultAlphaThreshold uint8 = 1

// ComputeTrim scans the frame's region of a full-sheet RGBA buffer and
// returns the tight bounding box of pixels whose alpha is at least
// threshold, in sheet-pixel coordinates. pix is row-major RGBA with a
// stride of sheetW*4 bytes. ok is false when no pixel met the threshold
// (a fully transparent frame); callers typically fall back to the full
// frame rectangle.
//
// Portions of the frame outside the buffer are ignored. The scan is
// O(frame area) and has no side effects.
func ComputeTrim(pix []byte, sheetW int, frame Rect, threshold uint8) (trim Rect, ok bool) {
	sheetH := 0
	if sheetW > 0 {
		sheetH = len(pix) / (sheetW * 4)
	}
	region := frame.Intersect(Rect{W: sheetW, H: sheetH})
	if region.Empty() {
		return Rect{}, false
	}

	minX, minY := region.X+region.W, region.Y+region.H
	maxX, maxY := -1, -1

	for y := region.Y; y < region.Y+region.H; y++ {
		i := (y*sheetW+region.X)*4 + 3 // alpha channel of the row's first pixel
		for x := region.X; x < region.X+region.W; x++ {
			if pix[i] >= threshold {
				if x < minX {
					minX = x
				}
				if y < minY {
					minY = y
				}
				if x > maxX {
					maxX = x
				}
				if y > maxY {
					maxY = y
				}
			}
			i += 4
		}
	}

	if maxX < 0 {
		return Rect{}, false
	}
	return Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}, true
}

// ComputePivot derives a pivot point from the trim box, or from the full
// frame rectangle when the frame had no content (hasTrim false). Pure:
// identical inputs always yield identical output.
func ComputePivot(trim Rect, hasTrim bool, strategy PivotStrategy, frame Rect) Point {
	box := frame
	if hasTrim {
		box = trim
	}
	switch strategy {
	case PivotCenter:
		return Point{X: box.X + box.W/2, Y: box.Y + box.H/2}
	case PivotTopLeft:
		return Point{X: box.X, Y: box.Y}
	case PivotTopRight:
		return Point{X: box.X + box.W, Y: box.Y}
	default:
		// bottom-center: sits on the box's bottom edge.
		return Point{X: box.X + box.W/2, Y: box.Y + box.H}
	}
}

// Savings summarizes how much sheet area trimming removes across a set
// of analyzed frames. Used for UI feedback when deciding whether a
// packed export is worthwhile.
type Savings struct {
	Frames        int // frames considered
	ContentFrames int // frames with at least one qualifying pixel
	EmptyFrames   int // fully transparent frames

	OriginalPixels int // sum of full frame areas
	TrimmedPixels  int // sum of trim box areas (content frames only)
	SavedPixels    int
	SavedPercent   float64
}

// ComputeSavings tallies trim savings for frames[i] analyzed as
// analyses[i]. The two slices must be the same length.
func ComputeSavings(frames []Rect, analyses []FrameAnalysis) Savings {
	var s Savings
	s.Frames = len(frames)
	for i, frame := range frames {
		s.OriginalPixels += frame.W * frame.H
		a := analyses[i]
		if a.HasTrim {
			s.ContentFrames++
			s.TrimmedPixels += a.Trim.W * a.Trim.H
		} else {
			s.EmptyFrames++
		}
	}
	s.SavedPixels = s.OriginalPixels - s.TrimmedPixels
	if s.OriginalPixels > 0 {
		s.SavedPercent = float64(s.SavedPixels) / float64(s.OriginalPixels) * 100
	}
	return s
}
