package loom

import "testing"

// makeSheet returns a transparent RGBA buffer for a sheet of the given size.
func makeSheet(w, h int) []byte {
	return make([]byte, w*h*4)
}

// setAlpha writes an alpha value at sheet pixel (x, y).
func setAlpha(pix []byte, sheetW, x, y int, a uint8) {
	pix[(y*sheetW+x)*4+3] = a
}

// fillAlpha writes an alpha value over a rectangle of sheet pixels.
func fillAlpha(pix []byte, sheetW int, r Rect, a uint8) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			setAlpha(pix, sheetW, x, y, a)
		}
	}
}

func TestComputeTrim_FullyTransparentFrame(t *testing.T) {
	pix := makeSheet(32, 32)
	_, ok := ComputeTrim(pix, 32, Rect{X: 0, Y: 0, W: 16, H: 16}, DefaultAlphaThreshold)
	if ok {
		t.Fatal("expected ok=false for fully transparent frame")
	}
}

func TestComputeTrim_TightBounds(t *testing.T) {
	// Opaque block at (2,2)–(11,11) in a 64x32 sheet, frame covering it.
	pix := makeSheet(64, 32)
	fillAlpha(pix, 64, Rect{X: 2, Y: 2, W: 10, H: 10}, 255)

	trim, ok := ComputeTrim(pix, 64, Rect{X: 0, Y: 0, W: 16, H: 16}, DefaultAlphaThreshold)
	if !ok {
		t.Fatal("expected content")
	}
	want := Rect{X: 2, Y: 2, W: 10, H: 10}
	if trim != want {
		t.Errorf("trim = %+v, want %+v", trim, want)
	}
}

func TestComputeTrim_SinglePixel(t *testing.T) {
	pix := makeSheet(16, 16)
	setAlpha(pix, 16, 7, 9, 1)

	trim, ok := ComputeTrim(pix, 16, Rect{X: 0, Y: 0, W: 16, H: 16}, DefaultAlphaThreshold)
	if !ok {
		t.Fatal("expected content")
	}
	want := Rect{X: 7, Y: 9, W: 1, H: 1}
	if trim != want {
		t.Errorf("trim = %+v, want %+v", trim, want)
	}
}

func TestComputeTrim_SheetCoordinates(t *testing.T) {
	// Frame not at the sheet origin: trim must come back in sheet space.
	pix := makeSheet(64, 64)
	fillAlpha(pix, 64, Rect{X: 36, Y: 40, W: 4, H: 6}, 200)

	trim, ok := ComputeTrim(pix, 64, Rect{X: 32, Y: 32, W: 32, H: 32}, DefaultAlphaThreshold)
	if !ok {
		t.Fatal("expected content")
	}
	want := Rect{X: 36, Y: 40, W: 4, H: 6}
	if trim != want {
		t.Errorf("trim = %+v, want %+v", trim, want)
	}
}

func TestComputeTrim_IgnoresPixelsOutsideFrame(t *testing.T) {
	pix := makeSheet(64, 64)
	// Content in the neighbor frame only.
	fillAlpha(pix, 64, Rect{X: 40, Y: 0, W: 8, H: 8}, 255)

	_, ok := ComputeTrim(pix, 64, Rect{X: 0, Y: 0, W: 32, H: 32}, DefaultAlphaThreshold)
	if ok {
		t.Fatal("content outside the frame must not count")
	}
}

func TestComputeTrim_ThresholdBoundary(t *testing.T) {
	pix := makeSheet(8, 8)
	setAlpha(pix, 8, 1, 1, 15)
	setAlpha(pix, 8, 3, 3, 16)

	// alpha >= threshold qualifies; 15 does not, 16 does.
	trim, ok := ComputeTrim(pix, 8, Rect{X: 0, Y: 0, W: 8, H: 8}, 16)
	if !ok {
		t.Fatal("expected content at threshold 16")
	}
	want := Rect{X: 3, Y: 3, W: 1, H: 1}
	if trim != want {
		t.Errorf("trim = %+v, want %+v", trim, want)
	}
}

func TestComputeTrim_FrameExtendingBeyondSheet(t *testing.T) {
	pix := makeSheet(16, 16)
	fillAlpha(pix, 16, Rect{X: 12, Y: 12, W: 4, H: 4}, 255)

	// Frame hangs off the sheet's bottom-right; the scan clamps.
	trim, ok := ComputeTrim(pix, 16, Rect{X: 8, Y: 8, W: 16, H: 16}, DefaultAlphaThreshold)
	if !ok {
		t.Fatal("expected content")
	}
	want := Rect{X: 12, Y: 12, W: 4, H: 4}
	if trim != want {
		t.Errorf("trim = %+v, want %+v", trim, want)
	}
}

func TestComputePivot_Strategies(t *testing.T) {
	trim := Rect{X: 2, Y: 2, W: 10, H: 10}
	frame := Rect{X: 0, Y: 0, W: 16, H: 16}

	cases := []struct {
		strategy PivotStrategy
		want     Point
	}{
		{PivotBottomCenter, Point{X: 7, Y: 12}},
		{PivotCenter, Point{X: 7, Y: 7}},
		{PivotTopLeft, Point{X: 2, Y: 2}},
		{PivotTopRight, Point{X: 12, Y: 2}},
		{PivotStrategy(250), Point{X: 7, Y: 12}}, // unknown falls back to bottom-center
	}
	for _, c := range cases {
		got := ComputePivot(trim, true, c.strategy, frame)
		if got != c.want {
			t.Errorf("%s: pivot = %+v, want %+v", c.strategy, got, c.want)
		}
	}
}

func TestComputePivot_FallsBackToFrame(t *testing.T) {
	frame := Rect{X: 10, Y: 20, W: 8, H: 4}
	got := ComputePivot(Rect{}, false, PivotBottomCenter, frame)
	want := Point{X: 14, Y: 24}
	if got != want {
		t.Errorf("pivot = %+v, want %+v", got, want)
	}
}

func TestComputePivot_Pure(t *testing.T) {
	trim := Rect{X: 1, Y: 2, W: 3, H: 4}
	frame := Rect{X: 0, Y: 0, W: 8, H: 8}
	first := ComputePivot(trim, true, PivotCenter, frame)
	for i := 0; i < 10; i++ {
		if got := ComputePivot(trim, true, PivotCenter, frame); got != first {
			t.Fatalf("call %d returned %+v, first call returned %+v", i, got, first)
		}
	}
}

func TestParsePivotStrategyRoundTrip(t *testing.T) {
	for _, s := range []PivotStrategy{PivotBottomCenter, PivotCenter, PivotTopLeft, PivotTopRight} {
		got, ok := ParsePivotStrategy(s.String())
		if !ok || got != s {
			t.Errorf("ParsePivotStrategy(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParsePivotStrategy("upside-down"); ok {
		t.Error("unknown strategy name should not parse")
	}
}

func TestComputeSavings(t *testing.T) {
	frames := []Rect{
		{X: 0, Y: 0, W: 10, H: 10},
		{X: 10, Y: 0, W: 10, H: 10},
	}
	analyses := []FrameAnalysis{
		{Trim: Rect{X: 2, Y: 2, W: 5, H: 5}, HasTrim: true},
		{}, // empty frame
	}
	s := ComputeSavings(frames, analyses)
	if s.Frames != 2 || s.ContentFrames != 1 || s.EmptyFrames != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", s.Frames, s.ContentFrames, s.EmptyFrames)
	}
	if s.OriginalPixels != 200 || s.TrimmedPixels != 25 {
		t.Errorf("pixels = %d/%d, want 200/25", s.OriginalPixels, s.TrimmedPixels)
	}
	if s.SavedPixels != 175 {
		t.Errorf("SavedPixels = %d, want 175", s.SavedPixels)
	}
	if s.SavedPercent < 87.4 || s.SavedPercent > 87.6 {
		t.Errorf("SavedPercent = %f, want 87.5", s.SavedPercent)
	}
}

// --- Benchmarks ---

func BenchmarkComputeTrim_64x64(b *testing.B) {
	pix := makeSheet(1024, 1024)
	fillAlpha(pix, 1024, Rect{X: 10, Y: 10, W: 40, H: 40}, 255)
	frame := Rect{X: 0, Y: 0, W: 64, H: 64}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ComputeTrim(pix, 1024, frame, DefaultAlphaThreshold)
	}
}

func BenchmarkComputePivot(b *testing.B) {
	trim := Rect{X: 2, Y: 2, W: 60, H: 60}
	frame := Rect{X: 0, Y: 0, W: 64, H: 64}
	for i := 0; i < b.N; i++ {
		_ = ComputePivot(trim, true, PivotBottomCenter, frame)
	}
}
