package loom

import (
	"image"
	"testing"
)

// testImage builds an RGBA image with the given opaque region.
func testImage(w, h int, opaque Rect) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillAlpha(img.Pix, w, opaque, 255)
	return img
}

func TestAnalysisCache_GetOrCompute(t *testing.T) {
	c := NewAnalysisCache()
	c.EnsurePixels("sheet", testImage(32, 32, Rect{X: 4, Y: 4, W: 8, H: 8}))

	a, ok := c.GetOrCompute("sheet", 0, Rect{X: 0, Y: 0, W: 16, H: 16}, PivotBottomCenter)
	if !ok {
		t.Fatal("expected analysis for cached sheet")
	}
	if !a.HasTrim || a.Trim != (Rect{X: 4, Y: 4, W: 8, H: 8}) {
		t.Errorf("trim = %+v (hasTrim=%v), want {4 4 8 8}", a.Trim, a.HasTrim)
	}
	if a.Pivot != (Point{X: 8, Y: 12}) {
		t.Errorf("pivot = %+v, want {8 12}", a.Pivot)
	}
}

func TestAnalysisCache_NoPixels(t *testing.T) {
	c := NewAnalysisCache()
	if _, ok := c.GetOrCompute("missing", 0, Rect{W: 16, H: 16}, PivotCenter); ok {
		t.Fatal("expected ok=false for sheet without pixels")
	}
}

func TestAnalysisCache_MemoizesResult(t *testing.T) {
	c := NewAnalysisCache()
	img := testImage(32, 32, Rect{X: 4, Y: 4, W: 8, H: 8})
	c.EnsurePixels("sheet", img)

	frame := Rect{X: 0, Y: 0, W: 16, H: 16}
	first, _ := c.GetOrCompute("sheet", 0, frame, PivotBottomCenter)

	// Mutate the underlying pixels; a cached result must not change.
	sheet := c.sheets["sheet"]
	fillAlpha(sheet.pix, 32, Rect{X: 0, Y: 0, W: 16, H: 16}, 255)

	second, _ := c.GetOrCompute("sheet", 0, frame, PivotBottomCenter)
	if second != first {
		t.Errorf("cached result changed: %+v then %+v", first, second)
	}
}

func TestAnalysisCache_EnsurePixelsIdempotent(t *testing.T) {
	c := NewAnalysisCache()
	c.EnsurePixels("sheet", testImage(16, 16, Rect{X: 1, Y: 1, W: 2, H: 2}))
	pix := c.sheets["sheet"].pix

	// Second call with a different image is a no-op.
	c.EnsurePixels("sheet", testImage(16, 16, Rect{X: 8, Y: 8, W: 4, H: 4}))
	if &c.sheets["sheet"].pix[0] != &pix[0] {
		t.Error("EnsurePixels replaced an already-cached buffer")
	}
}

func TestAnalysisCache_NormalizesSubImage(t *testing.T) {
	// A sub-image has a non-zero Min and a wider stride; the cache must
	// repack it so the scan addresses pixels correctly.
	base := testImage(64, 64, Rect{X: 34, Y: 34, W: 4, H: 4})
	sub := base.SubImage(image.Rect(32, 32, 64, 64)).(*image.RGBA)

	c := NewAnalysisCache()
	c.EnsurePixels("sub", sub)

	a, ok := c.GetOrCompute("sub", 0, Rect{X: 0, Y: 0, W: 32, H: 32}, PivotTopLeft)
	if !ok || !a.HasTrim {
		t.Fatal("expected content in normalized sub-image")
	}
	// (34,34) in the base is (2,2) in the sub-image's own space.
	if a.Trim != (Rect{X: 2, Y: 2, W: 4, H: 4}) {
		t.Errorf("trim = %+v, want {2 2 4 4}", a.Trim)
	}
}

func TestAnalysisCache_InvalidateAll(t *testing.T) {
	c := NewAnalysisCache()
	c.EnsurePixels("sheet", testImage(32, 32, Rect{X: 0, Y: 0, W: 8, H: 8}))

	oldFrame := Rect{X: 0, Y: 0, W: 16, H: 16}
	c.GetOrCompute("sheet", 0, oldFrame, PivotBottomCenter)

	// Grid change: same frame index now maps to a different rectangle.
	c.InvalidateAll("sheet")
	newFrame := Rect{X: 8, Y: 8, W: 16, H: 16}
	a, _ := c.GetOrCompute("sheet", 0, newFrame, PivotBottomCenter)
	if a.HasTrim {
		// Content lives at (0,0)-(7,7); the shifted frame misses it.
		t.Errorf("expected empty frame after invalidation, got trim %+v", a.Trim)
	}
}

func TestAnalysisCache_InvalidatePivotsRetainsTrims(t *testing.T) {
	c := NewAnalysisCache()
	c.EnsurePixels("sheet", testImage(32, 32, Rect{X: 4, Y: 4, W: 8, H: 8}))

	frame := Rect{X: 0, Y: 0, W: 16, H: 16}
	before, _ := c.GetOrCompute("sheet", 0, frame, PivotBottomCenter)

	// Mutate pixels to prove the trim is served from cache afterwards.
	fillAlpha(c.sheets["sheet"].pix, 32, Rect{X: 0, Y: 0, W: 32, H: 32}, 255)

	c.InvalidatePivots("sheet")
	after, _ := c.GetOrCompute("sheet", 0, frame, PivotTopLeft)

	if after.Trim != before.Trim {
		t.Errorf("trim changed across pivot invalidation: %+v then %+v", before.Trim, after.Trim)
	}
	if after.Pivot != (Point{X: 4, Y: 4}) {
		t.Errorf("pivot = %+v, want recomputed top-left {4 4}", after.Pivot)
	}
}

func TestAnalysisCache_SetAlphaThresholdInvalidates(t *testing.T) {
	c := NewAnalysisCache()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	fillAlpha(img.Pix, 16, Rect{X: 2, Y: 2, W: 4, H: 4}, 10) // faint content
	c.EnsurePixels("sheet", img)

	frame := Rect{X: 0, Y: 0, W: 16, H: 16}
	a, _ := c.GetOrCompute("sheet", 0, frame, PivotCenter)
	if !a.HasTrim {
		t.Fatal("alpha 10 should qualify at default threshold")
	}

	c.SetAlphaThreshold(32)
	a, _ = c.GetOrCompute("sheet", 0, frame, PivotCenter)
	if a.HasTrim {
		t.Error("alpha 10 should not qualify at threshold 32")
	}
}

func TestAnalysisCache_DropSheet(t *testing.T) {
	c := NewAnalysisCache()
	c.EnsurePixels("sheet", testImage(8, 8, Rect{W: 2, H: 2}))
	c.DropSheet("sheet")
	if c.HasSheet("sheet") {
		t.Error("sheet still cached after DropSheet")
	}
	if _, ok := c.GetOrCompute("sheet", 0, Rect{W: 8, H: 8}, PivotCenter); ok {
		t.Error("dropped sheet should not resolve")
	}
}

func TestAnalysisCache_SheetSize(t *testing.T) {
	c := NewAnalysisCache()
	c.EnsurePixels("sheet", testImage(24, 16, Rect{}))
	w, h, ok := c.SheetSize("sheet")
	if !ok || w != 24 || h != 16 {
		t.Errorf("SheetSize = %d,%d,%v, want 24,16,true", w, h, ok)
	}
	if _, _, ok := c.SheetSize("other"); ok {
		t.Error("unknown sheet should report ok=false")
	}
}

func TestAnalysisCache_Stats(t *testing.T) {
	c := NewAnalysisCache()
	c.EnsurePixels("a", testImage(8, 8, Rect{W: 2, H: 2}))
	c.EnsurePixels("b", testImage(4, 4, Rect{}))
	c.GetOrCompute("a", 0, Rect{W: 8, H: 8}, PivotCenter)
	c.GetOrCompute("a", 1, Rect{W: 8, H: 8}, PivotCenter)

	s := c.Stats()
	if s.Sheets != 2 {
		t.Errorf("Sheets = %d, want 2", s.Sheets)
	}
	if s.CachedFrames != 2 {
		t.Errorf("CachedFrames = %d, want 2", s.CachedFrames)
	}
	if s.PixelBytes != 8*8*4+4*4*4 {
		t.Errorf("PixelBytes = %d, want %d", s.PixelBytes, 8*8*4+4*4*4)
	}
}

// --- Benchmarks ---

func BenchmarkAnalysisCache_Hit(b *testing.B) {
	c := NewAnalysisCache()
	c.EnsurePixels("sheet", testImage(1024, 1024, Rect{X: 10, Y: 10, W: 40, H: 40}))
	frame := Rect{X: 0, Y: 0, W: 64, H: 64}
	c.GetOrCompute("sheet", 0, frame, PivotBottomCenter)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.GetOrCompute("sheet", 0, frame, PivotBottomCenter)
	}
}

func BenchmarkAnalysisCache_Miss(b *testing.B) {
	c := NewAnalysisCache()
	c.EnsurePixels("sheet", testImage(1024, 1024, Rect{X: 10, Y: 10, W: 40, H: 40}))
	frame := Rect{X: 0, Y: 0, W: 64, H: 64}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.InvalidateAll("sheet")
		_, _ = c.GetOrCompute("sheet", 0, frame, PivotBottomCenter)
	}
}
