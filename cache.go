package loom

import (
	"image"
	"image/draw"
)

// FrameAnalysis is the cached result of analyzing one frame: its trim
// box (when the frame has content) and its derived pivot.
type FrameAnalysis struct {
	Trim    Rect
	HasTrim bool // false for a fully transparent frame
	Pivot   Point
}

// frameEntry caches the two halves of an analysis independently so that
// a pivot-strategy change can drop pivots while retaining trims.
type frameEntry struct {
	trim    Rect
	hasTrim bool
	trimOK  bool
	pivot   Point
	pivotOK bool
}

// sheetEntry holds one sheet's normalized pixels and its per-frame cache.
type sheetEntry struct {
	pix    []byte // row-major RGBA, stride = w*4
	w, h   int
	frames map[int]*frameEntry
}

// AnalysisCache memoizes trim/pivot analysis per sheet and frame so that
// toggling overlays over a sheet with hundreds of frames does not rescan
// pixels every repaint. Analysis is lazy: invalidation only clears
// entries, and each frame is recomputed on its next access. The cache
// owns the pixel buffers; drop them with DropSheet when a sheet closes.
type AnalysisCache struct {
	sheets    map[string]*sheetEntry
	threshold uint8
}

// NewAnalysisCache creates an empty cache using DefaultAlphaThreshold.
func NewAnalysisCache() *AnalysisCache {
	return &AnalysisCache{
		sheets:    make(map[string]*sheetEntry),
		threshold: DefaultAlphaThreshold,
	}
}

// EnsurePixels stores the sheet's decoded pixels, normalized to tightly
// packed RGBA. A no-op when the sheet is already cached, so collaborators
// may call it on every access. Decoding itself is the caller's job.
func (c *AnalysisCache) EnsurePixels(sheetID string, img image.Image) {
	if _, ok := c.sheets[sheetID]; ok {
		return
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) || rgba.Stride != w*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	c.sheets[sheetID] = &sheetEntry{
		pix:    rgba.Pix,
		w:      w,
		h:      h,
		frames: make(map[int]*frameEntry),
	}
	debugf("cache: sheet %s pixels cached (%dx%d)", sheetID, w, h)
}

// HasSheet reports whether pixels are cached for the sheet.
func (c *AnalysisCache) HasSheet(sheetID string) bool {
	_, ok := c.sheets[sheetID]
	return ok
}

// SheetSize returns the cached sheet's dimensions in pixels.
func (c *AnalysisCache) SheetSize(sheetID string) (w, h int, ok bool) {
	sheet, ok := c.sheets[sheetID]
	if !ok {
		return 0, 0, false
	}
	return sheet.w, sheet.h, true
}

// DropSheet discards the sheet's pixel buffer and all cached analysis.
// Call when the sheet is closed.
func (c *AnalysisCache) DropSheet(sheetID string) {
	delete(c.sheets, sheetID)
}

// GetOrCompute returns the cached analysis for (sheetID, frameIndex),
// computing and storing whichever halves are missing. ok is false when no
// pixels are cached for the sheet; callers then fall back to the full
// frame rectangle.
func (c *AnalysisCache) GetOrCompute(sheetID string, frameIndex int, frameRect Rect, strategy PivotStrategy) (FrameAnalysis, bool) {
	sheet, ok := c.sheets[sheetID]
	if !ok {
		return FrameAnalysis{}, false
	}
	e, ok := sheet.frames[frameIndex]
	if !ok {
		e = &frameEntry{}
		sheet.frames[frameIndex] = e
	}
	if !e.trimOK {
		e.trim, e.hasTrim = ComputeTrim(sheet.pix, sheet.w, frameRect, c.threshold)
		e.trimOK = true
	}
	if !e.pivotOK {
		e.pivot = ComputePivot(e.trim, e.hasTrim, strategy, frameRect)
		e.pivotOK = true
	}
	return FrameAnalysis{Trim: e.trim, HasTrim: e.hasTrim, Pivot: e.pivot}, true
}

// InvalidateAll clears every cached analysis for the sheet. Must be
// called when tile size, margin, or spacing changes: the frame rectangles
// shifted, so every cached trim and pivot is meaningless. Pixels are
// retained; frames recompute lazily as they are next viewed.
func (c *AnalysisCache) InvalidateAll(sheetID string) {
	if sheet, ok := c.sheets[sheetID]; ok {
		clear(sheet.frames)
	}
}

// InvalidatePivots clears only the pivot half of every cached entry for
// the sheet, retaining trims. Call when the pivot strategy changes: trim
// depends on pixels and geometry only.
func (c *AnalysisCache) InvalidatePivots(sheetID string) {
	sheet, ok := c.sheets[sheetID]
	if !ok {
		return
	}
	for _, e := range sheet.frames {
		e.pivotOK = false
	}
}

// AlphaThreshold returns the current content threshold.
func (c *AnalysisCache) AlphaThreshold() uint8 {
	return c.threshold
}

// SetAlphaThreshold changes the minimum alpha for a pixel to count as
// content. Trim bounds depend on it, so changing the value invalidates
// all cached analysis for every sheet (pixels are retained).
func (c *AnalysisCache) SetAlphaThreshold(threshold uint8) {
	if threshold == c.threshold {
		return
	}
	c.threshold = threshold
	for _, sheet := range c.sheets {
		clear(sheet.frames)
	}
}

// CacheStats reports cache occupancy for debug logging.
type CacheStats struct {
	Sheets       int
	CachedFrames int
	PixelBytes   int
}

// Stats returns current cache occupancy.
func (c *AnalysisCache) Stats() CacheStats {
	var s CacheStats
	s.Sheets = len(c.sheets)
	for _, sheet := range c.sheets {
		s.CachedFrames += len(sheet.frames)
		s.PixelBytes += len(sheet.pix)
	}
	return s
}
