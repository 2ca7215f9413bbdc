// Package loom is the editing core of a sprite-sheet animation tool.
//
// Loom derives per-frame geometric metadata from decoded RGBA pixel data —
// a tight non-transparent bounding box (the trim) and an anchor point (the
// pivot) — caches those results lazily per frame, lets the user override
// any derived value per field, keeps sparse keyframe timelines for named
// rectangular regions (slices: hitboxes, hurtboxes, attachment points),
// and wraps every mutation in a reversible [Command] so the whole editing
// session is undoable.
//
// Loom never decodes images and never renders pixels. A collaborator hands
// it decoded pixels via [AnalysisCache.EnsurePixels] and per-frame
// geometry as [Rect] values; rendering and export consumers read back
// effective values through [Document.Resolve].
//
// # Quick start
//
//	doc := loom.NewDocument()
//	doc.Cache.EnsurePixels(sheetID, img)
//
//	grid := loom.SheetGrid{TileWidth: 32, TileHeight: 32}
//	r := doc.Resolve(sheetID, 0, grid.FrameRect(0, sheetW), loom.PivotBottomCenter)
//	// r.Trim, r.Pivot — override if set, else cached auto, else full frame
//
// Mutations go through command constructors and the document history:
//
//	doc.History.Push(doc.SetPivotCommand(sheetID, 0, loom.Point{X: 16, Y: 31}))
//	doc.History.Undo()
//
// # Precedence
//
// For every field (pivot and trim independently) the effective value is
// resolved through exactly one chain: manual override, then cached auto
// analysis, then the full frame rectangle as a last resort. The resolver
// lives in one place ([Document.Resolve]) so overlay rendering and export
// cannot diverge.
//
// Loom is single-threaded by design, like the editing UI that drives it.
// None of the stores are safe for concurrent use.
package loom
