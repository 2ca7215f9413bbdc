package loom

import "github.com/google/uuid"

// Document owns all editing state for one open sprite project: the
// analysis cache, the override and slice stores, and the undo history.
// Documents are explicit instances — nothing in loom is a package-level
// singleton — so multiple independent documents and clean tests need no
// global reset.
type Document struct {
	Cache     *AnalysisCache
	Overrides *OverrideStore
	Slices    *SliceStore
	History   *CommandStack
}

// NewDocument creates a document with empty stores and history.
func NewDocument() *Document {
	return &Document{
		Cache:     NewAnalysisCache(),
		Overrides: NewOverrideStore(),
		Slices:    NewSliceStore(),
		History:   NewCommandStack(),
	}
}

// Close discards the document's pixel buffers and history.
func (d *Document) Close() {
	clear(d.Cache.sheets)
	d.History.Clear()
}

// Source identifies which precedence layer produced a resolved value.
type Source uint8

const (
	SourceFallback Source = iota // full frame rectangle, no analysis available
	SourceAuto                   // cached automatic analysis
	SourceOverride               // manual override
)

// String returns the source's display name.
func (s Source) String() string {
	switch s {
	case SourceAuto:
		return "auto"
	case SourceOverride:
		return "override"
	default:
		return "fallback"
	}
}

// Resolved is the effective trim and pivot for one frame, with the
// precedence layer that produced each field.
type Resolved struct {
	Trim        Rect
	TrimSource  Source
	Pivot       Point
	PivotSource Source
}

// Resolve returns the frame's effective trim and pivot: the manual
// override when present, else the cached auto analysis (computed lazily
// on first access), else the full frame rectangle and its geometric
// center. Each field resolves independently — a frame may have a manual
// pivot and an auto trim.
//
// This is the only precedence resolution in loom. Overlay rendering and
// export must both go through it so the two can never diverge.
func (d *Document) Resolve(sheetID string, frame int, frameRect Rect, strategy PivotStrategy) Resolved {
	res := Resolved{
		Trim:        frameRect,
		TrimSource:  SourceFallback,
		Pivot:       frameRect.Center(),
		PivotSource: SourceFallback,
	}

	if auto, ok := d.Cache.GetOrCompute(sheetID, frame, frameRect, strategy); ok {
		if auto.HasTrim {
			res.Trim = auto.Trim
			res.TrimSource = SourceAuto
		}
		res.Pivot = auto.Pivot
		res.PivotSource = SourceAuto
	}

	if e, ok := d.Overrides.Entry(sheetID, frame); ok {
		if e.HasTrim {
			res.Trim = e.Trim
			res.TrimSource = SourceOverride
		}
		if e.HasPivot {
			res.Pivot = e.Pivot
			res.PivotSource = SourceOverride
		}
	}
	return res
}

// ResolveRange resolves every listed frame, with rectFor supplying each
// frame's rectangle. The iteration is synchronous and uncancellable;
// very large selections will block for their full analysis cost.
func (d *Document) ResolveRange(sheetID string, frames []int, rectFor func(frame int) Rect, strategy PivotStrategy) []Resolved {
	out := make([]Resolved, len(frames))
	for i, f := range frames {
		out[i] = d.Resolve(sheetID, f, rectFor(f), strategy)
	}
	return out
}

// --- Command constructors ---
//
// Each constructor snapshots the prior field state (value and presence)
// when the command is built, so Undo restores exactly what was there —
// not an assumed absence or a default.

// SetPivotCommand overrides the frame's pivot.
func (d *Document) SetPivotCommand(sheetID string, frame int, p Point) Command {
	prev, had := d.Overrides.Pivot(sheetID, frame)
	return Command{
		Label: "Set Pivot",
		Do:    func() { d.Overrides.SetPivot(sheetID, frame, p) },
		Undo:  func() { d.restorePivot(sheetID, frame, prev, had) },
	}
}

// ClearPivotCommand removes the frame's pivot override.
func (d *Document) ClearPivotCommand(sheetID string, frame int) Command {
	prev, had := d.Overrides.Pivot(sheetID, frame)
	return Command{
		Label: "Clear Pivot",
		Do:    func() { d.Overrides.ClearPivot(sheetID, frame) },
		Undo:  func() { d.restorePivot(sheetID, frame, prev, had) },
	}
}

// SetTrimCommand overrides the frame's trim box.
func (d *Document) SetTrimCommand(sheetID string, frame int, r Rect) Command {
	prev, had := d.Overrides.Trim(sheetID, frame)
	return Command{
		Label: "Set Trim",
		Do:    func() { d.Overrides.SetTrim(sheetID, frame, r) },
		Undo:  func() { d.restoreTrim(sheetID, frame, prev, had) },
	}
}

// ClearTrimCommand removes the frame's trim override.
func (d *Document) ClearTrimCommand(sheetID string, frame int) Command {
	prev, had := d.Overrides.Trim(sheetID, frame)
	return Command{
		Label: "Clear Trim",
		Do:    func() { d.Overrides.ClearTrim(sheetID, frame) },
		Undo:  func() { d.restoreTrim(sheetID, frame, prev, had) },
	}
}

func (d *Document) restorePivot(sheetID string, frame int, prev Point, had bool) {
	if had {
		d.Overrides.SetPivot(sheetID, frame, prev)
	} else {
		d.Overrides.ClearPivot(sheetID, frame)
	}
}

func (d *Document) restoreTrim(sheetID string, frame int, prev Rect, had bool) {
	if had {
		d.Overrides.SetTrim(sheetID, frame, prev)
	} else {
		d.Overrides.ClearTrim(sheetID, frame)
	}
}

// BakeAnalysisCommand copies the current effective trim and pivot of the
// selected frames into overrides, freezing them against later strategy
// or threshold changes. One history entry for the whole selection.
func (d *Document) BakeAnalysisCommand(sheetID string, frames []int, rectFor func(frame int) Rect, strategy PivotStrategy) Command {
	type snapshot struct {
		frame int
		prev  OverrideEntry
		had   bool
		next  Resolved
	}
	snaps := make([]snapshot, len(frames))
	for i, f := range frames {
		prev, had := d.Overrides.Entry(sheetID, f)
		snaps[i] = snapshot{
			frame: f,
			prev:  prev,
			had:   had,
			next:  d.Resolve(sheetID, f, rectFor(f), strategy),
		}
	}
	return Command{
		Label: "Bake Trim & Pivot",
		Do: func() {
			for _, sn := range snaps {
				d.Overrides.SetTrim(sheetID, sn.frame, sn.next.Trim)
				d.Overrides.SetPivot(sheetID, sn.frame, sn.next.Pivot)
			}
		},
		Undo: func() {
			for _, sn := range snaps {
				d.restoreTrim(sheetID, sn.frame, sn.prev.Trim, sn.had && sn.prev.HasTrim)
				d.restorePivot(sheetID, sn.frame, sn.prev.Pivot, sn.had && sn.prev.HasPivot)
			}
		},
	}
}

// CreateSliceCommand builds a slice creation command and returns the ID
// the slice will have once the command is pushed. The ID is generated
// eagerly so redo after undo restores the same identity.
func (d *Document) CreateSliceCommand(name string, typ SliceType, frame int, rect Rect, color string) (Command, string) {
	id := uuid.NewString()
	cmd := Command{
		Label: "Create Slice",
		Do: func() {
			d.Slices.insert(&Slice{
				ID:    id,
				Name:  name,
				Type:  typ,
				Color: color,
				keys:  map[int]Rect{frame: rect},
			})
		},
		Undo: func() { d.Slices.Delete(id) },
	}
	return cmd, id
}

// DeleteSliceCommand removes a slice; undo restores it with all keys.
func (d *Document) DeleteSliceCommand(id string) Command {
	var saved *Slice
	if s, ok := d.Slices.Get(id); ok {
		cp := *s
		cp.keys = make(map[int]Rect, len(s.keys))
		for f, r := range s.keys {
			cp.keys[f] = r
		}
		saved = &cp
	}
	return Command{
		Label: "Delete Slice",
		Do:    func() { d.Slices.Delete(id) },
		Undo: func() {
			if saved != nil {
				d.Slices.insert(saved)
			}
		},
	}
}

// SetSliceKeyCommand sets the slice's rectangle key at a frame.
func (d *Document) SetSliceKeyCommand(id string, frame int, rect Rect) Command {
	prev, had := d.Slices.Key(id, frame)
	return Command{
		Label: "Set Slice Key",
		Do:    func() { d.Slices.SetKey(id, frame, rect) },
		Undo: func() {
			if had {
				d.Slices.SetKey(id, frame, prev)
			} else {
				d.Slices.RemoveKey(id, frame)
			}
		},
	}
}

// RemoveSliceKeyCommand deletes the slice's key at a frame.
func (d *Document) RemoveSliceKeyCommand(id string, frame int) Command {
	prev, had := d.Slices.Key(id, frame)
	return Command{
		Label: "Remove Slice Key",
		Do:    func() { d.Slices.RemoveKey(id, frame) },
		Undo: func() {
			if had {
				d.Slices.SetKey(id, frame, prev)
			}
		},
	}
}
