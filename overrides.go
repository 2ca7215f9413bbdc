package loom

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// overridesVersion is the schema version written by OverrideStore.ToJSON.
// Bumping it deliberately discards previously saved overrides on load
// (see FromJSON), so it should change rarely.
const overridesVersion = 2

// ErrVersionMismatch is returned by FromJSON when stored data carries a
// schema version other than the current one. The load is skipped
// entirely — no partial migration is attempted, because a pivot applied
// to a different frame layout is worse than re-editing.
var ErrVersionMismatch = errors.New("loom: override data schema version mismatch")

// OverrideEntry holds one frame's manual values. Either field may be
// absent; an entry with neither field is never stored.
type OverrideEntry struct {
	Pivot    Point
	HasPivot bool
	Trim     Rect
	HasTrim  bool
}

func (e OverrideEntry) empty() bool {
	return !e.HasPivot && !e.HasTrim
}

// OverrideStore keeps sparse per-frame manual pivot and trim values,
// keyed by sheet ID and frame index. Overrides take precedence over
// cached auto analysis (per field) and are never touched by cache
// invalidation; stale entries are removed only by the explicit prune
// calls.
type OverrideStore struct {
	sheets map[string]map[int]OverrideEntry
}

// NewOverrideStore creates an empty store.
func NewOverrideStore() *OverrideStore {
	return &OverrideStore{sheets: make(map[string]map[int]OverrideEntry)}
}

// Entry returns the frame's override entry, if any.
func (s *OverrideStore) Entry(sheetID string, frame int) (OverrideEntry, bool) {
	e, ok := s.sheets[sheetID][frame]
	return e, ok
}

// Pivot returns the frame's manual pivot, if set.
func (s *OverrideStore) Pivot(sheetID string, frame int) (Point, bool) {
	e := s.sheets[sheetID][frame]
	return e.Pivot, e.HasPivot
}

// Trim returns the frame's manual trim box, if set.
func (s *OverrideStore) Trim(sheetID string, frame int) (Rect, bool) {
	e := s.sheets[sheetID][frame]
	return e.Trim, e.HasTrim
}

// SetPivot sets the frame's manual pivot, leaving any trim override as is.
func (s *OverrideStore) SetPivot(sheetID string, frame int, p Point) {
	e := s.sheets[sheetID][frame]
	e.Pivot = p
	e.HasPivot = true
	s.put(sheetID, frame, e)
}

// SetTrim sets the frame's manual trim box, leaving any pivot override as is.
func (s *OverrideStore) SetTrim(sheetID string, frame int, r Rect) {
	e := s.sheets[sheetID][frame]
	e.Trim = r
	e.HasTrim = true
	s.put(sheetID, frame, e)
}

// ClearPivot removes only the pivot field. If the entry then has neither
// field, the whole entry is deleted so the store stays sparse.
func (s *OverrideStore) ClearPivot(sheetID string, frame int) {
	e, ok := s.sheets[sheetID][frame]
	if !ok {
		return
	}
	e.HasPivot = false
	e.Pivot = Point{}
	s.put(sheetID, frame, e)
}

// ClearTrim removes only the trim field, deleting the entry when it
// becomes empty.
func (s *OverrideStore) ClearTrim(sheetID string, frame int) {
	e, ok := s.sheets[sheetID][frame]
	if !ok {
		return
	}
	e.HasTrim = false
	e.Trim = Rect{}
	s.put(sheetID, frame, e)
}

// put stores a non-empty entry and deletes an empty one, pruning the
// per-sheet map when it empties.
func (s *OverrideStore) put(sheetID string, frame int, e OverrideEntry) {
	if e.empty() {
		delete(s.sheets[sheetID], frame)
		if len(s.sheets[sheetID]) == 0 {
			delete(s.sheets, sheetID)
		}
		return
	}
	m, ok := s.sheets[sheetID]
	if !ok {
		m = make(map[int]OverrideEntry)
		s.sheets[sheetID] = m
	}
	m[frame] = e
}

// Prune deletes every entry of the sheet for which keep returns false and
// returns the number of entries removed. Typical use after a grid change
// reduces the frame count:
//
//	n := overrides.Prune(id, func(frame int, _ loom.OverrideEntry) bool {
//		return frame < newFrameCount
//	})
func (s *OverrideStore) Prune(sheetID string, keep func(frame int, e OverrideEntry) bool) int {
	m := s.sheets[sheetID]
	removed := 0
	for frame, e := range m {
		if !keep(frame, e) {
			delete(m, frame)
			removed++
		}
	}
	if len(m) == 0 {
		delete(s.sheets, sheetID)
	}
	return removed
}

// PruneOptions selects which stale overrides PruneStale removes.
// Zero-valued options disable the corresponding check.
type PruneOptions struct {
	// MaxFrames drops whole entries at frame index >= MaxFrames when > 0.
	MaxFrames int
	// DropInvalidTrims drops trim fields with non-positive width/height
	// or negative coordinates.
	DropInvalidTrims bool
	// SheetBounds, when non-empty, drops trim fields not fully contained
	// within it.
	SheetBounds Rect
}

// PruneStale removes overrides invalidated by geometry changes: entries
// beyond a frame count, geometrically invalid trims, and trims outside
// the sheet. Entries emptied by a dropped trim are deleted. Returns the
// number of fields and entries removed, for UI feedback. Never runs
// automatically — stale overrides are harmless until the user asks for a
// cleanup pass.
func (s *OverrideStore) PruneStale(sheetID string, opts PruneOptions) int {
	m := s.sheets[sheetID]
	removed := 0
	for frame, e := range m {
		if opts.MaxFrames > 0 && frame >= opts.MaxFrames {
			delete(m, frame)
			removed++
			continue
		}
		dropTrim := false
		if e.HasTrim {
			if opts.DropInvalidTrims && (e.Trim.Empty() || e.Trim.X < 0 || e.Trim.Y < 0) {
				dropTrim = true
			}
			if !opts.SheetBounds.Empty() && !e.Trim.In(opts.SheetBounds) {
				dropTrim = true
			}
		}
		if dropTrim {
			e.HasTrim = false
			e.Trim = Rect{}
			removed++
			s.put(sheetID, frame, e)
		}
	}
	if len(m) == 0 {
		delete(s.sheets, sheetID)
	}
	return removed
}

// OverrideStats counts a sheet's overrides and estimates their size,
// used to decide when a cleanup pass is worthwhile.
type OverrideStats struct {
	Entries int
	Pivots  int
	Trims   int
	Both    int // entries with both fields set
	// ApproxBytes is a rough in-memory estimate (map overhead included).
	ApproxBytes int
}

// approxEntryBytes is the rough per-entry cost used by stats: the entry
// value plus map bucket overhead.
const approxEntryBytes = 96

// Stats returns override counts for one sheet.
func (s *OverrideStore) Stats(sheetID string) OverrideStats {
	return statsOf(s.sheets[sheetID])
}

// GlobalStats returns override counts across all sheets.
func (s *OverrideStore) GlobalStats() OverrideStats {
	var total OverrideStats
	for _, m := range s.sheets {
		st := statsOf(m)
		total.Entries += st.Entries
		total.Pivots += st.Pivots
		total.Trims += st.Trims
		total.Both += st.Both
		total.ApproxBytes += st.ApproxBytes
	}
	return total
}

func statsOf(m map[int]OverrideEntry) OverrideStats {
	var st OverrideStats
	st.Entries = len(m)
	st.ApproxBytes = len(m) * approxEntryBytes
	for _, e := range m {
		if e.HasPivot {
			st.Pivots++
		}
		if e.HasTrim {
			st.Trims++
		}
		if e.HasPivot && e.HasTrim {
			st.Both++
		}
	}
	return st
}

// --- Serialization ---

type pointJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type rectJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type overrideEntryJSON struct {
	Pivot *pointJSON `json:"pivot,omitempty"`
	Trim  *rectJSON  `json:"trim,omitempty"`
}

type overridesJSON struct {
	Version int                                   `json:"__version"`
	Sheets  map[string]map[string]json.RawMessage `json:"sheets"`
}

// ToJSON serializes the store with the current schema version:
//
//	{"__version":2,"sheets":{sheetID:{frameIndex:{"pivot":…,"trim":…}}}}
func (s *OverrideStore) ToJSON() ([]byte, error) {
	out := overridesJSON{
		Version: overridesVersion,
		Sheets:  make(map[string]map[string]json.RawMessage, len(s.sheets)),
	}
	for sheetID, m := range s.sheets {
		frames := make(map[string]json.RawMessage, len(m))
		for frame, e := range m {
			var je overrideEntryJSON
			if e.HasPivot {
				je.Pivot = &pointJSON{X: e.Pivot.X, Y: e.Pivot.Y}
			}
			if e.HasTrim {
				je.Trim = &rectJSON{X: e.Trim.X, Y: e.Trim.Y, W: e.Trim.W, H: e.Trim.H}
			}
			raw, err := json.Marshal(je)
			if err != nil {
				return nil, fmt.Errorf("loom: failed to marshal override entry: %w", err)
			}
			frames[strconv.Itoa(frame)] = raw
		}
		out.Sheets[sheetID] = frames
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("loom: failed to marshal overrides: %w", err)
	}
	return data, nil
}

// FromJSON replaces the store's contents with the serialized data.
//
// A stored version differing from the current one skips the entire load
// and returns ErrVersionMismatch — fail-safe over partial interpretation.
// Data with no version field at all is legacy and accepted once; the
// next ToJSON rewrites it versioned. Individual malformed entries
// (non-numeric frame keys, wrong shapes) are dropped silently so one bad
// record does not block the rest.
func (s *OverrideStore) FromJSON(data []byte) error {
	clear(s.sheets)

	// Probe the version separately so its absence is distinguishable
	// from zero.
	var probe struct {
		Version *int `json:"__version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("loom: failed to parse overrides: %w", err)
	}
	if probe.Version != nil && *probe.Version != overridesVersion {
		debugf("overrides: skipping load, stored version %d != %d", *probe.Version, overridesVersion)
		return ErrVersionMismatch
	}

	var in overridesJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("loom: failed to parse overrides: %w", err)
	}
	for sheetID, frames := range in.Sheets {
		for key, raw := range frames {
			frame, err := strconv.Atoi(key)
			if err != nil {
				debugf("overrides: dropping entry with bad frame key %q", key)
				continue
			}
			var je overrideEntryJSON
			if err := json.Unmarshal(raw, &je); err != nil {
				debugf("overrides: dropping malformed entry %s/%s: %v", sheetID, key, err)
				continue
			}
			var e OverrideEntry
			if je.Pivot != nil {
				e.Pivot = Point{X: je.Pivot.X, Y: je.Pivot.Y}
				e.HasPivot = true
			}
			if je.Trim != nil {
				e.Trim = Rect{X: je.Trim.X, Y: je.Trim.Y, W: je.Trim.W, H: je.Trim.H}
				e.HasTrim = true
			}
			if e.empty() {
				continue
			}
			s.put(sheetID, frame, e)
		}
	}
	return nil
}
