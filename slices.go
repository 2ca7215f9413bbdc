package loom

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Slice is a named rectangular region (hitbox, hurtbox, attachment
// point) whose rectangle may change across frames via sparse keyframes.
// A slice's rectangle at any frame is resolved by nearest-previous-key
// lookup, never interpolation.
type Slice struct {
	ID    string
	Name  string
	Type  SliceType
	Color string // display color, "#rrggbb"

	keys map[int]Rect
}

// KeyFrames returns the slice's key frame indices in ascending order.
func (s *Slice) KeyFrames() []int {
	frames := make([]int, 0, len(s.keys))
	for f := range s.keys {
		frames = append(frames, f)
	}
	sort.Ints(frames)
	return frames
}

// RectAt resolves the slice's rectangle at a frame: the exact key when
// one exists, else the rect of the greatest key at or before the frame.
// ok is false when the frame precedes every key.
func (s *Slice) RectAt(frame int) (Rect, bool) {
	if r, ok := s.keys[frame]; ok {
		return r, true
	}
	best := frame
	found := false
	var rect Rect
	for f, r := range s.keys {
		if f < frame && (!found || f > best) {
			best = f
			rect = r
			found = true
		}
	}
	return rect, found
}

// SliceStore holds a document's slices, independent of the frame
// override model. Lookups are by slice ID; listing preserves creation
// order for stable UI and serialization.
type SliceStore struct {
	slices map[string]*Slice
	order  []string
}

// NewSliceStore creates an empty store.
func NewSliceStore() *SliceStore {
	return &SliceStore{slices: make(map[string]*Slice)}
}

// Create adds a new slice seeded with one key at the given frame and
// returns its generated ID.
func (st *SliceStore) Create(name string, typ SliceType, frame int, rect Rect, color string) string {
	s := &Slice{
		ID:    uuid.NewString(),
		Name:  name,
		Type:  typ,
		Color: color,
		keys:  map[int]Rect{frame: rect},
	}
	st.insert(s)
	return s.ID
}

// insert registers a fully built slice. Used by Create and by undo of a
// deletion, which must restore the original ID.
func (st *SliceStore) insert(s *Slice) {
	if _, ok := st.slices[s.ID]; ok {
		return
	}
	st.slices[s.ID] = s
	st.order = append(st.order, s.ID)
}

// Get returns the slice with the given ID.
func (st *SliceStore) Get(id string) (*Slice, bool) {
	s, ok := st.slices[id]
	return s, ok
}

// SetKey sets the slice's rectangle key at a frame, replacing any
// existing key there. Reports whether the slice exists.
func (st *SliceStore) SetKey(id string, frame int, rect Rect) bool {
	s, ok := st.slices[id]
	if !ok {
		return false
	}
	s.keys[frame] = rect
	return true
}

// RemoveKey deletes the slice's key at a frame, if present.
func (st *SliceStore) RemoveKey(id string, frame int) bool {
	s, ok := st.slices[id]
	if !ok {
		return false
	}
	if _, ok := s.keys[frame]; !ok {
		return false
	}
	delete(s.keys, frame)
	return true
}

// Key returns the exact key at a frame, without previous-key fallback.
func (st *SliceStore) Key(id string, frame int) (Rect, bool) {
	s, ok := st.slices[id]
	if !ok {
		return Rect{}, false
	}
	r, ok := s.keys[frame]
	return r, ok
}

// RectAt resolves the slice's rectangle at a frame by nearest-previous-
// key lookup. ok is false for an unknown slice or a frame before the
// first key.
func (st *SliceStore) RectAt(id string, frame int) (Rect, bool) {
	s, ok := st.slices[id]
	if !ok {
		return Rect{}, false
	}
	return s.RectAt(frame)
}

// Delete removes the slice entirely.
func (st *SliceStore) Delete(id string) {
	if _, ok := st.slices[id]; !ok {
		return
	}
	delete(st.slices, id)
	for i, sid := range st.order {
		if sid == id {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
}

// Slices returns all slices in creation order. The returned slice MUST
// NOT be mutated.
func (st *SliceStore) Slices() []*Slice {
	out := make([]*Slice, 0, len(st.order))
	for _, id := range st.order {
		out = append(out, st.slices[id])
	}
	return out
}

// Len returns the number of slices.
func (st *SliceStore) Len() int {
	return len(st.slices)
}

// --- Serialization ---

type sliceKeyJSON struct {
	Frame int      `json:"frame"`
	Rect  rectJSON `json:"rect"`
}

type sliceJSON struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Type  string         `json:"type"`
	Color string         `json:"color"`
	Keys  []sliceKeyJSON `json:"keys"`
}

// ToJSON serializes all slices as a JSON array, keys sorted by frame.
func (st *SliceStore) ToJSON() ([]byte, error) {
	out := make([]sliceJSON, 0, len(st.order))
	for _, s := range st.Slices() {
		js := sliceJSON{
			ID:    s.ID,
			Name:  s.Name,
			Type:  s.Type.String(),
			Color: s.Color,
			Keys:  make([]sliceKeyJSON, 0, len(s.keys)),
		}
		for _, f := range s.KeyFrames() {
			r := s.keys[f]
			js.Keys = append(js.Keys, sliceKeyJSON{
				Frame: f,
				Rect:  rectJSON{X: r.X, Y: r.Y, W: r.W, H: r.H},
			})
		}
		out = append(out, js)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("loom: failed to marshal slices: %w", err)
	}
	return data, nil
}

// FromJSON replaces the store's contents with the serialized data.
// Malformed entries — missing IDs, undecodable elements — are skipped so
// one corrupt slice does not block loading the rest. Unknown type names
// load as SliceCustom.
func (st *SliceStore) FromJSON(data []byte) error {
	clear(st.slices)
	st.order = st.order[:0]

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("loom: failed to parse slices: %w", err)
	}
	for i, msg := range raw {
		var js sliceJSON
		if err := json.Unmarshal(msg, &js); err != nil {
			debugf("slices: dropping malformed entry %d: %v", i, err)
			continue
		}
		if js.ID == "" {
			debugf("slices: dropping entry %d with missing id", i)
			continue
		}
		typ, _ := ParseSliceType(js.Type)
		s := &Slice{
			ID:    js.ID,
			Name:  js.Name,
			Type:  typ,
			Color: js.Color,
			keys:  make(map[int]Rect, len(js.Keys)),
		}
		for _, k := range js.Keys {
			s.keys[k.Frame] = Rect{X: k.Rect.X, Y: k.Rect.Y, W: k.Rect.W, H: k.Rect.H}
		}
		st.insert(s)
	}
	return nil
}
