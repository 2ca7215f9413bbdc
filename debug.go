package loom

import (
	"fmt"
	"os"
)

// globalDebug gates stderr diagnostics: entries dropped during
// deserialization, cache activity, ignored commands. Set via SetDebugMode.
var globalDebug bool

// SetDebugMode enables or disables debug logging to stderr.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

func debugf(format string, args ...any) {
	if globalDebug {
		_, _ = fmt.Fprintf(os.Stderr, "[loom] "+format+"\n", args...)
	}
}

// LogStats prints cache, override, slice and history occupancy to stderr
// when debug mode is on. Useful before deciding on a cleanup pass.
func (d *Document) LogStats() {
	if !globalDebug {
		return
	}
	cs := d.Cache.Stats()
	ov := d.Overrides.GlobalStats()
	debugf("cache: %d sheets | %d cached frames | %d pixel bytes",
		cs.Sheets, cs.CachedFrames, cs.PixelBytes)
	debugf("overrides: %d entries (%d pivot, %d trim, %d both) | ~%d bytes",
		ov.Entries, ov.Pivots, ov.Trims, ov.Both, ov.ApproxBytes)
	debugf("slices: %d | history: %d undo, %d redo",
		d.Slices.Len(), d.History.HistoryLen(), d.History.RedoLen())
}
