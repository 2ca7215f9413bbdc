package loom

import "fmt"

// SheetGrid describes the tile grid of a sprite sheet: fixed-size tiles,
// an outer margin, and spacing between tiles. Frame geometry is external
// to the editing core — consumers derive FrameRects here (or in their own
// grid code) and pass them in. Frame indices are row-major.
type SheetGrid struct {
	TileWidth  int
	TileHeight int
	Margin     int // border around the whole sheet
	Spacing    int // gap between adjacent tiles
}

// Cols returns how many whole tiles fit across a sheet of the given width.
func (g SheetGrid) Cols(sheetW int) int {
	if g.TileWidth <= 0 {
		return 0
	}
	return max(0, (sheetW-g.Margin+g.Spacing)/(g.TileWidth+g.Spacing))
}

// Rows returns how many whole tiles fit down a sheet of the given height.
func (g SheetGrid) Rows(sheetH int) int {
	if g.TileHeight <= 0 {
		return 0
	}
	return max(0, (sheetH-g.Margin+g.Spacing)/(g.TileHeight+g.Spacing))
}

// FrameCount returns the total number of frames on the sheet.
func (g SheetGrid) FrameCount(sheetW, sheetH int) int {
	return g.Cols(sheetW) * g.Rows(sheetH)
}

// FrameRect returns the rectangle of the row-major frame index on a
// sheet of the given width. Out-of-range indices return an empty Rect.
func (g SheetGrid) FrameRect(index, sheetW int) Rect {
	cols := g.Cols(sheetW)
	if cols == 0 || index < 0 {
		return Rect{}
	}
	col := index % cols
	row := index / cols
	return Rect{
		X: g.Margin + col*(g.TileWidth+g.Spacing),
		Y: g.Margin + row*(g.TileHeight+g.Spacing),
		W: g.TileWidth,
		H: g.TileHeight,
	}
}

// Validate checks the grid against a sheet size and returns human-
// readable warnings: unusual tile aspect ratios, leftover pixels at the
// sheet's edges, and degenerate or enormous tile counts. An empty result
// means no issues.
func (g SheetGrid) Validate(sheetW, sheetH int) []string {
	var warnings []string

	if g.TileWidth > 0 && g.TileHeight > 0 {
		aspect := float64(g.TileWidth) / float64(g.TileHeight)
		if aspect < 0.2 || aspect > 5.0 {
			warnings = append(warnings, fmt.Sprintf("unusual tile aspect ratio: %.2f", aspect))
		}
	}

	cols, rows := g.Cols(sheetW), g.Rows(sheetH)
	if cols > 0 && rows > 0 {
		usedW := g.Margin*2 + cols*g.TileWidth + (cols-1)*g.Spacing
		usedH := g.Margin*2 + rows*g.TileHeight + (rows-1)*g.Spacing
		if usedW < sheetW {
			warnings = append(warnings, "sheet has extra pixels on the right edge")
		}
		if usedH < sheetH {
			warnings = append(warnings, "sheet has extra pixels on the bottom edge")
		}
	}

	total := cols * rows
	if total < 1 {
		warnings = append(warnings, "grid produces no valid frames")
	} else if total > 1000 {
		warnings = append(warnings, fmt.Sprintf("very large frame count: %d", total))
	}

	return warnings
}
