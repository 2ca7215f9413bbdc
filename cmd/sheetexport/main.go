// sheetexport analyzes a grid sprite sheet and writes one trimmed
// lossless WebP per frame, plus a summary of the area saved by
// trimming. Input may be PNG, TGA, BMP, or WebP.
//
// Usage:
//
//	sheetexport -sheet hero.png -tile-width 32 -tile-height 32 -output frames/
package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/phanxgames/loom"

	_ "image/png"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

func main() {
	sheetPath := flag.String("sheet", "", "Path to the sprite sheet image")
	tileW := flag.Int("tile-width", 32, "Tile width in pixels")
	tileH := flag.Int("tile-height", 32, "Tile height in pixels")
	margin := flag.Int("margin", 0, "Border around the whole sheet in pixels")
	spacing := flag.Int("spacing", 0, "Gap between adjacent tiles in pixels")
	threshold := flag.Int("threshold", int(loom.DefaultAlphaThreshold), "Minimum alpha (1-255) for a pixel to count as content")
	pivot := flag.String("pivot", "bottom-center", "Pivot strategy: bottom-center, center, top-left, top-right")
	outputDir := flag.String("output", "frames", "Output directory for trimmed frames")
	skipEmpty := flag.Bool("skip-empty", true, "Skip fully transparent frames")
	flag.Parse()

	if *sheetPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -sheet is required.")
		flag.Usage()
		os.Exit(1)
	}
	if *threshold < 1 || *threshold > 255 {
		fmt.Fprintf(os.Stderr, "Error: -threshold %d out of range 1-255.\n", *threshold)
		os.Exit(1)
	}
	strategy, ok := loom.ParsePivotStrategy(*pivot)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown pivot strategy %q.\n", *pivot)
		os.Exit(1)
	}

	src, err := decodeSheet(*sheetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sheetW, sheetH := src.Bounds().Dx(), src.Bounds().Dy()

	grid := loom.SheetGrid{
		TileWidth:  *tileW,
		TileHeight: *tileH,
		Margin:     *margin,
		Spacing:    *spacing,
	}
	for _, w := range grid.Validate(sheetW, sheetH) {
		fmt.Fprintf(os.Stderr, "WARN %s\n", w)
	}
	total := grid.FrameCount(sheetW, sheetH)
	if total == 0 {
		fmt.Fprintln(os.Stderr, "Error: grid produces no frames on this sheet.")
		os.Exit(1)
	}

	doc := loom.NewDocument()
	sheetID := loom.NewSheetID()
	doc.Cache.EnsurePixels(sheetID, src)
	doc.Cache.SetAlphaThreshold(uint8(*threshold))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: create %s: %v\n", *outputDir, err)
		os.Exit(1)
	}

	base := strings.TrimSuffix(filepath.Base(*sheetPath), filepath.Ext(*sheetPath))
	frames := make([]loom.Rect, total)
	analyses := make([]loom.FrameAnalysis, total)
	written, errors := 0, 0

	for i := 0; i < total; i++ {
		fr := grid.FrameRect(i, sheetW)
		frames[i] = fr
		analyses[i], _ = doc.Cache.GetOrCompute(sheetID, i, fr, strategy)

		res := doc.Resolve(sheetID, i, fr, strategy)
		if !analyses[i].HasTrim && *skipEmpty {
			continue
		}

		name := filepath.Join(*outputDir, fmt.Sprintf("%s_%03d.webp", base, i))
		if err := writeFrame(name, src, res.Trim); err != nil {
			fmt.Fprintf(os.Stderr, "ERR frame %d: %v\n", i, err)
			errors++
			continue
		}
		fmt.Printf("OK  frame %3d  trim %dx%d at (%d,%d)  pivot (%d,%d)  -> %s\n",
			i, res.Trim.W, res.Trim.H, res.Trim.X, res.Trim.Y, res.Pivot.X, res.Pivot.Y, name)
		written++
	}

	s := loom.ComputeSavings(frames, analyses)
	fmt.Printf("\n%d frames (%d content, %d empty), %d written\n",
		s.Frames, s.ContentFrames, s.EmptyFrames, written)
	fmt.Printf("trim savings: %d of %d px (%.1f%%)\n",
		s.SavedPixels, s.OriginalPixels, s.SavedPercent)

	if errors > 0 {
		fmt.Printf("Done with %d error(s).\n", errors)
		os.Exit(1)
	}
}

// decodeSheet loads the sheet as tightly packed RGBA at origin zero.
func decodeSheet(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	fmt.Printf("sheet: %s (%s, %dx%d)\n", path, format, img.Bounds().Dx(), img.Bounds().Dy())

	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// writeFrame crops the trim box out of the sheet and encodes it as a
// lossless WebP.
func writeFrame(name string, sheet *image.RGBA, trim loom.Rect) error {
	crop := image.NewRGBA(image.Rect(0, 0, trim.W, trim.H))
	draw.Draw(crop, crop.Bounds(), sheet, image.Pt(trim.X, trim.Y), draw.Src)

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return nativewebp.Encode(f, crop, nil)
}
