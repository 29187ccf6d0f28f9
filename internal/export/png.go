/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"hintlayer/internal/domain"
	"hintlayer/internal/storage"
)

// PNGOptions controls PNG export behavior.
// - Scale: output pixels per world unit; <= 0 picks a scale that keeps the
//   longer edge at roughly 1024 px.
// - Styles control colors and stroke widths; reasonable defaults are applied
//   for zero values.
//
//nolint:revive // clarity is preferred
type PNGOptions struct {
	IncludeGuides    bool
	Scale            float64
	GuideColor       domain.Color
	ImageStroke      domain.Stroke
	SuggestionStroke domain.Stroke
	SuggestionFill   domain.Color
	Labels           map[string]string // asset key -> display label
}

// ExportScenePNG renders the session's scene and placed suggestions to a
// single PNG at outPath. A relative outPath resolves under the session's
// exports folder.
func ExportScenePNG(sh *storage.SessionHandle, outPath string, opt PNGOptions) error {
	if sh == nil {
		return fmt.Errorf("session handle is nil")
	}
	sc := sh.Session.Scene

	guideCol := opt.GuideColor
	if guideCol == (domain.Color{}) {
		guideCol = domain.Color{R: 255, G: 0, B: 0, A: 255}
	}
	imageStroke := opt.ImageStroke
	if imageStroke.Width == 0 {
		imageStroke = domain.Stroke{Color: domain.Color{R: 0, G: 0, B: 0, A: 255}, Width: 1}
	}
	sugStroke := opt.SuggestionStroke
	if sugStroke.Width == 0 {
		sugStroke = domain.Stroke{Color: domain.Color{R: 30, G: 80, B: 200, A: 255}, Width: 1}
	}
	sugFill := opt.SuggestionFill
	if sugFill == (domain.Color{}) {
		sugFill = domain.Color{R: 220, G: 232, B: 255, A: 255}
	}

	minX, minY, w, h := sceneBounds(sc)
	scale := opt.Scale
	if scale <= 0 {
		longer := math.Max(w, h)
		scale = 1024 / longer
	}
	pixW := int(math.Round(w * scale))
	pixH := int(math.Round(h * scale))
	if pixW < 1 {
		pixW = 1
	}
	if pixH < 1 {
		pixH = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	// Background white
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	px := func(wx float64) int { return int(math.Round((wx - minX) * scale)) }
	py := func(wy float64) int { return int(math.Round((wy - minY) * scale)) }

	if opt.IncludeGuides {
		strokeRect(img, 0, 0, pixW-1, pixH-1, toRGBA(guideCol))
	}

	ic := toRGBA(imageStroke.Color)
	for _, id := range sortedImageIDs(sc.Images) {
		r := sc.Images[id]
		strokeRect(img, px(r.X), py(r.Y), px(r.X+r.W)-1, py(r.Y+r.H)-1, ic)
		drawLabel(img, px(r.X)+4, py(r.Y)+14, id, color.RGBA{136, 136, 136, 255})
	}

	fc := toRGBA(sugFill)
	bc := toRGBA(sugStroke.Color)
	for _, s := range sh.Session.Suggestions {
		r := s.WorldRect
		x0, y0 := px(r.X), py(r.Y)
		x1, y1 := px(r.X+r.W)-1, py(r.Y+r.H)-1
		fillRect(img, x0, y0, x1, y1, fc)
		strokeRect(img, x0, y0, x1, y1, bc)
		label := opt.Labels[s.AssetKey]
		if label == "" {
			label = s.AssetKey
		}
		drawLabel(img, x0+3, (y0+y1)/2+4, label, color.RGBA{0, 0, 0, 255})
	}

	outPath = resolveOutPath(sh.Root, outPath)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func toRGBA(c domain.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// drawLabel renders a small bitmap-font label at the given baseline point.
func drawLabel(img *image.RGBA, x, y int, text string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	// top and bottom
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	// left and right
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
