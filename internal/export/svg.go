/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"hintlayer/internal/domain"
	"hintlayer/internal/storage"
)

// SVGOptions controls SVG export behavior.
// The coordinate system matches the model (world units). A viewBox is
// provided so viewers scale the drawing.
//
//nolint:revive // clarity is preferred
type SVGOptions struct {
	IncludeGuides    bool
	GuideColor       domain.Color
	ImageStroke      domain.Stroke
	SuggestionStroke domain.Stroke
	SuggestionFill   domain.Color
	Labels           map[string]string // asset key -> display label
}

// ExportSceneSVG writes the session's scene and placed suggestions as a
// single SVG file at outPath. A relative outPath resolves under the session's
// exports folder.
func ExportSceneSVG(sh *storage.SessionHandle, outPath string, opt SVGOptions) error {
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
		sugStroke = domain.Stroke{Color: domain.Color{R: 30, G: 80, B: 200, A: 255}, Width: 1.5}
	}
	sugFill := opt.SuggestionFill
	if sugFill == (domain.Color{}) {
		sugFill = domain.Color{R: 220, G: 232, B: 255, A: 255}
	}

	minX, minY, w, h := sceneBounds(sc)

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" viewBox=\"%g %g %g %g\">\n", minX, minY, w, h)
	// Background white
	wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", minX, minY, w, h)

	if opt.IncludeGuides {
		gc := svgColor(guideCol)
		wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"0.5\"/>\n", minX, minY, w, h, gc)
	}

	ic := svgColor(imageStroke.Color)
	for _, id := range sortedImageIDs(sc.Images) {
		r := sc.Images[id]
		wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\"/>\n", r.X, r.Y, r.W, r.H, ic, imageStroke.Width)
		wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"12\" fill=\"#888\">%s</text>\n", r.X+4, r.Y+14, escText(id))
	}

	sc2 := svgColor(sugStroke.Color)
	sf := svgColor(sugFill)
	for _, s := range sh.Session.Suggestions {
		r := s.WorldRect
		wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%g\"/>\n", r.X, r.Y, r.W, r.H, sf, sc2, sugStroke.Width)
		label := opt.Labels[s.AssetKey]
		if label == "" {
			label = s.AssetKey
		}
		wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"11\" fill=\"#000\">%s</text>\n", r.X+4, r.Y+r.H/2+4, escText(label))
	}

	wf("</svg>\n")

	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}

	outPath = resolveOutPath(sh.Root, outPath)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// sceneBounds derives the drawing area from the scene viewport, falling back
// to a sane default for degenerate viewports.
func sceneBounds(sc domain.Scene) (minX, minY, w, h float64) {
	minX = sc.Viewport.MinX
	minY = sc.Viewport.MinY
	w = sc.Viewport.MaxX - sc.Viewport.MinX
	h = sc.Viewport.MaxY - sc.Viewport.MinY
	if w <= 0 || h <= 0 {
		minX, minY, w, h = 0, 0, 2048, 2048
	}
	return minX, minY, w, h
}

func sortedImageIDs(images map[string]domain.Rect) []string {
	ids := make([]string, 0, len(images))
	for id := range images {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func resolveOutPath(root, outPath string) string {
	if filepath.IsAbs(outPath) {
		return outPath
	}
	return filepath.Join(root, "exports", outPath)
}

func svgColor(c domain.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
