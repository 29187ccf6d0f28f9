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
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"hintlayer/internal/domain"
	"hintlayer/internal/storage"
)

// PDFOptions controls the placement report export.
// Units are points (pt). Vector text uses built-in Helvetica for portability.
//
// Layout:
// - A letter page with a scaled-down drawing of the scene on top.
// - Below it, one line per suggestion with its identity and placement.
//
//nolint:revive // keep options grouped and explicit for clarity
type PDFOptions struct {
	ImageStroke      domain.Stroke
	SuggestionStroke domain.Stroke
	SuggestionFill   domain.Color
	Labels           map[string]string // asset key -> display label
}

// ExportPlacementPDF writes a one-page placement report for the session at
// outPath. A relative outPath resolves under the session's exports folder.
func ExportPlacementPDF(sh *storage.SessionHandle, outPath string, opt PDFOptions) error {
	if sh == nil {
		return fmt.Errorf("session handle is nil")
	}
	sc := sh.Session.Scene

	imageStroke := opt.ImageStroke
	if imageStroke.Width == 0 {
		imageStroke = domain.Stroke{Color: domain.Color{R: 0, G: 0, B: 0, A: 255}, Width: 0.6}
	}
	sugStroke := opt.SuggestionStroke
	if sugStroke.Width == 0 {
		sugStroke = domain.Stroke{Color: domain.Color{R: 30, G: 80, B: 200, A: 255}, Width: 0.6}
	}
	sugFill := opt.SuggestionFill
	if sugFill == (domain.Color{}) {
		sugFill = domain.Color{R: 220, G: 232, B: 255, A: 255}
	}

	const (
		pageW   = 612.0 // US letter in pt
		pageH   = 792.0
		marginX = 36.0
		drawTop = 64.0
		drawH   = 420.0
	)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageW, Ht: pageH},
		OrientationStr: "",
	})
	title := sc.Name
	if title == "" {
		title = "scene"
	}
	pdf.SetTitle(fmt.Sprintf("%s — Placement Report", title), false)
	pdf.SetAuthor("Hint Layer", false)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(marginX, 40, fmt.Sprintf("Placement Report: %s", title))

	// Scale the scene drawing into the upper drawing area.
	minX, minY, w, h := sceneBounds(sc)
	drawW := pageW - 2*marginX
	scale := drawW / w
	if s := drawH / h; s < scale {
		scale = s
	}
	tx := func(wx float64) float64 { return marginX + (wx-minX)*scale }
	ty := func(wy float64) float64 { return drawTop + (wy-minY)*scale }

	// Viewport frame
	pdf.SetDrawColor(180, 180, 180)
	pdf.SetLineWidth(0.4)
	pdf.Rect(marginX, drawTop, w*scale, h*scale, "D")

	setDrawColor(pdf, imageStroke.Color)
	pdf.SetLineWidth(imageStroke.Width)
	pdf.SetFont("Helvetica", "", 7)
	for _, id := range sortedImageIDs(sc.Images) {
		r := sc.Images[id]
		pdf.Rect(tx(r.X), ty(r.Y), r.W*scale, r.H*scale, "D")
		pdf.Text(tx(r.X)+2, ty(r.Y)+8, id)
	}

	setFillColor(pdf, sugFill)
	setDrawColor(pdf, sugStroke.Color)
	pdf.SetLineWidth(sugStroke.Width)
	for _, s := range sh.Session.Suggestions {
		r := s.WorldRect
		pdf.Rect(tx(r.X), ty(r.Y), r.W*scale, r.H*scale, "FD")
		label := opt.Labels[s.AssetKey]
		if label == "" {
			label = s.AssetKey
		}
		pdf.Text(tx(r.X)+2, ty(r.Y+r.H/2)+2, label)
	}

	// Suggestion listing below the drawing.
	y := drawTop + drawH + 28
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(marginX, y, "Suggestions")
	y += 16
	pdf.SetFont("Helvetica", "", 9)
	if len(sh.Session.Suggestions) == 0 {
		pdf.Text(marginX, y, "(none)")
	}
	for _, s := range sh.Session.Suggestions {
		conf := "-"
		if s.Confidence != nil {
			conf = fmt.Sprintf("%.2f", *s.Confidence)
		}
		line := fmt.Sprintf("%s  anchor=%s  conf=%s  rect=(%.0f, %.0f, %.0f, %.0f)",
			s.ID, s.Anchor.Kind, conf, s.WorldRect.X, s.WorldRect.Y, s.WorldRect.W, s.WorldRect.H)
		pdf.Text(marginX, y, line)
		y += 13
		if y > pageH-marginX {
			break
		}
	}

	outPath = resolveOutPath(sh.Root, outPath)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c domain.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c domain.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
