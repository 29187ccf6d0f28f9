//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"image/color"
	"log/slog"
	"sort"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"hintlayer/internal/ambient"
	"hintlayer/internal/config"
	"hintlayer/internal/crash"
	"hintlayer/internal/domain"
	"hintlayer/internal/export"
	"hintlayer/internal/history"
	"hintlayer/internal/iconpack"
	applog "hintlayer/internal/log"
	"hintlayer/internal/menu"
	"hintlayer/internal/storage"
)

// Run starts the Fyne-based preview: the scene's image rectangles with the
// currently placed suggestion icons drawn over them.
func Run(sessionDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting preview")

	var sh *storage.SessionHandle
	defer func() { crash.Recover(sh) }()

	if sessionDir == "" {
		return fmt.Errorf("session directory is required")
	}
	var err error
	sh, err = storage.Open(sessionDir)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	cfg, _, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	pack, err := iconpack.Load(sh.Root)
	if err != nil {
		l.Warn("icon pack load failed, using defaults", slog.Any("err", err))
		pack = iconpack.Defaults()
	}

	hist := history.NewManager(history.Config{
		MaxBytes:    8 * 1024 * 1024,
		MaxPerScene: 20,
		MinInterval: 300 * time.Millisecond,
	})
	hist.Push(sh.Session.Scene.Name, sh.Session.Suggestions, time.Now())

	fyneApp := app.NewWithID("hintlayer")
	w := fyneApp.NewWindow("Hint Layer")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1024)
	winH := prefs.IntWithFallback("window.height", 768)
	if winW < 640 {
		winW = 640
	}
	if winH < 480 {
		winH = 480
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	scene := container.NewWithoutLayout()

	redraw := func() {
		scene.Objects = nil
		sc := sh.Session.Scene
		vw := sc.Viewport.MaxX - sc.Viewport.MinX
		vh := sc.Viewport.MaxY - sc.Viewport.MinY
		if vw <= 0 || vh <= 0 {
			vw, vh = 2048, 2048
		}
		scale := float32(float64(winW-80) / vw)
		if s := float32(float64(winH-160) / vh); s < scale {
			scale = s
		}
		px := func(wx float64) float32 { return float32(wx-sc.Viewport.MinX) * scale }
		py := func(wy float64) float32 { return float32(wy-sc.Viewport.MinY) * scale }

		frame := canvas.NewRectangle(color.Transparent)
		frame.StrokeColor = color.NRGBA{R: 180, G: 180, B: 180, A: 255}
		frame.StrokeWidth = 1
		frame.Resize(fyne.NewSize(float32(vw)*scale, float32(vh)*scale))
		frame.Move(fyne.NewPos(0, 0))
		scene.Add(frame)

		ids := make([]string, 0, len(sc.Images))
		for id := range sc.Images {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			r := sc.Images[id]
			rect := canvas.NewRectangle(color.Transparent)
			rect.StrokeColor = color.NRGBA{A: 255}
			rect.StrokeWidth = 1
			rect.Resize(fyne.NewSize(float32(r.W)*scale, float32(r.H)*scale))
			rect.Move(fyne.NewPos(px(r.X), py(r.Y)))
			scene.Add(rect)

			label := canvas.NewText(id, color.NRGBA{R: 136, G: 136, B: 136, A: 255})
			label.TextSize = 10
			label.Move(fyne.NewPos(px(r.X)+3, py(r.Y)+2))
			scene.Add(label)
		}

		for _, s := range sh.Session.Suggestions {
			ic := pack.Icons[s.AssetKey]
			c := color.NRGBA{R: ic.Color.R, G: ic.Color.G, B: ic.Color.B, A: 80}
			if ic.Color == (domain.Color{}) {
				c = color.NRGBA{R: 30, G: 80, B: 200, A: 80}
			}
			r := s.WorldRect
			rect := canvas.NewRectangle(c)
			rect.StrokeColor = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
			rect.StrokeWidth = 1.5
			rect.Resize(fyne.NewSize(float32(r.W)*scale, float32(r.H)*scale))
			rect.Move(fyne.NewPos(px(r.X), py(r.Y)))
			scene.Add(rect)

			label := canvas.NewText(pack.Label(s.AssetKey), color.NRGBA{A: 255})
			label.TextSize = 11
			label.Move(fyne.NewPos(px(r.X)+3, py(r.Y+r.H/2)-6))
			scene.Add(label)
		}
		scene.Refresh()
		status.SetText(fmt.Sprintf("%s — %d suggestions", sc.Name, len(sh.Session.Suggestions)))
	}

	recompute := func() {
		sc := sh.Session.Scene
		next := ambient.Place(ambient.PlaceOptions{
			Branches:        sc.Branches,
			Images:          sc.Images,
			Viewport:        sc.Viewport,
			TouchedImageIDs: sc.TouchedImageIDs,
			MaxSuggestions:  &cfg.Placement.MaxSuggestions,
			IconWorldSize:   cfg.Placement.IconWorldSize,
		})
		sh.Session.Suggestions = ambient.Merge(sh.Session.Suggestions, next, time.Now().UnixMilli())
		hist.Push(sc.Name, sh.Session.Suggestions, time.Now())
		if err := storage.Save(sh); err != nil {
			l.Error("save failed", slog.Any("err", err))
			status.SetText("Save failed: " + err.Error())
			return
		}
		redraw()
	}

	undoBtn := widget.NewButton("Undo", func() {
		if s, ok := hist.Undo(sh.Session.Scene.Name); ok {
			sh.Session.Suggestions = s.Suggestions
			redraw()
		}
	})
	redoBtn := widget.NewButton("Redo", func() {
		if s, ok := hist.Redo(sh.Session.Scene.Name); ok {
			sh.Session.Suggestions = s.Suggestions
			redraw()
		}
	})
	exportBtn := widget.NewButton("Export SVG", func() {
		if err := export.ExportSceneSVG(sh, "scene.svg", export.SVGOptions{Labels: pack.Labels()}); err != nil {
			status.SetText("Export failed: " + err.Error())
			return
		}
		status.SetText("Exported to exports/scene.svg")
	})
	recomputeBtn := widget.NewButton("Recompute", recompute)

	// Quick-action palette driven by the selection-state grid. The preview
	// has no selection model, so actions only report to the status bar.
	palette := container.NewHBox()
	grid := menu.GridFor(menu.SelectionSingle)
	for _, row := range grid {
		for _, a := range row {
			if a.Key == "" {
				continue
			}
			act := a
			palette.Add(widget.NewButton(act.Label, func() {
				status.SetText(fmt.Sprintf("Action %q is handled by the host editor", act.Key))
			}))
		}
	}

	toolbar := container.NewHBox(recomputeBtn, undoBtn, redoBtn, exportBtn)
	w.SetContent(container.NewBorder(container.NewVBox(toolbar, palette), status, nil, nil, scene))

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})

	redraw()
	w.ShowAndRun()
	return nil
}
