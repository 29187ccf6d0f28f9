/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"hintlayer/internal/ambient"
	"hintlayer/internal/config"
	"hintlayer/internal/crash"
	"hintlayer/internal/domain"
	"hintlayer/internal/export"
	"hintlayer/internal/iconpack"
	"hintlayer/internal/journal"
	applog "hintlayer/internal/log"
	"hintlayer/internal/storage"
	"hintlayer/internal/telemetry"
	"hintlayer/internal/ui"
	"hintlayer/internal/version"
)

func usage() {
	fmt.Println("Hint Layer — ambient suggestion placement")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  hintlayer version|-v|--version             Show version")
	fmt.Println("  hintlayer init <dir> <name>                Create a new session at <dir> with scene name <name>")
	fmt.Println("  hintlayer open <dir>                       Open session at <dir> and print summary")
	fmt.Println("  hintlayer place <dir> [reason]             Recompute suggestion placement (skipped for non-actionable reasons)")
	fmt.Println("  hintlayer export <dir> <svg|png|pdf>       Export the scene with placed suggestions")
	fmt.Println("  hintlayer pack export <dir> <zip>          Bundle the session's icon definitions into a zip")
	fmt.Println("  hintlayer pack install <dir> <zip>         Install icon definitions from a zip (existing files kept)")
	fmt.Println("  hintlayer runs <dir>                       List recent placement runs")
	fmt.Println("  hintlayer ui [<dir>]                       Launch desktop preview (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var sh *storage.SessionHandle
	defer func() { crash.Recover(sh) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Hint Layer — ambient suggestion placement")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <name>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			name := args[3]
			abs, _ := filepath.Abs(dir)
			l.Info("init session", slog.String("root", abs), slog.String("scene", name))
			s := storage.Session{Scene: domain.Scene{Name: name, Images: map[string]domain.Rect{}}}
			h, err := storage.InitSession(abs, s)
			if err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			sh = h
			fmt.Println("Created session at", abs)
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("open session", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			sh = h
			fmt.Printf("Opened scene: %s\n", h.Session.Scene.Name)
			fmt.Printf("Images: %d\n", len(h.Session.Scene.Images))
			fmt.Printf("Suggestions: %d\n", len(h.Session.Suggestions))
			fmt.Println("Root:", h.Root)
			return
		case "place":
			if len(args) < 3 {
				fmt.Println("place requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			reason := ""
			if len(args) >= 4 {
				reason = args[3]
			}
			runPlace(l, &sh, abs, reason)
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <dir> and a format (svg, png or pdf)")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			runExport(l, &sh, abs, args[3])
			return
		case "pack":
			if len(args) < 5 {
				fmt.Println("pack requires a verb (export or install), <dir> and <zip>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[3])
			runPack(l, args[2], abs, args[4])
			return
		case "runs":
			if len(args) < 3 {
				fmt.Println("runs requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			runList(l, abs)
			return
		case "ui":
			var dir string
			if len(args) >= 3 {
				dir = args[2]
			}
			if err := ui.Run(dir); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

func runPlace(l *slog.Logger, sh **storage.SessionHandle, root, reason string) {
	if reason != "" && !ambient.ShouldScheduleIntent(reason) {
		l.Info("placement skipped", slog.String("reason", reason))
		fmt.Printf("Skipped: %q is not an actionable change reason.\n", reason)
		return
	}

	h, err := storage.Open(root)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	*sh = h

	cfg, _, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	_ = os.MkdirAll(filepath.Join(root, storage.IndexDirName), 0o755)
	jw := journal.Open(filepath.Join(root, storage.IndexDirName, "suggestions.ndjson"), 0)
	defer func() { _ = jw.Close() }()
	_ = jw.Append(journal.Record{Kind: "place_start", Scene: h.Session.Scene.Name, Reason: reason})

	sc := h.Session.Scene
	next := ambient.Place(ambient.PlaceOptions{
		Branches:          sc.Branches,
		Images:            sc.Images,
		Viewport:          sc.Viewport,
		TouchedImageIDs:   sc.TouchedImageIDs,
		MaxSuggestions:    &cfg.Placement.MaxSuggestions,
		IconWorldSize:     cfg.Placement.IconWorldSize,
		CollisionPadWorld: cfg.Placement.CollisionPadWorld,
	})
	h.Session.Suggestions = ambient.Merge(h.Session.Suggestions, next, time.Now().UnixMilli())

	if err := storage.Save(h); err != nil {
		l.Error("save failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	_ = jw.Append(journal.Record{Kind: "place_done", Scene: sc.Name, Suggestions: h.Session.Suggestions})

	// Record the run in the local history index; placement already succeeded,
	// so index trouble only warns.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if db, err := storage.InitOrOpenHistory(root); err != nil {
		l.Warn("history index unavailable", slog.Any("err", err))
	} else {
		if _, err := storage.RecordRun(ctx, db, sc.Name, h.Session.Suggestions); err != nil {
			l.Warn("record run failed", slog.Any("err", err))
		}
		_ = db.Close()
	}

	telemetry.Event("placement_run", map[string]any{"count": len(h.Session.Suggestions)})

	fmt.Printf("Placed %d suggestions for scene %q.\n", len(h.Session.Suggestions), sc.Name)
	for _, s := range h.Session.Suggestions {
		fmt.Printf("  %s  anchor=%s  rect=(%.0f, %.0f, %.0f, %.0f)\n",
			s.ID, s.Anchor.Kind, s.WorldRect.X, s.WorldRect.Y, s.WorldRect.W, s.WorldRect.H)
	}
}

func runExport(l *slog.Logger, sh **storage.SessionHandle, root, format string) {
	h, err := storage.Open(root)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	*sh = h

	pack, err := iconpack.Load(root)
	if err != nil {
		l.Warn("icon pack load failed, using defaults", slog.Any("err", err))
		pack = iconpack.Defaults()
	}
	labels := pack.Labels()

	switch format {
	case "svg":
		err = export.ExportSceneSVG(h, "scene.svg", export.SVGOptions{Labels: labels})
	case "png":
		err = export.ExportScenePNG(h, "scene.png", export.PNGOptions{Labels: labels})
	case "pdf":
		err = export.ExportPlacementPDF(h, "report.pdf", export.PDFOptions{Labels: labels})
	default:
		fmt.Printf("Unknown export format %q (want svg, png or pdf).\n", format)
		os.Exit(2)
	}
	if err != nil {
		l.Error("export failed", slog.String("format", format), slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %s to the session's exports folder.\n", format)
}

func runPack(l *slog.Logger, verb, root, zipPath string) {
	switch verb {
	case "export":
		if err := iconpack.ExportPack(root, zipPath); err != nil {
			l.Error("pack export failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Printf("Exported icon pack to %s.\n", zipPath)
	case "install":
		n, err := iconpack.InstallPack(root, zipPath)
		if err != nil {
			l.Error("pack install failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Printf("Installed %d icon file(s) from %s.\n", n, zipPath)
	default:
		fmt.Printf("Unknown pack verb %q (want export or install).\n", verb)
		usage()
		os.Exit(2)
	}
}

func runList(l *slog.Logger, root string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.InitOrOpenHistory(root)
	if err != nil {
		l.Error("history index unavailable", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	runs, err := storage.ListRuns(ctx, db, 20)
	if err != nil {
		l.Error("list runs failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("No placement runs recorded yet.")
		return
	}
	for _, r := range runs {
		fmt.Printf("#%d  %s  %d suggestions  %s\n", r.ID, r.Scene, r.Suggestions, r.CreatedAt)
	}
}
