/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package iconpack maps asset keys to display labels and colors. Definitions
// come from built-in defaults plus YAML files under the session's icons
// directory; packs can be exchanged as zip archives.
package iconpack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hintlayer/internal/domain"
	applog "hintlayer/internal/log"
)

// IconsDirName is the per-session directory holding icon definition files.
const IconsDirName = "icons"

// Icon describes how one asset key renders in exports and the preview.
type Icon struct {
	Label string       `yaml:"label"`
	Color domain.Color `yaml:"color"`
}

// Pack is a resolved set of icon definitions keyed by asset key.
type Pack struct {
	Icons map[string]Icon
}

// Defaults returns the built-in icon set for the stock asset keys.
func Defaults() Pack {
	return Pack{Icons: map[string]Icon{
		"crop":     {Label: "Crop", Color: domain.Color{R: 30, G: 80, B: 200, A: 255}},
		"rotate":   {Label: "Rotate", Color: domain.Color{R: 200, G: 120, B: 30, A: 255}},
		"filter":   {Label: "Filter", Color: domain.Color{R: 120, G: 30, B: 200, A: 255}},
		"align":    {Label: "Align", Color: domain.Color{R: 30, G: 160, B: 90, A: 255}},
		"annotate": {Label: "Annotate", Color: domain.Color{R: 200, G: 40, B: 60, A: 255}},
	}}
}

// Load merges built-in defaults with any *.yaml files found in the session's
// icons directory. Later files override earlier ones by asset key; a missing
// directory yields just the defaults.
func Load(sessionRoot string) (Pack, error) {
	p := Defaults()
	dir := filepath.Join(sessionRoot, IconsDirName)
	ents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, fmt.Errorf("read icons dir: %w", err)
	}
	var names []string
	for _, e := range ents {
		n := e.Name()
		if e.IsDir() || (!strings.HasSuffix(n, ".yaml") && !strings.HasSuffix(n, ".yml")) {
			continue
		}
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		b, err := os.ReadFile(filepath.Join(dir, n))
		if err != nil {
			return p, fmt.Errorf("read icon file %s: %w", n, err)
		}
		var defs map[string]Icon
		if err := yaml.Unmarshal(b, &defs); err != nil {
			return p, fmt.Errorf("parse icon file %s: %w", n, err)
		}
		for k, v := range defs {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			p.Icons[k] = v
		}
	}
	return p, nil
}

// Labels flattens the pack into the asset-key → label map the exporters take.
func (p Pack) Labels() map[string]string {
	out := make(map[string]string, len(p.Icons))
	for k, v := range p.Icons {
		if v.Label != "" {
			out[k] = v.Label
		}
	}
	return out
}

// Label returns the display label for an asset key, falling back to the key
// itself.
func (p Pack) Label(assetKey string) string {
	if ic, ok := p.Icons[assetKey]; ok && ic.Label != "" {
		return ic.Label
	}
	return assetKey
}

// ExportPack zips the session's icons directory into a single .zip file. The
// produced archive preserves the directory structure and adds a small
// manifest file at the root named iconpack.manifest.txt for quick human
// inspection. If the icons directory does not exist or is empty, it still
// creates the archive with only the manifest.
func ExportPack(sessionRoot string, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("iconpack"), "export").With(slog.String("session", sessionRoot))
	if strings.TrimSpace(sessionRoot) == "" {
		return errors.New("sessionRoot is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	iconsDir := filepath.Join(sessionRoot, IconsDirName)
	if _, err := os.Stat(iconsDir); os.IsNotExist(err) {
		// Create empty dir semantics
		if err := os.MkdirAll(iconsDir, 0o755); err != nil {
			return fmt.Errorf("ensure icons dir: %w", err)
		}
	}

	// Ensure target directory exists
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	// Add manifest text
	manifest := fmt.Sprintf("Hint Layer Icon Pack\nCreated: %s\nSession: %s\n\nContents mirror the session's /icons directory.\n",
		time.Now().Format(time.RFC3339), sessionRoot)
	w, err := zw.Create("iconpack.manifest.txt")
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	// Walk icons folder and add files
	added := 0
	err = filepath.Walk(iconsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(sessionRoot, path)
		if err != nil {
			return err
		}
		// Normalize to forward slashes inside zip
		zipName := filepath.ToSlash(rel)
		fw, err := zw.Create(zipName)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		added++
		return nil
	})
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}
	l.Info("icon pack exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return nil
}

// InstallPack extracts the given .zip pack into the session's icons directory.
// Existing files are not overwritten; if a file already exists, it is skipped.
// Returns the count of files installed (skipped files are not counted).
func InstallPack(sessionRoot string, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("iconpack"), "install").With(slog.String("session", sessionRoot))
	if strings.TrimSpace(sessionRoot) == "" {
		return 0, errors.New("sessionRoot is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	iconsDir := filepath.Join(sessionRoot, IconsDirName)
	if err := os.MkdirAll(iconsDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure icons dir: %w", err)
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := f.Name
		// Skip top-level manifest file
		if name == "iconpack.manifest.txt" {
			continue
		}
		// Paths already rooted at icons/ are kept; anything else is placed
		// under icons/.
		targetRel := name
		if !strings.HasPrefix(targetRel, IconsDirName+"/") {
			targetRel = filepath.ToSlash(filepath.Join(IconsDirName, targetRel))
		}
		targetPath := filepath.Join(sessionRoot, filepath.FromSlash(targetRel))
		// If file exists, skip
		if _, err := os.Stat(targetPath); err == nil {
			l.Warn("skip existing file", slog.String("path", targetPath))
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return installed, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return installed, err
		}
		rc, err := f.Open()
		if err != nil {
			return installed, err
		}
		out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			_ = rc.Close()
			return installed, err
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			_ = rc.Close()
			return installed, err
		}
		_ = out.Close()
		_ = rc.Close()
		installed++
	}
	l.Info("icon pack installed", slog.Int("files", installed))
	return installed, nil
}
