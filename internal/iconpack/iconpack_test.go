/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package iconpack

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReturnsDefaultsWithoutIconsDir(t *testing.T) {
	p, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Label("crop") != "Crop" {
		t.Fatalf("default crop label = %q", p.Label("crop"))
	}
	if p.Label("unknown-key") != "unknown-key" {
		t.Fatalf("unknown key should fall back to itself")
	}
}

func TestLoadMergesYAMLOverrides(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, IconsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	yml := []byte("crop:\n  label: Trim\n  color: {r: 1, g: 2, b: 3, a: 255}\nsharpen:\n  label: Sharpen\n")
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), yml, 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	p, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Label("crop") != "Trim" {
		t.Fatalf("override lost: %q", p.Label("crop"))
	}
	if p.Icons["crop"].Color.B != 3 {
		t.Fatalf("color override lost: %+v", p.Icons["crop"].Color)
	}
	if p.Label("sharpen") != "Sharpen" {
		t.Fatalf("new key lost")
	}
	if p.Label("rotate") != "Rotate" {
		t.Fatalf("untouched default lost")
	}
	labels := p.Labels()
	if labels["sharpen"] != "Sharpen" {
		t.Fatalf("Labels() missing sharpen: %v", labels)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, IconsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(":\n  -:::"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if _, err := Load(root); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestExportAndInstallPackRoundTrip(t *testing.T) {
	src := t.TempDir()
	dir := filepath.Join(src, IconsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "team.yaml"), []byte("sharpen:\n  label: Sharpen\n"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	zipPath := filepath.Join(t.TempDir(), "pack.zip")
	if err := ExportPack(src, zipPath); err != nil {
		t.Fatalf("ExportPack: %v", err)
	}

	// Archive must contain the manifest and the yaml file.
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}
	_ = r.Close()
	if !names["iconpack.manifest.txt"] || !names["icons/team.yaml"] {
		t.Fatalf("unexpected zip contents: %v", names)
	}

	dst := t.TempDir()
	n, err := InstallPack(dst, zipPath)
	if err != nil {
		t.Fatalf("InstallPack: %v", err)
	}
	if n != 1 {
		t.Fatalf("installed %d files, want 1", n)
	}
	p, err := Load(dst)
	if err != nil {
		t.Fatalf("Load after install: %v", err)
	}
	if p.Label("sharpen") != "Sharpen" {
		t.Fatalf("installed definition not loaded")
	}

	// Installing again must skip the existing file.
	n, err = InstallPack(dst, zipPath)
	if err != nil {
		t.Fatalf("second InstallPack: %v", err)
	}
	if n != 0 {
		t.Fatalf("reinstall should skip existing files, installed %d", n)
	}
}
