/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"hintlayer/internal/domain"
	applog "hintlayer/internal/log"
)

const (
	ManifestFileName = "hints.json"
	BackupsDirName   = "backups"
)

// Standard subfolders of a session root.
var standardSubDirs = []string{
	"scenes",
	"exports",
	BackupsDirName,
}

// Session is the on-disk unit: the scene the overlay runs against plus the
// current merged suggestion list.
type Session struct {
	Scene       domain.Scene        `json:"scene"`
	Suggestions []domain.Suggestion `json:"suggestions"`
}

// SessionHandle keeps track of the session state loaded/saved from disk.
// Root is the session directory containing hints.json and subfolders.
type SessionHandle struct {
	Root         string
	ManifestPath string
	Session      Session
}

// InitSession creates a new session directory at root (creating it if it
// doesn't exist), scaffolds the standard subfolders, and writes the given
// manifest transactionally.
func InitSession(root string, s Session) (*SessionHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create session root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", d, err)
		}
	}

	sh := &SessionHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Session:      s,
	}
	if err := Save(sh); err != nil {
		return nil, err
	}
	return sh, nil
}

// Open loads an existing session from the given root directory. If the
// current manifest cannot be read or parsed, it attempts the last backup.
func Open(root string) (*SessionHandle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err != nil {
		s, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return &SessionHandle{Root: root, ManifestPath: mpath, Session: *s}, nil
	}
	var s Session
	if uerr := json.Unmarshal(b, &s); uerr != nil {
		bs, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", uerr, berr)
		}
		return &SessionHandle{Root: root, ManifestPath: mpath, Session: *bs}, nil
	}
	// Schema validation is advisory: a failing scene is reported but still
	// loaded, and the engine degrades to safe defaults downstream.
	if verr := validateManifestScene(b); verr != nil {
		applog.WithComponent("storage").Warn("scene failed schema validation",
			slog.String("manifest", mpath), slog.Any("err", verr))
	}
	return &SessionHandle{Root: root, ManifestPath: mpath, Session: s}, nil
}

// validateManifestScene checks the scene member of a raw manifest against the
// scene schema. A manifest without a scene member passes.
func validateManifestScene(manifest []byte) error {
	var raw struct {
		Scene json.RawMessage `json:"scene"`
	}
	if err := json.Unmarshal(manifest, &raw); err != nil || len(raw.Scene) == 0 {
		return nil
	}
	return domain.ValidateSceneJSON(raw.Scene)
}

// Save writes the current SessionHandle.Session to disk with transactional
// semantics and a timestamped backup of the previous manifest (if present).
func Save(sh *SessionHandle) error {
	if sh == nil {
		return errors.New("nil SessionHandle")
	}
	if sh.Root == "" || sh.ManifestPath == "" {
		return errors.New("invalid SessionHandle: missing paths")
	}
	data, err := json.MarshalIndent(sh.Session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(sh.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	// If a current manifest exists, copy it to a timestamped backup before
	// replacing.
	if _, statErr := os.Stat(sh.ManifestPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bname := fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp)
		if cerr := copyFile(sh.ManifestPath, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}

	// Transactional write: temp file in same directory, then rename over.
	dir := filepath.Dir(sh.ManifestPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", ManifestFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	// On Windows, replace by removing destination first if needed.
	if _, err := os.Stat(sh.ManifestPath); err == nil {
		_ = os.Remove(sh.ManifestPath)
	}
	if rerr := os.Rename(temp, sh.ManifestPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	return nil
}

// AutosaveCrashSnapshot writes an emergency copy of the session into the
// backups dir without touching the primary manifest.
func AutosaveCrashSnapshot(sh *SessionHandle) (string, error) {
	if sh == nil {
		return "", errors.New("nil SessionHandle")
	}
	bdir := filepath.Join(sh.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	data, err := json.MarshalIndent(sh.Session, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(bdir, fmt.Sprintf("autosave-crash-%s.json", stamp))
	if err := writeFileSync(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write autosave: %w", err)
	}
	return path, nil
}

// writeFileSync writes data to a file and ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	if err := df.Sync(); err != nil {
		return err
	}
	return nil
}

// openFromLatestBackup tries to open the latest timestamped backup.
func openFromLatestBackup(root string) (*Session, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return &s, nil
}
