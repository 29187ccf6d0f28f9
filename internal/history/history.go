/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package history keeps in-memory undo/redo stacks of suggestion lists per
// scene so the overlay can step back through recomputation cycles.
package history

import (
	"encoding/json"
	"sync"
	"time"

	"hintlayer/internal/domain"
)

// Snapshot is one recorded suggestion list for a scene.
// Size is the JSON-encoded byte estimate used for memory accounting.
// TS is when the snapshot was captured.
type Snapshot struct {
	Scene       string
	Suggestions []domain.Suggestion
	TS          time.Time

	size int
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerScene limits snapshots per scene kept in memory (0 means unlimited).
	MaxPerScene int
	// MinInterval coalesces snapshots captured within the interval for the
	// same scene, replacing the previous one instead of pushing a new entry.
	MinInterval time.Duration
}

// Manager provides an in-memory undo/redo stack per scene with performance
// safeguards. It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex
	// per-scene stacks
	undo map[string][]Snapshot
	redo map[string][]Snapshot
	// accounting
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	// Set conservative defaults if not provided
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 8 * 1024 * 1024 // 8 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// Push records the current suggestion list for a scene. If within MinInterval
// from the last snapshot of the same scene, it replaces that one. Clears the
// redo stack for the scene.
func (m *Manager) Push(scene string, suggestions []domain.Suggestion, ts time.Time) {
	s := Snapshot{
		Scene:       scene,
		Suggestions: append([]domain.Suggestion(nil), suggestions...),
		TS:          ts,
	}
	if b, err := json.Marshal(s.Suggestions); err == nil {
		s.size = len(b)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[scene]
	if n := len(stack); n > 0 {
		last := stack[n-1]
		if s.TS.Sub(last.TS) < m.cfg.MinInterval {
			// Coalesce: adjust accounting and replace
			m.totalBytes -= last.size
			m.totalBytes += s.size
			stack[n-1] = s
			m.undo[scene] = stack
			m.redo[scene] = nil
			m.enforceCapsLocked(scene)
			return
		}
	}
	// Push new
	stack = append(stack, s)
	m.undo[scene] = stack
	m.totalBytes += s.size
	// Any new change invalidates redo for the scene
	m.redo[scene] = nil
	m.enforceCapsLocked(scene)
}

// Undo pops from the scene undo stack and pushes to the redo stack, returning
// the snapshot.
func (m *Manager) Undo(scene string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[scene]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[scene] = stack[:len(stack)-1]
	m.totalBytes -= s.size
	m.redo[scene] = append(m.redo[scene], s)
	return s, true
}

// Redo pops from redo and pushes back to undo.
func (m *Manager) Redo(scene string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[scene]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[scene] = r[:len(r)-1]
	m.undo[scene] = append(m.undo[scene], s)
	m.totalBytes += s.size
	m.enforceCapsLocked(scene)
	return s, true
}

// ClearScene clears undo/redo stacks for a scene to free memory.
func (m *Manager) ClearScene(scene string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[scene] {
		m.totalBytes -= s.size
	}
	delete(m.undo, scene)
	delete(m.redo, scene)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, scenes int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	scenes = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, scenes, totalSnapshots
}

func (m *Manager) enforceCapsLocked(scene string) {
	// Per-scene depth cap
	if m.cfg.MaxPerScene > 0 {
		stack := m.undo[scene]
		if len(stack) > m.cfg.MaxPerScene {
			// drop the oldest extras
			toDrop := len(stack) - m.cfg.MaxPerScene
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= stack[i].size
			}
			m.undo[scene] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune oldest across all scenes
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestScene := ""
		oldestIdx := -1
		var oldestTS time.Time
		for sc, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if oldestIdx == -1 || stack[0].TS.Before(oldestTS) {
				oldestScene = sc
				oldestIdx = 0
				oldestTS = stack[0].TS
			}
		}
		if oldestIdx == -1 {
			break
		}
		stack := m.undo[oldestScene]
		m.totalBytes -= stack[0].size
		m.undo[oldestScene] = stack[1:]
		if len(m.undo[oldestScene]) == 0 {
			delete(m.undo, oldestScene)
		}
	}
}
