/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package journal appends placement decisions as newline-delimited JSON
// records to a durable log file. When the file cannot be opened for append
// the writer degrades to a size-bounded in-memory buffer so callers never
// lose the current session outright.
package journal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"hintlayer/internal/domain"
	applog "hintlayer/internal/log"
)

const (
	// defaultMaxBytes triggers rotate-by-rename once the journal file grows
	// past this size.
	defaultMaxBytes int64 = 4 * 1024 * 1024
	// memRecordCap bounds the in-memory fallback buffer.
	memRecordCap = 512
)

// Record is one journal entry. TraceID and TS are filled in by Append when
// empty.
type Record struct {
	TraceID     string              `json:"trace_id"`
	TS          string              `json:"ts"`
	Kind        string              `json:"kind"`
	Scene       string              `json:"scene,omitempty"`
	Reason      string              `json:"reason,omitempty"`
	Suggestions []domain.Suggestion `json:"suggestions,omitempty"`
	Note        string              `json:"note,omitempty"`
}

// Writer appends records to a single journal file. Safe for concurrent use.
type Writer struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	f        *os.File
	size     int64
	mem      []Record
	log      *slog.Logger
}

// Open creates a journal writer for path. It never fails: when the file
// cannot be opened for atomic append the writer starts in memory fallback
// mode. maxBytes <= 0 selects the default rotation threshold.
func Open(path string, maxBytes int64) *Writer {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	w := &Writer{path: path, maxBytes: maxBytes, log: applog.WithComponent("journal")}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		w.log.Warn("journal file unavailable, buffering in memory", slog.String("path", path), slog.Any("err", err))
		return w
	}
	w.f = f
	if st, err := f.Stat(); err == nil {
		w.size = st.Size()
	}
	return w
}

// InMemory reports whether the writer is running on the fallback buffer.
func (w *Writer) InMemory() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f == nil
}

// Append writes one record as a single JSON line. In fallback mode the
// record is buffered; the oldest records are dropped past the buffer cap.
func (w *Writer) Append(rec Record) error {
	if rec.TraceID == "" {
		rec.TraceID = uuid.New().String()
	}
	if rec.TS == "" {
		rec.TS = time.Now().UTC().Format(time.RFC3339Nano)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		w.mem = append(w.mem, rec)
		if len(w.mem) > memRecordCap {
			w.mem = w.mem[len(w.mem)-memRecordCap:]
		}
		return nil
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal journal record: %w", err)
	}
	line = append(line, '\n')

	if w.size+int64(len(line)) > w.maxBytes {
		if err := w.rotateLocked(); err != nil {
			w.log.Warn("journal rotation failed", slog.Any("err", err))
		}
		if w.f == nil {
			// Rotation lost the file handle; degrade to the memory buffer.
			w.mem = append(w.mem, rec)
			return nil
		}
	}
	n, err := w.f.Write(line)
	w.size += int64(n)
	if err != nil {
		return fmt.Errorf("append journal record: %w", err)
	}
	return nil
}

// Buffered returns a copy of the in-memory fallback records.
func (w *Writer) Buffered() []Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Record(nil), w.mem...)
}

// Close syncs and closes the underlying file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	if err := w.f.Sync(); err != nil {
		_ = w.f.Close()
		w.f = nil
		return err
	}
	err := w.f.Close()
	w.f = nil
	return err
}

// rotateLocked renames the current file to <path>.1 (replacing any previous
// rotation) and reopens a fresh journal. Callers hold w.mu.
func (w *Writer) rotateLocked() error {
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close before rotate: %w", err)
	}
	w.f = nil
	rotated := w.path + ".1"
	_ = os.Remove(rotated)
	if err := os.Rename(w.path, rotated); err != nil {
		return fmt.Errorf("rotate journal: %w", err)
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("reopen journal: %w", err)
	}
	w.f = f
	w.size = 0
	return nil
}
