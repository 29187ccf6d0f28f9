/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"os"
	"testing"

	"hintlayer/internal/domain"
)

func TestInitOrOpenHistoryCreatesSchema(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenHistory(root)
	if err != nil {
		t.Fatalf("InitOrOpenHistory: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := os.Stat(HistoryPath(root)); err != nil {
		t.Fatalf("history db file missing: %v", err)
	}

	var schema int
	if err := db.QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d, want %d", schema, schemaVersion)
	}
}

func TestRecordAndListRuns(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenHistory(root)
	if err != nil {
		t.Fatalf("InitOrOpenHistory: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	sugs := []domain.Suggestion{
		{ID: "ambient:b1:crop", BranchID: "b1", AssetKey: "crop",
			WorldRect: domain.Rect{X: 1, Y: 2, W: 72, H: 72},
			Anchor:    domain.Anchor{Kind: domain.AnchorImageCluster}},
		{ID: "ambient:b2:rotate", BranchID: "b2", AssetKey: "rotate",
			WorldRect: domain.Rect{X: 100, Y: 2, W: 72, H: 72},
			Anchor:    domain.Anchor{Kind: domain.AnchorViewport}},
	}
	id1, err := RecordRun(ctx, db, "scene-a", sugs)
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	id2, err := RecordRun(ctx, db, "scene-b", sugs[:1])
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("run ids not increasing: %d then %d", id1, id2)
	}

	runs, err := ListRuns(ctx, db, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Scene != "scene-b" || runs[0].Suggestions != 1 {
		t.Fatalf("newest run wrong: %+v", runs[0])
	}
	if runs[1].Scene != "scene-a" || runs[1].Suggestions != 2 {
		t.Fatalf("older run wrong: %+v", runs[1])
	}
}

func TestInitOrOpenHistoryIsIdempotent(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenHistory(root)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	db2, err := InitOrOpenHistory(root)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer func() { _ = db2.Close() }()
}
