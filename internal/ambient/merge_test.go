/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ambient

import (
	"testing"

	"hintlayer/internal/domain"
)

func TestMergePreservesCreationTime(t *testing.T) {
	next := []domain.Suggestion{
		{ID: "ambient:b1:crop"},
		{ID: "ambient:b2:rotate"},
	}
	first := Merge(nil, next, 1000)
	for _, s := range first {
		if s.CreatedAtMs != 1000 || s.UpdatedAtMs != 1000 {
			t.Fatalf("fresh merge should stamp both timestamps: %+v", s)
		}
	}
	second := Merge(first, next, 2000)
	for _, s := range second {
		if s.CreatedAtMs != 1000 {
			t.Fatalf("creation time lost across merge: %+v", s)
		}
		if s.UpdatedAtMs != 2000 {
			t.Fatalf("update time not refreshed: %+v", s)
		}
	}
}

func TestMergeDropsAbsentAndNewItems(t *testing.T) {
	prev := []domain.Suggestion{
		{ID: "ambient:b1:crop", CreatedAtMs: 10, UpdatedAtMs: 10},
		{ID: "ambient:b2:rotate", CreatedAtMs: 10, UpdatedAtMs: 10},
	}
	next := []domain.Suggestion{
		{ID: "ambient:b1:crop"},
		{ID: "ambient:b3:filter"},
	}
	got := Merge(prev, next, 50)
	if len(got) != 2 {
		t.Fatalf("expected 2 merged items, got %d", len(got))
	}
	if got[0].ID != "ambient:b1:crop" || got[0].CreatedAtMs != 10 {
		t.Fatalf("surviving item lost its creation time: %+v", got[0])
	}
	if got[1].ID != "ambient:b3:filter" || got[1].CreatedAtMs != 50 {
		t.Fatalf("new item should be stamped now: %+v", got[1])
	}
}

func TestMergeSkipsEmptyIDs(t *testing.T) {
	got := Merge(nil, []domain.Suggestion{{ID: ""}, {ID: "ambient:b:k"}}, 7)
	if len(got) != 1 || got[0].ID != "ambient:b:k" {
		t.Fatalf("expected empty-id items dropped, got %+v", got)
	}
}

func TestMergeIsPure(t *testing.T) {
	prev := []domain.Suggestion{{ID: "ambient:b:k", CreatedAtMs: 1, UpdatedAtMs: 1}}
	next := []domain.Suggestion{{ID: "ambient:b:k"}}
	_ = Merge(prev, next, 99)
	if prev[0].UpdatedAtMs != 1 || next[0].UpdatedAtMs != 0 {
		t.Fatalf("merge mutated its inputs")
	}
}
