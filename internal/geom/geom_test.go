/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"
)

func TestNormalizeRectFloorsSize(t *testing.T) {
	r := NormalizeRect(R(3, 4, 0, -7))
	if r.W != 1 || r.H != 1 {
		t.Fatalf("expected 1x1 minimum size, got %vx%v", r.W, r.H)
	}
	if r.X != 3 || r.Y != 4 {
		t.Fatalf("position changed: %+v", r)
	}
}

func TestNormalizeRectCoercesNonFinite(t *testing.T) {
	r := NormalizeRect(R(math.NaN(), math.Inf(1), math.NaN(), 5))
	if r.X != 0 || r.Y != 0 {
		t.Fatalf("expected origin default, got %+v", r)
	}
	if r.W != 1 || r.H != 5 {
		t.Fatalf("expected 1x5, got %vx%v", r.W, r.H)
	}
}

func TestNormalizeViewportReplacesDegenerate(t *testing.T) {
	cases := []Viewport{
		{MinX: 100, MinY: 0, MaxX: 100, MaxY: 50},
		{MinX: 0, MinY: 10, MaxX: 50, MaxY: 10},
		{MinX: 50, MinY: 0, MaxX: 10, MaxY: 50},
		{MinX: math.NaN(), MinY: 0, MaxX: 10, MaxY: 10},
	}
	for i, in := range cases {
		if got := NormalizeViewport(in); got != DefaultViewport {
			t.Fatalf("case %d: expected default viewport, got %+v", i, got)
		}
	}
	valid := Viewport{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}
	if got := NormalizeViewport(valid); got != valid {
		t.Fatalf("valid viewport altered: %+v", got)
	}
}

func TestOverlapArea(t *testing.T) {
	a := R(0, 0, 10, 10)
	b := R(5, 5, 10, 10)
	if got := OverlapArea(a, b, 0); got != 25 {
		t.Fatalf("expected overlap 25, got %v", got)
	}
	// Disjoint without pad, touching via pad expansion.
	c := R(20, 0, 10, 10)
	if got := OverlapArea(a, c, 0); got != 0 {
		t.Fatalf("expected 0 for disjoint rects, got %v", got)
	}
	if got := OverlapArea(a, c, 6); got != 2*22 {
		t.Fatalf("expected padded overlap 44, got %v", got)
	}
	// Symmetric.
	if OverlapArea(a, b, 3) != OverlapArea(b, a, 3) {
		t.Fatalf("overlap not symmetric")
	}
}

func TestClampRectToViewportShiftsOnly(t *testing.T) {
	vp := Viewport{MinX: 0, MinY: 0, MaxX: 2048, MaxY: 2048}
	r := ClampRectToViewport(R(-100, 3000, 50, 50), vp, 10)
	if r.W != 50 || r.H != 50 {
		t.Fatalf("clamp resized rect: %+v", r)
	}
	if r.X != 10 {
		t.Fatalf("expected x=10, got %v", r.X)
	}
	if r.Y != 2048-10-50 {
		t.Fatalf("expected y=%v, got %v", 2048-10-50, r.Y)
	}
}

func TestClampRectToViewportFavorsMinBound(t *testing.T) {
	vp := Viewport{MinX: 0, MinY: 0, MaxX: 30, MaxY: 30}
	r := ClampRectToViewport(R(100, 100, 50, 50), vp, 2)
	if r.X != 2 || r.Y != 2 {
		t.Fatalf("degenerate clamp should land on min bound, got %+v", r)
	}
}
