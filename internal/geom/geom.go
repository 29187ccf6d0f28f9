/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Basic 2D world-space geometry for the ambient overlay.
// Float values use float64 to match the canvas model coordinates.

import "math"

// Pt is a 2D point in world coordinates.
type Pt struct{ X, Y float64 }

// Rect is an axis-aligned rectangle defined by min corner and size.
// Width and height are always at least 1 after NormalizeRect.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// Viewport is the visible world-space window placements must stay inside.
type Viewport struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// DefaultViewport replaces degenerate or malformed viewport input wholesale.
var DefaultViewport = Viewport{MinX: 0, MinY: 0, MaxX: 2048, MaxY: 2048}

// NormalizeRect coerces a rect into a safe value: non-finite coordinates
// become 0 and the size is floored at 1x1.
func NormalizeRect(r Rect) Rect {
	return Rect{
		X: finiteOr(r.X, 0),
		Y: finiteOr(r.Y, 0),
		W: math.Max(1, finiteOr(r.W, 1)),
		H: math.Max(1, finiteOr(r.H, 1)),
	}
}

// NormalizeViewport validates a viewport. Invalid input (inverted, empty or
// non-finite bounds) is replaced wholesale by DefaultViewport; there is no
// partial repair.
func NormalizeViewport(v Viewport) Viewport {
	if !isFinite(v.MinX) || !isFinite(v.MinY) || !isFinite(v.MaxX) || !isFinite(v.MaxY) {
		return DefaultViewport
	}
	if v.MaxX <= v.MinX || v.MaxY <= v.MinY {
		return DefaultViewport
	}
	return v
}

// Center returns the geometric center of r.
func Center(r Rect) Pt { return Pt{r.X + r.W/2, r.Y + r.H/2} }

// ViewportCenter returns the geometric center of v.
func ViewportCenter(v Viewport) Pt {
	return Pt{(v.MinX + v.MaxX) / 2, (v.MinY + v.MaxY) / 2}
}

// Dist is the Euclidean distance between two points.
func Dist(a, b Pt) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

// OverlapArea returns the axis-aligned overlap of a and b after expanding
// both rects by pad on all sides. Expanding both by the same pad
// approximates a minimum-separation margin. Returns 0 for disjoint rects.
func OverlapArea(a, b Rect, pad float64) float64 {
	if pad < 0 {
		pad = 0
	}
	ax0, ay0 := a.X-pad, a.Y-pad
	ax1, ay1 := a.X+a.W+pad, a.Y+a.H+pad
	bx0, by0 := b.X-pad, b.Y-pad
	bx1, by1 := b.X+b.W+pad, b.Y+b.H+pad
	w := math.Min(ax1, bx1) - math.Max(ax0, bx0)
	h := math.Min(ay1, by1) - math.Max(ay0, by0)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// ClampRectToViewport shifts r (never resizes) so that, after applying
// margin, it lies fully inside v. When the viewport is too small to fit the
// rect plus margin the clamp favors the minimum bound.
func ClampRectToViewport(r Rect, v Viewport, margin float64) Rect {
	if margin < 0 {
		margin = 0
	}
	// Clamp against the max bound first so the min bound wins on degenerate
	// intervals.
	if r.X+r.W > v.MaxX-margin {
		r.X = v.MaxX - margin - r.W
	}
	if r.X < v.MinX+margin {
		r.X = v.MinX + margin
	}
	if r.Y+r.H > v.MaxY-margin {
		r.Y = v.MaxY - margin - r.H
	}
	if r.Y < v.MinY+margin {
		r.Y = v.MinY + margin
	}
	return r
}

func finiteOr(v, def float64) float64 {
	if !isFinite(v) {
		return def
	}
	return v
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
