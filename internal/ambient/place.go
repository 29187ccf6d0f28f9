/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ambient computes non-overlapping world-space placements for a
// small set of ambient suggestion icons overlaid on a canvas of image
// elements. The search is a greedy, non-backtracking approximate solver:
// each suggestion, in ranked order, picks its locally best slot given all
// prior commitments. The whole pipeline is deterministic for identical
// inputs.
package ambient

import (
	"math"
	"sort"
	"strings"

	"hintlayer/internal/domain"
	"hintlayer/internal/geom"
)

const (
	baseIconWorldSize        = 72
	defaultCollisionPadWorld = 8

	// Scoring weights. Tuned constants; keep exact values for behavioral
	// compatibility.
	anchorImageOverlapWeight = 7
	otherImageOverlapWeight  = 3
	anchorDistanceWeight     = 0.04
)

// ringOffsets are the 10 fixed candidate offsets probed around an anchor, at
// the base icon size of 72. Distances from center vary between ~130 and
// ~166 units so placements do not look griddy.
var ringOffsets = [10]geom.Pt{
	{X: 160, Y: 0},
	{X: 118, Y: 86},
	{X: 50, Y: 154},
	{X: -46, Y: 143},
	{X: -130, Y: 94},
	{X: -166, Y: 0},
	{X: -121, Y: -88},
	{X: -41, Y: -126},
	{X: 48, Y: -148},
	{X: 125, Y: -91},
}

// PlaceOptions are the inputs for one placement computation. Everything is
// supplied fresh on every call; the engine keeps no state across calls.
//
// MaxSuggestions is optional: nil means 3, present values are clamped to
// [0, 6] and 0 yields an empty result. IconWorldSize defaults to 72 and
// CollisionPadWorld to 8 when not positive.
type PlaceOptions struct {
	Branches          []domain.Branch
	Images            map[string]domain.Rect
	Viewport          domain.Viewport
	TouchedImageIDs   []string
	MaxSuggestions    *int
	IconWorldSize     float64
	CollisionPadWorld float64
}

// Place computes placements for the ranked branch candidates. It never
// fails: malformed input degrades to safe defaults and callers always get a
// best-effort layout. CreatedAtMs/UpdatedAtMs are left zero; Merge assigns
// wall-clock times.
func Place(opts PlaceOptions) []domain.Suggestion {
	maxN := resolveMaxSuggestions(opts.MaxSuggestions)
	if maxN == 0 {
		return []domain.Suggestion{}
	}
	size := opts.IconWorldSize
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		size = baseIconWorldSize
	}
	pad := opts.CollisionPadWorld
	if pad < 0 || math.IsNaN(pad) || math.IsInf(pad, 0) {
		pad = defaultCollisionPadWorld
	}

	vp := geom.NormalizeViewport(geom.Viewport{
		MinX: opts.Viewport.MinX, MinY: opts.Viewport.MinY,
		MaxX: opts.Viewport.MaxX, MaxY: opts.Viewport.MaxY,
	})

	images, knownIDs := normalizeImages(opts.Images)
	cands := selectCandidates(opts.Branches, maxN)

	// Greedy fold over the ranked candidates. The accumulator is the set of
	// already-placed rects; later suggestions see and avoid earlier ones.
	out := make([]domain.Suggestion, 0, len(cands))
	placed := make([]geom.Rect, 0, len(cands))
	for _, c := range cands {
		anchor := resolveAnchor(c.EvidenceImageIDs, opts.TouchedImageIDs, knownIDs, images, vp)
		rect := searchPlacement(c, anchor, placed, images, knownIDs, vp, size, pad)
		placed = append(placed, rect)
		out = append(out, domain.Suggestion{
			ID:         domain.SuggestionID(c.BranchID, c.AssetKey),
			BranchID:   c.BranchID,
			AssetType:  c.AssetType,
			AssetKey:   c.AssetKey,
			AssetSrc:   c.AssetSrc,
			Confidence: c.Confidence,
			Anchor:     anchor,
			WorldRect:  domain.Rect{X: rect.X, Y: rect.Y, W: rect.W, H: rect.H},
		})
	}
	return out
}

// searchPlacement evaluates the candidate ring around the anchor and keeps
// the minimum-scoring rect. A score of exactly 0 is a fully clear placement
// and stops the search early.
func searchPlacement(c candidate, anchor domain.Anchor, placed []geom.Rect, images map[string]geom.Rect, knownIDs []string, vp geom.Viewport, size, pad float64) geom.Rect {
	anchorPt := geom.Pt{X: anchor.World.X, Y: anchor.World.Y}
	anchorSet := make(map[string]struct{}, len(anchor.ImageIDs))
	for _, id := range anchor.ImageIDs {
		anchorSet[id] = struct{}{}
	}

	scale := size / baseIconWorldSize
	margin := math.Max(2, math.Round(size*0.14))
	start := int(Hash32(c.BranchID+"|"+c.AssetKey) % uint32(len(ringOffsets)))

	var best geom.Rect
	bestScore := math.Inf(1)
	evaluated := false
	for i := 0; i < len(ringOffsets); i++ {
		off := ringOffsets[(start+i)%len(ringOffsets)]
		cand := geom.ClampRectToViewport(geom.Rect{
			X: anchorPt.X + off.X*scale - size/2,
			Y: anchorPt.Y + off.Y*scale - size/2,
			W: size,
			H: size,
		}, vp, margin)

		score := 0.0
		for _, p := range placed {
			score += geom.OverlapArea(cand, p, pad)
		}
		for _, id := range knownIDs {
			w := float64(otherImageOverlapWeight)
			if _, ok := anchorSet[id]; ok {
				w = anchorImageOverlapWeight
			}
			score += w * geom.OverlapArea(cand, images[id], pad)
		}
		score += anchorDistanceWeight * geom.Dist(geom.Center(cand), anchorPt)

		if !evaluated || score < bestScore {
			best = cand
			bestScore = score
			evaluated = true
		}
		if score == 0 {
			break
		}
	}
	if !evaluated {
		// Cannot occur with the fixed ring, but stay defensive: fall back to
		// the un-offset anchor-centered rect.
		best = geom.ClampRectToViewport(geom.Rect{
			X: anchorPt.X - size/2,
			Y: anchorPt.Y - size/2,
			W: size,
			H: size,
		}, vp, margin)
	}
	return best
}

// normalizeImages copies the caller-owned rect map into normalized geometry.
// Keys are trimmed; empty keys are dropped and the last rect wins for a
// duplicate key. The returned id slice is sorted for deterministic
// iteration.
func normalizeImages(in map[string]domain.Rect) (map[string]geom.Rect, []string) {
	images := make(map[string]geom.Rect, len(in))
	for id, r := range in {
		t := strings.TrimSpace(id)
		if t == "" {
			continue
		}
		images[t] = geom.NormalizeRect(geom.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H})
	}
	ids := make([]string, 0, len(images))
	for id := range images {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return images, ids
}
