/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ambient

import (
	"hintlayer/internal/domain"
	"hintlayer/internal/geom"
)

// resolveAnchor computes the world-space anchor for one suggestion.
// Preference order: evidence images known to the scene, then touched images,
// then the first three known images (sorted id order keeps the pick
// deterministic), then the viewport center.
func resolveAnchor(evidence, touched, knownIDs []string, images map[string]geom.Rect, vp geom.Viewport) domain.Anchor {
	ids := intersectKnown(evidence, images)
	if len(ids) == 0 {
		ids = intersectKnown(touched, images)
	}
	if len(ids) == 0 && len(knownIDs) > 0 {
		n := len(knownIDs)
		if n > 3 {
			n = 3
		}
		ids = append([]string(nil), knownIDs[:n]...)
	}
	if len(ids) == 0 {
		c := geom.ViewportCenter(vp)
		return domain.Anchor{
			Kind:     domain.AnchorViewport,
			ImageIDs: []string{},
			World:    domain.WorldPoint{X: c.X, Y: c.Y},
		}
	}
	var sx, sy float64
	for _, id := range ids {
		c := geom.Center(images[id])
		sx += c.X
		sy += c.Y
	}
	n := float64(len(ids))
	return domain.Anchor{
		Kind:     domain.AnchorImageCluster,
		ImageIDs: ids,
		World:    domain.WorldPoint{X: sx / n, Y: sy / n},
	}
}

// intersectKnown keeps the ids present in images, preserving input order and
// dropping duplicates.
func intersectKnown(ids []string, images map[string]geom.Rect) []string {
	var out []string
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		if _, ok := images[id]; ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
