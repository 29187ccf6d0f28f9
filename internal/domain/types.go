/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the data model for the Hint Layer project: the scene
// documents the engine consumes and the ambient suggestion records it emits.
// Everything serializes to human-readable JSON.

// Rect is an axis-aligned rectangle in world coordinates.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// WorldPoint is a single world-space coordinate.
type WorldPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the visible world-space window of the editing surface.
type Viewport struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Branch is a candidate suggestion produced upstream by intent inference.
// Confidence and AssetSrc are optional; absent values stay nil through the
// whole pipeline so "no confidence" is distinguishable from 0.
type Branch struct {
	BranchID         string   `json:"branch_id"`
	AssetType        string   `json:"asset_type"`
	AssetKey         string   `json:"asset_key"`
	AssetSrc         *string  `json:"asset_src,omitempty"`
	Confidence       *float64 `json:"confidence,omitempty"`
	EvidenceImageIDs []string `json:"evidence_image_ids,omitempty"`
}

// Anchor kinds.
const (
	AnchorImageCluster = "image_cluster"
	AnchorViewport     = "viewport"
)

// Anchor is the resolved world-space point a suggestion is placed around.
// Kind is "image_cluster" when resolved from at least one known image,
// otherwise "viewport".
type Anchor struct {
	Kind     string     `json:"kind"`
	ImageIDs []string   `json:"image_ids"`
	World    WorldPoint `json:"world"`
}

// Suggestion is a placed ambient suggestion. ID is the deterministic
// composite "ambient:<branch_id>:<asset_key>" and is the stable identity
// used for merge reconciliation across recomputation cycles.
type Suggestion struct {
	ID          string   `json:"id"`
	BranchID    string   `json:"branch_id"`
	AssetType   string   `json:"asset_type"`
	AssetKey    string   `json:"asset_key"`
	AssetSrc    *string  `json:"asset_src"`
	Confidence  *float64 `json:"confidence"`
	Anchor      Anchor   `json:"anchor"`
	WorldRect   Rect     `json:"world_rect"`
	CreatedAtMs int64    `json:"created_at_ms"`
	UpdatedAtMs int64    `json:"updated_at_ms"`
}

// Color is an RGBA color with 8-bit channels, used by exporters and icon
// packs.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Stroke describes an outline style for export rendering.
type Stroke struct {
	Color Color   `json:"color"`
	Width float64 `json:"width"`
}

// SuggestionID builds the stable composite identity for a branch/asset pair.
func SuggestionID(branchID, assetKey string) string {
	return "ambient:" + branchID + ":" + assetKey
}

// Scene is the document the CLI and preview load: current image geometry,
// the visible viewport, the recently touched images and the ranked branch
// candidates supplied by the intent subsystem.
type Scene struct {
	Name            string          `json:"name,omitempty"`
	Images          map[string]Rect `json:"images"`
	Viewport        Viewport        `json:"viewport"`
	TouchedImageIDs []string        `json:"touched_image_ids,omitempty"`
	Branches        []Branch        `json:"branches,omitempty"`
}
