/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ambient

import (
	"fmt"
	"math"
	sortpkg "sort"
	"strings"

	"hintlayer/internal/domain"
)

const (
	defaultMaxSuggestions = 3
	maxSuggestionsCap     = 6
)

// candidate is a normalized, rank-ready branch entry. Index is the original
// input position and is the stable tie-break for equal confidence.
type candidate struct {
	BranchID         string
	AssetType        string
	AssetKey         string
	AssetSrc         *string
	Confidence       *float64
	EvidenceImageIDs []string
	Index            int
}

// rankValue orders candidates: entries with no confidence rank below any
// numeric confidence.
func (c candidate) rankValue() float64 {
	if c.Confidence == nil {
		return -1
	}
	return *c.Confidence
}

// resolveMaxSuggestions applies the default (3) for an absent value and
// clamps present values to [0, 6].
func resolveMaxSuggestions(v *int) int {
	if v == nil {
		return defaultMaxSuggestions
	}
	n := *v
	if n < 0 {
		n = 0
	}
	if n > maxSuggestionsCap {
		n = maxSuggestionsCap
	}
	return n
}

// selectCandidates filters branches to valid icon-type entries, normalizes
// them, ranks by confidence (descending, nil last, stable index tie-break)
// and truncates to maxSuggestions.
func selectCandidates(branches []domain.Branch, maxSuggestions int) []candidate {
	if maxSuggestions <= 0 {
		return nil
	}
	var out []candidate
	for i, b := range branches {
		assetType := strings.TrimSpace(b.AssetType)
		if assetType == "" {
			assetType = "icon"
		}
		if assetType != "icon" {
			continue
		}
		assetKey := strings.TrimSpace(b.AssetKey)
		if assetKey == "" {
			continue
		}
		branchID := strings.TrimSpace(b.BranchID)
		if branchID == "" {
			branchID = fmt.Sprintf("branch-%d", i)
		}
		var conf *float64
		if b.Confidence != nil && !math.IsNaN(*b.Confidence) && !math.IsInf(*b.Confidence, 0) {
			v := math.Min(1, math.Max(0, *b.Confidence))
			conf = &v
		}
		var evidence []string
		for _, id := range b.EvidenceImageIDs {
			if t := strings.TrimSpace(id); t != "" {
				evidence = append(evidence, t)
			}
		}
		out = append(out, candidate{
			BranchID:         branchID,
			AssetType:        assetType,
			AssetKey:         assetKey,
			AssetSrc:         b.AssetSrc,
			Confidence:       conf,
			EvidenceImageIDs: evidence,
			Index:            i,
		})
	}
	sortpkg.SliceStable(out, func(i, j int) bool {
		return out[i].rankValue() > out[j].rankValue()
	})
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
