/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ambient

import "hintlayer/internal/domain"

// Merge reconciles a freshly computed suggestion list against the previous
// one so creation timestamps survive recomputation. Items whose identity
// persists keep their CreatedAtMs; new items get now. UpdatedAtMs is always
// now. Items absent from next are dropped; there is no tombstoning. Pure
// function of the two lists and now.
func Merge(previous, next []domain.Suggestion, now int64) []domain.Suggestion {
	byID := make(map[string]domain.Suggestion, len(previous))
	for _, s := range previous {
		if s.ID == "" {
			continue
		}
		byID[s.ID] = s
	}
	out := make([]domain.Suggestion, 0, len(next))
	for _, s := range next {
		if s.ID == "" {
			continue
		}
		merged := s
		if prev, ok := byID[s.ID]; ok {
			merged.CreatedAtMs = prev.CreatedAtMs
		} else {
			merged.CreatedAtMs = now
		}
		merged.UpdatedAtMs = now
		out = append(out, merged)
	}
	return out
}
