/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ambient

import "strings"

// scheduleReasons are the edit reasons that warrant recomputing suggestions.
var scheduleReasons = map[string]struct{}{
	"add":                {},
	"import":             {},
	"remove":             {},
	"move":               {},
	"resize":             {},
	"replace":            {},
	"describe":           {},
	"composition_change": {},
}

// ShouldScheduleIntent reports whether an edit reason warrants scheduling an
// ambient intent recomputation. Matching is case and whitespace insensitive.
func ShouldScheduleIntent(reason string) bool {
	_, ok := scheduleReasons[strings.ToLower(strings.TrimSpace(reason))]
	return ok
}
