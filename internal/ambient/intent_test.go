/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ambient

import "testing"

func TestShouldScheduleIntent(t *testing.T) {
	cases := []struct {
		reason string
		want   bool
	}{
		{"add", true},
		{"ADD ", true},
		{"  Composition_Change", true},
		{"import", true},
		{"unknown", false},
		{"", false},
		{"added", false},
	}
	for _, c := range cases {
		if got := ShouldScheduleIntent(c.reason); got != c.want {
			t.Fatalf("ShouldScheduleIntent(%q) = %v, want %v", c.reason, got, c.want)
		}
	}
}
