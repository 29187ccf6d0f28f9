/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package menu maps the current selection state to the fixed 3x3 action grid
// shown by the canvas UI. Pure table lookup, no logic.
package menu

// SelectionCount describes how many canvas elements are selected.
type SelectionCount int

const (
	SelectionNone SelectionCount = iota
	SelectionSingle
	SelectionMulti
)

// Action is one cell of the grid. Empty Key means an empty cell.
type Action struct {
	Key   string
	Label string
}

// Grid is the 3x3 action layout, row-major.
type Grid [3][3]Action

var (
	gridNone = Grid{
		{{Key: "import", Label: "Import"}, {Key: "paste", Label: "Paste"}, {}},
		{{Key: "describe", Label: "Describe"}, {}, {}},
		{{Key: "settings", Label: "Settings"}, {}, {Key: "help", Label: "Help"}},
	}
	gridSingle = Grid{
		{{Key: "crop", Label: "Crop"}, {Key: "rotate", Label: "Rotate"}, {Key: "resize", Label: "Resize"}},
		{{Key: "replace", Label: "Replace"}, {Key: "describe", Label: "Describe"}, {Key: "filter", Label: "Filter"}},
		{{Key: "duplicate", Label: "Duplicate"}, {}, {Key: "remove", Label: "Remove"}},
	}
	gridMulti = Grid{
		{{Key: "align", Label: "Align"}, {Key: "distribute", Label: "Distribute"}, {Key: "group", Label: "Group"}},
		{{Key: "move", Label: "Move"}, {Key: "describe", Label: "Describe"}, {}},
		{{Key: "duplicate", Label: "Duplicate"}, {}, {Key: "remove", Label: "Remove"}},
	}
)

// GridFor returns the action grid for a selection count. Unknown values fall
// back to the no-selection grid.
func GridFor(c SelectionCount) Grid {
	switch c {
	case SelectionSingle:
		return gridSingle
	case SelectionMulti:
		return gridMulti
	default:
		return gridNone
	}
}
