/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// sceneSchema validates scene documents loaded from disk or received over
// the sync channel. Validation is advisory: a scene that fails validation is
// reported but the placement engine still degrades to safe defaults.
const sceneSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "name": { "type": "string" },
    "images": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "x": { "type": "number" },
          "y": { "type": "number" },
          "w": { "type": "number" },
          "h": { "type": "number" }
        },
        "required": ["x", "y", "w", "h"]
      }
    },
    "viewport": {
      "type": "object",
      "properties": {
        "min_x": { "type": "number" },
        "min_y": { "type": "number" },
        "max_x": { "type": "number" },
        "max_y": { "type": "number" }
      },
      "required": ["min_x", "min_y", "max_x", "max_y"]
    },
    "touched_image_ids": { "type": "array", "items": { "type": "string" } },
    "branches": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "branch_id": { "type": "string" },
          "asset_type": { "type": "string" },
          "asset_key": { "type": "string" },
          "asset_src": { "type": ["string", "null"] },
          "confidence": { "type": ["number", "null"] },
          "evidence_image_ids": { "type": "array", "items": { "type": "string" } }
        }
      }
    }
  },
  "required": ["images", "viewport"]
}`

// ValidateSceneJSON checks raw scene JSON against the embedded schema.
// It returns nil when the document is valid and a single error summarizing
// every violation otherwise.
func ValidateSceneJSON(data []byte) error {
	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(sceneSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate scene: %w", err)
	}
	if res.Valid() {
		return nil
	}
	var b strings.Builder
	b.WriteString("scene document invalid:")
	for _, e := range res.Errors() {
		b.WriteString(" ")
		b.WriteString(e.String())
		b.WriteString(";")
	}
	return fmt.Errorf("%s", strings.TrimSuffix(b.String(), ";"))
}
