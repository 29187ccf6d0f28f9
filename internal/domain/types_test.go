package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSceneJSONRoundTrip(t *testing.T) {
	conf := 0.8
	sc := Scene{
		Name: "RoundTrip",
		Images: map[string]Rect{
			"img-1": {X: 10, Y: 20, W: 300, H: 200},
		},
		Viewport:        Viewport{MinX: 0, MinY: 0, MaxX: 2048, MaxY: 2048},
		TouchedImageIDs: []string{"img-1"},
		Branches: []Branch{
			{BranchID: "b1", AssetType: "icon", AssetKey: "crop", Confidence: &conf},
			{BranchID: "b2", AssetType: "icon", AssetKey: "rotate"},
		},
	}

	b, err := json.Marshal(sc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Scene
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != sc.Name {
		t.Fatalf("name mismatch: got %q want %q", got.Name, sc.Name)
	}
	if len(got.Branches) != 2 || got.Branches[0].Confidence == nil || *got.Branches[0].Confidence != 0.8 {
		t.Fatalf("branch confidence lost: %+v", got.Branches)
	}
	if got.Branches[1].Confidence != nil {
		t.Fatalf("absent confidence should stay nil")
	}
}

func TestSuggestionID(t *testing.T) {
	if got := SuggestionID("b1", "crop"); got != "ambient:b1:crop" {
		t.Fatalf("SuggestionID = %q", got)
	}
}

func TestValidateSceneJSON(t *testing.T) {
	valid := []byte(`{
		"images": {"img-1": {"x": 0, "y": 0, "w": 100, "h": 100}},
		"viewport": {"min_x": 0, "min_y": 0, "max_x": 2048, "max_y": 2048},
		"branches": [{"branch_id": "b1", "asset_type": "icon", "asset_key": "crop"}]
	}`)
	if err := ValidateSceneJSON(valid); err != nil {
		t.Fatalf("valid scene rejected: %v", err)
	}

	missingViewportField := []byte(`{
		"images": {},
		"viewport": {"min_x": 0, "min_y": 0, "max_x": 2048}
	}`)
	err := ValidateSceneJSON(missingViewportField)
	if err == nil {
		t.Fatalf("expected validation error for incomplete viewport")
	}
	if !strings.Contains(err.Error(), "max_y") {
		t.Fatalf("error should name the missing field: %v", err)
	}

	if err := ValidateSceneJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
}
