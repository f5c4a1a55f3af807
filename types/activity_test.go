package types_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sayandeep-bot/spectosoft/types"
)

func TestActivityBatch_JSONShape(t *testing.T) {
	title := "Editor"
	batch := types.ActivityBatch{
		Activities: []types.Activity{
			{
				Timestamp:   "2025-03-01T10:00:00Z",
				Type:        types.ActivityKeyboardInput,
				Details:     "hello",
				WindowTitle: &title,
			},
			{
				Timestamp: "2025-03-01T10:00:00Z",
				Type:      types.ActivityMouseClick,
				Details:   "3 mouse clicks",
			},
		},
	}

	data, err := json.Marshal(batch)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	s := string(data)
	for _, want := range []string{
		`"activities"`,
		`"activity_type":"KeyboardInput"`,
		`"activity_type":"MouseClick"`,
		`"window_title":"Editor"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("encoded batch missing %s: %s", want, s)
		}
	}

	// Optional fields are omitted when unset.
	if strings.Contains(s, `"app_name"`) {
		t.Errorf("unset app_name should be omitted: %s", s)
	}

	var decoded types.ActivityBatch
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.Activities) != 2 {
		t.Fatalf("round trip lost activities: %d", len(decoded.Activities))
	}
	if decoded.Activities[0].WindowTitle == nil || *decoded.Activities[0].WindowTitle != "Editor" {
		t.Error("window_title did not survive round trip")
	}
}
