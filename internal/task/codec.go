package task

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Legacy priority spellings from earlier schema versions. The reminder
// variants predate the isDailyReminder flag; records carrying them migrate
// to flag-plus-Hopper on decode.
const (
	legacyPriorityDailyReminders = "Daily Reminders"
	legacyPriorityDaily          = "Daily"
	legacyPriorityQuickAndDirty  = "Quick & Dirty"
)

// Encode serializes a task to its stored string form.
func Encode(t *Task) (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode task %s: %w", t.ID, err)
	}
	return string(data), nil
}

// Decode deserializes a stored record. Records written by older versions of
// the tracker are migrated to the current schema:
//
//   - priority "Daily Reminders" or "Daily" becomes IsDailyReminder=true
//     with priority Hopper
//   - priority "Quick & Dirty" becomes Hopper
//   - a record that does not parse as JSON at all is kept as a raw-text
//     task so legacy data is never dropped on read
func Decode(id, raw string) *Task {
	if !gjson.Valid(raw) {
		return &Task{
			ID:       id,
			Text:     raw,
			Priority: PriorityHopper,
			Category: CategoryOther,
		}
	}

	var t Task
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		// Valid JSON but not an object (bare string/number). Same raw
		// fallback as unparseable data.
		return &Task{
			ID:       id,
			Text:     raw,
			Priority: PriorityHopper,
			Category: CategoryOther,
		}
	}

	if t.ID == "" {
		t.ID = id
	}

	switch string(t.Priority) {
	case legacyPriorityDailyReminders, legacyPriorityDaily:
		t.Priority = PriorityHopper
		t.IsDailyReminder = true
	case legacyPriorityQuickAndDirty:
		t.Priority = PriorityHopper
	}

	// The marker field name drifted before settling on isDailyReminder.
	if !t.IsDailyReminder {
		for _, field := range []string{"dailyReminder", "daily_reminder"} {
			if gjson.Get(raw, field).Bool() {
				t.IsDailyReminder = true
				break
			}
		}
	}

	if t.Priority == "" {
		t.Priority = PriorityHopper
	}
	if t.Workspace == "" {
		t.Workspace = DefaultWorkspace
	}

	return &t
}
