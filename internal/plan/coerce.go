package plan

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Coercion reshapes near-correct vendor output before strict validation:
// numeric strings in count fields become numbers and bare scalars in
// collection fields are wrapped into single-element arrays. It never
// invents values and is idempotent — coercing twice equals coercing once.
//
// This is deliberately an explicit pass over the known document shape, one
// field name at a time, not a generic recursive walker: only fields the
// schema declares as numeric or array are ever touched.

// coerceDocument coerces the top-level document object in place and
// returns it. Non-object input is returned unchanged.
func coerceDocument(tree any) any {
	doc, ok := tree.(map[string]any)
	if !ok {
		return tree
	}

	coerceArrayField(doc, "safetyReminders")

	if days, ok := doc["weeklySchedule"].([]any); ok {
		for _, d := range days {
			coerceDay(d)
		}
	}
	return doc
}

func coerceDay(v any) {
	day, ok := v.(map[string]any)
	if !ok {
		return
	}
	coerceNumberField(day, "dayOfWeek")

	if w, ok := day["workout"].(map[string]any); ok {
		coerceWorkout(w)
	}
}

func coerceWorkout(w map[string]any) {
	coerceNumberField(w, "duration")
	coerceArrayField(w, "warmup")
	coerceArrayField(w, "cooldown")

	if exs, ok := w["exercises"].([]any); ok {
		for _, e := range exs {
			if ex, ok := e.(map[string]any); ok {
				coerceExercise(ex)
			}
		}
	}
}

func coerceExercise(ex map[string]any) {
	coerceNumberField(ex, "sets")
	coerceNumberField(ex, "reps")
	coerceNumberField(ex, "duration")
	coerceNumberField(ex, "workSeconds")
	coerceNumberField(ex, "restSeconds")
	coerceNumberField(ex, "rounds")
	coerceArrayField(ex, "equipment")
	coerceArrayField(ex, "muscleGroups")
}

// coerceNumberField rewrites obj[key] to a json.Number when the present
// value is a numeric-looking string. Anything else is left for the
// validator to reject with a precise path.
func coerceNumberField(obj map[string]any, key string) {
	s, ok := obj[key].(string)
	if !ok {
		return
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
		return
	}
	obj[key] = json.Number(trimmed)
}

// coerceArrayField wraps a bare scalar at obj[key] into a single-element
// array. Existing arrays and absent keys are untouched.
func coerceArrayField(obj map[string]any, key string) {
	v, ok := obj[key]
	if !ok || v == nil {
		return
	}
	if _, isArr := v.([]any); isArr {
		return
	}
	obj[key] = []any{v}
}
