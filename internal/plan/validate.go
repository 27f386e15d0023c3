package plan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Validate converts raw vendor text into a trusted WorkoutPlanDocument, or
// a precise list of defects for a retry prompt. It never stops at the
// first error: one retry round-trip should be able to fix everything.
//
// Pipeline: extract JSON → unwrap envelope → coerce → strict validation.
func Validate(raw string, req *GenerationRequest) (*WorkoutPlanDocument, []ValidationError) {
	tree, extractErr := extractJSON(raw)
	if extractErr != nil {
		return nil, []ValidationError{*extractErr}
	}

	tree = coerceDocument(unwrapEnvelope(tree))

	v := &validator{req: req}
	v.validateDocument(tree)
	if len(v.errs) > 0 {
		return nil, v.errs
	}

	// The tree passed every check; round-trip it into the typed document.
	buf, err := json.Marshal(tree)
	if err != nil {
		return nil, []ValidationError{{
			Path: "$", Code: CodeInvalidJSON,
			Message: "failed to re-encode validated tree: " + err.Error(),
		}}
	}
	var doc WorkoutPlanDocument
	if err := json.Unmarshal(buf, &doc); err != nil {
		return nil, []ValidationError{{
			Path: "$", Code: CodeInvalidJSON,
			Message: "failed to decode validated tree: " + err.Error(),
		}}
	}
	return &doc, nil
}

// validator accumulates every violation found in one pass.
type validator struct {
	req  *GenerationRequest
	errs []ValidationError
}

func (v *validator) addf(path, code, received, expected, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Path:     path,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Received: received,
		Expected: expected,
	})
}

func (v *validator) validateDocument(tree any) {
	doc, ok := tree.(map[string]any)
	if !ok {
		v.addf("$", CodeInvalidType, typeName(tree), "object", "plan document must be a JSON object")
		return
	}

	v.requireString(doc, "planOverview", "planOverview")
	v.optionalString(doc, "progressionNotes", "progressionNotes")
	v.optionalStringArray(doc, "safetyReminders", "safetyReminders")

	days, ok := doc["weeklySchedule"].([]any)
	if !ok {
		v.addf("weeklySchedule", CodeRequired, typeName(doc["weeklySchedule"]), "array",
			"weeklySchedule must be a non-empty array of days")
		return
	}
	if len(days) == 0 {
		v.addf("weeklySchedule", CodeInvalidValue, "[]", "at least one day",
			"weeklySchedule must contain at least one day")
		return
	}

	seenDays := map[string]bool{}
	for i, d := range days {
		v.validateDay(fmt.Sprintf("weeklySchedule[%d]", i), d, seenDays)
	}
}

func (v *validator) validateDay(path string, val any, seenDays map[string]bool) {
	day, ok := val.(map[string]any)
	if !ok {
		v.addf(path, CodeInvalidType, typeName(val), "object", "each schedule entry must be an object")
		return
	}

	name := v.requireString(day, "day", path+".day")
	if name != "" {
		lower := strings.ToLower(strings.TrimSpace(name))
		if !weekdayNames[lower] {
			v.addf(path+".day", CodeInvalidValue, name, "a weekday name",
				"day must be a weekday name (monday..sunday)")
		} else if seenDays[lower] {
			v.addf(path+".day", CodeDuplicateDay, name, "a distinct weekday",
				"day %q appears more than once in weeklySchedule", name)
		} else {
			seenDays[lower] = true
		}
	}

	if n, present := day["dayOfWeek"]; present {
		if iv, ok := asInt(n); !ok || iv < 1 || iv > 7 {
			v.addf(path+".dayOfWeek", CodeInvalidValue, fmt.Sprint(n), "integer 1-7",
				"dayOfWeek must be an integer between 1 and 7")
		}
	}
	v.optionalString(day, "focus", path+".focus")

	w, present := day["workout"]
	if !present || w == nil {
		return // rest day
	}
	workout, ok := w.(map[string]any)
	if !ok {
		v.addf(path+".workout", CodeInvalidType, typeName(w), "object or null",
			"workout must be an object (or absent for a rest day)")
		return
	}
	v.validateWorkout(path+".workout", workout)
}

func (v *validator) validateWorkout(path string, w map[string]any) {
	v.requireString(w, "name", path+".name")
	v.optionalPositiveInt(w, "duration", path+".duration")
	v.optionalStringArray(w, "warmup", path+".warmup")
	v.optionalStringArray(w, "cooldown", path+".cooldown")

	exs, ok := w["exercises"].([]any)
	if !ok {
		v.addf(path+".exercises", CodeRequired, typeName(w["exercises"]), "array",
			"exercises must be a non-empty array")
		return
	}
	if len(exs) == 0 {
		v.addf(path+".exercises", CodeInvalidValue, "[]", "at least one exercise",
			"a workout must contain at least one exercise")
		return
	}
	for i, e := range exs {
		v.validateExercise(fmt.Sprintf("%s.exercises[%d]", path, i), e)
	}
}

func (v *validator) validateExercise(path string, val any) {
	ex, ok := val.(map[string]any)
	if !ok {
		v.addf(path, CodeInvalidType, typeName(val), "object", "each exercise must be an object")
		return
	}

	v.requireString(ex, "name", path+".name")
	v.optionalString(ex, "notes", path+".notes")
	v.optionalStringArray(ex, "muscleGroups", path+".muscleGroups")

	v.validateExerciseEquipment(path, ex)

	switch v.req.Modality {
	case ModalityStrength:
		v.requirePositiveInt(ex, "sets", path+".sets")
		v.requirePositiveInt(ex, "reps", path+".reps")
	case ModalityHIIT:
		v.requirePositiveInt(ex, "workSeconds", path+".workSeconds")
		v.requireNonNegativeInt(ex, "restSeconds", path+".restSeconds")
		v.requirePositiveInt(ex, "rounds", path+".rounds")
	case ModalityCardio, ModalityFlexibility:
		v.requirePositiveInt(ex, "duration", path+".duration")
	}
}

// validateExerciseEquipment enforces the subset invariant: an exercise may
// only reference equipment the request supplied. Bodyweight markers are
// always allowed.
func (v *validator) validateExerciseEquipment(path string, ex map[string]any) {
	raw, present := ex["equipment"]
	if !present || raw == nil {
		return
	}
	items, ok := raw.([]any)
	if !ok {
		v.addf(path+".equipment", CodeInvalidType, typeName(raw), "array of strings",
			"equipment must be an array of strings")
		return
	}

	allowed := map[string]bool{"bodyweight": true, "none": true}
	for _, e := range v.req.Equipment {
		allowed[strings.ToLower(strings.TrimSpace(e))] = true
	}

	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			v.addf(fmt.Sprintf("%s.equipment[%d]", path, i), CodeInvalidType,
				typeName(item), "string", "equipment entries must be strings")
			continue
		}
		if !allowed[strings.ToLower(strings.TrimSpace(s))] {
			v.addf(fmt.Sprintf("%s.equipment[%d]", path, i), CodeUnknownEquipment,
				s, "one of the equipment supplied in the request",
				"exercise references equipment %q that the user does not have", s)
		}
	}
}

// --- field helpers ---

func (v *validator) requireString(obj map[string]any, key, path string) string {
	val, present := obj[key]
	if !present || val == nil {
		v.addf(path, CodeRequired, "", "string", "%s is required", key)
		return ""
	}
	s, ok := val.(string)
	if !ok {
		v.addf(path, CodeInvalidType, typeName(val), "string", "%s must be a string", key)
		return ""
	}
	if strings.TrimSpace(s) == "" {
		v.addf(path, CodeInvalidValue, s, "non-empty string", "%s must not be empty", key)
		return ""
	}
	return s
}

func (v *validator) optionalString(obj map[string]any, key, path string) {
	val, present := obj[key]
	if !present || val == nil {
		return
	}
	if _, ok := val.(string); !ok {
		v.addf(path, CodeInvalidType, typeName(val), "string", "%s must be a string", key)
	}
}

func (v *validator) optionalStringArray(obj map[string]any, key, path string) {
	val, present := obj[key]
	if !present || val == nil {
		return
	}
	items, ok := val.([]any)
	if !ok {
		v.addf(path, CodeInvalidType, typeName(val), "array of strings", "%s must be an array of strings", key)
		return
	}
	for i, item := range items {
		if _, ok := item.(string); !ok {
			v.addf(fmt.Sprintf("%s[%d]", path, i), CodeInvalidType, typeName(item), "string",
				"%s entries must be strings", key)
		}
	}
}

func (v *validator) requirePositiveInt(obj map[string]any, key, path string) {
	v.requireIntAtLeast(obj, key, path, 1)
}

func (v *validator) requireNonNegativeInt(obj map[string]any, key, path string) {
	v.requireIntAtLeast(obj, key, path, 0)
}

func (v *validator) requireIntAtLeast(obj map[string]any, key, path string, minimum int) {
	val, present := obj[key]
	if !present || val == nil {
		v.addf(path, CodeRequired, "", "number", "%s is required for a %s plan", key, v.req.Modality)
		return
	}
	n, ok := asInt(val)
	if !ok {
		v.addf(path, CodeInvalidType, fmt.Sprint(val), "number", "%s must be a number", key)
		return
	}
	if n < minimum {
		v.addf(path, CodeInvalidValue, fmt.Sprint(n), fmt.Sprintf(">= %d", minimum),
			"%s must be >= %d", key, minimum)
	}
}

func (v *validator) optionalPositiveInt(obj map[string]any, key, path string) {
	val, present := obj[key]
	if !present || val == nil {
		return
	}
	if n, ok := asInt(val); !ok || n < 1 {
		v.addf(path, CodeInvalidValue, fmt.Sprint(val), "positive number", "%s must be a positive number", key)
	}
}

// asInt converts json.Number or float64 values to int. Fractional values
// are rejected rather than rounded.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil || f != float64(int(f)) {
			return 0, false
		}
		return int(f), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
