package plan

import (
	"fmt"
	"strings"
)

// SchemaInstruction renders the output schema as explicit text for the
// vendor prompt. The per-exercise fields vary by modality, matching what
// the validator will later require.
func SchemaInstruction(m Modality) string {
	var b strings.Builder

	b.WriteString("The response must be a single JSON object with this exact shape:\n")
	b.WriteString(`{
  "planOverview": "string — 2-3 sentence summary of the plan",
  "weeklySchedule": [
    {
      "day": "string — a weekday name (monday..sunday), each day at most once",
      "dayOfWeek": "integer 1-7 (optional)",
      "focus": "string (optional)",
      "workout": {
        "name": "string",
        "duration": "integer minutes (optional)",
        "warmup": ["string", "..."],
        "exercises": [` + "\n")
	b.WriteString(exerciseSchema(m))
	b.WriteString(`        ],
        "cooldown": ["string", "..."]
      }
    }
  ],
  "progressionNotes": "string (optional)",
  "safetyReminders": ["string", "..."]
}` + "\n")
	b.WriteString("Rest days must omit the \"workout\" field entirely.\n")
	b.WriteString("Numbers must be JSON numbers, not quoted strings.\n")

	return b.String()
}

func exerciseSchema(m Modality) string {
	common := `            "name": "string",
            "equipment": ["string — only equipment from the user's list"],
            "muscleGroups": ["string", "..."],
            "notes": "string (optional)"`

	var fields string
	switch m {
	case ModalityStrength:
		fields = `            "sets": "integer >= 1 (required)",
            "reps": "integer >= 1 (required)",
`
	case ModalityHIIT:
		fields = `            "workSeconds": "integer >= 1 (required)",
            "restSeconds": "integer >= 0 (required)",
            "rounds": "integer >= 1 (required)",
`
	case ModalityCardio, ModalityFlexibility:
		fields = `            "duration": "integer minutes >= 1 (required)",
`
	}

	return fmt.Sprintf("          {\n%s%s\n          }\n", fields, common)
}
