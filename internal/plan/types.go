// Package plan defines the workout-plan domain model and the response
// validator that turns untrusted vendor output into a trusted document.
package plan

import "fmt"

// Modality selects the training style a plan is generated for. It also
// determines which per-exercise fields the validator requires.
type Modality string

const (
	ModalityStrength    Modality = "strength"
	ModalityCardio      Modality = "cardio"
	ModalityHIIT        Modality = "hiit"
	ModalityFlexibility Modality = "flexibility"
)

// KnownModality reports whether m is one of the supported modalities.
func KnownModality(m Modality) bool {
	switch m {
	case ModalityStrength, ModalityCardio, ModalityHIIT, ModalityFlexibility:
		return true
	}
	return false
}

// Profile carries the user-reported fitness profile. The free-text fields
// are untrusted and are sanitized by the prompt builder before they reach
// a vendor.
type Profile struct {
	Goals           string `json:"goals"`
	FitnessLevel    string `json:"fitnessLevel"`
	Injuries        string `json:"injuries,omitempty"`
	Medications     string `json:"medications,omitempty"`
	CurrentActivity string `json:"currentActivity,omitempty"`
}

// Schedule describes how often and how long the user wants to train.
type Schedule struct {
	SessionsPerWeek        int `json:"sessionsPerWeek"`
	SessionDurationMinutes int `json:"sessionDurationMinutes"`
}

// GenerationRequest is the normalized input contract for one generation
// call. It is constructed per request and never persisted.
type GenerationRequest struct {
	Profile   Profile  `json:"profile"`
	Equipment []string `json:"equipment"`
	Modality  Modality `json:"modality"`
	Schedule  Schedule `json:"schedule"`
}

// ValidateInput checks the request invariants before any vendor call is
// made. A failure here is a caller error, never a vendor error.
func (r *GenerationRequest) ValidateInput() error {
	if !KnownModality(r.Modality) {
		return fmt.Errorf("unknown modality %q; supported: strength, cardio, hiit, flexibility", r.Modality)
	}
	if r.Schedule.SessionsPerWeek < 1 {
		return fmt.Errorf("schedule.sessionsPerWeek must be >= 1, got %d", r.Schedule.SessionsPerWeek)
	}
	if r.Schedule.SessionDurationMinutes <= 0 {
		return fmt.Errorf("schedule.sessionDurationMinutes must be > 0, got %d", r.Schedule.SessionDurationMinutes)
	}
	return nil
}

// WorkoutPlanDocument is the validated output of a generation call.
// The pipeline hands it to the caller, who owns persistence.
type WorkoutPlanDocument struct {
	PlanOverview     string         `json:"planOverview"`
	WeeklySchedule   []ScheduledDay `json:"weeklySchedule"`
	ProgressionNotes string         `json:"progressionNotes,omitempty"`
	SafetyReminders  []string       `json:"safetyReminders,omitempty"`
}

// ScheduledDay is one weekday in the plan. Rest days carry no workout.
type ScheduledDay struct {
	Day       string   `json:"day"`
	DayOfWeek int      `json:"dayOfWeek,omitempty"`
	Focus     string   `json:"focus,omitempty"`
	Workout   *Workout `json:"workout,omitempty"`
}

// Workout is a single session's content.
type Workout struct {
	Name            string     `json:"name"`
	DurationMinutes int        `json:"duration,omitempty"`
	Warmup          []string   `json:"warmup,omitempty"`
	Exercises       []Exercise `json:"exercises"`
	Cooldown        []string   `json:"cooldown,omitempty"`
}

// Exercise is one movement within a workout. Which of the numeric fields
// are required depends on the requested modality: strength needs sets/reps,
// HIIT needs workSeconds/restSeconds/rounds, cardio and flexibility need a
// duration.
type Exercise struct {
	Name            string   `json:"name"`
	Equipment       []string `json:"equipment,omitempty"`
	MuscleGroups    []string `json:"muscleGroups,omitempty"`
	Sets            int      `json:"sets,omitempty"`
	Reps            int      `json:"reps,omitempty"`
	DurationMinutes int      `json:"duration,omitempty"`
	WorkSeconds     int      `json:"workSeconds,omitempty"`
	RestSeconds     int      `json:"restSeconds,omitempty"`
	Rounds          int      `json:"rounds,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// ValidationError codes. Every defect found in a vendor response carries
// one of these so retry prompts and API responses stay machine-readable.
const (
	CodeInvalidJSON      = "invalid_json"
	CodeRequired         = "required"
	CodeInvalidType      = "invalid_type"
	CodeInvalidValue     = "invalid_value"
	CodeDuplicateDay     = "duplicate_day"
	CodeUnknownEquipment = "unknown_equipment"
)

// ValidationError describes one defect in a vendor response. Path uses
// dotted/indexed notation, e.g. "weeklySchedule[2].workout.exercises[0].sets".
type ValidationError struct {
	Path     string `json:"path"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Received string `json:"received,omitempty"`
	Expected string `json:"expected,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// weekdayNames is the canonical set of accepted day values.
var weekdayNames = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
	"sunday":    true,
}
