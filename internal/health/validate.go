package health

import (
	"fmt"
	"strings"
	"time"

	"healthconnect-api/internal/models"
)

const DateLayout = "2006-01-02"

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func rangeCheck(field string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be between %g and %g", lo, hi)}
	}
	return nil
}

func ValidateProfile(d models.HealthData) error {
	if d.Age != nil {
		if err := rangeCheck("age", float64(*d.Age), 1, 120); err != nil {
			return err
		}
	}
	if d.Height != nil {
		if err := rangeCheck("height", *d.Height, 50, 250); err != nil {
			return err
		}
	}
	if d.Weight != nil {
		if err := rangeCheck("weight", *d.Weight, 20, 350); err != nil {
			return err
		}
	}
	if d.BloodGlucose != nil {
		if err := rangeCheck("blood_glucose", *d.BloodGlucose, 0, 600); err != nil {
			return err
		}
	}
	if d.Gender != nil {
		if _, ok := genderOffsets[lookupKey(*d.Gender)]; !ok {
			return &ValidationError{Field: "gender", Reason: "must be male, female or other"}
		}
	}
	if level := lookupKey(d.ActivityLevel); level != "" {
		if _, ok := ActivityMultipliers[level]; !ok {
			return &ValidationError{Field: "activity_level", Reason: "unknown activity level"}
		}
	}
	return nil
}

func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

var mealTypes = map[string]bool{"breakfast": true, "lunch": true, "dinner": true, "snack": true}

func ValidateMeal(m models.MealEntry) error {
	if !ValidDate(m.Date) {
		return &ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	if strings.TrimSpace(m.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if !mealTypes[m.MealType] {
		return &ValidationError{Field: "meal_type", Reason: "must be breakfast, lunch, dinner or snack"}
	}
	if m.Calories < 0 || m.ProteinG < 0 || m.CarbsG < 0 || m.FatG < 0 {
		return &ValidationError{Field: "calories", Reason: "nutrition values cannot be negative"}
	}
	return nil
}

var intensities = map[string]bool{"low": true, "moderate": true, "high": true}

func ValidateWorkout(w models.WorkoutEntry) error {
	if !ValidDate(w.Date) {
		return &ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	if strings.TrimSpace(w.Type) == "" {
		return &ValidationError{Field: "type", Reason: "required"}
	}
	if w.DurationMinutes <= 0 {
		return &ValidationError{Field: "duration_minutes", Reason: "must be positive"}
	}
	if w.CaloriesBurned < 0 {
		return &ValidationError{Field: "calories_burned", Reason: "cannot be negative"}
	}
	if w.Intensity != "" && !intensities[w.Intensity] {
		return &ValidationError{Field: "intensity", Reason: "must be low, moderate or high"}
	}
	return nil
}
