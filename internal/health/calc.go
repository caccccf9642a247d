// Package health holds the energy and body-composition arithmetic used across the API:
// Mifflin-St Jeor BMR, activity-scaled TDEE, BMI and daily calorie balance.
package health

import (
	"errors"
	"math"
	"strings"

	"healthconnect-api/internal/models"
)

var (
	ErrMissingInput    = errors.New("missing or non-positive input")
	ErrInvalidActivity = errors.New("unknown activity level")
	ErrInvalidWorkout  = errors.New("unknown workout type")
	ErrInvalidGender   = errors.New("unknown gender")
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// ActivityMultipliers maps activity levels to their TDEE multiplier.
var ActivityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// WorkoutCalories is the flat daily addend for a regular workout type.
var WorkoutCalories = map[string]int{
	"none":     0,
	"walking":  150,
	"yoga":     180,
	"strength": 250,
	"cycling":  300,
	"swimming": 350,
	"running":  400,
	"hiit":     450,
}

var genderOffsets = map[string]float64{
	GenderMale:   5,
	GenderFemale: -161,
	GenderOther:  -78,
}

type EnergyInput struct {
	Gender        string  `json:"gender"`
	Age           int     `json:"age"`
	Weight        float64 `json:"weight"`
	Height        float64 `json:"height"`
	ActivityLevel string  `json:"activity_level"`
	WorkoutType   string  `json:"workout_type"`
}

type Energy struct {
	BMR  int `json:"bmr"`
	TDEE int `json:"tdee"`
}

func bmrRaw(gender string, age int, weight, height float64) (float64, error) {
	if age <= 0 || weight <= 0 || height <= 0 || gender == "" {
		return 0, ErrMissingInput
	}
	offset, ok := genderOffsets[lookupKey(gender)]
	if !ok {
		return 0, ErrInvalidGender
	}
	return 10*weight + 6.25*height - 5*float64(age) + offset, nil
}

// BMR returns the Mifflin-St Jeor basal metabolic rate rounded to whole kcal.
func BMR(gender string, age int, weight, height float64) (int, error) {
	raw, err := bmrRaw(gender, age, weight, height)
	if err != nil {
		return 0, err
	}
	return int(math.Round(raw)), nil
}

// lookupKey normalizes user-supplied gender, activity and workout names.
func lookupKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Calculate computes BMR and TDEE. Empty activity defaults to sedentary, empty workout to none.
func Calculate(in EnergyInput) (Energy, error) {
	raw, err := bmrRaw(in.Gender, in.Age, in.Weight, in.Height)
	if err != nil {
		return Energy{}, err
	}

	level := lookupKey(in.ActivityLevel)
	if level == "" {
		level = "sedentary"
	}
	mult, ok := ActivityMultipliers[level]
	if !ok {
		return Energy{}, ErrInvalidActivity
	}

	workout := lookupKey(in.WorkoutType)
	if workout == "" {
		workout = "none"
	}
	addend, ok := WorkoutCalories[workout]
	if !ok {
		return Energy{}, ErrInvalidWorkout
	}

	return Energy{
		BMR:  int(math.Round(raw)),
		TDEE: int(math.Round(raw*mult + float64(addend))),
	}, nil
}

// BMI returns weight(kg)/height(m)^2 rounded to one decimal.
func BMI(weight, height float64) (float64, error) {
	if weight <= 0 || height <= 0 {
		return 0, ErrMissingInput
	}
	m := height / 100
	return math.Round(weight/(m*m)*10) / 10, nil
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// ProfileComplete reports whether the core profile fields are all captured and positive.
func ProfileComplete(d models.HealthData) bool {
	return d.Age != nil && *d.Age > 0 &&
		d.Height != nil && *d.Height > 0 &&
		d.Weight != nil && *d.Weight > 0 &&
		d.Gender != nil && *d.Gender != ""
}

// Normalize recomputes the derived fields of a profile before it is saved.
func Normalize(d models.HealthData) models.HealthData {
	if d.Gender != nil {
		g := lookupKey(*d.Gender)
		d.Gender = &g
	}
	d.ActivityLevel = lookupKey(d.ActivityLevel)
	d.BMI = nil
	d.BMICategory = ""
	if d.Weight != nil && d.Height != nil {
		if bmi, err := BMI(*d.Weight, *d.Height); err == nil {
			d.BMI = &bmi
			d.BMICategory = BMICategory(bmi)
		}
	}
	d.ProfileComplete = ProfileComplete(d)
	d.MetricsComplete = d.ProfileComplete && d.BloodGlucose != nil && *d.BloodGlucose > 0
	return d
}

// Balance folds a day's meals and workouts against the TDEE target. A zero target
// yields status "unknown".
func Balance(date string, target int, meals []models.MealEntry, workouts []models.WorkoutEntry) models.DailySummary {
	s := models.DailySummary{Date: date, TargetCalories: target}
	for _, m := range meals {
		s.TotalIntakeCalories += m.Calories
		s.TotalProteinG += m.ProteinG
		s.TotalCarbsG += m.CarbsG
		s.TotalFatG += m.FatG
	}
	for _, w := range workouts {
		s.TotalBurnedCalories += w.CaloriesBurned
	}
	s.NetCalories = s.TotalIntakeCalories - s.TotalBurnedCalories

	if target <= 0 {
		s.Status = "unknown"
		return s
	}
	s.RemainingCalories = target - s.NetCalories
	switch {
	case s.RemainingCalories > 100:
		s.Status = "deficit"
	case s.RemainingCalories < -100:
		s.Status = "surplus"
	default:
		s.Status = "maintenance"
	}
	return s
}
