package health

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"healthconnect-api/internal/models"
)

func TestValidateProfile(t *testing.T) {
	assert.NoError(t, ValidateProfile(models.HealthData{}))
	assert.NoError(t, ValidateProfile(models.HealthData{Age: intPtr(40), Gender: strPtr("Other"), ActivityLevel: "light"}))

	err := ValidateProfile(models.HealthData{Age: intPtr(0)})
	var verr *ValidationError
	if assert.True(t, errors.As(err, &verr)) {
		assert.Equal(t, "age", verr.Field)
	}

	assert.Error(t, ValidateProfile(models.HealthData{Height: floatPtr(400)}))
	assert.Error(t, ValidateProfile(models.HealthData{Gender: strPtr("unknown")}))
	assert.Error(t, ValidateProfile(models.HealthData{ActivityLevel: "extreme"}))
	assert.NoError(t, ValidateProfile(models.HealthData{ActivityLevel: " Moderate"}))
	assert.NoError(t, ValidateProfile(models.HealthData{Gender: strPtr(" MALE ")}))
	assert.Error(t, ValidateProfile(models.HealthData{BloodGlucose: floatPtr(-1)}))
}

func TestValidateMeal(t *testing.T) {
	ok := models.MealEntry{Date: "2025-03-01", MealType: "lunch", Name: "Salad", Calories: 300}
	assert.NoError(t, ValidateMeal(ok))

	bad := ok
	bad.Date = "03/01/2025"
	assert.Error(t, ValidateMeal(bad))

	bad = ok
	bad.MealType = "brunch"
	assert.Error(t, ValidateMeal(bad))

	bad = ok
	bad.Calories = -5
	assert.Error(t, ValidateMeal(bad))
}

func TestValidateWorkout(t *testing.T) {
	ok := models.WorkoutEntry{Date: "2025-03-01", Type: "running", DurationMinutes: 30, CaloriesBurned: 300, Intensity: "high"}
	assert.NoError(t, ValidateWorkout(ok))

	bad := ok
	bad.DurationMinutes = 0
	assert.Error(t, ValidateWorkout(bad))

	bad = ok
	bad.Intensity = "insane"
	assert.Error(t, ValidateWorkout(bad))
}
