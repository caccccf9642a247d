package report

import (
	"context"
	"errors"
	"fmt"

	"healthconnect-api/internal/models"
	"healthconnect-api/internal/store"
)

// recentEntries caps the meal and workout lists printed in a report.
const recentEntries = 30

// Source is the read side of the store a report draws from.
type Source interface {
	GetProfile(ctx context.Context, userID string) (models.HealthData, error)
	GetBMR(ctx context.Context, userID string) (models.BMRData, error)
	ListMeals(ctx context.Context, userID, date string) ([]models.MealEntry, error)
	ListWorkouts(ctx context.Context, userID, date string) ([]models.WorkoutEntry, error)
}

// Collect loads everything a report shows for u except the daily summary.
func Collect(ctx context.Context, src Source, u *models.User) (Data, error) {
	d := Data{User: *u}

	profile, err := src.GetProfile(ctx, u.ID)
	if err != nil {
		return Data{}, fmt.Errorf("load profile: %w", err)
	}
	d.Profile = profile

	bmr, err := src.GetBMR(ctx, u.ID)
	switch {
	case err == nil:
		d.BMR = &bmr
	case !errors.Is(err, store.ErrNotFound):
		return Data{}, fmt.Errorf("load bmr: %w", err)
	}

	meals, err := src.ListMeals(ctx, u.ID, "")
	if err != nil {
		return Data{}, fmt.Errorf("load meals: %w", err)
	}
	workouts, err := src.ListWorkouts(ctx, u.ID, "")
	if err != nil {
		return Data{}, fmt.Errorf("load workouts: %w", err)
	}
	d.Meals = tail(meals, recentEntries)
	d.Workouts = tail(workouts, recentEntries)
	return d, nil
}

func tail[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
