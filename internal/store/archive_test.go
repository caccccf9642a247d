package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthconnect-api/internal/models"
)

func seedDiary(t *testing.T, s *Store, userID string) {
	t.Helper()
	ctx := context.Background()
	_, err := s.SaveBMR(ctx, userID, models.BMRData{BMR: 1618, TDEE: 2000})
	require.NoError(t, err)

	meals := []models.MealEntry{
		{ID: "m1", Date: "2025-02-27", MealType: "lunch", Name: "Soup", Calories: 400},
		{ID: "m2", Date: "2025-03-01", MealType: "breakfast", Name: "Oats", Calories: 350},
		{ID: "m3", Date: "2025-03-01", MealType: "dinner", Name: "Rice", Calories: 700},
	}
	for _, m := range meals {
		_, err := s.SaveMeal(ctx, userID, m)
		require.NoError(t, err)
	}
	_, err = s.SaveWorkout(ctx, userID, models.WorkoutEntry{ID: "w1", Date: "2025-03-01", Type: "cycling", DurationMinutes: 45, CaloriesBurned: 400})
	require.NoError(t, err)
}

func TestDayRecords_GroupsByDate(t *testing.T) {
	s := newTestStore(t)
	seedDiary(t, s, "u1")

	records, err := s.DayRecords(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "2025-02-27", records[0].Date)
	march := records[1]
	assert.Len(t, march.Meals, 2)
	assert.Len(t, march.Workouts, 1)
	assert.Equal(t, 1050, march.Summary.TotalIntakeCalories)
	assert.Equal(t, 650, march.Summary.NetCalories)
	assert.Equal(t, 1350, march.Summary.RemainingCalories)
}

func TestExportArchive_WritesMonthlyFiles(t *testing.T) {
	s := newTestStore(t)
	seedDiary(t, s, "u1")
	dir := t.TempDir()

	paths, err := s.ExportArchive(context.Background(), "u1", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "2025", "02.json"),
		filepath.Join(dir, "2025", "03.json"),
	}, paths)

	records, errs := ReadArchive(dir)
	assert.Empty(t, errs)
	require.Len(t, records, 2)
	assert.Equal(t, "2025-03-01", records[1].Date)

	other := newTestStore(t)
	n, err := other.ImportArchive(context.Background(), "u9", records)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	meals, err := other.ListMeals(context.Background(), "u9", "2025-03-01")
	require.NoError(t, err)
	assert.Len(t, meals, 2)
}

func TestImportArchive_IntoSecondUserOfSameStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDiary(t, s, "u1")
	dir := t.TempDir()

	_, err := s.ExportArchive(ctx, "u1", dir)
	require.NoError(t, err)
	records, errs := ReadArchive(dir)
	require.Empty(t, errs)

	n, err := s.ImportArchive(ctx, "u2", records)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	for _, user := range []string{"u1", "u2"} {
		meals, err := s.ListMeals(ctx, user, "")
		require.NoError(t, err)
		assert.Len(t, meals, 3, user)
		workouts, err := s.ListWorkouts(ctx, user, "")
		require.NoError(t, err)
		assert.Len(t, workouts, 1, user)
	}

	// Importing again replaces by id instead of duplicating.
	n, err = s.ImportArchive(ctx, "u2", records)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	meals, err := s.ListMeals(ctx, "u2", "")
	require.NoError(t, err)
	assert.Len(t, meals, 3)
}

func TestReadArchive_SkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2025"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2025", "01.json"), []byte(`[{"date":"2025-01-02"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2025", "02.json"), []byte(`not json`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2025", "notes.txt"), []byte(`ignored`), 0o644))

	records, errs := ReadArchive(dir)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-01-02", records[0].Date)
	assert.Len(t, errs, 1)
}
