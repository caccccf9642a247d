package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthconnect-api/internal/models"
	"healthconnect-api/internal/store"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestBMRCommand(t *testing.T) {
	out := execute(t, "bmr", "--gender", "male", "--age", "30", "--weight", "70", "--height", "170", "--activity", "moderate")

	assert.Contains(t, out, "BMR:  1618 kcal/day")
	assert.Contains(t, out, "TDEE: 2507 kcal/day")
	assert.Contains(t, out, "BMI:  24.2 (Normal)")
}

func TestExportAndReportCommands(t *testing.T) {
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "hc.db")

	ctx := context.Background()
	st, err := store.Open(ctx, dbFile)
	require.NoError(t, err)
	u := &models.User{ID: "u-1", Email: "cli@example.com", Name: "Cli", Tier: models.TierPro}
	require.NoError(t, st.CreateUser(ctx, u))
	_, err = st.SaveMeal(ctx, u.ID, models.MealEntry{
		ID: "m-1", Date: "2024-03-15", MealType: "lunch", Name: "Salad", Calories: 450,
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	archive := filepath.Join(dir, "archive")
	out := execute(t, "--db", dbFile, "export", "--email", "cli@example.com", "--dir", archive)
	assert.Contains(t, out, filepath.Join(archive, "2024", "03.json"))
	assert.FileExists(t, filepath.Join(archive, "2024", "03.json"))

	pdfPath := filepath.Join(dir, "report.pdf")
	execute(t, "--db", dbFile, "report", "--email", "cli@example.com", "--out", pdfPath)
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestExportImportAcrossAccounts(t *testing.T) {
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "hc.db")

	ctx := context.Background()
	st, err := store.Open(ctx, dbFile)
	require.NoError(t, err)
	for _, u := range []*models.User{
		{ID: "u-1", Email: "first@example.com", Tier: models.TierFree},
		{ID: "u-2", Email: "second@example.com", Tier: models.TierFree},
	} {
		require.NoError(t, st.CreateUser(ctx, u))
	}
	_, err = st.SaveMeal(ctx, "u-1", models.MealEntry{ID: "1710500000000", Date: "2024-03-15", MealType: "lunch", Name: "Salad", Calories: 450})
	require.NoError(t, err)
	_, err = st.SaveWorkout(ctx, "u-1", models.WorkoutEntry{ID: "1710500000001", Date: "2024-03-15", Type: "running", DurationMinutes: 30, CaloriesBurned: 300})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	archive := filepath.Join(dir, "archive")
	execute(t, "--db", dbFile, "export", "--email", "first@example.com", "--dir", archive)
	out := execute(t, "--db", dbFile, "import", "--email", "second@example.com", "--dir", archive)
	assert.Contains(t, out, "imported 2 entries")

	st, err = store.Open(ctx, dbFile)
	require.NoError(t, err)
	defer st.Close()
	for _, id := range []string{"u-1", "u-2"} {
		meals, err := st.ListMeals(ctx, id, "2024-03-15")
		require.NoError(t, err)
		require.Len(t, meals, 1, id)
		assert.Equal(t, "1710500000000", meals[0].ID)
	}
}
