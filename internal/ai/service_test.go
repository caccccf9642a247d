package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"healthconnect-api/internal/models"
)

type fakeGenerator struct {
	reply string
	err   error
	reqs  []Request
}

func (f *fakeGenerator) Generate(_ context.Context, req Request) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.reply, f.err
}

type observation struct {
	feature, outcome string
}

type fakeRecorder struct {
	seen []observation
}

func (r *fakeRecorder) ObserveAI(feature, outcome string, _ time.Duration) {
	r.seen = append(r.seen, observation{feature, outcome})
}

func newTestService(reply string) (*Service, *fakeGenerator, *fakeRecorder) {
	gen := &fakeGenerator{reply: reply}
	rec := &fakeRecorder{}
	svc := NewService(gen, Policy{ServerKey: "server-key", DefaultModel: "gemini-2.0-flash"}, zap.NewNop()).WithRecorder(rec)
	return svc, gen, rec
}

var (
	proUser  = &models.User{ID: "u-pro", Tier: models.TierPro}
	liteUser = &models.User{ID: "u-lite", Tier: models.TierLite}
	freeUser = &models.User{ID: "u-free", Tier: models.TierFree, AI: models.AISettings{APIKey: "user-key"}}
)

func TestChat_PassesHistoryAndSystemPrompt(t *testing.T) {
	svc, gen, rec := newTestService("  Drink more water.\n")
	history := []models.ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "model", Content: "hello"},
	}

	reply, err := svc.Chat(context.Background(), freeUser, models.HealthData{}, history, "any tips?")
	require.NoError(t, err)
	assert.Equal(t, "Drink more water.", reply)

	require.Len(t, gen.reqs, 1)
	req := gen.reqs[0]
	assert.Equal(t, "user-key", req.APIKey)
	assert.Equal(t, "gemini-2.0-flash", req.Model)
	assert.Equal(t, chatSystemPrompt, req.System)
	assert.Equal(t, "any tips?", req.Prompt)
	assert.Equal(t, []Message{{Role: "user", Content: "hi"}, {Role: "model", Content: "hello"}}, req.History)
	assert.Equal(t, []observation{{"chat", "ok"}}, rec.seen)
}

func TestChat_UpstreamErrorIsWrapped(t *testing.T) {
	svc, gen, rec := newTestService("")
	gen.err = errors.New("connection reset")

	_, err := svc.Chat(context.Background(), proUser, models.HealthData{}, nil, "hello")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, []observation{{"chat", "error"}}, rec.seen)
}

func TestChat_FreeTierWithoutKey(t *testing.T) {
	svc, gen, _ := newTestService("unused")

	_, err := svc.Chat(context.Background(), &models.User{Tier: models.TierFree}, models.HealthData{}, nil, "hello")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Empty(t, gen.reqs)
}

func TestHealthAnalysis(t *testing.T) {
	reply := "Here you go:\n```json\n[" +
		`{"category":"Cardiovascular","title":"Heart","content":"Good","score":82,"recommendations":["walk"]},` +
		`{"category":"Metabolic","score":140},` +
		`"junk"` +
		"]\n```"
	svc, _, _ := newTestService(reply)

	sections, err := svc.HealthAnalysis(context.Background(), proUser, models.HealthData{})
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, models.AnalysisSection{
		Category: "Cardiovascular", Title: "Heart", Content: "Good", Score: 82, Recommendations: []string{"walk"},
	}, sections[0])
	assert.Equal(t, "Metabolic", sections[1].Category)
	assert.Equal(t, defaultTitle, sections[1].Title)
	assert.Equal(t, defaultContent, sections[1].Content)
	assert.Equal(t, 100, sections[1].Score)
}

func TestHealthAnalysis_Errors(t *testing.T) {
	svc, _, rec := newTestService("I cannot help with that.")
	_, err := svc.HealthAnalysis(context.Background(), proUser, models.HealthData{})
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Contains(t, rec.seen, observation{"analysis", "malformed"})

	svc, _, _ = newTestService(`[1, "two", null]`)
	_, err = svc.HealthAnalysis(context.Background(), proUser, models.HealthData{})
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = svc.HealthAnalysis(context.Background(), liteUser, models.HealthData{})
	assert.ErrorIs(t, err, ErrFeatureLocked)
}

func TestInsights(t *testing.T) {
	svc, _, _ := newTestService(`[{"category":"Sleep","title":"Rest","description":"Sleep 8h","score":70,"priority":"HIGH"},` +
		`{"title":"Move","priority":"urgent"}]`)

	res, err := svc.Insights(context.Background(), freeUser, models.HealthData{}, nil, nil)
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	require.Len(t, res.Sections, 2)
	assert.Equal(t, "high", res.Sections[0].Priority)
	assert.Equal(t, defaultCategory, res.Sections[1].Category)
	assert.Equal(t, defaultScore, res.Sections[1].Score)
	assert.Equal(t, "medium", res.Sections[1].Priority)
}

func TestInsights_FallbackOnNonObjectArray(t *testing.T) {
	svc, _, _ := newTestService(`["sleep more", 42]`)
	res, err := svc.Insights(context.Background(), freeUser, models.HealthData{}, nil, nil)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, DefaultInsights(), res.Sections)
}

func TestInsights_FallbackOnGarbage(t *testing.T) {
	svc, _, _ := newTestService("no json here")

	res, err := svc.Insights(context.Background(), freeUser, models.HealthData{}, nil, nil)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, DefaultInsights(), res.Sections)
}

func TestNutritionPlan(t *testing.T) {
	svc, gen, _ := newTestService(`{"daily_calories":2200,"macros":{"protein_g":150,"carbs_g":240,"fat_g":70},` +
		`"meals":[{"name":"Oats","time":"08:00","calories":500,"description":"with berries"}],"tips":["eat slowly"]}`)

	plan, err := svc.NutritionPlan(context.Background(), liteUser, models.HealthData{}, 2100, NutritionPrefs{Goal: "maintain"})
	require.NoError(t, err)
	assert.False(t, plan.Fallback)
	assert.Equal(t, 2200, plan.DailyCalories)
	assert.Equal(t, models.MacroSplit{ProteinG: 150, CarbsG: 240, FatG: 70}, plan.Macros)
	assert.Equal(t, []models.MealSuggestion{{Name: "Oats", Time: "08:00", Calories: 500, Description: "with berries"}}, plan.Meals)
	assert.Equal(t, []string{"eat slowly"}, plan.Tips)
	assert.Equal(t, "server-key", gen.reqs[0].APIKey)
	assert.Contains(t, gen.reqs[0].Prompt, "Daily calorie target: 2100 kcal")
	assert.Contains(t, gen.reqs[0].Prompt, "Meals per day: 3")
}

func TestNutritionPlan_Fallback(t *testing.T) {
	svc, _, _ := newTestService("Sorry, try again later")

	plan, err := svc.NutritionPlan(context.Background(), liteUser, models.HealthData{}, 2000, NutritionPrefs{MealsPerDay: 4})
	require.NoError(t, err)
	assert.True(t, plan.Fallback)
	assert.Equal(t, 2000, plan.DailyCalories)
	assert.Equal(t, models.MacroSplit{ProteinG: 150, CarbsG: 200, FatG: 67}, plan.Macros)
	require.Len(t, plan.Meals, 4)
	assert.Equal(t, 500, plan.Meals[0].Calories)
}

func TestNutritionPlan_LockedOnFree(t *testing.T) {
	svc, _, _ := newTestService("{}")
	_, err := svc.NutritionPlan(context.Background(), freeUser, models.HealthData{}, 2000, NutritionPrefs{})
	assert.ErrorIs(t, err, ErrFeatureLocked)
}

func TestEstimateMeal(t *testing.T) {
	svc, _, _ := newTestService("```json\n{\"name\":\"Chicken salad\",\"calories\":412.6,\"protein\":35,\"carbs_g\":12,\"fat_g\":24}\n```")

	est, err := svc.EstimateMeal(context.Background(), liteUser, "chicken salad")
	require.NoError(t, err)
	assert.Equal(t, models.MealEstimate{Name: "Chicken salad", Calories: 413, ProteinG: 35, CarbsG: 12, FatG: 24}, est)

	svc, _, _ = newTestService(`{"name":"??"}`)
	_, err = svc.EstimateMeal(context.Background(), liteUser, "mystery")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestSuggestSpecialties(t *testing.T) {
	svc, _, _ := newTestService(`["Cardiology", " ", "General Practitioner"]`)
	got, fallback, err := svc.SuggestSpecialties(context.Background(), liteUser, "chest pain")
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, []string{"Cardiology", "General Practitioner"}, got)

	svc, _, _ = newTestService("unclear")
	got, fallback, err = svc.SuggestSpecialties(context.Background(), liteUser, "feeling off")
	require.NoError(t, err)
	assert.True(t, fallback)
	assert.Equal(t, []string{DefaultSpecialty}, got)
}

func TestApplyAnalysis(t *testing.T) {
	d := ApplyAnalysis(models.HealthData{}, []models.AnalysisSection{
		{Category: "Cardiovascular", Score: 80},
		{Category: "Metabolic", Score: 60},
		{Category: "Body Composition", Score: 71},
		{Category: "Lifestyle", Score: 90},
	})

	require.NotNil(t, d.CardiovascularScore)
	require.NotNil(t, d.MetabolicScore)
	require.NotNil(t, d.LifestyleScore)
	require.NotNil(t, d.OverallScore)
	assert.Equal(t, 80, *d.CardiovascularScore)
	assert.Equal(t, 66, *d.MetabolicScore)
	assert.Equal(t, 90, *d.LifestyleScore)
	assert.Equal(t, 75, *d.OverallScore)
	assert.True(t, d.AdvancedAnalysisComplete)
	assert.Len(t, d.Analysis, 4)

	empty := ApplyAnalysis(d, nil)
	assert.Nil(t, empty.OverallScore)
	assert.False(t, empty.AdvancedAnalysisComplete)
}
