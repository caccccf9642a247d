package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"healthconnect-api/internal/models"
)

// Recorder receives one observation per AI call.
type Recorder interface {
	ObserveAI(feature, outcome string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAI(string, string, time.Duration) {}

type Service struct {
	gen      Generator
	policy   Policy
	logger   *zap.Logger
	recorder Recorder
}

func NewService(gen Generator, policy Policy, logger *zap.Logger) *Service {
	return &Service{gen: gen, policy: policy, logger: logger, recorder: nopRecorder{}}
}

func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

func (s *Service) Policy() Policy {
	return s.policy
}

func (s *Service) generate(ctx context.Context, u *models.User, f Feature, req Request) (string, error) {
	key, model, err := s.policy.Resolve(u, f)
	if err != nil {
		return "", err
	}
	req.APIKey = key
	req.Model = model

	start := time.Now()
	text, err := s.gen.Generate(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if !errors.Is(err, ErrMissingAPIKey) && !errors.Is(err, ErrUpstream) {
			err = fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		s.logger.Warn("AI request failed",
			zap.String("feature", string(f)),
			zap.String("user_id", u.ID),
			zap.String("model", model),
			zap.Error(err))
	}
	s.recorder.ObserveAI(string(f), outcome, time.Since(start))
	return text, err
}

func (s *Service) malformed(f Feature, u *models.User, text string) {
	s.recorder.ObserveAI(string(f), "malformed", 0)
	s.logger.Warn("AI response malformed",
		zap.String("feature", string(f)),
		zap.String("user_id", u.ID),
		zap.Int("length", len(text)))
}

// Chat answers a free-text message with the prior conversation as context.
func (s *Service) Chat(ctx context.Context, u *models.User, profile models.HealthData, history []models.ChatMessage, message string) (string, error) {
	msgs := make([]Message, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, Message{Role: m.Role, Content: m.Content})
	}
	text, err := s.generate(ctx, u, FeatureChat, Request{
		System:      chatSystemPrompt,
		History:     msgs,
		Prompt:      buildChatPrompt(profile, message),
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// HealthAnalysis returns one scored section per health category. A response without a
// JSON array is an error; there is no sensible default assessment.
func (s *Service) HealthAnalysis(ctx context.Context, u *models.User, profile models.HealthData) ([]models.AnalysisSection, error) {
	text, err := s.generate(ctx, u, FeatureAnalysis, Request{Prompt: buildAnalysisPrompt(profile), Temperature: 0.2})
	if err != nil {
		return nil, err
	}
	arr, ok := extractArray(text)
	if !ok {
		s.malformed(FeatureAnalysis, u, text)
		return nil, ErrMalformedResponse
	}

	var sections []models.AnalysisSection
	arr.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		sections = append(sections, models.AnalysisSection{
			Category:        stringField(item, defaultCategory, "category"),
			Title:           stringField(item, defaultTitle, "title"),
			Content:         stringField(item, defaultContent, "content", "description", "analysis"),
			Score:           scoreField(item),
			Recommendations: stringList(item.Get("recommendations")),
		})
		return true
	})
	if len(sections) == 0 {
		s.malformed(FeatureAnalysis, u, text)
		return nil, ErrMalformedResponse
	}
	return sections, nil
}

type InsightsResult struct {
	Sections []models.InsightSection `json:"sections"`
	Fallback bool                    `json:"fallback"`
}

func (s *Service) Insights(ctx context.Context, u *models.User, profile models.HealthData, meals []models.MealEntry, workouts []models.WorkoutEntry) (InsightsResult, error) {
	text, err := s.generate(ctx, u, FeatureInsights, Request{Prompt: buildInsightsPrompt(profile, meals, workouts), Temperature: 0.4})
	if err != nil {
		return InsightsResult{}, err
	}

	var sections []models.InsightSection
	if arr, ok := extractArray(text); ok {
		arr.ForEach(func(_, item gjson.Result) bool {
			if !item.IsObject() {
				return true
			}
			sections = append(sections, models.InsightSection{
				Category:    stringField(item, defaultCategory, "category"),
				Title:       stringField(item, defaultTitle, "title"),
				Description: stringField(item, defaultContent, "description", "content"),
				Score:       scoreField(item),
				Priority:    priorityField(item),
			})
			return true
		})
	}
	if len(sections) == 0 {
		s.malformed(FeatureInsights, u, text)
		return InsightsResult{Sections: DefaultInsights(), Fallback: true}, nil
	}
	return InsightsResult{Sections: sections}, nil
}

func priorityField(r gjson.Result) string {
	switch p := strings.ToLower(r.Get("priority").String()); p {
	case "low", "medium", "high":
		return p
	}
	return "medium"
}

// DefaultInsights is served when the model's answer cannot be parsed.
func DefaultInsights() []models.InsightSection {
	return []models.InsightSection{
		{Category: "Nutrition", Title: "Log your meals consistently", Description: "Tracking every meal for a week gives a reliable picture of your calorie and macro intake.", Score: defaultScore, Priority: "medium"},
		{Category: "Activity", Title: "Aim for 150 minutes a week", Description: "Moderate activity such as brisk walking for 30 minutes on five days covers the weekly recommendation.", Score: defaultScore, Priority: "medium"},
		{Category: "Hydration", Title: "Drink water regularly", Description: "Keep water at hand through the day; thirst is often mistaken for hunger.", Score: defaultScore, Priority: "low"},
	}
}

// NutritionPlan asks for a one-day plan; an unparseable answer degrades to a plan derived
// from the calorie target with a 30/40/30 protein/carb/fat split.
func (s *Service) NutritionPlan(ctx context.Context, u *models.User, profile models.HealthData, target int, prefs NutritionPrefs) (models.NutritionPlan, error) {
	if prefs.MealsPerDay <= 0 {
		prefs.MealsPerDay = 3
	}
	text, err := s.generate(ctx, u, FeatureNutrition, Request{Prompt: buildNutritionPrompt(profile, target, prefs), Temperature: 0.5})
	if err != nil {
		return models.NutritionPlan{}, err
	}

	obj, ok := extractObject(text)
	if !ok {
		s.malformed(FeatureNutrition, u, text)
		return DefaultNutritionPlan(target, prefs.MealsPerDay), nil
	}

	plan := models.NutritionPlan{
		DailyCalories: int(numberField(obj, "daily_calories", "dailyCalories", "calories")),
		Macros: models.MacroSplit{
			ProteinG: numberField(obj, "macros.protein_g", "macros.protein"),
			CarbsG:   numberField(obj, "macros.carbs_g", "macros.carbs"),
			FatG:     numberField(obj, "macros.fat_g", "macros.fat"),
		},
		Tips: stringList(obj.Get("tips")),
	}
	if plan.DailyCalories <= 0 {
		plan.DailyCalories = target
	}
	obj.Get("meals").ForEach(func(_, m gjson.Result) bool {
		plan.Meals = append(plan.Meals, models.MealSuggestion{
			Name:        stringField(m, "Meal", "name"),
			Time:        stringField(m, "", "time"),
			Calories:    int(numberField(m, "calories")),
			Description: stringField(m, "", "description"),
		})
		return true
	})
	if len(plan.Meals) == 0 {
		plan.Meals = defaultMeals(plan.DailyCalories, prefs.MealsPerDay)
	}
	if plan.Tips == nil {
		plan.Tips = []string{}
	}
	return plan, nil
}

func DefaultNutritionPlan(target, mealsPerDay int) models.NutritionPlan {
	if target <= 0 {
		target = 2000
	}
	if mealsPerDay <= 0 {
		mealsPerDay = 3
	}
	cal := float64(target)
	return models.NutritionPlan{
		DailyCalories: target,
		Macros: models.MacroSplit{
			ProteinG: math.Round(cal * 0.30 / 4),
			CarbsG:   math.Round(cal * 0.40 / 4),
			FatG:     math.Round(cal * 0.30 / 9),
		},
		Meals: defaultMeals(target, mealsPerDay),
		Tips: []string{
			"Include a source of protein with every meal.",
			"Fill half your plate with vegetables.",
			"Prefer whole grains over refined carbohydrates.",
		},
		Fallback: true,
	}
}

func defaultMeals(target, n int) []models.MealSuggestion {
	names := []string{"Breakfast", "Lunch", "Dinner", "Snack", "Snack", "Snack"}
	times := []string{"08:00", "13:00", "19:00", "16:00", "10:30", "21:00"}
	if n > len(names) {
		n = len(names)
	}
	meals := make([]models.MealSuggestion, 0, n)
	for i := 0; i < n; i++ {
		meals = append(meals, models.MealSuggestion{
			Name:        names[i],
			Time:        times[i],
			Calories:    target / n,
			Description: "Balanced plate: lean protein, whole grains and vegetables.",
		})
	}
	return meals
}

// EstimateMeal estimates calories and macros for a free-text meal description.
func (s *Service) EstimateMeal(ctx context.Context, u *models.User, description string) (models.MealEstimate, error) {
	text, err := s.generate(ctx, u, FeatureMealEstimate, Request{Prompt: buildMealEstimatePrompt(description), Temperature: 0.1})
	if err != nil {
		return models.MealEstimate{}, err
	}
	obj, ok := extractObject(text)
	if !ok || !obj.Get("calories").Exists() {
		s.malformed(FeatureMealEstimate, u, text)
		return models.MealEstimate{}, ErrMalformedResponse
	}
	return models.MealEstimate{
		Name:     stringField(obj, description, "name"),
		Calories: int(math.Round(numberField(obj, "calories"))),
		ProteinG: numberField(obj, "protein_g", "protein"),
		CarbsG:   numberField(obj, "carbs_g", "carbs"),
		FatG:     numberField(obj, "fat_g", "fat"),
	}, nil
}

const DefaultSpecialty = "General Practitioner"

// SuggestSpecialties maps symptoms to medical specialties. An answer that cannot be parsed
// yields a general practitioner with fallback set.
func (s *Service) SuggestSpecialties(ctx context.Context, u *models.User, symptoms string) (specialties []string, fallback bool, err error) {
	text, err := s.generate(ctx, u, FeatureSpecialties, Request{Prompt: buildSpecialtyPrompt(symptoms), Temperature: 0.1})
	if err != nil {
		return nil, false, err
	}
	arr, ok := extractArray(text)
	var out []string
	if ok {
		out = stringList(arr)
	}
	if len(out) == 0 {
		s.malformed(FeatureSpecialties, u, text)
		return []string{DefaultSpecialty}, true, nil
	}
	return out, false, nil
}
