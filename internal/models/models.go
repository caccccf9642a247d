package models

import "time"

type Tier string

const (
	TierFree Tier = "free"
	TierLite Tier = "lite"
	TierPro  Tier = "pro"
)

func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierLite, TierPro:
		return true
	}
	return false
}

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Tier         Tier       `json:"tier"`
	PasswordHash string     `json:"-"`
	AI           AISettings `json:"ai"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AISettings holds the per-user model selection. APIKey is only required on the free tier.
type AISettings struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model,omitempty"`
}

// HealthData is the user's health profile. Nil pointers mean "not captured yet".
type HealthData struct {
	Age                      *int              `json:"age"`
	Height                   *float64          `json:"height"`
	Weight                   *float64          `json:"weight"`
	Gender                   *string           `json:"gender"`
	BloodGlucose             *float64          `json:"blood_glucose"`
	ActivityLevel            string            `json:"activity_level,omitempty"`
	BMI                      *float64          `json:"bmi"`
	BMICategory              string            `json:"bmi_category,omitempty"`
	ProfileComplete          bool              `json:"profile_complete"`
	MetricsComplete          bool              `json:"metrics_complete"`
	AdvancedAnalysisComplete bool              `json:"advanced_analysis_complete"`
	CardiovascularScore      *int              `json:"cardiovascular_score,omitempty"`
	MetabolicScore           *int              `json:"metabolic_score,omitempty"`
	LifestyleScore           *int              `json:"lifestyle_score,omitempty"`
	OverallScore             *int              `json:"overall_score,omitempty"`
	Analysis                 []AnalysisSection `json:"analysis,omitempty"`
	UpdatedAt                time.Time         `json:"updated_at"`
}

type BMRData struct {
	Gender        string    `json:"gender"`
	Age           int       `json:"age"`
	Weight        float64   `json:"weight"`
	Height        float64   `json:"height"`
	ActivityLevel string    `json:"activity_level"`
	WorkoutType   string    `json:"workout_type"`
	BMR           int       `json:"bmr"`
	TDEE          int       `json:"tdee"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type MealEntry struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	MealType  string    `json:"meal_type"`
	Name      string    `json:"name"`
	Calories  int       `json:"calories"`
	ProteinG  float64   `json:"protein_g"`
	CarbsG    float64   `json:"carbs_g"`
	FatG      float64   `json:"fat_g"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type WorkoutEntry struct {
	ID              string    `json:"id"`
	Date            string    `json:"date"`
	Type            string    `json:"type"`
	DurationMinutes int       `json:"duration_minutes"`
	CaloriesBurned  int       `json:"calories_burned"`
	Intensity       string    `json:"intensity"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type DailySummary struct {
	Date                string  `json:"date"`
	TargetCalories      int     `json:"target_calories"`
	TotalIntakeCalories int     `json:"total_intake_calories"`
	TotalBurnedCalories int     `json:"total_burned_calories"`
	NetCalories         int     `json:"net_calories"`
	RemainingCalories   int     `json:"remaining_calories"`
	TotalProteinG       float64 `json:"total_protein_g"`
	TotalCarbsG         float64 `json:"total_carbs_g"`
	TotalFatG           float64 `json:"total_fat_g"`
	Status              string  `json:"status"`
}

type AnalysisSection struct {
	Category        string   `json:"category"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Score           int      `json:"score"`
	Recommendations []string `json:"recommendations,omitempty"`
}

type InsightSection struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Score       int    `json:"score"`
	Priority    string `json:"priority"`
}

type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type MacroSplit struct {
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

type MealSuggestion struct {
	Name        string `json:"name"`
	Time        string `json:"time"`
	Calories    int    `json:"calories"`
	Description string `json:"description"`
}

type NutritionPlan struct {
	DailyCalories int              `json:"daily_calories"`
	Macros        MacroSplit       `json:"macros"`
	Meals         []MealSuggestion `json:"meals"`
	Tips          []string         `json:"tips"`
	Fallback      bool             `json:"fallback"`
}

type MealEstimate struct {
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}
