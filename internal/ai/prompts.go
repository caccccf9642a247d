package ai

import (
	"fmt"
	"strings"

	"healthconnect-api/internal/models"
)

const chatSystemPrompt = "You are HealthConnect's health assistant. Give practical, evidence-based " +
	"guidance on nutrition, exercise and general wellbeing. Be concise and friendly. You are not a " +
	"doctor: for symptoms that could be serious, tell the user to consult a medical professional."

func profileSummary(d models.HealthData) string {
	var b strings.Builder
	write := func(label, value string) {
		fmt.Fprintf(&b, "- %s: %s\n", label, value)
	}
	if d.Age != nil {
		write("Age", fmt.Sprintf("%d years", *d.Age))
	}
	if d.Gender != nil {
		write("Gender", *d.Gender)
	}
	if d.Height != nil {
		write("Height", fmt.Sprintf("%.0f cm", *d.Height))
	}
	if d.Weight != nil {
		write("Weight", fmt.Sprintf("%.1f kg", *d.Weight))
	}
	if d.BMI != nil {
		write("BMI", fmt.Sprintf("%.1f (%s)", *d.BMI, d.BMICategory))
	}
	if d.BloodGlucose != nil {
		write("Blood glucose", fmt.Sprintf("%.0f mg/dL", *d.BloodGlucose))
	}
	if d.ActivityLevel != "" {
		write("Activity level", d.ActivityLevel)
	}
	if b.Len() == 0 {
		return "- No profile data provided\n"
	}
	return b.String()
}

func buildAnalysisPrompt(d models.HealthData) string {
	var b strings.Builder
	b.WriteString("Analyze the following health profile and produce a structured assessment.\n\n")
	b.WriteString("Profile:\n")
	b.WriteString(profileSummary(d))
	b.WriteString("\nReturn ONLY a JSON array. Each element must have:\n")
	b.WriteString(`{"category": "Cardiovascular|Metabolic|Lifestyle|Body Composition", "title": string, ` +
		`"content": string, "score": number 0-100, "recommendations": [string]}` + "\n")
	b.WriteString("Include one element per category. Do not add any text outside the JSON array.")
	return b.String()
}

func buildInsightsPrompt(d models.HealthData, meals []models.MealEntry, workouts []models.WorkoutEntry) string {
	var b strings.Builder
	b.WriteString("Generate personalised health insights from this user's recent data.\n\n")
	b.WriteString("Profile:\n")
	b.WriteString(profileSummary(d))

	b.WriteString("\nRecent meals:\n")
	if len(meals) == 0 {
		b.WriteString("- none logged\n")
	}
	for _, m := range meals {
		fmt.Fprintf(&b, "- %s %s: %s, %d kcal (P %.0fg / C %.0fg / F %.0fg)\n",
			m.Date, m.MealType, m.Name, m.Calories, m.ProteinG, m.CarbsG, m.FatG)
	}

	b.WriteString("\nRecent workouts:\n")
	if len(workouts) == 0 {
		b.WriteString("- none logged\n")
	}
	for _, w := range workouts {
		fmt.Fprintf(&b, "- %s %s: %d min, %d kcal, %s intensity\n",
			w.Date, w.Type, w.DurationMinutes, w.CaloriesBurned, w.Intensity)
	}

	b.WriteString("\nReturn ONLY a JSON array of 3 to 5 elements, each:\n")
	b.WriteString(`{"category": string, "title": string, "description": string, "score": number 0-100, ` +
		`"priority": "low|medium|high"}`)
	return b.String()
}

// NutritionPrefs narrows a generated nutrition plan.
type NutritionPrefs struct {
	Goal        string   `json:"goal"`
	DietType    string   `json:"diet_type"`
	Allergies   []string `json:"allergies"`
	MealsPerDay int      `json:"meals_per_day"`
}

func buildNutritionPrompt(d models.HealthData, target int, p NutritionPrefs) string {
	var b strings.Builder
	b.WriteString("Create a one-day nutrition plan for this user.\n\n")
	b.WriteString("Profile:\n")
	b.WriteString(profileSummary(d))
	if target > 0 {
		fmt.Fprintf(&b, "\nDaily calorie target: %d kcal\n", target)
	}
	if p.Goal != "" {
		fmt.Fprintf(&b, "Goal: %s\n", p.Goal)
	}
	if p.DietType != "" {
		fmt.Fprintf(&b, "Diet type: %s\n", p.DietType)
	}
	if len(p.Allergies) > 0 {
		fmt.Fprintf(&b, "Avoid (allergies): %s\n", strings.Join(p.Allergies, ", "))
	}
	fmt.Fprintf(&b, "Meals per day: %d\n", p.MealsPerDay)
	b.WriteString("\nReturn ONLY a JSON object:\n")
	b.WriteString(`{"daily_calories": number, "macros": {"protein_g": number, "carbs_g": number, "fat_g": number}, ` +
		`"meals": [{"name": string, "time": string, "calories": number, "description": string}], "tips": [string]}`)
	return b.String()
}

func buildMealEstimatePrompt(description string) string {
	return "Estimate the nutrition of this meal: \"" + description + "\".\n" +
		"Return ONLY a JSON object: " +
		`{"name": string, "calories": number, "protein_g": number, "carbs_g": number, "fat_g": number}`
}

func buildSpecialtyPrompt(symptoms string) string {
	return "A patient describes these symptoms: \"" + symptoms + "\".\n" +
		"Which medical specialties should they consult, most relevant first? " +
		`Return ONLY a JSON array of specialty names, for example ["Cardiology", "General Practitioner"].`
}

func buildChatPrompt(d models.HealthData, message string) string {
	if !d.ProfileComplete {
		return message
	}
	return "User profile for context:\n" + profileSummary(d) + "\nUser message: " + message
}
