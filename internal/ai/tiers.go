package ai

import (
	"slices"

	"healthconnect-api/internal/models"
)

type Feature string

const (
	FeatureChat         Feature = "chat"
	FeatureInsights     Feature = "insights"
	FeatureNutrition    Feature = "nutrition"
	FeatureMealEstimate Feature = "meal_estimate"
	FeatureSpecialties  Feature = "specialties"
	FeatureAnalysis     Feature = "analysis"
	FeatureReport       Feature = "report"
)

var tierFeatures = map[models.Tier][]Feature{
	models.TierFree: {FeatureChat, FeatureInsights},
	models.TierLite: {FeatureChat, FeatureInsights, FeatureNutrition, FeatureMealEstimate, FeatureSpecialties},
	models.TierPro: {FeatureChat, FeatureInsights, FeatureNutrition, FeatureMealEstimate, FeatureSpecialties,
		FeatureAnalysis, FeatureReport},
}

var tierModels = map[models.Tier][]string{
	models.TierFree: {"gemini-2.0-flash-lite", "gemini-2.0-flash"},
	models.TierLite: {"gemini-2.0-flash-lite", "gemini-2.0-flash", "gemini-2.5-flash"},
	models.TierPro:  {"gemini-2.0-flash-lite", "gemini-2.0-flash", "gemini-2.5-flash", "gemini-2.5-pro"},
}

func Allowed(tier models.Tier, f Feature) bool {
	return slices.Contains(tierFeatures[tier], f)
}

// Features lists what a tier unlocks.
func Features(tier models.Tier) []Feature {
	return slices.Clone(tierFeatures[tier])
}

func Models(tier models.Tier) []string {
	return slices.Clone(tierModels[tier])
}

// Policy decides which key and model a user's request runs with.
type Policy struct {
	ServerKey    string
	DefaultModel string
}

// Resolve checks the feature against the user's tier and picks the key and model.
// Free-tier users must bring their own key; paid tiers fall back to the server key.
func (p Policy) Resolve(u *models.User, f Feature) (apiKey, model string, err error) {
	if !Allowed(u.Tier, f) {
		return "", "", ErrFeatureLocked
	}

	model = p.DefaultModel
	if u.AI.Model != "" {
		if !slices.Contains(tierModels[u.Tier], u.AI.Model) {
			return "", "", ErrModelNotAllowed
		}
		model = u.AI.Model
	}

	apiKey = u.AI.APIKey
	if apiKey == "" && u.Tier != models.TierFree {
		apiKey = p.ServerKey
	}
	if apiKey == "" {
		return "", "", ErrMissingAPIKey
	}
	return apiKey, model, nil
}
