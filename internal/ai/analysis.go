package ai

import (
	"math"
	"strings"

	"healthconnect-api/internal/models"
)

// ApplyAnalysis caches the sections on the profile and derives the advanced scores.
// Each category score is the mean of its matching sections; the overall score is the
// mean of all sections.
func ApplyAnalysis(d models.HealthData, sections []models.AnalysisSection) models.HealthData {
	var (
		sums   = map[string]int{}
		counts = map[string]int{}
		total  int
	)
	for _, s := range sections {
		bucket := scoreBucket(s.Category)
		sums[bucket] += s.Score
		counts[bucket]++
		total += s.Score
	}
	mean := func(bucket string) *int {
		if counts[bucket] == 0 {
			return nil
		}
		v := int(math.Round(float64(sums[bucket]) / float64(counts[bucket])))
		return &v
	}

	d.Analysis = sections
	d.CardiovascularScore = mean("cardiovascular")
	d.MetabolicScore = mean("metabolic")
	d.LifestyleScore = mean("lifestyle")
	d.OverallScore = nil
	if len(sections) > 0 {
		v := int(math.Round(float64(total) / float64(len(sections))))
		d.OverallScore = &v
	}
	d.AdvancedAnalysisComplete = len(sections) > 0
	return d
}

func scoreBucket(category string) string {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "cardio"), strings.Contains(c, "heart"), strings.Contains(c, "blood pressure"):
		return "cardiovascular"
	case strings.Contains(c, "metabol"), strings.Contains(c, "glucose"), strings.Contains(c, "body"), strings.Contains(c, "weight"):
		return "metabolic"
	case strings.Contains(c, "lifestyle"), strings.Contains(c, "activity"), strings.Contains(c, "sleep"),
		strings.Contains(c, "nutrition"), strings.Contains(c, "diet"):
		return "lifestyle"
	}
	return "other"
}
