package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"healthconnect-api/internal/health"
	"healthconnect-api/internal/models"
	"healthconnect-api/internal/store"
)

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.GetProfile(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.fail(w, r, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// saveProfile replaces the user-editable fields. Derived fields are recomputed and the
// cached analysis is carried over from the stored profile.
func (s *Server) saveProfile(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	var in models.HealthData
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, "save profile", err)
		return
	}
	if err := health.ValidateProfile(in); err != nil {
		s.fail(w, r, "save profile", err)
		return
	}

	prev, err := s.store.GetProfile(r.Context(), u.ID)
	if err != nil {
		s.fail(w, r, "save profile", err)
		return
	}
	in.Analysis = prev.Analysis
	in.CardiovascularScore = prev.CardiovascularScore
	in.MetabolicScore = prev.MetabolicScore
	in.LifestyleScore = prev.LifestyleScore
	in.OverallScore = prev.OverallScore
	in.AdvancedAnalysisComplete = prev.AdvancedAnalysisComplete

	saved, err := s.store.SaveProfile(r.Context(), u.ID, health.Normalize(in))
	if err != nil {
		s.fail(w, r, "save profile", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) resetProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ResetProfile(r.Context(), userFrom(r.Context()).ID); err != nil {
		s.fail(w, r, "reset profile", err)
		return
	}
	writeJSON(w, http.StatusOK, models.HealthData{})
}

type energyResponse struct {
	health.Energy
	BMI         float64 `json:"bmi"`
	BMICategory string  `json:"bmi_category"`
}

func (s *Server) calculateBMR(w http.ResponseWriter, r *http.Request) {
	var in health.EnergyInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, "calculate bmr", err)
		return
	}
	e, err := health.Calculate(in)
	if err != nil {
		s.fail(w, r, "calculate bmr", err)
		return
	}
	bmi, _ := health.BMI(in.Weight, in.Height)
	writeJSON(w, http.StatusOK, energyResponse{Energy: e, BMI: bmi, BMICategory: health.BMICategory(bmi)})
}

func (s *Server) getBMR(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.GetBMR(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.fail(w, r, "get bmr", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) saveBMR(w http.ResponseWriter, r *http.Request) {
	var in health.EnergyInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, "save bmr", err)
		return
	}
	e, err := health.Calculate(in)
	if err != nil {
		s.fail(w, r, "save bmr", err)
		return
	}
	d := models.BMRData{
		Gender:        strings.ToLower(in.Gender),
		Age:           in.Age,
		Weight:        in.Weight,
		Height:        in.Height,
		ActivityLevel: defaultString(strings.ToLower(in.ActivityLevel), "sedentary"),
		WorkoutType:   defaultString(strings.ToLower(in.WorkoutType), "none"),
		BMR:           e.BMR,
		TDEE:          e.TDEE,
	}
	saved, err := s.store.SaveBMR(r.Context(), userFrom(r.Context()).ID, d)
	if err != nil {
		s.fail(w, r, "save bmr", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.now().Format(health.DateLayout)
	}
	summary, err := s.summary(r, date)
	if err != nil {
		s.fail(w, r, "summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// summary folds one day of entries against the saved TDEE, if any.
func (s *Server) summary(r *http.Request, date string) (models.DailySummary, error) {
	ctx := r.Context()
	userID := userFrom(ctx).ID
	meals, err := s.store.ListMeals(ctx, userID, date)
	if err != nil {
		return models.DailySummary{}, err
	}
	workouts, err := s.store.ListWorkouts(ctx, userID, date)
	if err != nil {
		return models.DailySummary{}, err
	}
	target, err := s.target(ctx, userID)
	if err != nil {
		return models.DailySummary{}, err
	}
	return health.Balance(date, target, meals, workouts), nil
}

// target is the saved TDEE, or 0 when no BMR data exists.
func (s *Server) target(ctx context.Context, userID string) (int, error) {
	bmr, err := s.store.GetBMR(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return bmr.TDEE, nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
