package api

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"healthconnect-api/internal/ai"
	"healthconnect-api/internal/health"
	"healthconnect-api/internal/models"
)

const (
	chatContextMessages = 20
	insightEntries      = 20
)

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := userFrom(ctx)
	var req struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "chat", err)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		s.fail(w, r, "chat", &health.ValidationError{Field: "message", Reason: "required"})
		return
	}

	history, err := s.store.ChatHistory(ctx, u.ID, chatContextMessages)
	if err != nil {
		s.fail(w, r, "chat", err)
		return
	}
	profile, err := s.store.GetProfile(ctx, u.ID)
	if err != nil {
		s.fail(w, r, "chat", err)
		return
	}

	asked := s.now().UTC()
	reply, err := s.ai.Chat(ctx, u, profile, history, req.Message)
	if err != nil {
		s.fail(w, r, "chat", err)
		return
	}
	msgs := []models.ChatMessage{
		{Role: "user", Content: req.Message, CreatedAt: asked},
		{Role: "model", Content: reply, CreatedAt: s.now().UTC()},
	}
	if err := s.store.AppendChat(ctx, u.ID, msgs...); err != nil {
		s.logger.Warn("persist chat failed", zap.String("user_id", u.ID), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, msgs[1])
}

func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	history, err := s.store.ChatHistory(r.Context(), userFrom(r.Context()).ID, limit)
	if err != nil {
		s.fail(w, r, "chat history", err)
		return
	}
	if history == nil {
		history = []models.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) clearChat(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearChat(r.Context(), userFrom(r.Context()).ID); err != nil {
		s.fail(w, r, "clear chat", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) nutrition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := userFrom(ctx)
	var prefs ai.NutritionPrefs
	if err := decodeOptionalJSON(w, r, &prefs); err != nil {
		s.fail(w, r, "nutrition", err)
		return
	}
	if prefs.MealsPerDay < 0 || prefs.MealsPerDay > 6 {
		s.fail(w, r, "nutrition", &health.ValidationError{Field: "meals_per_day", Reason: "must be between 1 and 6"})
		return
	}

	profile, err := s.store.GetProfile(ctx, u.ID)
	if err != nil {
		s.fail(w, r, "nutrition", err)
		return
	}
	target, err := s.target(ctx, u.ID)
	if err != nil {
		s.fail(w, r, "nutrition", err)
		return
	}
	if target == 0 && profile.ProfileComplete {
		if e, err := health.Calculate(health.EnergyInput{
			Gender:        *profile.Gender,
			Age:           *profile.Age,
			Weight:        *profile.Weight,
			Height:        *profile.Height,
			ActivityLevel: profile.ActivityLevel,
		}); err == nil {
			target = e.TDEE
		}
	}

	plan, err := s.ai.NutritionPlan(ctx, u, profile, target, prefs)
	if err != nil {
		s.fail(w, r, "nutrition", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// analysis runs the advanced assessment and caches it on the profile.
func (s *Server) analysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := userFrom(ctx)
	profile, err := s.store.GetProfile(ctx, u.ID)
	if err != nil {
		s.fail(w, r, "analysis", err)
		return
	}
	if !profile.ProfileComplete {
		s.fail(w, r, "analysis", &health.ValidationError{Field: "profile", Reason: "complete your profile first"})
		return
	}

	sections, err := s.ai.HealthAnalysis(ctx, u, profile)
	if err != nil {
		s.fail(w, r, "analysis", err)
		return
	}
	saved, err := s.store.SaveProfile(ctx, u.ID, ai.ApplyAnalysis(profile, sections))
	if err != nil {
		s.fail(w, r, "analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) insights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := userFrom(ctx)
	profile, err := s.store.GetProfile(ctx, u.ID)
	if err != nil {
		s.fail(w, r, "insights", err)
		return
	}
	meals, err := s.store.ListMeals(ctx, u.ID, "")
	if err != nil {
		s.fail(w, r, "insights", err)
		return
	}
	workouts, err := s.store.ListWorkouts(ctx, u.ID, "")
	if err != nil {
		s.fail(w, r, "insights", err)
		return
	}

	res, err := s.ai.Insights(ctx, u, profile, lastN(meals, insightEntries), lastN(workouts, insightEntries))
	if err != nil {
		s.fail(w, r, "insights", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) estimateMeal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "meal estimate", err)
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		s.fail(w, r, "meal estimate", &health.ValidationError{Field: "description", Reason: "required"})
		return
	}
	est, err := s.ai.EstimateMeal(r.Context(), userFrom(r.Context()), req.Description)
	if err != nil {
		s.fail(w, r, "meal estimate", err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func lastN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
