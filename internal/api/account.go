package api

import (
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"

	"healthconnect-api/internal/ai"
	"healthconnect-api/internal/models"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(w, r, &c); err != nil {
		s.fail(w, r, "register", err)
		return
	}
	sess, err := s.auth.Register(r.Context(), c.Email, c.Password, c.Name)
	if err != nil {
		s.fail(w, r, "register", err)
		return
	}
	s.logger.Info("user registered", zap.String("user_id", sess.User.ID))
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(w, r, &c); err != nil {
		s.fail(w, r, "login", err)
		return
	}
	sess, err := s.auth.Login(r.Context(), c.Email, c.Password)
	if err != nil {
		s.fail(w, r, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type meResponse struct {
	*models.User
	Features []ai.Feature `json:"features"`
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	writeJSON(w, http.StatusOK, meResponse{User: u, Features: ai.Features(u.Tier)})
}

func (s *Server) deleteMe(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	if err := s.auth.DeleteAccount(r.Context(), u.ID); err != nil {
		s.fail(w, r, "delete account", err)
		return
	}
	s.logger.Info("account deleted", zap.String("user_id", u.ID))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateTier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tier models.Tier `json:"tier"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "update tier", err)
		return
	}
	u, err := s.auth.UpdateTier(r.Context(), userFrom(r.Context()).ID, models.Tier(strings.ToLower(string(req.Tier))))
	if err != nil {
		s.fail(w, r, "update tier", err)
		return
	}
	s.logger.Info("tier updated", zap.String("user_id", u.ID), zap.String("tier", string(u.Tier)))
	writeJSON(w, http.StatusOK, meResponse{User: u, Features: ai.Features(u.Tier)})
}

type aiSettingsResponse struct {
	HasAPIKey       bool     `json:"has_api_key"`
	Model           string   `json:"model"`
	AvailableModels []string `json:"available_models"`
}

func (s *Server) aiSettings(u *models.User) aiSettingsResponse {
	model := u.AI.Model
	if model == "" {
		model = s.ai.Policy().DefaultModel
	}
	return aiSettingsResponse{
		HasAPIKey:       u.AI.APIKey != "",
		Model:           model,
		AvailableModels: ai.Models(u.Tier),
	}
}

func (s *Server) getAISettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.aiSettings(userFrom(r.Context())))
}

// updateAISettings replaces the key and model. An omitted api_key keeps the stored one;
// an empty string clears it.
func (s *Server) updateAISettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey *string `json:"api_key"`
		Model  string  `json:"model"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "update ai settings", err)
		return
	}

	u := *userFrom(r.Context())
	if req.Model != "" && !slices.Contains(ai.Models(u.Tier), req.Model) {
		s.fail(w, r, "update ai settings", ai.ErrModelNotAllowed)
		return
	}
	u.AI.Model = req.Model
	if req.APIKey != nil {
		u.AI.APIKey = strings.TrimSpace(*req.APIKey)
	}
	if err := s.store.UpdateAISettings(r.Context(), u.ID, u.AI); err != nil {
		s.fail(w, r, "update ai settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s.aiSettings(&u))
}
