// Package api wires the HealthConnect HTTP surface: routing, CORS, authentication,
// per-user rate limiting and the JSON handlers over the store and AI services.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"healthconnect-api/internal/ai"
	"healthconnect-api/internal/auth"
	"healthconnect-api/internal/doctors"
	"healthconnect-api/internal/logging"
	"healthconnect-api/internal/metrics"
	"healthconnect-api/internal/store"
)

// Deps are the collaborators a Server is built from.
type Deps struct {
	Store       *store.Store
	Auth        *auth.Service
	AI          *ai.Service
	Doctors     *doctors.Directory
	Recommender *doctors.Recommender
	Metrics     *metrics.Metrics
	Logger      *zap.Logger

	AllowedOrigins []string
	AIRatePerSec   float64
	AIRateBurst    int
	ChatRetention  time.Duration
}

type Server struct {
	store       *store.Store
	auth        *auth.Service
	ai          *ai.Service
	doctors     *doctors.Directory
	recommender *doctors.Recommender
	metrics     *metrics.Metrics
	logger      *zap.Logger
	limiter     *RateLimiter
	origins     []string
	retention   time.Duration
	now         func() time.Time
}

func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if len(d.AllowedOrigins) == 0 {
		d.AllowedOrigins = []string{"*"}
	}
	return &Server{
		store:       d.Store,
		auth:        d.Auth,
		ai:          d.AI.WithRecorder(d.Metrics),
		doctors:     d.Doctors,
		recommender: d.Recommender,
		metrics:     d.Metrics,
		logger:      d.Logger,
		limiter:     NewRateLimiter(d.AIRatePerSec, d.AIRateBurst, d.Logger, d.Metrics),
		origins:     d.AllowedOrigins,
		retention:   d.ChatRetention,
		now:         time.Now,
	}
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.metrics.Middleware)

	r.HandleFunc("/healthz", s.healthz).Methods("GET")
	r.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	pub := r.PathPrefix("/api").Subrouter()
	pub.HandleFunc("/auth/register", s.register).Methods("POST")
	pub.HandleFunc("/auth/login", s.login).Methods("POST")
	pub.HandleFunc("/bmr/calculate", s.calculateBMR).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireAuth)

	api.HandleFunc("/me", s.getMe).Methods("GET")
	api.HandleFunc("/me", s.deleteMe).Methods("DELETE")
	api.HandleFunc("/me/tier", s.updateTier).Methods("PUT")
	api.HandleFunc("/settings/ai", s.getAISettings).Methods("GET")
	api.HandleFunc("/settings/ai", s.updateAISettings).Methods("PUT")

	api.HandleFunc("/profile", s.getProfile).Methods("GET")
	api.HandleFunc("/profile", s.saveProfile).Methods("PUT")
	api.HandleFunc("/profile", s.resetProfile).Methods("DELETE")
	api.HandleFunc("/bmr", s.getBMR).Methods("GET")
	api.HandleFunc("/bmr", s.saveBMR).Methods("PUT")
	api.HandleFunc("/summary", s.getSummary).Methods("GET")

	api.HandleFunc("/meals", s.listMeals).Methods("GET")
	api.HandleFunc("/meals", s.saveMeal).Methods("POST")
	api.HandleFunc("/meals/year/{year}/month/{month}", s.listMealsByMonth).Methods("GET")
	api.HandleFunc("/meals/{id}", s.deleteMeal).Methods("DELETE")
	api.HandleFunc("/workouts", s.listWorkouts).Methods("GET")
	api.HandleFunc("/workouts", s.saveWorkout).Methods("POST")
	api.HandleFunc("/workouts/year/{year}/month/{month}", s.listWorkoutsByMonth).Methods("GET")
	api.HandleFunc("/workouts/{id}", s.deleteWorkout).Methods("DELETE")

	api.HandleFunc("/doctors", s.searchDoctors).Methods("GET")
	api.HandleFunc("/doctors/{id}", s.getDoctor).Methods("GET")
	api.HandleFunc("/report", s.report).Methods("GET")
	api.HandleFunc("/ai/chat/history", s.chatHistory).Methods("GET")
	api.HandleFunc("/ai/chat/history", s.clearChat).Methods("DELETE")

	limited := api.NewRoute().Subrouter()
	limited.Use(s.limiter.Middleware)
	limited.HandleFunc("/ai/chat", s.chat).Methods("POST")
	limited.HandleFunc("/ai/nutrition", s.nutrition).Methods("POST")
	limited.HandleFunc("/ai/analysis", s.analysis).Methods("POST")
	limited.HandleFunc("/ai/insights", s.insights).Methods("POST")
	limited.HandleFunc("/ai/meal-estimate", s.estimateMeal).Methods("POST")
	limited.HandleFunc("/doctors/recommend", s.recommendDoctors).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(logging.Middleware(s.logger)(r))
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
