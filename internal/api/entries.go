package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"healthconnect-api/internal/health"
	"healthconnect-api/internal/models"
	"healthconnect-api/internal/store"
)

func (s *Server) listMeals(w http.ResponseWriter, r *http.Request) {
	meals, err := s.store.ListMeals(r.Context(), userFrom(r.Context()).ID, r.URL.Query().Get("date"))
	if err != nil {
		s.fail(w, r, "list meals", err)
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

func (s *Server) listMealsByMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		s.fail(w, r, "list meals", err)
		return
	}
	meals, err := s.store.ListMealsByMonth(r.Context(), userFrom(r.Context()).ID, year, month)
	if err != nil {
		s.fail(w, r, "list meals", err)
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

// saveMeal replaces the entry with the same id or appends a new one.
func (s *Server) saveMeal(w http.ResponseWriter, r *http.Request) {
	var m models.MealEntry
	if err := decodeJSON(w, r, &m); err != nil {
		s.fail(w, r, "save meal", err)
		return
	}
	if err := health.ValidateMeal(m); err != nil {
		s.fail(w, r, "save meal", err)
		return
	}
	saved, err := s.store.SaveMeal(r.Context(), userFrom(r.Context()).ID, m)
	if err != nil {
		s.fail(w, r, "save meal", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) deleteMeal(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteMeal(r.Context(), userFrom(r.Context()).ID, mux.Vars(r)["id"]); err != nil {
		s.fail(w, r, "delete meal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.store.ListWorkouts(r.Context(), userFrom(r.Context()).ID, r.URL.Query().Get("date"))
	if err != nil {
		s.fail(w, r, "list workouts", err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) listWorkoutsByMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		s.fail(w, r, "list workouts", err)
		return
	}
	workouts, err := s.store.ListWorkoutsByMonth(r.Context(), userFrom(r.Context()).ID, year, month)
	if err != nil {
		s.fail(w, r, "list workouts", err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) saveWorkout(w http.ResponseWriter, r *http.Request) {
	var wo models.WorkoutEntry
	if err := decodeJSON(w, r, &wo); err != nil {
		s.fail(w, r, "save workout", err)
		return
	}
	if wo.Intensity == "" {
		wo.Intensity = "moderate"
	}
	if err := health.ValidateWorkout(wo); err != nil {
		s.fail(w, r, "save workout", err)
		return
	}
	saved, err := s.store.SaveWorkout(r.Context(), userFrom(r.Context()).ID, wo)
	if err != nil {
		s.fail(w, r, "save workout", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) deleteWorkout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteWorkout(r.Context(), userFrom(r.Context()).ID, mux.Vars(r)["id"]); err != nil {
		s.fail(w, r, "delete workout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func yearMonth(r *http.Request) (int, int, error) {
	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		return 0, 0, store.ErrInvalidDate
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil {
		return 0, 0, store.ErrInvalidDate
	}
	return year, month, nil
}
