package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"healthconnect-api/internal/doctors"
)

func (s *Server) searchDoctors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	accepting, _ := strconv.ParseBool(q.Get("accepting"))
	writeJSON(w, http.StatusOK, s.doctors.Search(doctors.Query{
		Specialty:     q.Get("specialty"),
		City:          q.Get("city"),
		Name:          q.Get("name"),
		AcceptingOnly: accepting,
	}))
}

func (s *Server) getDoctor(w http.ResponseWriter, r *http.Request) {
	d, err := s.doctors.Get(mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, "get doctor", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) recommendDoctors(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symptoms string `json:"symptoms"`
		City     string `json:"city"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "recommend doctors", err)
		return
	}
	rec, err := s.recommender.Recommend(r.Context(), userFrom(r.Context()), req.Symptoms, strings.TrimSpace(req.City))
	if err != nil {
		s.fail(w, r, "recommend doctors", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
