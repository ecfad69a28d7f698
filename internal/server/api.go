package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"calorie-counter/internal/models"
)

type addLogRequest struct {
	Query string `json:"query"`
}

type addLogResponse struct {
	Date   string              `json:"date"`
	Logged []models.FoodEntry  `json:"logged"`
	Log    []models.DaySummary `json:"log"`
}

type totalResponse struct {
	Date          string  `json:"date"`
	TotalCalories float64 `json:"total_calories"`
	Entries       int     `json:"entries"`
}

func (s *CalorieServer) handleGetLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.summaries(r.URL.Query().Get("date")))
}

func (s *CalorieServer) handleAddLog(w http.ResponseWriter, r *http.Request) {
	var req addLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errInvalidParams, err))
		return
	}

	if err := s.widget.Submit(r.Context(), req.Query); err != nil {
		writeError(w, err)
		return
	}

	st := s.widget.State()
	writeJSON(w, http.StatusOK, addLogResponse{
		Date:   st.Today,
		Logged: entriesOf(st.Results),
		Log:    st.Days,
	})
}

func (s *CalorieServer) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	index, err := strconv.Atoi(q.Get("index"))
	if date == "" || err != nil {
		writeError(w, fmt.Errorf("%w: date and integer index are required", errInvalidParams))
		return
	}

	snap, err := s.store.DeleteAt(r.Context(), date, index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Summaries())
}

func (s *CalorieServer) handleTotal(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.store.Today()
	}
	entries := s.store.Entries(date)
	writeJSON(w, http.StatusOK, totalResponse{
		Date:          date,
		TotalCalories: models.TotalCalories(entries),
		Entries:       len(entries),
	})
}
