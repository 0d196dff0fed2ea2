// ABOUTME: Goal handlers: home summary, weekly goals view, and goal saves.
// ABOUTME: Saves set all seven days (blank = rest day) plus the diet goal, as upserts.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/tracker"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Home(r.Context(), userFrom(r.Context())))
}

func (s *Server) handleGetGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Week(r.Context(), userFrom(r.Context())))
}

// goalsInput reads day names (Monday or monday) and the four macros.
func goalsInput(f fields) tracker.GoalsInput {
	types := make(map[models.DayOfWeek]string, len(models.Week))
	for _, d := range models.Week {
		types[d] = f.value(string(d), strings.ToLower(string(d)))
	}
	diet := &models.Macros{
		Calories:      f.value("calories"),
		Protein:       f.value("protein"),
		Carbohydrates: f.value("carbohydrates"),
		Fat:           f.value("fat"),
	}
	return tracker.FullWeek(types, diet)
}

func (s *Server) handleSaveGoals(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	saved := s.tracker.SaveGoals(r.Context(), userFrom(r.Context()), goalsInput(f))
	writeJSON(w, http.StatusOK, map[string]int{"saved": saved})
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	saved := s.tracker.Onboard(r.Context(), userFrom(r.Context()), goalsInput(f))
	writeJSON(w, http.StatusOK, map[string]int{"saved": saved})
}
