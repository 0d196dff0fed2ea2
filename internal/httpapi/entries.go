// ABOUTME: Diet and workout entry handlers: create, list/search, view, edit, delete.
// ABOUTME: Every handler is scoped to the session user; other users' IDs behave as absent.
package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/tracker"
)

// entryKind resolves the {kind} route variable to an entry kind.
func entryKind(r *http.Request) (models.Kind, bool) {
	kind, err := models.ParseKind(mux.Vars(r)["kind"])
	if err != nil || !kind.IsEntry() {
		return "", false
	}
	return kind, true
}

func entryID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	return id, err == nil
}

// entryInput maps request fields onto an EntryInput. The older form names
// (Workout, WorkoutType, workout_description, datetime) are accepted too.
func entryInput(f fields) tracker.EntryInput {
	return tracker.EntryInput{
		MealName:      f.get("meal_name"),
		Description:   f.get("description", "workout_description", "Workout"),
		WorkoutType:   f.get("workout_type", "WorkoutType"),
		Calories:      f.get("calories"),
		Protein:       f.get("protein"),
		Carbohydrates: f.get("carbohydrates"),
		Fat:           f.get("fat"),
		Time:          f.get("time", "datetime", "date"),
	}
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	kind, ok := entryKind(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	f, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.tracker.LogEntry(r.Context(), userFrom(r.Context()), kind, entryInput(f))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if id == uuid.Nil {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "not stored"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// handleListEntries serves GET /entries/{kind} (query string) and
// POST /entries/{kind}/search (body).
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	kind, ok := entryKind(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var opts tracker.ListOptions
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		opts = tracker.ListOptions{
			SortBy: q.Get("sort_by"),
			Order:  q.Get("sort_order"),
			Search: q.Get("search_query"),
		}
	} else {
		f, err := decodeFields(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		opts = tracker.ListOptions{
			SortBy: f.value("sort_by"),
			Order:  f.value("sort_order"),
			Search: f.value("search_query"),
		}
	}

	writeJSON(w, http.StatusOK, s.tracker.Entries(r.Context(), userFrom(r.Context()), kind, opts))
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Records(r.Context(), userFrom(r.Context())))
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	rec, ok := s.tracker.Entry(r.Context(), userFrom(r.Context()), id)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleEditEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	f, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated := s.tracker.Edit(r.Context(), userFrom(r.Context()), id, entryInput(f))
	writeJSON(w, http.StatusOK, map[string]bool{"updated": updated})
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	deleted := s.tracker.Delete(r.Context(), userFrom(r.Context()), id)
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	n := s.tracker.DeleteAll(r.Context(), userFrom(r.Context()))
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
