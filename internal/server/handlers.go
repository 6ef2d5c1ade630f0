package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/serhiishtokal/CourseWatcher/internal/auth"
	"github.com/serhiishtokal/CourseWatcher/internal/media"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeServiceError translates core error kinds into HTTP responses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case media.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case media.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func videoID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, media.Validationf("invalid video id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.gate.Enabled() {
		writeError(w, http.StatusNotFound, "authentication is disabled")
		return
	}

	var payload struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	session, err := s.gate.Login(payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.writeServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.gate.Logout(sessionToken(r))
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	result, err := s.runScan(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	groups, err := s.library.ModulesWithVideos(r.Context(), r.URL.Query().Get("sort"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	video, err := s.library.VideoByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

func (s *Server) handleAdjacent(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	adjacent, err := s.library.AdjacentVideos(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adjacent)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	summary, err := s.library.Progress(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRecordPosition(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var payload struct {
		Position float64  `json:"position"`
		Duration *float64 `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	video, err := s.library.RecordPosition(r.Context(), id, payload.Position, payload.Duration)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.updateStatusGauges(r.Context())
	writeJSON(w, http.StatusOK, video)
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	video, err := s.library.SetStatus(r.Context(), id, media.Status(payload.Status))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.updateStatusGauges(r.Context())
	writeJSON(w, http.StatusOK, video)
}

func (s *Server) handleGetNotes(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	note, err := s.library.Note(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleSaveNotes(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	note, err := s.library.SaveNote(r.Context(), id, payload.Content)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNotes(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	deleted, err := s.library.DeleteNote(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := s.library.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.library.LibraryStats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
