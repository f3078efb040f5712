package api

import "net/http"

func (s *Server) handleUserProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	summary, err := s.ProgressService.Summary(r.Context(), userID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleWordProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	wordID, err := pathInt64(r, "wordID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	progress, err := s.ProgressService.WordProgress(r.Context(), userID, wordID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, progress)
}
