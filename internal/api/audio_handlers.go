package api

import (
	"net/http"
	"strings"
)

type resolveAudioRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Voice    string `json:"voice"`
}

type resolveAudioResponse struct {
	AudioRef    string `json:"audio_ref"`
	ContentType string `json:"content_type"`
	URL         string `json:"url,omitempty"`
}

func (s *Server) handleResolveAudio(w http.ResponseWriter, r *http.Request) {
	var req resolveAudioRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Voice) == "" {
		req.Voice = s.DefaultVoice
	}

	entry, err := s.AudioResolver.Resolve(r.Context(), req.Text, req.Language, req.Voice)
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := resolveAudioResponse{AudioRef: entry.AudioRef, ContentType: entry.ContentType}
	if s.AudioDir != "" {
		resp.URL = "/audio/" + entry.AudioRef
	}
	writeJSON(w, r, http.StatusOK, resp)
}
