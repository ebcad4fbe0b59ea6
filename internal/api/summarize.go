package api

import (
	"errors"
	"log/slog"
	"net/http"

	"investor-edu/internal/gamification"
	"investor-edu/internal/summarize"
)

type summarizeResponse struct {
	summarize.Result
	Unlocked []gamification.Achievement `json:"unlocked,omitempty"`
}

// summarize answers with the summary and counts the document towards the
// learner's translation progress.
func (s *server) summarize(w http.ResponseWriter, r *http.Request) {
	id, ok := profile(w, r)
	if !ok {
		return
	}
	var req summarize.Request
	if !decode(w, r, &req) {
		return
	}
	res, err := s.Summarizer.Summarize(r.Context(), req)
	if errors.Is(err, summarize.ErrEmptySource) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}

	resp := summarizeResponse{Result: res}
	out, err := s.Sessions.TranslateDocument(r.Context(), id)
	if err != nil {
		slog.Warn("translation progress not recorded", "component", "api", "profile", id, "error", err)
	} else {
		resp.Unlocked = out.Unlocked
	}
	writeJSON(w, http.StatusOK, resp)
}
