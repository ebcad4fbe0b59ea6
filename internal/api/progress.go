package api

import (
	"net/http"
	"strings"

	"investor-edu/internal/session"
)

func (s *server) progress(w http.ResponseWriter, r *http.Request) {
	id, ok := profile(w, r)
	if !ok {
		return
	}
	st, err := s.Sessions.Progress(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) lesson(w http.ResponseWriter, r *http.Request) {
	id, ok := profile(w, r)
	if !ok {
		return
	}
	var req struct {
		LessonID string `json:"lessonId"`
	}
	if !decode(w, r, &req) {
		return
	}
	lesson := strings.TrimSpace(req.LessonID)
	if lesson == "" {
		writeError(w, http.StatusBadRequest, "lessonId is required")
		return
	}
	s.respondProgress(w, r)(s.Sessions.ToggleLesson(r.Context(), id, lesson))
}

func (s *server) quiz(w http.ResponseWriter, r *http.Request) {
	id, ok := profile(w, r)
	if !ok {
		return
	}
	var req struct {
		QuizID string `json:"quizId"`
		Score  *int   `json:"score"`
	}
	if !decode(w, r, &req) {
		return
	}
	quiz := strings.TrimSpace(req.QuizID)
	if quiz == "" || req.Score == nil {
		writeError(w, http.StatusBadRequest, "quizId and score are required")
		return
	}
	s.respondProgress(w, r)(s.Sessions.SubmitQuiz(r.Context(), id, quiz, *req.Score))
}

func (s *server) translation(w http.ResponseWriter, r *http.Request) {
	id, ok := profile(w, r)
	if !ok {
		return
	}
	s.respondProgress(w, r)(s.Sessions.TranslateDocument(r.Context(), id))
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	id, ok := profile(w, r)
	if !ok {
		return
	}
	out, fresh, err := s.Sessions.RecordLogin(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state":    out.State,
		"unlocked": out.Unlocked,
		"recorded": fresh,
	})
}

func (s *server) resetProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := profile(w, r)
	if !ok {
		return
	}
	st, err := s.Sessions.ResetProgress(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) achievements(w http.ResponseWriter, r *http.Request) {
	id, ok := profile(w, r)
	if !ok {
		return
	}
	list, err := s.Sessions.Achievements(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"achievements": list})
}

func (s *server) respondProgress(w http.ResponseWriter, r *http.Request) func(session.ProgressOutcome, error) {
	return func(out session.ProgressOutcome, err error) {
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
