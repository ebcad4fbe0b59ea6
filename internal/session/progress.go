package session

import (
	"context"
	"slices"

	"investor-edu/internal/gamification"
)

// ProgressOutcome is the learner state after a progress update.
type ProgressOutcome struct {
	State    gamification.State         `json:"state"`
	Unlocked []gamification.Achievement `json:"unlocked,omitempty"`
}

// AchievementStatus is a catalog entry with the learner's unlock state.
type AchievementStatus struct {
	gamification.Achievement
	Unlocked bool `json:"unlocked"`
}

// Progress returns the profile's gamification state.
func (m *Manager) Progress(ctx context.Context, profile string) (gamification.State, error) {
	var st gamification.State
	err := m.with(ctx, profile, func(s *session) error {
		st = s.tracker.State()
		return nil
	})
	return st, err
}

// update applies fn to the tracker, then claims achievements and persists.
func (m *Manager) update(ctx context.Context, profile string, fn func(t *gamification.Tracker) error) (ProgressOutcome, error) {
	var out ProgressOutcome
	err := m.with(ctx, profile, func(s *session) error {
		levelBefore := s.tracker.Stats().Level
		if err := fn(s.tracker); err != nil {
			return err
		}
		unlocked := m.claim(ctx, profile, s, levelBefore)
		m.persist(ctx, profile, s)
		out = ProgressOutcome{State: s.tracker.State(), Unlocked: unlocked}
		return nil
	})
	return out, err
}

// ToggleLesson flips a lesson's completion mark. Completing a lesson earns
// lesson points; clearing the mark does not take them back.
func (m *Manager) ToggleLesson(ctx context.Context, profile, lessonID string) (ProgressOutcome, error) {
	return m.update(ctx, profile, func(t *gamification.Tracker) error {
		t.ToggleLesson(lessonID)
		return nil
	})
}

// SubmitQuiz records a quiz score (0..100).
func (m *Manager) SubmitQuiz(ctx context.Context, profile, quizID string, score int) (ProgressOutcome, error) {
	return m.update(ctx, profile, func(t *gamification.Tracker) error {
		return t.SetQuizScore(quizID, score)
	})
}

// TranslateDocument counts a translated document.
func (m *Manager) TranslateDocument(ctx context.Context, profile string) (ProgressOutcome, error) {
	return m.update(ctx, profile, func(t *gamification.Tracker) error {
		t.TranslateDocument()
		return nil
	})
}

// RecordLogin registers today's visit and reports whether it was new.
func (m *Manager) RecordLogin(ctx context.Context, profile string) (ProgressOutcome, bool, error) {
	var fresh bool
	out, err := m.update(ctx, profile, func(t *gamification.Tracker) error {
		fresh = t.RecordLogin()
		return nil
	})
	return out, fresh, err
}

// ResetProgress returns the learner to the default state. The portfolio is
// kept.
func (m *Manager) ResetProgress(ctx context.Context, profile string) (gamification.State, error) {
	var st gamification.State
	err := m.with(ctx, profile, func(s *session) error {
		s.tracker.Reset()
		m.persist(ctx, profile, s)
		st = s.tracker.State()
		return nil
	})
	return st, err
}

// Achievements lists the whole catalog with the learner's unlock flags.
func (m *Manager) Achievements(ctx context.Context, profile string) ([]AchievementStatus, error) {
	st, err := m.Progress(ctx, profile)
	if err != nil {
		return nil, err
	}
	catalog := gamification.Catalog()
	out := make([]AchievementStatus, len(catalog))
	for i, a := range catalog {
		out[i] = AchievementStatus{Achievement: a, Unlocked: slices.Contains(st.Stats.Achievements, a.ID)}
	}
	return out, nil
}
