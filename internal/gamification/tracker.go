package gamification

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

const dateLayout = "2006-01-02"

// ErrInvalidScore is returned for quiz scores outside 0..100.
var ErrInvalidScore = errors.New("quiz score must be between 0 and 100")

// Progress records which lessons are done and the last score per quiz.
type Progress struct {
	CompletedLessons []string       `json:"completedLessons"`
	QuizScores       map[string]int `json:"quizScores"`
}

// State is the persisted form of a Tracker.
type State struct {
	Stats    Stats    `json:"stats"`
	Progress Progress `json:"progress"`
}

// DefaultState is the state of a learner who joined on now's date.
func DefaultState(now time.Time) State {
	today := now.UTC().Format(dateLayout)
	return State{
		Stats: Stats{
			Level:                 1,
			ExperienceToNextLevel: LevelRequirement(1),
			LoginStreak:           1,
			LongestStreak:         1,
			LastLoginDate:         today,
			JoinDate:              today,
			Achievements:          []string{},
			Badges:                []string{},
		},
		Progress: Progress{
			CompletedLessons: []string{},
			QuizScores:       map[string]int{},
		},
	}
}

// Tracker owns one learner's gamification state. Like the portfolio ledger
// it is single-writer; callers serialise access.
type Tracker struct {
	st  State
	now func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the date source used for streaks.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker with default state.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{now: time.Now}
	for _, o := range opts {
		o(t)
	}
	t.st = DefaultState(t.now())
	return t
}

// Stats returns a copy of the current stats.
func (t *Tracker) Stats() Stats {
	s := t.st.Stats
	s.Achievements = slices.Clone(s.Achievements)
	s.Badges = slices.Clone(s.Badges)
	return s
}

// State returns a copy of the full state for persistence.
func (t *Tracker) State() State {
	p := Progress{
		CompletedLessons: slices.Clone(t.st.Progress.CompletedLessons),
		QuizScores:       make(map[string]int, len(t.st.Progress.QuizScores)),
	}
	for k, v := range t.st.Progress.QuizScores {
		p.QuizScores[k] = v
	}
	return State{Stats: t.Stats(), Progress: p}
}

// Restore replaces the state. Fields missing from s keep their defaults and
// the level is recomputed from experience points.
func (t *Tracker) Restore(s State) {
	def := DefaultState(t.now())
	if s.Stats.LastLoginDate == "" {
		s.Stats.LastLoginDate = def.Stats.LastLoginDate
	}
	if s.Stats.JoinDate == "" {
		s.Stats.JoinDate = def.Stats.JoinDate
	}
	if s.Stats.Achievements == nil {
		s.Stats.Achievements = []string{}
	}
	if s.Stats.Badges == nil {
		s.Stats.Badges = []string{}
	}
	if s.Progress.CompletedLessons == nil {
		s.Progress.CompletedLessons = []string{}
	}
	if s.Progress.QuizScores == nil {
		s.Progress.QuizScores = map[string]int{}
	}
	t.st = s
	t.relevel()
}

// Reset returns to the default state dated today.
func (t *Tracker) Reset() {
	t.st = DefaultState(t.now())
}

func (t *Tracker) relevel() {
	t.st.Stats.Level, t.st.Stats.ExperienceToNextLevel = CalculateLevel(t.st.Stats.ExperiencePoints)
}

// AddPoints credits both total points and experience.
func (t *Tracker) AddPoints(points int) {
	t.st.Stats.ExperiencePoints += points
	t.st.Stats.TotalPoints += points
	t.relevel()
}

// CompleteLesson counts a lesson and awards its points.
func (t *Tracker) CompleteLesson(id string) {
	t.st.Stats.LessonsCompleted++
	t.AddPoints(CalculatePoints(ActionLessonCompleted, 0))
}

// CompleteQuiz records a quiz attempt. A perfect score earns the perfect
// bonus, 90 or more the high-score bonus. The average score is rounded to
// the nearest integer.
func (t *Tracker) CompleteQuiz(id string, score int) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidScore, score)
	}
	points := CalculatePoints(ActionQuizCompleted, 0)
	switch {
	case score == 100:
		points += CalculatePoints(ActionQuizPerfect, 0)
	case score >= 90:
		points += CalculatePoints(ActionQuizHighScore, 0)
	}

	s := &t.st.Stats
	total := s.QuizzesCompleted + 1
	avg := (float64(s.AverageQuizScore)*float64(s.QuizzesCompleted) + float64(score)) / float64(total)
	s.QuizzesCompleted = total
	s.AverageQuizScore = int(math.Floor(avg + 0.5))

	t.AddPoints(points)
	return nil
}

// UpdateTradingProfit stores the latest profit and awards points when it
// is positive and higher than before.
func (t *Tracker) UpdateTradingProfit(profit float64) {
	award := profit > t.st.Stats.TradingProfit && profit > 0
	t.st.Stats.TradingProfit = profit
	if award {
		t.AddPoints(CalculatePoints(ActionProfitableTrade, 0))
	}
}

// TranslateDocument counts a translated or summarised document.
func (t *Tracker) TranslateDocument() {
	t.st.Stats.DocumentsTranslated++
	t.AddPoints(CalculatePoints(ActionDocumentTranslated, 0))
}

// RecordLogin registers today's visit. A visit on the day after the last
// login extends the streak and earns a streak bonus; a later visit restarts
// the streak at 1. Returns false if today was already recorded.
func (t *Tracker) RecordLogin() bool {
	now := t.now().UTC()
	today := now.Format(dateLayout)
	yesterday := now.Add(-24 * time.Hour).Format(dateLayout)

	s := &t.st.Stats
	points := CalculatePoints(ActionDailyLogin, 0)
	streak := 1
	switch s.LastLoginDate {
	case today:
		return false
	case yesterday:
		streak = s.LoginStreak + 1
		points += CalculatePoints(ActionStreakBonus, streak)
	}

	s.LoginStreak = streak
	s.LongestStreak = max(s.LongestStreak, streak)
	s.LastLoginDate = today
	t.AddPoints(points)
	return true
}

// ClaimAchievements unlocks every achievement the current stats qualify for
// and credits their points. Achievements unlocked by those points are
// picked up on the next call.
func (t *Tracker) ClaimAchievements() []Achievement {
	unlocked := CheckAchievements(t.st.Stats)
	if len(unlocked) == 0 {
		return nil
	}
	total := 0
	for _, a := range unlocked {
		t.st.Stats.Achievements = append(t.st.Stats.Achievements, a.ID)
		total += a.Points
	}
	t.AddPoints(total)
	return unlocked
}

// CompletedLessons returns the ids of completed lessons in completion order.
func (t *Tracker) CompletedLessons() []string {
	return slices.Clone(t.st.Progress.CompletedLessons)
}

// QuizScores returns the latest score per quiz.
func (t *Tracker) QuizScores() map[string]int {
	out := make(map[string]int, len(t.st.Progress.QuizScores))
	for k, v := range t.st.Progress.QuizScores {
		out[k] = v
	}
	return out
}

// ToggleLesson flips a lesson's completion. Completing credits the lesson;
// un-completing only removes the mark. Returns the new completion state.
func (t *Tracker) ToggleLesson(id string) bool {
	p := &t.st.Progress
	if i := slices.Index(p.CompletedLessons, id); i >= 0 {
		p.CompletedLessons = slices.Delete(p.CompletedLessons, i, i+1)
		return false
	}
	p.CompletedLessons = append(p.CompletedLessons, id)
	t.CompleteLesson(id)
	return true
}

// SetQuizScore stores the score for a quiz and records the attempt.
func (t *Tracker) SetQuizScore(id string, score int) error {
	if err := t.CompleteQuiz(id, score); err != nil {
		return err
	}
	t.st.Progress.QuizScores[id] = score
	return nil
}
