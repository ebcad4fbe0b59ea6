package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)}
}

func TestLevelRequirement(t *testing.T) {
	assert.Equal(t, 100, LevelRequirement(1))
	assert.Equal(t, 150, LevelRequirement(2))
	assert.Equal(t, 225, LevelRequirement(3))
	assert.Equal(t, 337, LevelRequirement(4))
}

func TestCalculateLevel(t *testing.T) {
	tests := []struct {
		xp     int
		level  int
		toNext int
	}{
		{0, 1, 100},
		{99, 1, 1},
		{100, 2, 150},
		{249, 2, 1},
		{250, 3, 225},
		{475, 4, 337},
	}
	for _, tc := range tests {
		level, toNext := CalculateLevel(tc.xp)
		assert.Equal(t, tc.level, level, "xp=%d", tc.xp)
		assert.Equal(t, tc.toNext, toNext, "xp=%d", tc.xp)
	}
}

func TestCalculatePoints(t *testing.T) {
	assert.Equal(t, 50, CalculatePoints(ActionLessonCompleted, 0))
	assert.Equal(t, 5, CalculatePoints(ActionStreakBonus, 0))
	assert.Equal(t, 35, CalculatePoints(ActionStreakBonus, 7))
	assert.Equal(t, 0, CalculatePoints("unknown", 3))
}

func TestRequirementOperators(t *testing.T) {
	s := Stats{AverageQuizScore: 100, LessonsCompleted: 2}
	assert.True(t, Requirement{MetricQuizScore, 100, OpEQ}.Met(s))
	assert.False(t, Requirement{MetricQuizScore, 90, OpEQ}.Met(s))
	assert.True(t, Requirement{MetricLessonsCompleted, 2, OpLTE}.Met(s))
	assert.False(t, Requirement{MetricLessonsCompleted, 3, OpGTE}.Met(s))
	assert.False(t, Requirement{"bogus", 0, OpGTE}.Met(s))
	assert.False(t, Requirement{MetricLessonsCompleted, 0, "ne"}.Met(s))
}

func TestCheckAchievements_SkipsUnlocked(t *testing.T) {
	s := Stats{LessonsCompleted: 1, TradingProfit: -5, Achievements: []string{"first_lesson"}}
	got := CheckAchievements(s)
	ids := make([]string, len(got))
	for i, a := range got {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"first_trade"}, ids)
}

func TestCatalog(t *testing.T) {
	c := Catalog()
	require.Len(t, c, 11)
	c[0].Points = 0
	a, ok := Lookup("first_lesson")
	require.True(t, ok)
	assert.Equal(t, 50, a.Points, "Catalog must return a copy")
	_, ok = Lookup("missing")
	assert.False(t, ok)
}

func TestTracker_Defaults(t *testing.T) {
	clk := newClock()
	tr := NewTracker(WithClock(clk.Now))
	s := tr.Stats()
	assert.Equal(t, 1, s.Level)
	assert.Equal(t, 100, s.ExperienceToNextLevel)
	assert.Equal(t, 1, s.LoginStreak)
	assert.Equal(t, "2026-05-10", s.JoinDate)
	assert.Equal(t, "2026-05-10", s.LastLoginDate)
	assert.Empty(t, s.Achievements)
}

func TestTracker_LessonsAndLevel(t *testing.T) {
	tr := NewTracker(WithClock(newClock().Now))
	tr.CompleteLesson("basics")
	tr.CompleteLesson("ipo")

	s := tr.Stats()
	assert.Equal(t, 2, s.LessonsCompleted)
	assert.Equal(t, 100, s.TotalPoints)
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, 150, s.ExperienceToNextLevel)
}

func TestTracker_QuizScoring(t *testing.T) {
	tr := NewTracker(WithClock(newClock().Now))
	require.NoError(t, tr.CompleteQuiz("q1", 100))
	require.NoError(t, tr.CompleteQuiz("q2", 91))
	require.NoError(t, tr.CompleteQuiz("q3", 50))

	s := tr.Stats()
	assert.Equal(t, 3, s.QuizzesCompleted)
	// Running average is rounded each time: 100, then 95.5 → 96, then (96×2+50)/3 = 80.67 → 81.
	assert.Equal(t, 81, s.AverageQuizScore)
	assert.Equal(t, 25+100+25+75+25, s.TotalPoints)

	assert.ErrorIs(t, tr.CompleteQuiz("q4", 101), ErrInvalidScore)
	assert.Equal(t, 3, tr.Stats().QuizzesCompleted)
}

func TestTracker_AverageRoundsHalfUp(t *testing.T) {
	tr := NewTracker(WithClock(newClock().Now))
	require.NoError(t, tr.CompleteQuiz("a", 90))
	require.NoError(t, tr.CompleteQuiz("b", 91))
	assert.Equal(t, 91, tr.Stats().AverageQuizScore)
}

func TestTracker_TradingProfit(t *testing.T) {
	tr := NewTracker(WithClock(newClock().Now))
	tr.UpdateTradingProfit(500)
	assert.Equal(t, 10, tr.Stats().TotalPoints)
	tr.UpdateTradingProfit(400)
	assert.Equal(t, 10, tr.Stats().TotalPoints, "lower profit earns nothing")
	tr.UpdateTradingProfit(-100)
	tr.UpdateTradingProfit(-50)
	assert.Equal(t, 10, tr.Stats().TotalPoints, "negative profit earns nothing")
	assert.InDelta(t, -50.0, tr.Stats().TradingProfit, 1e-9)
}

func TestTracker_LoginStreak(t *testing.T) {
	clk := newClock()
	tr := NewTracker(WithClock(clk.Now))

	assert.False(t, tr.RecordLogin(), "join day already counts as a login")

	clk.t = clk.t.Add(24 * time.Hour)
	assert.True(t, tr.RecordLogin())
	s := tr.Stats()
	assert.Equal(t, 2, s.LoginStreak)
	assert.Equal(t, 10+5*2, s.TotalPoints)

	clk.t = clk.t.Add(24 * time.Hour)
	require.True(t, tr.RecordLogin())
	assert.Equal(t, 3, tr.Stats().LoginStreak)

	clk.t = clk.t.Add(72 * time.Hour)
	require.True(t, tr.RecordLogin())
	s = tr.Stats()
	assert.Equal(t, 1, s.LoginStreak)
	assert.Equal(t, 3, s.LongestStreak)
	assert.Equal(t, "2026-05-15", s.LastLoginDate)
}

func TestTracker_ClaimAchievements(t *testing.T) {
	tr := NewTracker(WithClock(newClock().Now))
	tr.CompleteLesson("basics")

	got := tr.ClaimAchievements()
	ids := []string{}
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	// first_trade and profitable_trader qualify at zero profit.
	assert.Equal(t, []string{"first_lesson", "first_trade", "profitable_trader"}, ids)
	assert.Equal(t, 50+50+75+150, tr.Stats().TotalPoints)

	assert.Empty(t, tr.ClaimAchievements(), "claiming twice unlocks nothing new")
}

func TestTracker_ToggleLessonAndQuizScores(t *testing.T) {
	tr := NewTracker(WithClock(newClock().Now))
	assert.True(t, tr.ToggleLesson("l1"))
	assert.True(t, tr.ToggleLesson("l2"))
	assert.False(t, tr.ToggleLesson("l1"))
	assert.Equal(t, []string{"l2"}, tr.CompletedLessons())
	assert.Equal(t, 2, tr.Stats().LessonsCompleted, "un-completing keeps earned credit")

	require.NoError(t, tr.SetQuizScore("q1", 70))
	require.NoError(t, tr.SetQuizScore("q1", 95))
	assert.Equal(t, map[string]int{"q1": 95}, tr.QuizScores())
	assert.Error(t, tr.SetQuizScore("q2", -1))
	assert.NotContains(t, tr.QuizScores(), "q2")
}

func TestTracker_RestoreAndReset(t *testing.T) {
	clk := newClock()
	tr := NewTracker(WithClock(clk.Now))
	tr.Restore(State{Stats: Stats{ExperiencePoints: 260, TotalPoints: 260}})

	s := tr.Stats()
	assert.Equal(t, 3, s.Level)
	assert.Equal(t, 215, s.ExperienceToNextLevel)
	assert.Equal(t, "2026-05-10", s.JoinDate)
	assert.NotNil(t, tr.State().Progress.QuizScores)

	tr.Reset()
	assert.Equal(t, DefaultState(clk.Now()), tr.State())
}
