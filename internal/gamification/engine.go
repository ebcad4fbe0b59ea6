package gamification

import (
	"math"
	"slices"
)

const (
	levelBaseXP     = 100
	levelMultiplier = 1.5
)

// Point-earning actions.
const (
	ActionLessonCompleted    = "lesson_completed"
	ActionQuizCompleted      = "quiz_completed"
	ActionQuizPerfect        = "quiz_perfect"
	ActionQuizHighScore      = "quiz_high_score"
	ActionFirstTrade         = "first_trade"
	ActionProfitableTrade    = "profitable_trade"
	ActionDocumentTranslated = "document_translated"
	ActionDailyLogin         = "daily_login"
	ActionStreakBonus        = "streak_bonus"
)

var pointsTable = map[string]int{
	ActionLessonCompleted:    50,
	ActionQuizCompleted:      25,
	ActionQuizPerfect:        100,
	ActionQuizHighScore:      75,
	ActionFirstTrade:         25,
	ActionProfitableTrade:    10,
	ActionDocumentTranslated: 30,
	ActionDailyLogin:         10,
	ActionStreakBonus:        5,
}

// Stats is a learner's gamification record.
type Stats struct {
	TotalPoints           int      `json:"totalPoints"`
	Level                 int      `json:"level"`
	ExperiencePoints      int      `json:"experiencePoints"`
	ExperienceToNextLevel int      `json:"experienceToNextLevel"`
	LessonsCompleted      int      `json:"lessonsCompleted"`
	QuizzesCompleted      int      `json:"quizzesCompleted"`
	AverageQuizScore      int      `json:"averageQuizScore"`
	TradingProfit         float64  `json:"tradingProfit"`
	DocumentsTranslated   int      `json:"documentsTranslated"`
	LoginStreak           int      `json:"loginStreak"`
	LongestStreak         int      `json:"longestStreak"`
	LastLoginDate         string   `json:"lastLoginDate"`
	JoinDate              string   `json:"joinDate"`
	Achievements          []string `json:"achievements"`
	Badges                []string `json:"badges"`
}

// LevelRequirement returns the XP needed to complete level:
// floor(100 × 1.5^(level−1)).
func LevelRequirement(level int) int {
	return int(math.Floor(levelBaseXP * math.Pow(levelMultiplier, float64(level-1))))
}

// CalculateLevel returns the level reached with xp and the XP still missing
// to reach the next one. Level 1 starts at 0 XP.
func CalculateLevel(xp int) (level, toNext int) {
	level = 1
	spent := 0
	for xp >= spent+LevelRequirement(level) {
		spent += LevelRequirement(level)
		level++
	}
	return level, LevelRequirement(level) - (xp - spent)
}

// CalculatePoints returns the points for action. Streak bonuses scale with
// value (the streak length); unknown actions earn nothing.
func CalculatePoints(action string, value int) int {
	base := pointsTable[action]
	if action == ActionStreakBonus && value != 0 {
		return base * value
	}
	return base
}

// Met reports whether stats satisfies r.
func (r Requirement) Met(s Stats) bool {
	var cur float64
	switch r.Type {
	case MetricLessonsCompleted:
		cur = float64(s.LessonsCompleted)
	case MetricQuizScore:
		cur = float64(s.AverageQuizScore)
	case MetricTradingProfit:
		cur = s.TradingProfit
	case MetricLoginStreak:
		cur = float64(s.LoginStreak)
	case MetricDocumentsTranslated:
		cur = float64(s.DocumentsTranslated)
	case MetricTotalPoints:
		cur = float64(s.TotalPoints)
	default:
		return false
	}

	switch r.Operator {
	case OpGTE:
		return cur >= r.Value
	case OpEQ:
		return cur == r.Value
	case OpLTE:
		return cur <= r.Value
	}
	return false
}

// CheckAchievements returns the achievements stats qualifies for that are
// not already unlocked, in catalog order.
func CheckAchievements(s Stats) []Achievement {
	var out []Achievement
	for _, a := range catalog {
		if slices.Contains(s.Achievements, a.ID) {
			continue
		}
		if a.Requirement.Met(s) {
			out = append(out, a)
		}
	}
	return out
}
