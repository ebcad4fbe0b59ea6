// Package gamification implements points, levels, login streaks and
// achievements for learner progress.
package gamification

// Category groups achievements on the dashboard.
type Category string

const (
	CategoryLearning  Category = "learning"
	CategoryTrading   Category = "trading"
	CategoryStreak    Category = "streak"
	CategoryMilestone Category = "milestone"
	CategorySocial    Category = "social"
)

// Rarity is a cosmetic tier.
type Rarity string

const (
	Common    Rarity = "common"
	Rare      Rarity = "rare"
	Epic      Rarity = "epic"
	Legendary Rarity = "legendary"
)

// Metric names the Stats field a requirement is checked against.
type Metric string

const (
	MetricLessonsCompleted    Metric = "lessons_completed"
	MetricQuizScore           Metric = "quiz_score"
	MetricTradingProfit       Metric = "trading_profit"
	MetricLoginStreak         Metric = "login_streak"
	MetricDocumentsTranslated Metric = "documents_translated"
	MetricTotalPoints         Metric = "total_points"
)

// Operator compares a metric with a requirement value.
type Operator string

const (
	OpGTE Operator = "gte"
	OpEQ  Operator = "eq"
	OpLTE Operator = "lte"
)

// Requirement is the unlock condition of an achievement.
type Requirement struct {
	Type     Metric   `json:"type"`
	Value    float64  `json:"value"`
	Operator Operator `json:"operator"`
}

// Achievement is one unlockable badge.
type Achievement struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Category    Category    `json:"category"`
	Points      int         `json:"points"`
	Requirement Requirement `json:"requirement"`
	Rarity      Rarity      `json:"rarity"`
}

var catalog = []Achievement{
	{
		ID: "first_lesson", Title: "Getting Started", Description: "Complete your first lesson",
		Icon: "🎯", Category: CategoryLearning, Points: 50, Rarity: Common,
		Requirement: Requirement{MetricLessonsCompleted, 1, OpGTE},
	},
	{
		ID: "lesson_master", Title: "Lesson Master", Description: "Complete all available lessons",
		Icon: "🎓", Category: CategoryLearning, Points: 500, Rarity: Epic,
		Requirement: Requirement{MetricLessonsCompleted, 4, OpGTE},
	},
	{
		ID: "quiz_ace", Title: "Quiz Ace", Description: "Score 90% or higher on a quiz",
		Icon: "⭐", Category: CategoryLearning, Points: 100, Rarity: Rare,
		Requirement: Requirement{MetricQuizScore, 90, OpGTE},
	},
	{
		ID: "perfect_score", Title: "Perfect Score", Description: "Score 100% on a quiz",
		Icon: "💯", Category: CategoryLearning, Points: 200, Rarity: Epic,
		Requirement: Requirement{MetricQuizScore, 100, OpEQ},
	},
	{
		ID: "first_trade", Title: "First Trade", Description: "Execute your first virtual trade",
		Icon: "📈", Category: CategoryTrading, Points: 75, Rarity: Common,
		Requirement: Requirement{MetricTradingProfit, -999999, OpGTE},
	},
	{
		ID: "profitable_trader", Title: "Profitable Trader", Description: "Achieve positive returns in virtual trading",
		Icon: "💰", Category: CategoryTrading, Points: 150, Rarity: Rare,
		Requirement: Requirement{MetricTradingProfit, 0, OpGTE},
	},
	{
		ID: "trading_expert", Title: "Trading Expert", Description: "Achieve 10% profit in virtual trading",
		Icon: "🏆", Category: CategoryTrading, Points: 300, Rarity: Epic,
		Requirement: Requirement{MetricTradingProfit, 100000, OpGTE},
	},
	{
		ID: "consistent_learner", Title: "Consistent Learner", Description: "Login for 7 consecutive days",
		Icon: "🔥", Category: CategoryStreak, Points: 200, Rarity: Rare,
		Requirement: Requirement{MetricLoginStreak, 7, OpGTE},
	},
	{
		ID: "dedication_master", Title: "Dedication Master", Description: "Login for 30 consecutive days",
		Icon: "💎", Category: CategoryStreak, Points: 1000, Rarity: Legendary,
		Requirement: Requirement{MetricLoginStreak, 30, OpGTE},
	},
	{
		ID: "knowledge_seeker", Title: "Knowledge Seeker", Description: "Translate 5 documents",
		Icon: "🌐", Category: CategoryMilestone, Points: 250, Rarity: Rare,
		Requirement: Requirement{MetricDocumentsTranslated, 5, OpGTE},
	},
	{
		ID: "point_collector", Title: "Point Collector", Description: "Earn 1000 total points",
		Icon: "🎖️", Category: CategoryMilestone, Points: 100, Rarity: Rare,
		Requirement: Requirement{MetricTotalPoints, 1000, OpGTE},
	},
}

// Catalog returns a copy of every achievement in display order.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the achievement with the given id.
func Lookup(id string) (Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
