package summarize

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

const (
	// MaxSentences is the length of an extractive summary.
	MaxSentences = 6

	// shortTextLimit caps the passthrough used when the source is already
	// shorter than MaxSentences.
	shortTextLimit = 2400

	maxLengthScore = 180
	keywordBonus   = 18
)

var scoreKeywords = []string{
	"risk", "investor", "market", "diversification", "regulator",
	"order", "settlement", "disclosure", "volatility", "drawdown",
}

var spaceRun = regexp.MustCompile(`\s+`)

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// splitSentences splits collapsed text after '.', '?' or '!' when followed
// by whitespace.
func splitSentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '?', '!':
			if unicode.IsSpace(runes[i+1]) {
				if s := string(runes[start : i+1]); s != "" {
					out = append(out, s)
				}
				start = i + 2
				i++
			}
		}
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

// Extractive picks the highest-scoring sentences of input. A sentence scores
// its length (capped at 180) plus 18 for each finance keyword it contains.
// Inputs with at most max sentences are returned whole, truncated to 2400
// characters.
func Extractive(input string, max int) string {
	text := collapseSpace(input)
	sentences := splitSentences(text)
	if len(sentences) <= max {
		return truncateRunes(text, shortTextLimit)
	}

	type scored struct {
		s     string
		score int
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		score := len([]rune(s))
		if score > maxLengthScore {
			score = maxLengthScore
		}
		lower := strings.ToLower(s)
		for _, k := range scoreKeywords {
			if strings.Contains(lower, k) {
				score += keywordBonus
			}
		}
		ranked[i] = scored{s, score}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	picked := make([]string, max)
	for i := range picked {
		picked[i] = ranked[i].s
	}
	return strings.Join(picked, " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
