package summarize

import (
	"regexp"
	"sort"
	"strings"
)

// Languages with a built-in glossary.
const (
	LangHindi   = "Hindi"
	LangMarathi = "Marathi"
)

var glossaries = map[string]map[string]string{
	LangHindi: {
		"stock":           "शेयर",
		"stocks":          "शेयर",
		"market":          "बाज़ार",
		"risk":            "जोखिम",
		"diversification": "विविधीकरण",
		"investor":        "निवेशक",
		"investors":       "निवेशक",
		"order":           "ऑर्डर",
		"orders":          "ऑर्डर्स",
		"settlement":      "निपटान",
		"regulator":       "नियामक",
		"exchange":        "एक्सचेंज",
		"portfolio":       "पोर्टफोलियो",
		"volatility":      "अस्थिरता",
		"algorithmic":     "एल्गोरिदमिक",
		"high-frequency":  "हाई-फ़्रीक्वेंसी",
	},
	LangMarathi: {
		"stock":           "शेअर",
		"stocks":          "शेअर्स",
		"market":          "बाजार",
		"risk":            "जोखीम",
		"diversification": "विविधीकरण",
		"investor":        "गुंतवणूकदार",
		"investors":       "गुंतवणूकदार",
		"order":           "ऑर्डर",
		"orders":          "ऑर्डर्स",
		"settlement":      "सेटलमेंट",
		"regulator":       "नियामक",
		"exchange":        "एक्स्चेंज",
		"portfolio":       "पोर्टफोलिओ",
		"volatility":      "चलनवलन",
		"algorithmic":     "अल्गोरिद्मिक",
		"high-frequency":  "हाय-फ्रीक्वेन्सी",
	},
}

var glossaryTerm = buildTermPattern()

func buildTermPattern() *regexp.Regexp {
	seen := map[string]bool{}
	var terms []string
	for _, dict := range glossaries {
		for k := range dict {
			if !seen[k] {
				seen[k] = true
				terms = append(terms, regexp.QuoteMeta(k))
			}
		}
	}
	// Longer terms first so "stocks" wins over "stock".
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	return regexp.MustCompile(`(?i)\b(` + strings.Join(terms, "|") + `)\b`)
}

// HasGlossary reports whether lang has a built-in glossary.
func HasGlossary(lang string) bool {
	_, ok := glossaries[lang]
	return ok
}

// ApplyGlossary replaces English finance terms in text with their lang
// equivalents, case-insensitively. Unknown languages return text unchanged.
func ApplyGlossary(text, lang string) string {
	dict, ok := glossaries[lang]
	if !ok {
		return text
	}
	return glossaryTerm.ReplaceAllStringFunc(text, func(m string) string {
		if r, ok := dict[strings.ToLower(m)]; ok {
			return r
		}
		return m
	})
}
