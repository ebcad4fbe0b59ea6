package summarize

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	prompt string
	out    string
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.out, f.err
}

const englishNote = "[Offline (English fallback; add an AI integration for full translations)] "

func TestExtractive_ShortPassthrough(t *testing.T) {
	in := "  Equity is ownership.\n\n  Debt is a loan.  "
	assert.Equal(t, "Equity is ownership. Debt is a loan.", Extractive(in, MaxSentences))

	long := strings.Repeat("x", 3000)
	assert.Len(t, Extractive(long, MaxSentences), 2400)
}

func TestExtractive_RanksSentences(t *testing.T) {
	in := "The sky is blue. Market risk is real. Cats sleep. Dogs bark. " +
		"Birds sing. Fish swim. Investors need diversification. Rain falls."
	want := "Investors need diversification. Market risk is real. The sky is blue. " +
		"Cats sleep. Birds sing. Rain falls."
	assert.Equal(t, want, Extractive(in, MaxSentences))
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("What is a SIP? It is a plan! Start early. v1.2 matters")
	assert.Equal(t, []string{"What is a SIP?", "It is a plan!", "Start early.", "v1.2 matters"}, got)
}

func TestApplyGlossary(t *testing.T) {
	assert.Equal(t, "शेयर carry बाज़ार जोखिम", ApplyGlossary("Stocks carry Market risk", LangHindi))
	assert.Equal(t, "हाय-फ्रीक्वेन्सी trading", ApplyGlossary("high-frequency trading", LangMarathi))
	assert.Equal(t, "शेअर्स and शेअर", ApplyGlossary("stocks and stock", LangMarathi))
	assert.Equal(t, "stockist", ApplyGlossary("stockist", LangHindi))
	assert.Equal(t, "Market risk", ApplyGlossary("Market risk", "Tamil"))
}

func TestOffline(t *testing.T) {
	assert.Equal(t, englishNote+"Market risk.", Offline("Market risk.", "English"))
	assert.Equal(t, "[Offline (glossary-based draft)] बाज़ार जोखिम.", Offline("Market risk.", LangHindi))
}

func TestSummarize_EmptySource(t *testing.T) {
	s := New(nil, nil)
	_, err := s.Summarize(context.Background(), Request{Text: "   \n "})
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = s.Summarize(context.Background(), Request{URL: "ftp://example.com/doc"})
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestSummarize_FetchesAndStripsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		w.Write([]byte(`<html><head><style>p{color:red}</style><script>var x = 1;</script></head>` +
			`<body><p>Market &amp; risk.</p></body></html>`))
	}))
	defer srv.Close()

	res, err := New(nil, nil, WithHTTPClient(srv.Client())).Summarize(context.Background(), Request{URL: srv.URL, Text: "Extra.", TargetLang: "English"})
	require.NoError(t, err)
	assert.Equal(t, englishNote+"Market & risk. Extra.", res.Summary)
	assert.Equal(t, BackendOffline, res.Backend)
	assert.Equal(t, SourceOther, res.SourceType)
}

func TestSummarize_DefaultClientRefusesInternalHosts(t *testing.T) {
	var hit atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit.Store(true)
		w.Write([]byte("<p>internal</p>"))
	}))
	defer srv.Close()

	res, err := New(nil, nil).Summarize(context.Background(), Request{URL: srv.URL, Text: "Hello."})
	require.NoError(t, err)
	assert.False(t, hit.Load())
	assert.Equal(t, englishNote+"Hello.", res.Summary)
}

func TestCheckPublic(t *testing.T) {
	tests := []struct {
		addr string
		ok   bool
	}{
		{"127.0.0.1:80", false},
		{"[::1]:443", false},
		{"10.1.2.3:80", false},
		{"192.168.0.10:9090", false},
		{"169.254.169.254:80", false},
		{"[fe80::1]:80", false},
		{"0.0.0.0:80", false},
		{"[::ffff:127.0.0.1]:80", false},
		{"8.8.8.8:443", true},
		{"[2606:4700::1111]:443", true},
	}
	for _, tc := range tests {
		err := checkPublic("tcp", tc.addr, nil)
		if tc.ok {
			assert.NoError(t, err, tc.addr)
		} else {
			assert.ErrorIs(t, err, ErrForbiddenAddress, tc.addr)
		}
	}
}

func TestSummarize_FetchErrorIgnored(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	res, err := New(nil, nil).Summarize(context.Background(), Request{URL: addr, Text: "Hello."})
	require.NoError(t, err)
	assert.Equal(t, englishNote+"Hello.", res.Summary)
}

func TestSummarize_UsesGenerator(t *testing.T) {
	gen := &fakeGenerator{out: "AI summary"}
	res, err := New(gen, nil).Summarize(context.Background(), Request{Text: "Mutual fund NAV basics.", TargetLang: "Hindi"})
	require.NoError(t, err)
	assert.Equal(t, "AI summary", res.Summary)
	assert.Equal(t, BackendAI, res.Backend)
	assert.Contains(t, gen.prompt, "accurately and neutrally in Hindi.")
	assert.True(t, strings.HasSuffix(gen.prompt, "Content:\n\n\nMutual fund NAV basics."))
	assert.Equal(t, []string{"mutual fund", "NAV"}, res.KeyTerms)
}

func TestSummarize_GeneratorFailureFallsBack(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	res, err := New(gen, nil).Summarize(context.Background(), Request{Text: "Risk.", TargetLang: LangMarathi})
	require.NoError(t, err)
	assert.Equal(t, BackendOffline, res.Backend)
	assert.Equal(t, "[Offline (glossary-based draft)] जोखीम.", res.Summary)
}

func TestDetectSourceType(t *testing.T) {
	tests := map[string]string{
		"https://www.sebi.gov.in/legal/circulars": SourceSEBI,
		"https://www.nism.ac.in/x":                SourceNISM,
		"https://www.nseindia.com/notice":         SourceNSE,
		"https://www.bseindia.com/notice":         SourceBSE,
		"https://rbi.org.in/Scripts":              SourceRBI,
		"https://example.com":                     SourceOther,
		"":                                        SourceOther,
	}
	for in, want := range tests {
		assert.Equal(t, want, DetectSourceType(in), in)
	}
}

func TestKeyTerms_Capped(t *testing.T) {
	text := strings.Join(financialTerms, " ")
	got := KeyTerms(text)
	assert.Len(t, got, 10)
	assert.Equal(t, "IPO", got[0])
}
