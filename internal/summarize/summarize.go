// Package summarize turns regulator circulars, exchange notices and other
// investor-education material into short summaries in the reader's language.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"investor-edu/internal/metrics"
)

// ErrEmptySource is returned when neither the URL nor the text yields content.
var ErrEmptySource = errors.New("provide a valid URL or source text")

// Backends reported in Result.Backend.
const (
	BackendAI      = "ai"
	BackendOffline = "offline"
)

const maxPageBytes = 2 << 20

// Request is one summarization job.
type Request struct {
	URL        string `json:"url,omitempty"`
	Text       string `json:"text,omitempty"`
	TargetLang string `json:"targetLang"`
}

// Result carries the summary and what was learned about the source.
type Result struct {
	Summary    string   `json:"summary"`
	Backend    string   `json:"backend"`
	SourceType string   `json:"sourceType"`
	KeyTerms   []string `json:"keyTerms,omitempty"`
}

// Generator produces text for a prompt. GeminiGenerator is the production
// implementation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summarizer builds summaries with a Generator when one is configured and
// falls back to the extractive summary otherwise.
type Summarizer struct {
	gen     Generator
	http    *http.Client
	policy  *bluemonday.Policy
	metrics *metrics.Metrics
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithHTTPClient replaces the page fetcher. The default client refuses
// loopback, private and link-local addresses.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Summarizer) { s.http = hc }
}

// New creates a Summarizer. gen may be nil.
func New(gen Generator, m *metrics.Metrics, opts ...Option) *Summarizer {
	s := &Summarizer{
		gen:     gen,
		http:    publicClient(15 * time.Second),
		policy:  bluemonday.StrictPolicy(),
		metrics: m,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Summarize builds the source from req (page text first, then the supplied
// text) and summarizes it. Page fetch failures are logged and ignored.
func (s *Summarizer) Summarize(ctx context.Context, req Request) (Result, error) {
	var source strings.Builder
	if req.URL != "" {
		page, err := s.fetch(ctx, req.URL)
		if err != nil {
			slog.Warn("source fetch failed, using supplied text", "component", "summarize",
				"url", req.URL, "error", err)
		}
		source.WriteString(page)
	}
	if req.Text != "" {
		source.WriteString("\n\n")
		source.WriteString(req.Text)
	}
	content := source.String()
	if strings.TrimSpace(content) == "" {
		return Result{}, ErrEmptySource
	}

	res := Result{
		SourceType: DetectSourceType(req.URL),
		KeyTerms:   KeyTerms(content),
	}

	if s.gen != nil {
		out, err := s.gen.Generate(ctx, Prompt(content, req.TargetLang))
		if err == nil {
			res.Summary = out
			res.Backend = BackendAI
			s.metrics.Summarized(BackendAI)
			return res, nil
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		slog.Warn("summary generation failed, using offline summary", "component", "summarize", "error", err)
	}

	res.Summary = Offline(content, req.TargetLang)
	res.Backend = BackendOffline
	s.metrics.Summarized(BackendOffline)
	return res, nil
}

// Offline returns the extractive summary, glossary-translated for Hindi and
// Marathi, prefixed with a note describing how it was produced.
func Offline(content, lang string) string {
	summary := Extractive(content, MaxSentences)
	note := " (English fallback; add an AI integration for full translations)"
	if HasGlossary(lang) {
		summary = ApplyGlossary(summary, lang)
		note = " (glossary-based draft)"
	}
	return "[Offline" + note + "] " + summary
}

// Prompt builds the generation prompt for content in lang.
func Prompt(content, lang string) string {
	return strings.Join([]string{
		"You are a financial literacy assistant focusing on investor education (SEBI/NISM aligned).",
		fmt.Sprintf("Summarize the following content accurately and neutrally in %s.", lang),
		"Constraints:",
		"- Educational purpose only; do not provide investment advice.",
		"- Preserve key definitions, risks, and disclaimers.",
		"- Use clear, simple language appropriate for first-time investors.",
		"Content:\n" + content,
	}, "\n")
}

func (s *Summarizer) fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("unsupported url %q", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	return s.StripHTML(string(body)), nil
}

// StripHTML removes markup, scripts and styles and collapses whitespace.
func (s *Summarizer) StripHTML(doc string) string {
	return collapseSpace(html.UnescapeString(s.policy.Sanitize(doc)))
}
