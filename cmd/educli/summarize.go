package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"investor-edu/internal/summarize"
)

func summarizeCmd(a *app) *cobra.Command {
	var (
		req      summarize.Request
		textPath string
		raw      bool
	)
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a regulatory circular or notice",
		Long: `Summarize the page at --url and/or the text from --text or --file
("-" reads stdin). Set GEMINI_API_KEY for AI summaries; otherwise an
extractive summary with glossary translation is produced.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if textPath != "" {
				text, err := readText(textPath)
				if err != nil {
					return err
				}
				req.Text = text
			}

			var gen summarize.Generator
			if a.cfg.GeminiAPIKey != "" {
				g, err := summarize.NewGeminiGenerator(cmd.Context(), a.cfg.GeminiAPIKey, a.cfg.GeminiModel)
				if err != nil {
					return err
				}
				gen = g
			}
			res, err := summarize.New(gen, nil).Summarize(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.asJSON {
				return writeJSON(a.out, res)
			}

			doc := summaryMarkdown(res)
			if raw {
				_, err := io.WriteString(a.out, doc)
				return err
			}
			r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
			if err != nil {
				return err
			}
			out, err := r.Render(doc)
			if err != nil {
				return err
			}
			_, err = io.WriteString(a.out, out)
			return err
		},
	}
	cmd.Flags().StringVar(&req.URL, "url", "", "Page to summarize")
	cmd.Flags().StringVar(&req.Text, "text", "", "Text to summarize")
	cmd.Flags().StringVar(&textPath, "file", "", "Read text from a file (- for stdin)")
	cmd.Flags().StringVar(&req.TargetLang, "lang", "en", "Target language: en, hi, mr, ...")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without terminal styling")
	return cmd
}

func readText(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func summaryMarkdown(res summarize.Result) string {
	var b strings.Builder
	b.WriteString("# Summary\n\n")
	b.WriteString(res.Summary)
	b.WriteString("\n\n---\n\n")
	fmt.Fprintf(&b, "*Source:* %s · *Backend:* %s\n", strings.ToUpper(res.SourceType), res.Backend)
	if len(res.KeyTerms) > 0 {
		fmt.Fprintf(&b, "\n*Key terms:* %s\n", strings.Join(res.KeyTerms, ", "))
	}
	return b.String()
}
