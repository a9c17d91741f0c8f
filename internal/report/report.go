// Package report renders batch evaluation results as a Markdown audit
// report, optionally converted to a standalone HTML page.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/poleguard/repeal/internal/corpus"
	"github.com/poleguard/repeal/internal/engine"
	"github.com/poleguard/repeal/internal/pipeline"
)

// Markdown renders the results of a batch evaluation as a Markdown report.
// Results are grouped by status, repealable first, so the infractions worth
// contesting lead the document.
func Markdown(results []pipeline.Result, stats corpus.Stats, generatedAt time.Time) string {
	summary := pipeline.Summarize(results)

	var b strings.Builder
	b.WriteString("# Infraction Repeal Audit\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Corpus: %d chunks from %d documents (last updated %s)\n\n",
		stats.TotalChunks, stats.TotalFiles, stats.LastUpdated.UTC().Format(time.RFC3339))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Verdict | Count |\n|---|---|\n")
	fmt.Fprintf(&b, "| Repealable | %d |\n", summary.Repealable)
	fmt.Fprintf(&b, "| Potentially repealable | %d |\n", summary.PotentiallyRepealable)
	fmt.Fprintf(&b, "| Valid infraction | %d |\n", summary.ValidInfractions)
	if summary.Failed > 0 {
		fmt.Fprintf(&b, "| Failed | %d |\n", summary.Failed)
	}
	fmt.Fprintf(&b, "| **Total** | %d |\n\n", summary.Total)

	sections := []struct {
		heading string
		status  engine.Status
	}{
		{"Repealable", engine.StatusRepealable},
		{"Potentially Repealable", engine.StatusPotentiallyRepealable},
		{"Valid Infractions", engine.StatusValidInfraction},
	}
	for _, sec := range sections {
		matched := filterByStatus(results, sec.status)
		if len(matched) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", sec.heading)
		for _, r := range matched {
			writeResult(&b, r)
		}
	}

	if failed := filterFailed(results); len(failed) > 0 {
		b.WriteString("## Failed Evaluations\n\n")
		for _, r := range failed {
			fmt.Fprintf(&b, "- `#%d` %s: %s\n", r.Index+1, shorten(r.Infraction, 80), r.ErrMessage)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeResult(b *strings.Builder, r pipeline.Result) {
	fmt.Fprintf(b, "### #%d %s\n\n", r.Index+1, shorten(r.Infraction, 80))
	fmt.Fprintf(b, "- Confidence: %.2f (%s)\n", r.Verdict.Confidence, r.Verdict.Band)
	fmt.Fprintf(b, "- Matching spec passages: %d\n", r.Verdict.MatchCount)
	if top := r.Verdict.TopMatch; top != nil {
		fmt.Fprintf(b, "- Best evidence: %s (%s), similarity %.2f\n", top.SourceFile, top.SectionRef, r.Verdict.TopScore)
		fmt.Fprintf(b, "\n> %s\n", shorten(top.Text, 400))
	}
	b.WriteString("\n")
}

// filterByStatus returns successful results with the given status,
// highest confidence first.
func filterByStatus(results []pipeline.Result, status engine.Status) []pipeline.Result {
	var out []pipeline.Result
	for _, r := range results {
		if r.Err == nil && r.Verdict.Status == status {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Verdict.Confidence > out[j].Verdict.Confidence
	})
	return out
}

func filterFailed(results []pipeline.Result) []pipeline.Result {
	var out []pipeline.Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// shorten truncates s to max characters on a rune boundary.
func shorten(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// HTML converts a Markdown report into a standalone HTML page.
func HTML(markdown string, title string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)

	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}

	tmpl, err := template.New("report").Parse(pageTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing report template: %w", err)
	}

	var page bytes.Buffer
	err = tmpl.Execute(&page, struct {
		Title   string
		Content template.HTML
	}{
		Title:   title,
		Content: template.HTML(body.String()),
	})
	if err != nil {
		return "", fmt.Errorf("rendering report page: %w", err)
	}
	return page.String(), nil
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; color: #1f2328; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d1d9e0; padding: 0.4rem 0.8rem; text-align: left; }
blockquote { border-left: 4px solid #d1d9e0; margin: 0; padding: 0 1rem; color: #59636e; }
code { background: #f6f8fa; padding: 0.1rem 0.3rem; border-radius: 4px; }
</style>
</head>
<body>
{{.Content}}
</body>
</html>
`
