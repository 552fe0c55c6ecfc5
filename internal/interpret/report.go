package interpret

import (
	"fmt"
	"strings"

	"goanalytics/domain/analysis"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// RenderMarkdown formats a settled result and its interpretation as a Markdown report
func RenderMarkdown(methodName string, result analysis.AnalysisResult, interp analysis.Interpretation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s on %s\n\n", methodName, result.DatasetName)
	fmt.Fprintf(&b, "%s\n\n", interp.Summary)
	fmt.Fprintf(&b, "*%d records analyzed", result.RecordCount)
	if !result.CreatedAt.IsZero() {
		fmt.Fprintf(&b, " at %s", result.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	b.WriteString("*\n")

	writeList(&b, "Insights", interp.Insights)
	writeList(&b, "Recommendations", interp.Recommendations)

	return b.String()
}

// RenderHTML renders the Markdown report to HTML. Raw HTML in payload strings is dropped.
func RenderHTML(methodName string, result analysis.AnalysisResult, interp analysis.Interpretation) string {
	md := RenderMarkdown(methodName, result, interp)

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML,
	})
	return string(markdown.ToHTML([]byte(md), p, renderer))
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
