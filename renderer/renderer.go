// Package renderer renders window views and summaries to markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/revgraph"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templates embed.FS

// funcs are the helpers available in every template.
var funcs = template.FuncMap{
	"money": func(v decimal.Decimal, cur string) string { return revgraph.M(v, cur).String() },
}

type windowData struct {
	revgraph.View
	Currency string
}

// RenderWindow renders the capital and revenue curves of a window view to a
// markdown string, amounts are in cur.
func RenderWindow(v revgraph.View, cur string) string {
	partials := map[string]string{
		"window_capital": "window_capital.md",
		"window_revenue": "window_revenue.md",
		"warnings":       "warnings.md",
	}
	return renderTemplate("window", "window.md", partials, windowData{View: v, Currency: cur})
}

type summaryData struct {
	revgraph.Summary
	Warnings []revgraph.Warning
}

// RenderSummary renders the headline figures of an account, and the
// warnings raised computing them.
func RenderSummary(s revgraph.Summary, ws []revgraph.Warning) string {
	partials := map[string]string{
		"warnings": "warnings.md",
	}
	return renderTemplate("summary", "summary.md", partials, summaryData{Summary: s, Warnings: ws})
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
