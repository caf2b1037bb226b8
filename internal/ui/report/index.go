package report

import (
	"fmt"
	"sort"
	"strings"

	"refdoc/internal/engine/doc"
	"refdoc/internal/engine/graph"
	"refdoc/internal/engine/symbol"
)

type indexGroup struct {
	title string
	lines []string
}

// Index renders the root index page listing every document, grouped by
// kind and sorted by name within a group.
func (a *Assembler) Index(docs []*doc.Document) (Page, error) {
	description, _, _ := strings.Cut(a.opts.ProjectDescription, "\n")
	description = strings.TrimSpace(description)
	fm, err := frontMatter([][2]string{
		{"description", description},
		{"title", a.opts.ProjectName},
	}, a.opts.IndexFrontMatter)
	if err != nil {
		return Page{}, err
	}

	sorted := append([]*doc.Document(nil), docs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var (
		functions  = &indexGroup{title: "Functions"}
		interfaces = &indexGroup{title: "Interfaces"}
		abstract   = &indexGroup{title: "Abstract classes"}
		classes    = &indexGroup{title: "Classes"}
		traits     = &indexGroup{title: "Traits"}
	)
	for _, d := range sorted {
		if d == nil || d.Ignore {
			continue
		}
		line := d.Name
		if d.Title != "" {
			line += ": " + d.Title
		}
		entry := fmt.Sprintf("* [%s](%s)", line, graph.PagePath(d.Name))
		switch {
		case d.Kind == symbol.KindFunction:
			functions.lines = append(functions.lines, entry)
		case d.Kind == symbol.KindTrait:
			traits.lines = append(traits.lines, entry)
		case d.Kind == symbol.KindInterface:
			interfaces.lines = append(interfaces.lines, entry)
		case d.Symbol != nil && d.Symbol.Abstract():
			abstract.lines = append(abstract.lines, entry)
		default:
			classes.lines = append(classes.lines, entry)
		}
	}

	var b strings.Builder
	b.WriteString(fm)
	b.WriteString(fmt.Sprintf("# `%s`\n\n", a.opts.ProjectName))
	if description != "" {
		b.WriteString(description + "\n\n")
	}
	for _, g := range []*indexGroup{functions, interfaces, abstract, classes, traits} {
		if len(g.lines) == 0 {
			continue
		}
		b.WriteString("## " + g.title + "\n")
		b.WriteString(strings.Join(g.lines, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString(footer)
	return Page{Path: graph.IndexPage, Content: b.String()}, nil
}
