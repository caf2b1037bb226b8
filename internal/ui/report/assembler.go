package report

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"refdoc/internal/engine/doc"
	"refdoc/internal/engine/graph"
	"refdoc/internal/engine/symbol"
	"refdoc/internal/shared/observability"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

const footer = "---\nGenerated by refdoc.\n"

// Linker answers link queries against the fully populated reference graph.
type Linker interface {
	LinkPath(from, to string) (string, bool)
	TitleOf(name string) (string, bool)
}

type Options struct {
	ProjectName        string
	ProjectDescription string
	FrontMatter        map[string]string // merged into every symbol page
	IndexFrontMatter   map[string]string // merged into the index page
	HTMLDescriptions   bool              // convert HTML found in descriptions to markdown
}

// Page is one generated markdown file. Path is relative to the output root
// and uses forward slashes.
type Page struct {
	Path    string
	Symbol  string // empty for the index
	Content string
}

// Assembler renders documents into pages. It must only be used after the
// graph behind links is complete.
type Assembler struct {
	links      Linker
	opts       Options
	html       *md.Converter
	unlinkable atomic.Int64
}

func NewAssembler(links Linker, opts Options) *Assembler {
	a := &Assembler{links: links, opts: opts}
	if opts.HTMLDescriptions {
		a.html = md.NewConverter("", true, nil)
		a.html.Use(plugin.GitHubFlavored())
	}
	return a
}

// Page renders the page of a class-like or function document.
func (a *Assembler) Page(d *doc.Document) (Page, error) {
	name := displayName(d.Name)
	fm, err := frontMatter([][2]string{
		{"title", name + ": " + d.Title},
		{"description", d.Description},
	}, a.opts.FrontMatter)
	if err != nil {
		return Page{}, err
	}

	var b strings.Builder
	b.WriteString(fm)
	b.WriteString(fmt.Sprintf("# `%s`\n", name))
	b.WriteString(fmt.Sprintf("[Back to index](%s)\n\n", graph.IndexPath(d.Name)))
	for _, author := range d.Authors {
		b.WriteString(fmt.Sprintf("> Author: %s  \n", author))
	}
	if len(d.Authors) > 0 {
		b.WriteString("\n")
	}
	if d.Title != "" {
		b.WriteString(d.Title + "  \n\n")
	}
	if desc := a.description(d.Description); desc != "" {
		b.WriteString(desc + "\n")
	}
	a.writeSeeAlso(&b, d.Owner(), d.SeeAlso)

	switch {
	case d.Class != nil:
		a.writeClassBody(&b, d)
	case d.Callable != nil:
		b.WriteString("\n")
		a.writeCallable(&b, d, "##")
	}

	b.WriteString(footer)
	return Page{Path: graph.PagePath(d.Name), Symbol: d.Name, Content: b.String()}, nil
}

func (a *Assembler) writeClassBody(b *strings.Builder, d *doc.Document) {
	body := d.Class
	if len(body.Constants) > 0 {
		b.WriteString("\n## Constants\n")
		for _, c := range body.Constants {
			desc := strings.ReplaceAll(strings.TrimSpace(c.Description), "\n", "\n  ")
			b.WriteString(fmt.Sprintf("* `%s::%s`: %s\n\n", displayName(d.Name), c.Name, desc))
		}
	}
	if len(body.Properties) > 0 {
		b.WriteString("\n## Properties\n")
		for _, p := range body.Properties {
			b.WriteString(strings.TrimRight(fmt.Sprintf("* `$%s`: `%s` %s", p.Name, p.Type, a.description(p.Description)), " ") + "\n")
		}
	}
	if len(body.Methods) > 0 {
		b.WriteString("\n## Method list:\n")
		for _, m := range body.Methods {
			b.WriteString(fmt.Sprintf("* [`%s`](#%s)\n", m.Signature(), m.Anchor()))
		}
		b.WriteString("\n## Methods:\n")
		for _, m := range body.Methods {
			a.writeCallable(b, m, "###")
			b.WriteString("\n")
		}
	}
}

func (a *Assembler) writeCallable(b *strings.Builder, d *doc.Document, heading string) {
	body := d.Callable
	b.WriteString(fmt.Sprintf("%s `%s`\n\n", heading, d.Signature()))
	if d.Kind == symbol.KindMethod {
		if d.Title != "" {
			b.WriteString(d.Title + "\n")
		}
		if desc := a.description(d.Description); desc != "" {
			b.WriteString(strings.ReplaceAll(desc, "\n", "  \n") + "\n")
		}
	}
	if len(body.Params) > 0 {
		b.WriteString("\nParameters:\n\n")
		for _, p := range body.Params {
			variadic := ""
			if p.Variadic {
				variadic = "..."
			}
			line := fmt.Sprintf("* `%s%s`: `%s` %s", variadic, p.Name, p.Type, p.Description)
			b.WriteString(strings.TrimRight(line, " ") + "  \n")
		}
		b.WriteString("\n")
	}
	if body.Return != nil && body.Return.Description != "" {
		b.WriteString("\nReturn value: " + body.Return.Description + "\n")
	}
	if d.Kind == symbol.KindMethod {
		a.writeSeeAlso(b, d.Owner(), d.SeeAlso)
	}
}

func (a *Assembler) writeSeeAlso(b *strings.Builder, from string, entries []string) {
	if len(entries) == 0 {
		return
	}
	b.WriteString("\n#### See also:\n")
	for _, entry := range entries {
		b.WriteString("* " + a.seeAlsoEntry(from, entry) + "\n")
	}
	b.WriteString("\n")
}

func (a *Assembler) seeAlsoEntry(from, entry string) string {
	if strings.Contains(entry, "://") {
		return "<" + entry + ">"
	}
	if a.links != nil {
		if path, ok := a.links.LinkPath(from, entry); ok {
			label := "`" + entry + "`"
			if title, _ := a.links.TitleOf(entry); title != "" {
				label += ": " + title
			}
			return fmt.Sprintf("[%s](%s)", label, path)
		}
	}
	a.unlinkable.Add(1)
	observability.UnlinkableReferences.Inc()
	return "`" + entry + "`"
}

// Unlinkable returns how many see-also entries were rendered without a link.
func (a *Assembler) Unlinkable() int {
	return int(a.unlinkable.Load())
}

// description converts HTML fragments when enabled. Conversion failures
// keep the original text.
func (a *Assembler) description(text string) string {
	text = strings.TrimSpace(text)
	if a.html == nil || !strings.Contains(text, "<") {
		return text
	}
	converted, err := a.html.ConvertString(text)
	if err != nil {
		slog.Debug("html conversion failed, keeping raw description", "error", err)
		return text
	}
	return strings.TrimSpace(converted)
}

func displayName(name string) string {
	return strings.TrimPrefix(name, symbol.Separator)
}
