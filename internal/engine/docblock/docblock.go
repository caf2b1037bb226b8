// Package docblock parses PHPDoc comments into a summary, a description and
// a list of tags. Type tokens inside tags are read bracket-aware so shapes
// and generics with embedded spaces survive as one token.
package docblock

import (
	"strings"
)

// Tag names understood by the parser. Any other @name is kept as a plain tag
// with only Value set.
const (
	TagParam         = "@param"
	TagPsalmParam    = "@psalm-param"
	TagPHPStanParam  = "@phpstan-param"
	TagReturn        = "@return"
	TagPsalmReturn   = "@psalm-return"
	TagPHPStanReturn = "@phpstan-return"
	TagVar           = "@var"
	TagProperty      = "@property"
	TagPropertyRead  = "@property-read"
	TagPropertyWrite = "@property-write"
	TagSee           = "@see"
	TagAuthor        = "@author"
	TagInternal      = "@internal"
	TagDeprecated    = "@deprecated"
)

var (
	ParamTags    = []string{TagParam, TagPsalmParam, TagPHPStanParam}
	ReturnTags   = []string{TagReturn, TagPsalmReturn, TagPHPStanReturn}
	PropertyTags = []string{TagProperty, TagPropertyRead, TagPropertyWrite}
)

type Tag struct {
	Name        string
	Value       string // everything after the tag name, continuation lines included
	Type        string
	Variable    string // with the leading $
	Variadic    bool
	Description string
}

type Block struct {
	Summary     string
	Description string
	Tags        []Tag
}

// Empty reports whether the block carries neither text nor tags.
func (b Block) Empty() bool {
	return b.Summary == "" && b.Description == "" && len(b.Tags) == 0
}

// Has reports whether any tag with one of names is present.
func (b Block) Has(names ...string) bool {
	return len(b.TagsNamed(names...)) > 0
}

// TagsNamed returns the tags matching any of names, in source order.
func (b Block) TagsNamed(names ...string) []Tag {
	var out []Tag
	for _, tag := range b.Tags {
		for _, name := range names {
			if tag.Name == name {
				out = append(out, tag)
				break
			}
		}
	}
	return out
}

// Text joins the summary and the description.
func (b Block) Text() string {
	if b.Description == "" {
		return b.Summary
	}
	return b.Summary + "\n" + b.Description
}

// Parse reads a raw comment. Input without the /** */ markers is accepted
// as already stripped text.
func Parse(comment string) Block {
	lines := stripMarkers(comment)

	var (
		text  []string
		tags  []Tag
		inTag bool
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@") {
			inTag = true
			name, value := splitTagName(trimmed)
			tags = append(tags, Tag{Name: name, Value: value})
			continue
		}
		if inTag {
			last := &tags[len(tags)-1]
			last.Value += "\n" + line
			continue
		}
		text = append(text, line)
	}

	for i := range tags {
		tags[i].Value = strings.TrimSpace(tags[i].Value)
		parseTagValue(&tags[i])
	}

	summary, description := splitText(strings.TrimSpace(strings.Join(text, "\n")))
	return Block{Summary: summary, Description: description, Tags: tags}
}

func stripMarkers(comment string) []string {
	comment = strings.TrimSpace(comment)
	comment = strings.TrimPrefix(comment, "/**")
	comment = strings.TrimPrefix(comment, "/*")
	comment = strings.TrimSuffix(comment, "*/")

	raw := strings.Split(strings.ReplaceAll(comment, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimLeft(line, " \t")
		if strings.HasPrefix(line, "*") {
			line = strings.TrimPrefix(line, "*")
			line = strings.TrimPrefix(line, " ")
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	return lines
}

func splitTagName(line string) (string, string) {
	end := strings.IndexAny(line, " \t")
	if end < 0 {
		return line, ""
	}
	return line[:end], strings.TrimSpace(line[end:])
}

func splitText(text string) (string, string) {
	summary, description, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(summary), strings.TrimSpace(description)
}

func parseTagValue(tag *Tag) {
	switch tag.Name {
	case TagParam, TagPsalmParam, TagPHPStanParam:
		rest := tag.Value
		if !startsVariable(rest) {
			tag.Type, rest = readType(rest)
		}
		tag.Variable, tag.Variadic, rest = readVariable(rest)
		tag.Description = strings.TrimSpace(rest)
	case TagReturn, TagPsalmReturn, TagPHPStanReturn:
		var rest string
		tag.Type, rest = readType(tag.Value)
		tag.Description = strings.TrimSpace(rest)
	case TagVar, TagProperty, TagPropertyRead, TagPropertyWrite:
		rest := tag.Value
		if !startsVariable(rest) {
			tag.Type, rest = readType(rest)
		}
		tag.Variable, tag.Variadic, rest = readVariable(rest)
		tag.Description = strings.TrimSpace(rest)
	default:
		tag.Description = tag.Value
	}
}

func startsVariable(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "&")
	s = strings.TrimPrefix(s, "...")
	return strings.HasPrefix(s, "$")
}

// readVariable consumes an optional [&][...]$name token.
func readVariable(s string) (string, bool, string) {
	s = strings.TrimLeft(s, " \t\n")
	if !startsVariable(s) {
		return "", false, s
	}
	s = strings.TrimPrefix(s, "&")
	variadic := strings.HasPrefix(s, "...")
	s = strings.TrimPrefix(s, "...")
	end := strings.IndexAny(s, " \t\n")
	if end < 0 {
		return s, variadic, ""
	}
	return s[:end], variadic, s[end:]
}

// readType consumes one type token. Whitespace only ends the token outside
// brackets and when the token is not mid-way through a union or a callable
// return annotation.
func readType(s string) (string, string) {
	s = strings.TrimLeft(s, " \t\n")
	depth := 0
	i := 0
	for i < len(s) {
		c := s[i]
		switch c {
		case '(', '<', '{', '[':
			depth++
		case ')', '>', '}', ']':
			if depth > 0 {
				depth--
			}
		case ' ', '\t', '\n':
			if depth > 0 {
				break
			}
			j := i
			for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
				j++
			}
			prev := s[i-1]
			if prev == '|' || prev == ':' || (j < len(s) && s[j] == '|') {
				i = j
				continue
			}
			return collapseUnionSpaces(s[:i]), s[i:]
		}
		i++
	}
	return collapseUnionSpaces(s), ""
}

func collapseUnionSpaces(t string) string {
	if !strings.Contains(t, "|") {
		return t
	}
	parts := strings.Split(t, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, "|")
}
