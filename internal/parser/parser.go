// Package parser reads and writes weekly reflection files: Markdown with a
// YAML frontmatter block carrying the period, week and confidence score.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// Frontmatter is the structured header of a reflection file.
type Frontmatter struct {
	Title      string   `yaml:"title,omitempty"`
	Period     string   `yaml:"period,omitempty"`
	Week       int      `yaml:"week,omitempty"`
	Confidence int      `yaml:"confidence,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
}

// Result holds the output of parsing a reflection file.
type Result struct {
	Frontmatter Frontmatter
	Body        string
	Tags        []string
	Title       string
}

// Parse extracts frontmatter, body, tags and title from raw Markdown. Missing
// or malformed frontmatter is not an error: the whole input becomes the body.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)
	return &Result{
		Frontmatter: fm,
		Body:        body,
		Tags:        extractTags(body, fm.Tags),
		Title:       deriveTitle(fm, body),
	}, nil
}

// Render produces the file content for a reflection.
func Render(fm Frontmatter, body string) ([]byte, error) {
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("parser: marshal frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimLeft(body, "\n\r"))
	if !strings.HasSuffix(body, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func splitFrontmatter(data []byte) (Frontmatter, string) {
	const delim = "---"
	var fm Frontmatter
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, string(data)
	}

	block := rest[:idx]
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")

	if err := yaml.Unmarshal(block, &fm); err != nil {
		return Frontmatter{}, string(data)
	}
	return fm, body
}

// extractTags merges frontmatter tags with inline #tags, first occurrence wins.
func extractTags(body string, fmTags []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range fmTags {
		add(t)
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// deriveTitle prefers the frontmatter title, then the first H1 heading.
func deriveTitle(fm Frontmatter, body string) string {
	if fm.Title != "" {
		return fm.Title
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
