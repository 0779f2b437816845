package parser

import (
	"strings"
	"testing"
)

func TestParse_ReflectionFrontmatter(t *testing.T) {
	input := []byte("---\ntitle: Week 5\nperiod: p-1\nweek: 5\nconfidence: 7\ntags:\n  - focus\n---\n# Week 5\nShipped the beta.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Week 5" {
		t.Errorf("title = %q, want %q", r.Title, "Week 5")
	}
	if r.Frontmatter.Period != "p-1" || r.Frontmatter.Week != 5 || r.Frontmatter.Confidence != 7 {
		t.Errorf("frontmatter = %+v", r.Frontmatter)
	}
	if len(r.Tags) != 1 || r.Tags[0] != "focus" {
		t.Errorf("tags = %v, want [focus]", r.Tags)
	}
	if r.Body != "# Week 5\nShipped the beta.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter.Week != 0 || r.Frontmatter.Period != "" {
		t.Errorf("expected empty frontmatter, got %+v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Body != string(input) {
		t.Errorf("invalid YAML should keep whole input as body, got %q", r.Body)
	}
}

func TestExtractTags_InlineAndFrontmatter(t *testing.T) {
	tags := extractTags("Some text #beta and #alpha again.", []string{"alpha"})
	if len(tags) != 2 || tags[0] != "alpha" || tags[1] != "beta" {
		t.Errorf("tags = %v, want [alpha beta]", tags)
	}
}

func TestDeriveTitle_H1Fallback(t *testing.T) {
	title := deriveTitle(Frontmatter{}, "some text\n# My Heading\nmore")
	if title != "My Heading" {
		t.Errorf("title = %q, want %q", title, "My Heading")
	}
}

func TestRender_RoundTrip(t *testing.T) {
	fm := Frontmatter{Title: "Week 2", Period: "p-9", Week: 2, Confidence: 4}
	data, err := Render(fm, "Slow week. #blocked")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(string(data), "---\n") {
		t.Errorf("rendered file should start with frontmatter: %q", data)
	}
	r, _ := Parse(data)
	if r.Frontmatter != (Frontmatter{Title: "Week 2", Period: "p-9", Week: 2, Confidence: 4}) {
		t.Errorf("frontmatter = %+v", r.Frontmatter)
	}
	if r.Body != "Slow week. #blocked\n" {
		t.Errorf("body = %q", r.Body)
	}
	if len(r.Tags) != 1 || r.Tags[0] != "blocked" {
		t.Errorf("tags = %v", r.Tags)
	}
}
