package sanitize

import (
	"regexp"
	"strings"
)

// Model output arrives dressed in markdown and chatty preambles that have no
// place in a caption or a campaign card. Clean strips both. The rules are an
// ordered table so new provider tics can be handled without touching control
// flow.

type rule struct {
	pattern *regexp.Regexp
	repl    string
}

var markdownRules = []rule{
	// Fenced code blocks keep their inner text.
	{regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\r?\\n?(.*?)\\n?```"), "$1"},
	// Headings need the space after the marker, so bare hashtags survive.
	{regexp.MustCompile(`(?m)^#{1,6}[ \t]+`), ""},
	{regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`), "$1"},
	{regexp.MustCompile(`\*\*([^*]+)\*\*`), "$1"},
	{regexp.MustCompile(`__([^_]+)__`), "$1"},
	{regexp.MustCompile(`\*([^*\n]+)\*`), "$1"},
	{regexp.MustCompile("`([^`\n]*)`"), "$1"},
	{regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`), ""},
	{regexp.MustCompile(`(?m)^[ \t]*\d{1,3}\.[ \t]+`), ""},
}

// Self-referential openers, matched case-insensitively at the start of a line.
var preamblePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^as an ai(?: language model)?[,.:]?\s*`),
	regexp.MustCompile(`(?i)^here'?s (?:a|an|the|your)\s+`),
	regexp.MustCompile(`(?i)^here is (?:a|an|the|your)\s+`),
	regexp.MustCompile(`(?i)^let me\s+`),
	regexp.MustCompile(`(?i)^i'?m designed to\s+`),
	regexp.MustCompile(`(?i)^i am designed to\s+`),
	regexp.MustCompile(`(?i)^i'?d be happy to\s+`),
	regexp.MustCompile(`(?i)^sure[,!]\s*`),
	regexp.MustCompile(`(?i)^certainly[,!]\s*`),
	regexp.MustCompile(`(?i)^of course[,!]\s*`),
	regexp.MustCompile(`(?i)^absolutely[,!]\s*`),
}

var (
	newlineRuns = regexp.MustCompile(`\n{3,}`)
	spaceRuns   = regexp.MustCompile(` {2,}`)
	lineEdges   = regexp.MustCompile(`(?m)[ \t]+$`)
)

func Clean(text string) string {
	for _, r := range markdownRules {
		text = r.pattern.ReplaceAllString(text, r.repl)
	}

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = stripPreambles(lines[i])
	}
	text = strings.Join(lines, "\n")

	text = strings.ReplaceAll(text, "\t", " ")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = lineEdges.ReplaceAllString(text, "")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// stripPreambles loops to a fixed point: removing one opener can expose
// another ("Sure, here's a ..."), and Clean must stay idempotent.
func stripPreambles(line string) string {
	for {
		trimmed := strings.TrimLeft(line, " \t")
		matched := false
		for _, re := range preamblePatterns {
			if loc := re.FindStringIndex(trimmed); loc != nil {
				trimmed = trimmed[loc[1]:]
				matched = true
				break
			}
		}
		line = trimmed
		if !matched {
			return line
		}
	}
}
