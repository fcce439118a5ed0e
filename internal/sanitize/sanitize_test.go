package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanStripsMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "## Campaign Plan\nGo big", "Campaign Plan\nGo big"},
		{"bold", "This is **very** important", "This is very important"},
		{"italic", "A *subtle* touch", "A subtle touch"},
		{"underscore bold", "__Launch__ day", "Launch day"},
		{"inline code", "Use the `launch` tag", "Use the launch tag"},
		{"link", "See [our site](https://example.com) today", "See our site today"},
		{"bullet list", "- first\n- second", "first\nsecond"},
		{"numbered list", "1. plan\n2. execute", "plan\nexecute"},
		{"fenced code", "before\n```json\n{\"a\":1}\n```\nafter", "before\n{\"a\":1}\nafter"},
		{"newline collapse", "one\n\n\n\n\ntwo", "one\n\ntwo"},
		{"space collapse", "too   many\tspaces", "too many spaces"},
		{"trim", "  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanStripsPreambles(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"As an AI, I cannot feel excitement, but this brand can.", "I cannot feel excitement, but this brand can."},
		{"Here's a caption for your post.", "caption for your post."},
		{"Let me craft something special.", "craft something special."},
		{"Sure, launch it on Monday.", "launch it on Monday."},
		{"Certainly! The mugs speak for themselves.", "The mugs speak for themselves."},
		{"Sure, here's a bold idea.", "bold idea."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Clean(tt.in), "input: %s", tt.in)
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"## Big **Launch**\n- item one\n- item two\n\n\n\nDone",
		"Sure, here's a caption: Great day! #sunny #coffee",
		"As an AI, as an AI, I repeat myself.",
		"plain text with no markdown at all",
		"```\ncode block\n```",
		"[link](http://x.test) and `code` and *stars*",
		"",
	}

	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "input: %q", in)
	}
}

func TestCleanKeepsHashtags(t *testing.T) {
	out := Clean("Great day! #sunny #coffee")
	assert.Contains(t, out, "#sunny")
	assert.Contains(t, out, "#coffee")

	// Hashtags at line start must not be mistaken for headings.
	out = Clean("#mondaymotivation starts here")
	assert.Contains(t, out, "#mondaymotivation")

	// A real heading still loses its marker.
	assert.Equal(t, "Weekly Recap", Clean("# Weekly Recap"))
}
