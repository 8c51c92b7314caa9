// Package excerpt derives short descriptions and reading statistics from
// article bodies.
package excerpt

import (
	"math"
	"strings"

	"github.com/dgallion1/cardpress/internal/doctree"
)

// WordsPerMinute is the reading speed used for ReadingMinutes.
const WordsPerMinute = 200

// Stats summarizes the size of a document.
type Stats struct {
	Blocks         int `json:"blocks"`
	Headings       int `json:"headings"`
	Words          int `json:"words"`
	Tokens         int `json:"tokens"`
	ReadingMinutes int `json:"reading_minutes"`
}

// Measure counts blocks, headings and words below root.
func Measure(root *doctree.Node) Stats {
	if root == nil {
		return Stats{}
	}
	var s Stats
	for _, c := range root.Children {
		s.Blocks++
		if c.Type == doctree.KindHeading {
			s.Headings++
		}
	}
	text := root.TextContent()
	s.Words = len(strings.Fields(text))
	s.Tokens = EstimateTokens(text)
	if s.Words > 0 {
		s.ReadingMinutes = int(math.Ceil(float64(s.Words) / WordsPerMinute))
	}
	return s
}

// Describe builds a plain-text description from the body's paragraphs and
// list items, skipping headings and quotes. Whole sentences are taken while
// they fit in maxTokens; a first sentence that is already too long is cut
// at a word boundary and ends in "...".
func Describe(root *doctree.Node, maxTokens int) string {
	if root == nil || maxTokens <= 0 {
		return ""
	}

	var sentences []string
	for _, block := range bodyText(root) {
		sentences = append(sentences, splitSentences(block)...)
	}
	if len(sentences) == 0 {
		return ""
	}

	var out []string
	used := 0
	for _, sent := range sentences {
		tokens := EstimateTokens(sent)
		if used+tokens > maxTokens {
			break
		}
		out = append(out, sent)
		used += tokens
	}
	if len(out) > 0 {
		return strings.Join(out, " ")
	}
	return truncateWords(sentences[0], maxTokens)
}

func bodyText(root *doctree.Node) []string {
	var out []string
	for _, c := range root.Children {
		switch c.Type {
		case doctree.KindParagraph, doctree.KindList:
			if t := strings.Join(strings.Fields(c.TextContent()), " "); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func truncateWords(text string, maxTokens int) string {
	words := strings.Fields(text)
	n := int(float64(maxTokens) / 1.33)
	if n < 1 {
		n = 1
	}
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ") + "..."
}
