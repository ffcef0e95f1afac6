package text

import "strings"

// Measurer reports the pixel width of a string. *Face implements it.
type Measurer interface {
	Width(s string) int
}

// Wrap breaks s into display lines no wider than maxWidth.
//
// Paragraphs are separated by line breaks ("\n", "\r\n" or "\r") and always
// end a line. Inside a paragraph, whitespace-delimited words are packed
// greedily: a word joins the current line (separated by one space) while the
// measured line still fits, otherwise the line is flushed and the word starts
// the next one. A word wider than maxWidth is placed alone on its own line.
// Empty paragraphs produce no line.
func Wrap(s string, maxWidth int, m Measurer) []string {
	var lines []string
	for _, paragraph := range Paragraphs(s) {
		lines = appendParagraph(lines, paragraph, maxWidth, m)
	}
	return lines
}

// Paragraphs splits s on line breaks after normalizing "\r\n" and "\r" to "\n".
func Paragraphs(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

func appendParagraph(lines []string, paragraph string, maxWidth int, m Measurer) []string {
	var current string
	for _, word := range strings.Fields(paragraph) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if m.Width(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
