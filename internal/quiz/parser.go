// Package quiz turns delimited quiz text into questions.
//
// Format:
//
//	What is 2+2?
//	====
//	3
//	====
//	# 4
//	++++
//	Next question ...
//
// Runs of four or more '+' separate questions, runs of four or more '=' separate
// the question text from its options, and a leading '#' marks a correct option.
package quiz

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	questionSep = regexp.MustCompile(`\+{4,}`)
	optionSep   = regexp.MustCompile(`={4,}`)
)

const correctMarker = "#"

// Parse extracts every well-formed question from text. It never fails:
// blocks without question text or without options are dropped.
func Parse(text string) []Question {
	return ParseReport(text).Questions
}

// ParseReport is Parse plus a record of the non-blank blocks that were dropped.
func ParseReport(text string) Report {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	rep := Report{Questions: []Question{}, Dropped: []Diagnostic{}}
	nextID := 1
	for bi, raw := range questionSep.Split(text, -1) {
		block := trim(raw)
		if block == "" {
			continue
		}
		q, reason, ok := parseBlock(block)
		if !ok {
			rep.Dropped = append(rep.Dropped, Diagnostic{Block: bi + 1, Reason: reason})
			continue
		}
		q.ID = nextID
		nextID++
		rep.Questions = append(rep.Questions, q)
	}
	return rep
}

func parseBlock(block string) (Question, DropReason, bool) {
	parts := optionSep.Split(block, -1)
	q := Question{Question: trim(parts[0])}

	for i := 1; i < len(parts); i++ {
		body := trim(parts[i])
		if body == "" {
			continue // keeps its id slot
		}
		opt := Option{ID: i + 1, Text: body}
		if strings.HasPrefix(body, correctMarker) {
			opt.IsCorrect = true
			opt.Text = strings.TrimLeftFunc(body[len(correctMarker):], isSpace)
		}
		q.Options = append(q.Options, opt)
	}

	switch {
	case q.Question == "":
		return Question{}, ReasonNoQuestionText, false
	case len(q.Options) == 0:
		return Question{}, ReasonNoOptions, false
	}
	return q, "", true
}

// isSpace is unicode.IsSpace plus the ASCII information separators 0x1c-0x1f.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func trim(s string) string { return strings.TrimFunc(s, isSpace) }
