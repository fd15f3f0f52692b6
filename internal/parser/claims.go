package parser

import "strings"

type span struct {
	start, end int
}

func (s span) overlaps(start, end int) bool {
	return start < s.end && end > s.start
}

// Claims records which lines and which byte spans of a side's joined text
// have been assigned to a field. Values are immutable: every claim returns
// a new Claims and leaves the receiver untouched.
type Claims struct {
	lines []int
	spans []span
}

// LineClaimed reports whether line i belongs to an earlier field.
func (c Claims) LineClaimed(i int) bool {
	for _, l := range c.lines {
		if l == i {
			return true
		}
	}
	return false
}

// SpanClaimed reports whether [start, end) overlaps a claimed span.
func (c Claims) SpanClaimed(start, end int) bool {
	for _, s := range c.spans {
		if s.overlaps(start, end) {
			return true
		}
	}
	return false
}

// Len returns the number of claimed lines.
func (c Claims) Len() int {
	return len(c.lines)
}

// withLine returns a copy of c with line i claimed.
func (c Claims) withLine(i int) Claims {
	if c.LineClaimed(i) {
		return c
	}
	lines := make([]int, len(c.lines), len(c.lines)+1)
	copy(lines, c.lines)
	return Claims{lines: append(lines, i), spans: c.spans}
}

// withSpan returns a copy of c with [start, end) of the joined text claimed,
// together with every line the span touches.
func (c Claims) withSpan(st *sideText, start, end int) Claims {
	spans := make([]span, len(c.spans), len(c.spans)+1)
	copy(spans, c.spans)
	out := Claims{lines: c.lines, spans: append(spans, span{start, end})}
	for _, i := range st.linesInSpan(start, end) {
		out = out.withLine(i)
	}
	return out
}

// sideText is one side's normalized lines and their single-space join.
type sideText struct {
	lines  []string
	full   string
	starts []int
}

func newSideText(text string) *sideText {
	lines := Lines(text)
	st := &sideText{lines: lines, starts: make([]int, len(lines))}
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte(' ')
		}
		st.starts[i] = b.Len()
		b.WriteString(l)
	}
	st.full = b.String()
	return st
}

// linesInSpan returns the indexes of lines overlapping [start, end).
func (st *sideText) linesInSpan(start, end int) []int {
	var out []int
	for i, l := range st.lines {
		ls := st.starts[i]
		if start < ls+len(l) && end > ls {
			out = append(out, i)
		}
	}
	return out
}

// claimText claims the first case-insensitive occurrence of value in the
// joined text, if any.
func (st *sideText) claimText(c Claims, value string) Claims {
	if value == "" {
		return c
	}
	idx := strings.Index(strings.ToLower(st.full), strings.ToLower(value))
	if idx < 0 {
		return c
	}
	return c.withSpan(st, idx, idx+len(value))
}
